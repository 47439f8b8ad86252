// Package smtp содержит транспорт для отправки транзакционных писем
// (коды подтверждения, приветственные письма) через STARTTLS.
package smtp

import "io"

// Client покрывает команды SMTP-сессии, нужные для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает аутентифицированную SMTP-сессию.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
