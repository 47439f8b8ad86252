// Package sender реализует отправку писем сервиса: код подтверждения
// и приветственное письмо после верификации.
package sender

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/novashelf/novashelf/internal/lib/sl"
	"github.com/novashelf/novashelf/internal/lib/smtp"
)

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport   smtp.TransportInterface
	frontendURL string
	log         *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, frontendURL string, log *slog.Logger) *Service {
	return &Service{
		transport:   transport,
		frontendURL: frontendURL,
		log:         log,
	}
}

// SendOTPEmail отправляет письмо с одноразовым кодом подтверждения.
// Ошибка возвращается вызывающему: от нее зависит откат регистрации.
func (s *Service) SendOTPEmail(email, name, code string) error {
	subject := "Verify Your Email - Novashelf"
	bodyText := fmt.Sprintf(`Welcome %s!

Thank you for signing up for Novashelf. To complete your registration and
start building your library, please verify your email address using the
code below:

    %s

This code will expire in 10 minutes. If you didn't request this
verification, please ignore this email.`, name, code)

	return s.sendEmail([]string{email}, subject, bodyText)
}

// SendWelcomeEmail отправляет приветственное письмо после успешной
// верификации. Письмо некритичное, вызывающие его ошибку игнорируют.
func (s *Service) SendWelcomeEmail(email, name string) error {
	subject := "Welcome to Novashelf!"
	bodyText := fmt.Sprintf(`Welcome to Novashelf, %s!

Your email has been successfully verified! You can now browse and discover
new books, add them to your personal library, start writing and publishing
your own stories and connect with other readers and authors.

Get started: %s/dashboard`, name, s.frontendURL)

	return s.sendEmail([]string{email}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
