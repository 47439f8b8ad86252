// Package notifier собирает воркер рассылки уведомлений: подключение
// к брокеру событий, хранилищу и цикл потребления очереди релизов глав.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/novashelf/novashelf/internal/config"
	"github.com/novashelf/novashelf/internal/lib/rabbitmq"
	notificationservice "github.com/novashelf/novashelf/internal/services/notification"
	notifierservice "github.com/novashelf/novashelf/internal/services/notifier"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// App воркер рассылки уведомлений о новых главах.
type App struct {
	logger  *slog.Logger
	db      *repository.Storage
	conn    *amqp.Connection
	ch      *amqp.Channel
	service *notifierservice.Service
}

// New инициализирует зависимости воркера.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEventQueues())
	if err != nil {
		return nil, err
	}

	notificationService := notificationservice.New(db, db, logger)
	service := notifierservice.New(db, notificationService, logger)

	return &App{
		logger:  logger,
		db:      db,
		conn:    conn,
		ch:      ch,
		service: service,
	}, nil
}

// Run потребляет очередь релизов глав до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("notifier worker starting",
		slog.String("queue", rabbitmq.ChapterReleaseQueue))

	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.ChapterReleaseQueue, func(body []byte) error {
		return a.service.HandleChapterRelease(ctx, body)
	})
	if err != nil {
		a.logger.Error("failed to start chapter release consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier worker shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	a.db.DB.Close()

	return nil
}
