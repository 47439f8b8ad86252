// Package novashelf собирает основное приложение: хранилище, кэш,
// брокер событий, бизнес-сервисы и HTTP-сервер.
package novashelf

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/novashelf/novashelf/internal/cache"
	"github.com/novashelf/novashelf/internal/config"
	"github.com/novashelf/novashelf/internal/lib/jwt"
	"github.com/novashelf/novashelf/internal/lib/rabbitmq"
	libsmtp "github.com/novashelf/novashelf/internal/lib/smtp"
	"github.com/novashelf/novashelf/internal/migrations"
	"github.com/novashelf/novashelf/internal/paymentprovider"
	authservice "github.com/novashelf/novashelf/internal/services/auth"
	bookservice "github.com/novashelf/novashelf/internal/services/book"
	chapterservice "github.com/novashelf/novashelf/internal/services/chapter"
	commentservice "github.com/novashelf/novashelf/internal/services/comment"
	libraryservice "github.com/novashelf/novashelf/internal/services/library"
	notificationservice "github.com/novashelf/novashelf/internal/services/notification"
	paymentservice "github.com/novashelf/novashelf/internal/services/payment"
	reviewservice "github.com/novashelf/novashelf/internal/services/review"
	senderservice "github.com/novashelf/novashelf/internal/services/sender"
	userservice "github.com/novashelf/novashelf/internal/services/user"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// App основное приложение сервиса.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

// New инициализирует все зависимости и возвращает готовое приложение.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetEventQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	transport := libsmtp.NewTransport(cfg.SMTP, logger)
	mailer := senderservice.New(transport, cfg.FrontendURL, logger)
	providerClient := paymentprovider.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	authService := authservice.New(db, mailer, jwtMaker, logger)
	bookService := bookservice.New(db, cacheRedis, logger)
	chapterService := chapterservice.New(db, publisher, logger)
	reviewService := reviewservice.New(db, logger)
	libraryService := libraryservice.New(db, logger)
	notificationService := notificationservice.New(db, db, logger)
	commentService := commentservice.New(db, notificationService, logger)
	userService := userservice.New(db, notificationService, logger)
	paymentService := paymentservice.New(providerClient, db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, &Services{
		Storage:      db,
		JWTMaker:     jwtMaker,
		Auth:         authService,
		Book:         bookService,
		Chapter:      chapterService,
		Review:       reviewService,
		Comment:      commentService,
		Library:      libraryService,
		Notification: notificationService,
		User:         userService,
		Payment:      paymentService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		amqp:   amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и корректно останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		_ = a.amqp.Close()
		return err
	}
}
