// Package visitgate собирает основное HTTP-приложение системы пропусков:
// подключает хранилище, кеш, брокер сообщений и регистрирует маршруты.
package visitgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/visitgate/visitgate/internal/cache"
	"github.com/visitgate/visitgate/internal/config"
	"github.com/visitgate/visitgate/internal/lib/jwt"
	"github.com/visitgate/visitgate/internal/lib/rabbitmq"
	"github.com/visitgate/visitgate/internal/lib/visitday"
	"github.com/visitgate/visitgate/internal/migrations"
	"github.com/visitgate/visitgate/internal/qrimage"
	authservice "github.com/visitgate/visitgate/internal/services/auth"
	paymentservice "github.com/visitgate/visitgate/internal/services/payment"
	qrservice "github.com/visitgate/visitgate/internal/services/qr"
	visitorservice "github.com/visitgate/visitgate/internal/services/visitor"
	"github.com/visitgate/visitgate/internal/storage/repository"
)

// App представляет основное приложение системы пропусков.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = waitForDB(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	publisher := rabbitmq.NewPublisher(ch)

	clock, err := visitday.NewClock(cfg.Timezone)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	renderer := qrimage.NewClient(cfg.QRRendererURL)

	authService := authservice.New(db, jwtMaker)
	qrService := qrservice.New(db, renderer, publisher, clock, logger)
	paymentService := paymentservice.New(db, publisher, logger)
	visitorService := visitorservice.New(db, cacheRedis, clock, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, qrService, paymentService, visitorService, db)

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
		conn:   conn,
		ch:     ch,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
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
		closeResources(a.ch, a.conn, a.logger)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", "error", closeErr)
		}
		return err
	}
}
