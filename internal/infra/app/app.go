package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/config"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/database"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/kafka"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/mail"
	infraredis "github.com/nenecchuu/kaef-hris-sub002/internal/infra/redis"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/telemetry"
	repopostgres "github.com/nenecchuu/kaef-hris-sub002/internal/repository/postgres"
	reporedis "github.com/nenecchuu/kaef-hris-sub002/internal/repository/redis"
	"github.com/nenecchuu/kaef-hris-sub002/internal/transport/http/handlers"
	"github.com/nenecchuu/kaef-hris-sub002/internal/transport/http/routes"
	"github.com/nenecchuu/kaef-hris-sub002/internal/usecase"
)

// App owns every long-lived component and their shutdown order.
type App struct {
	cfg    *config.AppConfig
	logger *zap.Logger

	pool        *pgxpool.Pool
	redisClient *infraredis.Client
	producer    *kafka.Producer
	consumer    *kafka.ResetConsumer
	localQueue  *kafka.InProcessResetQueue

	server          *http.Server
	tracingShutdown func(context.Context) error
}

// New wires the full dependency graph.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	tracingShutdown, err := telemetry.InitTracing(ctx, cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracingShutdown = tracingShutdown

	metrics := telemetry.NewProvider(cfg.Telemetry.MetricsNamespace)

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	a.pool = pool

	redisClient, err := infraredis.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, err
	}
	a.redisClient = redisClient

	auditRepo := repopostgres.NewAuditRepository(pool)
	userRepo := repopostgres.NewUserRepository(pool)
	tokenRepo := repopostgres.NewTokenRepository(pool)

	rateLimitStore := reporedis.NewRateLimitStore(redisClient.Client(), "hris:ratelimit")
	pendingCache := reporedis.NewPendingResetCache(redisClient.Client(), cfg.Redis.PendingResetPrefix)

	var mailer port.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP, logger)
	} else {
		logger.Warn("no SMTP host configured, using logging mailer")
		mailer = mail.NewLoggingMailer(logger)
	}

	kafkaEnabled := len(cfg.Kafka.Brokers) > 0

	var events port.EventPublisher
	if kafkaEnabled {
		producer, err := kafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return nil, err
		}
		a.producer = producer
		events = kafka.NewEventPublisher(producer, cfg.Kafka.TopicPrefix, metrics, logger)
	} else {
		logger.Warn("no Kafka brokers configured, using stub event publisher")
		events = kafka.NewStubEventPublisher(logger)
	}

	exportLocation, err := time.LoadLocation(cfg.Export.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load export time zone %q: %w", cfg.Export.TimeZone, err)
	}

	auditService := usecase.NewAuditService(auditRepo, userRepo, events, metrics, logger, exportLocation)
	resetService := usecase.NewPasswordResetService(
		userRepo, tokenRepo, mailer, events, pendingCache, auditService,
		metrics, logger,
		cfg.App.BaseURL, cfg.Reset.TokenTTL, cfg.Redis.PendingResetTTL,
	)

	if kafkaEnabled {
		resetService.SetQueue(kafka.NewResetQueue(a.producer, cfg.Kafka.TopicPrefix))

		consumer, err := kafka.NewResetConsumer(cfg.Kafka, resetService, logger)
		if err != nil {
			return nil, err
		}
		a.consumer = consumer
	} else {
		localQueue := kafka.NewInProcessResetQueue(resetService, cfg.Reset.QueueBuffer, metrics, logger)
		a.localQueue = localQueue
		resetService.SetQueue(localQueue)
	}

	router := routes.Setup(routes.Dependencies{
		Config:         cfg,
		Logger:         logger,
		Metrics:        metrics,
		RateLimit:      rateLimitStore,
		Health:         handlers.NewHealthHandler(pool, redisClient),
		Audit:          handlers.NewAuditHandler(auditService, logger),
		Password:       handlers.NewPasswordHandler(resetService, userRepo, logger),
		PendingChecker: resetService,
	})

	a.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and, when configured, the reset consumer. It
// blocks until ctx is cancelled, then shuts everything down in order.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	defer cancelConsumer()

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Run(consumerCtx); err != nil {
				errCh <- fmt.Errorf("reset consumer: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("component failed, shutting down", zap.Error(err))
		return errors.Join(err, a.shutdown())
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error

	// Stop intake first, then drain the workers, then close the stores.
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close reset consumer: %w", err))
		}
	}
	if a.localQueue != nil {
		a.localQueue.Shutdown()
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
