package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kaifgrit/Rifakat/internal/config"
	"github.com/kaifgrit/Rifakat/internal/event"
	"github.com/kaifgrit/Rifakat/internal/reaper"
	"github.com/kaifgrit/Rifakat/pkg/database"
	"github.com/kaifgrit/Rifakat/pkg/health"
	pkgkafka "github.com/kaifgrit/Rifakat/pkg/kafka"
	"github.com/kaifgrit/Rifakat/pkg/tracing"
)

// ReaperServiceName labels the reaper's logs, traces and metrics.
const ReaperServiceName = "image-reaper"

// idempotencyTTL outlives any realistic redelivery of an orphaned event.
const idempotencyTTL = 7 * 24 * time.Hour

// ReaperApp consumes images.orphaned and retries the image host deletes.
type ReaperApp struct {
	cfg            *config.Config
	logger         *slog.Logger
	consumer       *pkgkafka.Consumer
	dlq            *pkgkafka.DLQProducer
	redis          *redis.Client
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewReaperApp creates the reaper. It needs Kafka and Redis.
func NewReaperApp(cfg *config.Config, logger *slog.Logger) (*ReaperApp, error) {
	if !cfg.EventsEnabled() {
		return nil, errors.New("KAFKA_BROKERS is required for the image reaper")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, ReaperServiceName, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	var undo unwind
	defer undo.run()
	undo.add(shutdownTracerStep(shutdownTracer, logger))

	healthHandler := health.NewHandler()

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	undo.add(func() { _ = redisClient.Close() })
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	images, err := newImageHost(cfg, healthHandler, logger)
	if err != nil {
		return nil, fmt.Errorf("init image host: %w", err)
	}

	dlq := pkgkafka.NewDLQProducer(pkgkafka.NewWriter(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)), logger)
	store := pkgkafka.NewRedisIdempotencyStore(redisClient, "rifakat:reaper", idempotencyTTL)
	handle := pkgkafka.IdempotentHandler(store, reaper.New(images, logger).Handle, logger)

	consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:    cfg.KafkaBrokers,
		GroupID:    cfg.ReaperGroupID,
		Topic:      event.TopicImagesOrphaned,
		MinBytes:   1,
		MaxBytes:   1 << 20,
		MaxRetries: cfg.ReaperMaxRetries,
	}, handle, logger, pkgkafka.WithDLQ(dlq))
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	r := chi.NewRouter()
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	undo.disarm()
	return &ReaperApp{
		cfg:      cfg,
		logger:   logger,
		consumer: consumer,
		dlq:      dlq,
		redis:    redisClient,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.ReaperHTTPPort),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run consumes until ctx is canceled.
func (a *ReaperApp) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("starting health server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		errCh <- a.consumer.Start(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	a.shutdown()
	return runErr
}

func (a *ReaperApp) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	if err := a.consumer.Close(); err != nil {
		a.logger.Error("consumer close error", slog.String("error", err.Error()))
	}
	if err := a.dlq.Close(); err != nil {
		a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}
	if err := a.shutdownTracer(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}
	a.logger.Info("image reaper stopped")
}
