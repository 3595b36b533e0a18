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
	"github.com/kaifgrit/Rifakat/internal/search"
	"github.com/kaifgrit/Rifakat/internal/search/elasticsearch"
	"github.com/kaifgrit/Rifakat/pkg/database"
	"github.com/kaifgrit/Rifakat/pkg/health"
	pkgkafka "github.com/kaifgrit/Rifakat/pkg/kafka"
	"github.com/kaifgrit/Rifakat/pkg/tracing"
)

// IndexerServiceName labels the search indexer's logs, traces and metrics.
const IndexerServiceName = "search-indexer"

// indexedTopics are the product lifecycle topics mirrored into the index.
var indexedTopics = []string{
	event.TopicProductCreated,
	event.TopicProductUpdated,
	event.TopicProductDeleted,
}

// IndexerApp keeps the search index in step with product events.
type IndexerApp struct {
	cfg            *config.Config
	logger         *slog.Logger
	consumers      []*pkgkafka.Consumer
	dlq            *pkgkafka.DLQProducer
	redis          *redis.Client
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewIndexerApp creates the indexer. It needs Kafka, Redis and Elasticsearch.
func NewIndexerApp(cfg *config.Config, logger *slog.Logger) (*IndexerApp, error) {
	if !cfg.EventsEnabled() {
		return nil, errors.New("KAFKA_BROKERS is required for the search indexer")
	}
	if !cfg.SearchEnabled() {
		return nil, errors.New("ELASTICSEARCH_URLS is required for the search indexer")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, IndexerServiceName, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	var undo unwind
	defer undo.run()
	undo.add(shutdownTracerStep(shutdownTracer, logger))

	healthHandler := health.NewHandler()

	engine, err := elasticsearch.New(ctx, cfg.Search, logger)
	if err != nil {
		return nil, fmt.Errorf("init search index: %w", err)
	}
	healthHandler.Register("elasticsearch", engine.Ping)

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	undo.add(func() { _ = redisClient.Close() })
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	dlq := pkgkafka.NewDLQProducer(pkgkafka.NewWriter(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)), logger)
	store := pkgkafka.NewRedisIdempotencyStore(redisClient, "rifakat:indexer", idempotencyTTL)
	handle := pkgkafka.IdempotentHandler(store, search.NewIndexer(engine, logger).Handle, logger)

	consumers := make([]*pkgkafka.Consumer, 0, len(indexedTopics))
	for _, topic := range indexedTopics {
		consumers = append(consumers, pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers:    cfg.KafkaBrokers,
			GroupID:    cfg.IndexerGroupID,
			Topic:      topic,
			MinBytes:   1,
			MaxBytes:   1 << 20,
			MaxRetries: cfg.IndexerMaxRetries,
		}, handle, logger, pkgkafka.WithDLQ(dlq)))
	}
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	r := chi.NewRouter()
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	undo.disarm()
	return &IndexerApp{
		cfg:       cfg,
		logger:    logger,
		consumers: consumers,
		dlq:       dlq,
		redis:     redisClient,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.IndexerHTTPPort),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run consumes every product topic until ctx is canceled.
func (a *IndexerApp) Run(ctx context.Context) error {
	errCh := make(chan error, len(a.consumers)+1)

	go func() {
		a.logger.Info("starting health server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	for _, c := range a.consumers {
		go func() {
			errCh <- c.Start(ctx)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	a.shutdown()
	return runErr
}

func (a *IndexerApp) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("consumer close error", slog.String("error", err.Error()))
		}
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
	a.logger.Info("search indexer stopped")
}
