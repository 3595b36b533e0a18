// Package app wires the catalog API, the image reaper and the search
// indexer from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kaifgrit/Rifakat/internal/auth"
	"github.com/kaifgrit/Rifakat/internal/config"
	"github.com/kaifgrit/Rifakat/internal/event"
	handler "github.com/kaifgrit/Rifakat/internal/handler/http"
	"github.com/kaifgrit/Rifakat/internal/search/elasticsearch"
	"github.com/kaifgrit/Rifakat/internal/service"
	"github.com/kaifgrit/Rifakat/pkg/database"
	"github.com/kaifgrit/Rifakat/pkg/health"
	pkgkafka "github.com/kaifgrit/Rifakat/pkg/kafka"
	"github.com/kaifgrit/Rifakat/pkg/middleware"
	"github.com/kaifgrit/Rifakat/pkg/tracing"
)

// App wires together all dependencies and runs the catalog API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	stores         *stores
	producer       *event.Producer
	httpServer     *http.Server
	stopBackground context.CancelFunc
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, handler.ServiceName, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	var undo unwind
	defer undo.run()
	undo.add(shutdownTracerStep(shutdownTracer, logger))
	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)

	healthHandler := health.NewHandler()

	repo, st, err := openProductRepository(ctx, cfg, handler.ServiceName, healthHandler, logger)
	if err != nil {
		return nil, err
	}
	undo.add(func() { st.close(logger) })

	images, err := newImageHost(cfg, healthHandler, logger)
	if err != nil {
		return nil, fmt.Errorf("init image host: %w", err)
	}

	// Kafka is optional; without brokers events are dropped.
	var producer *event.Producer
	if cfg.EventsEnabled() {
		kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		producer = event.NewProducer(kafkaProducer, logger)
		undo.add(func() { _ = producer.Close() })
		healthHandler.RegisterOptional("kafka", kafkaProducer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, catalog events are disabled")
	}

	productService := service.NewProductService(repo, images, producer, logger)

	// The search index is filled by cmd/indexer; the API only queries it.
	var searcher handler.ProductSearcher
	if cfg.SearchEnabled() {
		engine, err := elasticsearch.Open(cfg.Search, logger)
		if err != nil {
			return nil, fmt.Errorf("init search: %w", err)
		}
		searcher = engine
		healthHandler.RegisterOptional("elasticsearch", engine.Ping)
		logger.Info("product search enabled", slog.String("index", cfg.Search.Index))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := auth.NewAuthenticator(cfg.AdminUsername, cfg.AdminPasswordHash, jwtManager, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	bgCtx, stopBackground := context.WithCancel(context.Background())
	router := handler.NewRouter(bgCtx, productService, searcher, authenticator, jwtManager, healthHandler, logger, handler.RouterConfig{
		CORS:              corsCfg,
		LoginPerMinute:    cfg.LoginRateLimit,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	undo.disarm()
	return &App{
		cfg:            cfg,
		logger:         logger,
		stores:         st,
		producer:       producer,
		httpServer:     httpServer,
		stopBackground: stopBackground,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.stopBackground()

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	a.stores.close(a.logger)

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
