package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kaifgrit/Rifakat/internal/app"
	"github.com/kaifgrit/Rifakat/internal/config"
	"github.com/kaifgrit/Rifakat/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(app.IndexerServiceName, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting search indexer",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.Any("elasticsearch", cfg.Search.URLs),
		slog.String("index", cfg.Search.Index),
	)

	indexerApp, err := app.NewIndexerApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize indexer: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return indexerApp.Run(ctx)
}
