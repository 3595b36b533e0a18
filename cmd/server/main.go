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
	handler "github.com/kaifgrit/Rifakat/internal/handler/http"
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

	log := logger.New(handler.ServiceName, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting catalog API",
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("store", cfg.CatalogStore),
		slog.String("image_host", cfg.ImageHost),
		slog.Bool("cache", cfg.CacheEnabled),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("run application: %w", err)
	}

	log.Info("catalog API stopped")
	return nil
}
