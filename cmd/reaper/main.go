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

	log := logger.New(app.ReaperServiceName, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting image reaper",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("group", cfg.ReaperGroupID),
		slog.String("image_host", cfg.ImageHost),
	)

	reaperApp, err := app.NewReaperApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize reaper: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return reaperApp.Run(ctx)
}
