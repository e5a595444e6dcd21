package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"StockScraper/internal/app"
	"StockScraper/internal/server"
	"StockScraper/internal/telemetry"
	"StockScraper/pkg/config"
)

func main() {
	cfg, err := config.Load("config.yml")
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := telemetry.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracing(ctx, "stockscraper-server", cfg.Tracing.Endpoint, cfg.Tracing.Headers)
	if err != nil {
		log.Error("failed to set up tracing", "err", err)
		os.Exit(1)
	}
	defer shutdown(context.Background())

	if err := cfg.Validate(); err != nil {
		log.Warn("config incomplete, /getProducts will fail until it is fixed", "err", err)
	}

	application := app.New(cfg, log)
	defer application.Close()

	if err := server.Start(ctx, application, cfg.Server.Port, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
