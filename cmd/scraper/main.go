package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockScraper/internal/app"
	"StockScraper/internal/telemetry"
	"StockScraper/pkg/config"
)

const serviceName = "stockscraper"

var (
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	shutdown   func(context.Context) error

	setupTracing = telemetry.SetupTracing
)

var rootCmd = &cobra.Command{
	Use:           "stockscraper",
	Short:         "stockscraper watches a product catalog for stock changes.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logger = telemetry.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		slog.SetDefault(logger)

		shutdown, err = setupTracing(cmd.Context(), serviceName, cfg.Tracing.Endpoint, cfg.Tracing.Headers)
		if err != nil {
			return fmt.Errorf("setup tracing: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "path to the YAML config file")
}

// newApp builds the application from the loaded config.
func newApp() *app.App {
	return app.New(cfg, logger)
}

func main() {
	os.Exit(execute())
}

// execute runs the command tree and flushes traces afterwards, whether or
// not the command failed.
func execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer flushTraces()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func flushTraces() {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "flush traces:", err)
	}
}
