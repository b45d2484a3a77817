package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/ecb_rates_pipeline/internal/adapters/ecb"
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/services"
	"github.com/SscSPs/ecb_rates_pipeline/internal/repositories/database/pgsql"
	"github.com/SscSPs/ecb_rates_pipeline/internal/runlog"
	"github.com/SscSPs/ecb_rates_pipeline/pkg/config"
	"github.com/SscSPs/ecb_rates_pipeline/pkg/database"
	"github.com/SscSPs/ecb_rates_pipeline/pkg/logger"
	"github.com/SscSPs/ecb_rates_pipeline/pkg/metrics"
)

const (
	metricsJob  = "ecb_rates_pipeline"
	pushTimeout = 10 * time.Second
)

func main() {
	os.Exit(run())
}

// run executes one pipeline pass and returns the process exit code.
func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger, _ := logger.New(false, "info")
		bootLogger.Error("Failed to load config", slog.String("error", err.Error()))
		return 1
	}

	log, syncLogger := logger.New(cfg.IsProduction, cfg.LogLevel)
	defer func() { _ = syncLogger() }()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		return 1
	}
	defer database.ClosePgxPool(dbPool, log)
	log.Info("Database connection pool established.")

	// Migrations run inside the store phase so a failed fetch leaves the database untouched.
	var migrate func(ctx context.Context) error
	switch {
	case cfg.MigrationsApply():
		migrate = func(ctx context.Context) error {
			log.Info("Running database migrations...")
			return database.RunMigrations(ctx, cfg.DatabaseURL, log)
		}
	case cfg.RunMigrations:
		log.Info("Custom rate table configured, skipping migrations", slog.String("rates_table", cfg.Store.RatesTable))
	}

	pipelineMetrics := metrics.NewPipelineMetrics()
	fetcher := ecb.NewFetcher(cfg.Feed, nil, log)
	repos := pgsql.NewRepositoryProvider(dbPool, cfg)
	container := services.NewServiceContainer(cfg, fetcher, repos, migrate, pipelineMetrics)

	runCtx, runID := runlog.Start(ctx, log)
	log.Info("Starting pipeline run",
		slog.String("run_id", runID),
		slog.String("feed_url", cfg.Feed.URL),
		slog.String("rates_table", cfg.Store.RatesTable),
		slog.String("orders_table", cfg.Orders.Table),
	)
	result, runErr := container.Pipeline.Run(runCtx)

	if cfg.PushgatewayURL != "" {
		// Push even when the run was interrupted.
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		if err := pipelineMetrics.Push(pushCtx, cfg.PushgatewayURL, metricsJob); err != nil {
			log.Warn("Failed to push metrics", slog.String("error", err.Error()))
		}
		cancel()
	}

	if runErr != nil {
		log.Error("Pipeline finished with errors",
			slog.String("run_id", runID),
			slog.Int("rates_stored", result.RatesStored),
			slog.Int("orders_converted", result.Conversion.Converted),
			slog.Int("orders_failed", len(result.Conversion.Failures)),
		)
		return 1
	}
	return 0
}
