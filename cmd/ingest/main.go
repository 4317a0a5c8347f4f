package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtwire/courtwire/internal/app"
	"github.com/courtwire/courtwire/internal/config"
	"github.com/courtwire/courtwire/internal/observability"
	"github.com/courtwire/courtwire/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init profiling", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Error("profiler shutdown failed", "error", err)
		}
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("close app", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("ingest loop starting",
		"season", cfg.Season,
		"cycle_interval", cfg.CycleInterval.String(),
		"staleness_window", cfg.StalenessWindow.String(),
	)

	runCycle(ctx, application, cfg, logger)

	ticker := time.NewTicker(cfg.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("ingest loop stopped")
			return
		case <-ticker.C:
			runCycle(ctx, application, cfg, logger)
		}
	}
}

func runCycle(ctx context.Context, application *app.App, cfg config.Config, logger *logging.Logger) {
	if ctx.Err() != nil {
		return
	}

	result, err := application.Pipeline.RunCycle(ctx, cfg.Season)
	if err != nil {
		logger.ErrorContext(ctx, "ingestion cycle failed",
			"season", cfg.Season,
			"error", err,
		)
		return
	}

	logger.InfoContext(ctx, "ingestion cycle completed",
		"season", result.Season,
		"selected", result.Selected,
		"empty", result.Empty,
		"finalized", len(result.Finalized),
		"duration_ms", result.Duration.Milliseconds(),
	)
}
