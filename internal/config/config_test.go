package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INGEST_SEASON", "2025-26")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("default app env: got=%q want=%q", cfg.AppEnv, EnvDev)
	}
	if cfg.Season != "2025-26" {
		t.Fatalf("season: got=%q", cfg.Season)
	}
	if cfg.CycleInterval != time.Minute {
		t.Fatalf("default cycle interval: got=%s", cfg.CycleInterval)
	}
	if cfg.StalenessWindow != 5*time.Minute {
		t.Fatalf("default staleness window: got=%s", cfg.StalenessWindow)
	}
	if cfg.FetchWorkers != 4 || cfg.ComputeWorkers != 4 {
		t.Fatalf("default workers: got=%d/%d", cfg.FetchWorkers, cfg.ComputeWorkers)
	}
	if cfg.MinPlayCount != 300 {
		t.Fatalf("default min play count: got=%d", cfg.MinPlayCount)
	}
	if cfg.LiveFeed.BaseURL == "" || cfg.StatsFeed.BaseURL == "" {
		t.Fatal("feed base URLs must have defaults")
	}
	if !cfg.LiveFeed.CircuitEnabled {
		t.Fatal("circuit breaker must default to enabled")
	}
}

func TestLoad_SeasonRequired(t *testing.T) {
	t.Setenv("INGEST_SEASON", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without INGEST_SEASON")
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "invalid")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid APP_ENV")
	}
}

func TestLoad_FeedOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LIVE_FEED_BASE_URL", "https://live.example.com/feed")
	t.Setenv("LIVE_FEED_TIMEOUT", "3s")
	t.Setenv("LIVE_FEED_MAX_RETRIES", "5")
	t.Setenv("STATS_FEED_CIRCUIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.LiveFeed.BaseURL != "https://live.example.com/feed" {
		t.Fatalf("live base url: got=%q", cfg.LiveFeed.BaseURL)
	}
	if cfg.LiveFeed.Timeout != 3*time.Second {
		t.Fatalf("live timeout: got=%s", cfg.LiveFeed.Timeout)
	}
	if cfg.LiveFeed.MaxRetries != 5 {
		t.Fatalf("live retries: got=%d", cfg.LiveFeed.MaxRetries)
	}
	if cfg.StatsFeed.CircuitEnabled {
		t.Fatal("stats circuit breaker should be disabled by override")
	}
}

func TestLoad_InvalidDurationRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INGEST_CYCLE_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable INGEST_CYCLE_INTERVAL")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/123"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/123" {
		t.Fatalf("dsn from otlp headers: got=%q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeRequiresServerWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when PYROSCOPE_ENABLED=true without server address")
	}
}
