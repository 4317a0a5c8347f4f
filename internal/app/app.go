package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/courtwire/courtwire/external/liveapi"
	"github.com/courtwire/courtwire/external/statsapi"
	"github.com/courtwire/courtwire/internal/config"
	"github.com/courtwire/courtwire/internal/infrastructure/repository/postgres"
	"github.com/courtwire/courtwire/internal/platform/logging"
	"github.com/courtwire/courtwire/internal/platform/resilience"
	"github.com/courtwire/courtwire/internal/usecase"
)

// App wires the full ingestion pipeline against Postgres and the two
// upstream feeds. Construct it once at startup and drive cycles through
// Pipeline.
type App struct {
	Pipeline  *usecase.PipelineService
	Ingestion *usecase.IngestionService
	Scheduler *usecase.SchedulerService
	Validator *usecase.ValidatorService

	db     *sqlx.DB
	logger *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	eventRepo := postgres.NewEventRepository(db, logger)
	playRepo := postgres.NewPlayRepository(db)
	stateRepo := postgres.NewGameStateRepository(db)
	boxRepo := postgres.NewBoxscoreRepository(db)
	rawRepo := postgres.NewRawPayloadRepository(db)

	liveFeed := liveapi.NewClient(liveapi.ClientConfig{
		BaseURL:        cfg.LiveFeed.BaseURL,
		Timeout:        cfg.LiveFeed.Timeout,
		MaxRetries:     cfg.LiveFeed.MaxRetries,
		Logger:         logger,
		CircuitBreaker: feedBreakerConfig(cfg.LiveFeed),
	})
	statsFeed := statsapi.NewClient(statsapi.ClientConfig{
		BaseURL:        cfg.StatsFeed.BaseURL,
		Timeout:        cfg.StatsFeed.Timeout,
		MaxRetries:     cfg.StatsFeed.MaxRetries,
		Logger:         logger,
		CircuitBreaker: feedBreakerConfig(cfg.StatsFeed),
	})

	scheduler := usecase.NewSchedulerService(eventRepo, usecase.SchedulerConfig{
		StalenessWindow: cfg.StalenessWindow,
	}, logger)
	fetcher := usecase.NewFetchService(liveFeed, statsFeed, usecase.FetchConfig{
		Workers: cfg.FetchWorkers,
		Timeout: cfg.FetchTimeout,
	}, logger)
	ingestion := usecase.NewIngestionService(eventRepo, playRepo, stateRepo, boxRepo, rawRepo, logger)
	validator := usecase.NewValidatorService(eventRepo, playRepo, stateRepo, boxRepo, usecase.ValidatorConfig{
		StalenessWindow: cfg.StalenessWindow,
		MinPlayCount:    cfg.MinPlayCount,
	}, logger)
	pipeline := usecase.NewPipelineService(scheduler, fetcher, ingestion, validator, usecase.PipelineConfig{
		ComputeWorkers: cfg.ComputeWorkers,
	}, logger)

	return &App{
		Pipeline:  pipeline,
		Ingestion: ingestion,
		Scheduler: scheduler,
		Validator: validator,
		db:        db,
		logger:    logger,
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)

	return db, nil
}

func feedBreakerConfig(feed config.FeedConfig) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          feed.CircuitEnabled,
		FailureThreshold: feed.CircuitFailureCount,
		OpenTimeout:      feed.CircuitOpenTimeout,
		HalfOpenMaxReq:   feed.CircuitHalfOpenMaxReq,
	}
}
