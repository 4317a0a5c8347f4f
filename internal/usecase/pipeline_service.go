package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/courtwire/courtwire/internal/domain/event"
	"github.com/courtwire/courtwire/internal/domain/ingest"
	"github.com/courtwire/courtwire/internal/domain/play"
	"github.com/courtwire/courtwire/internal/platform/logging"
)

type PipelineConfig struct {
	// ComputeWorkers bounds the normalize/reconstruct/persist stage. Each
	// per-event fold owns its accumulator, so workers share nothing.
	ComputeWorkers int
}

// EventOutcome is the per-event result of one cycle. A failed event carries
// its error here instead of suppressing the rest of the batch.
type EventOutcome struct {
	EventID    string        `json:"event_id"`
	Source     string        `json:"source,omitempty"`
	Plays      int           `json:"plays"`
	States     int           `json:"states"`
	PlayCounts ingest.Counts `json:"play_counts"`
	BoxCounts  ingest.Counts `json:"box_counts"`
	Error      string        `json:"error,omitempty"`
}

type CycleResult struct {
	Season     string           `json:"season"`
	Selected   int              `json:"selected"`
	Empty      int              `json:"empty"`
	Outcomes   []EventOutcome   `json:"outcomes"`
	Finalized  []string         `json:"finalized"`
	Validation ValidationResult `json:"validation"`
	Duration   time.Duration    `json:"duration"`
}

// PipelineService composes one ingestion cycle:
// schedule -> fetch -> normalize -> reconstruct -> validate -> persist.
type PipelineService struct {
	scheduler *SchedulerService
	fetcher   *FetchService
	ingestion *IngestionService
	validator *ValidatorService
	cfg       PipelineConfig
	logger    *logging.Logger
}

func NewPipelineService(
	scheduler *SchedulerService,
	fetcher *FetchService,
	ingestion *IngestionService,
	validator *ValidatorService,
	cfg PipelineConfig,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ComputeWorkers <= 0 {
		cfg.ComputeWorkers = 4
	}

	return &PipelineService{
		scheduler: scheduler,
		fetcher:   fetcher,
		ingestion: ingestion,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *PipelineService) RunCycle(ctx context.Context, season string) (CycleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.RunCycle")
	defer span.End()

	start := time.Now()

	selected, err := s.scheduler.SelectForSeason(ctx, season)
	if err != nil {
		return CycleResult{}, err
	}

	result := CycleResult{
		Season:   season,
		Selected: len(selected),
		Outcomes: make([]EventOutcome, 0, len(selected)),
	}
	if len(selected) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	fetched, err := s.fetcher.FetchEvents(ctx, selected)
	if err != nil {
		return CycleResult{}, err
	}

	// Freshness reflects fetch recency, not content delta: stamp every
	// attempted event before looking at what came back.
	now := time.Now().UTC()
	for _, item := range selected {
		if err := s.ingestion.RecordFetchAttempt(ctx, item.ID, event.FetchPlayByPlay, now); err != nil {
			return CycleResult{}, err
		}
		if err := s.ingestion.RecordFetchAttempt(ctx, item.ID, event.FetchBoxscore, now); err != nil {
			return CycleResult{}, err
		}
	}

	workers := pool.NewWithResults[EventOutcome]().WithMaxGoroutines(s.cfg.ComputeWorkers)
	for _, item := range selected {
		item := item
		workers.Go(func() EventOutcome {
			return s.processEvent(ctx, item, fetched[item.ID])
		})
	}
	outcomes := workers.Wait()

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].EventID < outcomes[j].EventID
	})
	result.Outcomes = outcomes

	eventIDs := make([]string, 0, len(selected))
	for _, item := range selected {
		eventIDs = append(eventIDs, item.ID)
	}
	sort.Strings(eventIDs)

	for _, outcome := range outcomes {
		if outcome.Plays == 0 && outcome.BoxCounts.Total() == 0 {
			result.Empty++
		}
	}

	validation, err := s.validator.Validate(ctx, eventIDs)
	if err != nil {
		return CycleResult{}, err
	}
	result.Validation = validation

	finalized, err := s.validator.FinalizeEvents(ctx, eventIDs)
	if err != nil {
		return CycleResult{}, err
	}
	result.Finalized = finalized

	result.Duration = time.Since(start)
	s.logger.InfoContext(ctx, "ingestion cycle finished",
		"season", season,
		"selected", result.Selected,
		"empty", result.Empty,
		"finalized", len(result.Finalized),
		"validation", validation.Summary(),
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

func (s *PipelineService) processEvent(ctx context.Context, item event.Event, fetch FetchResult) EventOutcome {
	outcome := EventOutcome{
		EventID: item.ID,
		Source:  fetch.Source,
	}

	if err := s.ingestion.StoreRawPayloads(ctx, fetch.Payloads); err != nil {
		s.logger.WarnContext(ctx, "raw payload retention failed",
			"event_id", item.ID,
			"error", err,
		)
	}

	normalized := NormalizePlays(item.ID, fetch.RawPlays)
	states := ReconstructStates(normalized)
	outcome.Plays = len(normalized)
	outcome.States = len(states)

	playCounts, err := s.ingestion.PersistPlays(ctx, item.ID, normalized, states)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.PlayCounts = playCounts

	boxCounts, err := s.ingestion.PersistBoxscore(ctx, item.ID, fetch.PlayerBox, fetch.TeamBox)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.BoxCounts = boxCounts

	return outcome
}

// FetchAndNormalize exposes the fetch+normalize stages to external
// orchestration: one canonical sequence per event, keyed by event id, with
// failed events present as empty sequences.
func (s *PipelineService) FetchAndNormalize(ctx context.Context, events []event.Event) (map[string][]play.NormalizedPlay, error) {
	if len(events) == 0 {
		return map[string][]play.NormalizedPlay{}, nil
	}

	fetched, err := s.fetcher.FetchEvents(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("fetch batch of %d events: %w", len(events), err)
	}

	out := make(map[string][]play.NormalizedPlay, len(fetched))
	for eventID, fetch := range fetched {
		out[eventID] = NormalizePlays(eventID, fetch.RawPlays)
	}
	return out, nil
}
