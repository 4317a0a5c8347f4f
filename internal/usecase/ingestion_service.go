package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/courtwire/courtwire/internal/domain/boxscore"
	"github.com/courtwire/courtwire/internal/domain/event"
	"github.com/courtwire/courtwire/internal/domain/gamestate"
	"github.com/courtwire/courtwire/internal/domain/ingest"
	"github.com/courtwire/courtwire/internal/domain/play"
	"github.com/courtwire/courtwire/internal/domain/rawpayload"
	"github.com/courtwire/courtwire/internal/platform/logging"
)

// IngestionService is the single write path into the store. Every call is
// idempotent and reports what actually changed; storage failures surface to
// the caller, which decides whether to abort the cycle or continue with the
// remaining events.
type IngestionService struct {
	events    event.Repository
	plays     play.Repository
	states    gamestate.Repository
	boxscores boxscore.Repository
	raw       rawpayload.Repository
	logger    *logging.Logger
}

func NewIngestionService(
	events event.Repository,
	plays play.Repository,
	states gamestate.Repository,
	boxscores boxscore.Repository,
	raw rawpayload.Repository,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &IngestionService{
		events:    events,
		plays:     plays,
		states:    states,
		boxscores: boxscores,
		raw:       raw,
		logger:    logger,
	}
}

func (s *IngestionService) UpsertEvents(ctx context.Context, items []event.Event) (ingest.Counts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertEvents")
	defer span.End()

	counts, err := s.events.UpsertMany(ctx, items)
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("upsert events: %w", err)
	}
	return counts, nil
}

// PersistPlays replaces the event's plays and reconstructed states in strict
// sequence order. States are written only after the plays they derive from.
func (s *IngestionService) PersistPlays(
	ctx context.Context,
	eventID string,
	plays []play.NormalizedPlay,
	states []gamestate.GameState,
) (ingest.Counts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.PersistPlays")
	defer span.End()

	var counts ingest.Counts

	playCounts, err := s.plays.ReplaceForEvent(ctx, eventID, plays)
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("replace plays event=%s: %w", eventID, err)
	}
	counts.Merge(playCounts)

	stateCounts, err := s.states.ReplaceForEvent(ctx, eventID, states)
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("replace states event=%s: %w", eventID, err)
	}
	counts.Merge(stateCounts)

	s.logger.DebugContext(ctx, "persisted play sequence",
		"event_id", eventID,
		"plays", len(plays),
		"states", len(states),
		"counts", counts.String(),
	)

	return counts, nil
}

func (s *IngestionService) PersistBoxscore(
	ctx context.Context,
	eventID string,
	players []boxscore.PlayerLine,
	teams []boxscore.TeamLine,
) (ingest.Counts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.PersistBoxscore")
	defer span.End()

	counts, err := s.boxscores.ReplaceForEvent(ctx, eventID, players, teams)
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("replace boxscore event=%s: %w", eventID, err)
	}
	return counts, nil
}

// RecordFetchAttempt stamps freshness for one feed. Called for every fetch
// attempt in a cycle, whether or not it produced data.
func (s *IngestionService) RecordFetchAttempt(ctx context.Context, eventID string, kind event.FetchKind, at time.Time) error {
	if err := s.events.MarkFetchAttempt(ctx, eventID, kind, at.UTC()); err != nil {
		return fmt.Errorf("mark fetch attempt event=%s kind=%s: %w", eventID, kind, err)
	}
	return nil
}

func (s *IngestionService) StoreRawPayloads(ctx context.Context, items []rawpayload.Payload) error {
	if len(items) == 0 || s.raw == nil {
		return nil
	}
	if err := s.raw.UpsertMany(ctx, items); err != nil {
		return fmt.Errorf("upsert raw payloads: %w", err)
	}
	return nil
}
