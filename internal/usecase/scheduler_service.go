package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/courtwire/courtwire/internal/domain/event"
	"github.com/courtwire/courtwire/internal/platform/logging"
)

// DefaultStalenessWindow is the minimum elapsed time since the last fetch
// before a non-finalized event becomes refetch-eligible again.
const DefaultStalenessWindow = 5 * time.Minute

type SchedulerConfig struct {
	StalenessWindow time.Duration
}

// SchedulerService decides which events need a fetch this cycle. Selection
// itself is a pure query over catalog metadata; the service only adds the
// catalog read and logging around it.
type SchedulerService struct {
	events event.Repository
	cfg    SchedulerConfig
	logger *logging.Logger
}

func NewSchedulerService(events event.Repository, cfg SchedulerConfig, logger *logging.Logger) *SchedulerService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = DefaultStalenessWindow
	}

	return &SchedulerService{
		events: events,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *SchedulerService) SelectForSeason(ctx context.Context, season string) ([]event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.SelectForSeason")
	defer span.End()

	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if s.events == nil {
		return nil, fmt.Errorf("%w: event catalog is not configured", ErrDependencyUnavailable)
	}

	items, err := s.events.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("list events season=%s: %w", season, err)
	}

	selected := SelectEventsNeedingFetch(items, time.Now().UTC(), s.cfg.StalenessWindow)
	s.logger.DebugContext(ctx, "scheduler selected events",
		"season", season,
		"catalog_count", len(items),
		"selected_count", len(selected),
	)

	return selected, nil
}

// EventsNeedingFetch returns just the ids, for external orchestration.
func (s *SchedulerService) EventsNeedingFetch(ctx context.Context, season string) ([]string, error) {
	selected, err := s.SelectForSeason(ctx, season)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(selected))
	for _, item := range selected {
		out = append(out, item.ID)
	}
	return out, nil
}

// SelectEventsNeedingFetch applies the refetch rules:
//   - finalized events are always excluded,
//   - live events are selected when never fetched or stale,
//   - terminal-but-not-finalized events are selected when stale, or
//     unconditionally when they have no ingested data at all, regardless of
//     how old they are.
func SelectEventsNeedingFetch(items []event.Event, now time.Time, window time.Duration) []event.Event {
	if window <= 0 {
		window = DefaultStalenessWindow
	}

	out := make([]event.Event, 0, len(items))
	for _, item := range items {
		if item.Finalized() {
			continue
		}

		switch {
		case event.IsLiveStatus(item.Status):
			if eventIsStale(item, now, window) {
				out = append(out, item)
			}
		case event.IsFinalStatus(item.Status):
			if item.PlayCount == 0 || item.BoxRowCount == 0 {
				// Completeness beats rate-limiting: a final game still
				// missing data is selected no matter its age.
				out = append(out, item)
				continue
			}
			if eventIsStale(item, now, window) {
				out = append(out, item)
			}
		}
	}

	return out
}

func eventIsStale(item event.Event, now time.Time, window time.Duration) bool {
	last := item.LastFetchedAt()
	if last == nil {
		return true
	}
	return now.Sub(*last) > window
}
