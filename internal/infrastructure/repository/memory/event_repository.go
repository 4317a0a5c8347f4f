package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/courtwire/courtwire/internal/domain/event"
	"github.com/courtwire/courtwire/internal/domain/ingest"
	"github.com/courtwire/courtwire/internal/usecase"
)

// EventRepository keeps the catalog in process memory. Read-side aggregates
// are filled in from the sibling play and boxscore repositories when wired.
type EventRepository struct {
	mu    sync.RWMutex
	items map[string]event.Event

	// playCounter / boxCounter supply the read-side aggregates; nil counters
	// leave them at zero.
	playCounter func(eventID string) int
	boxCounter  func(eventID string) int
}

func NewEventRepository() *EventRepository {
	return &EventRepository{items: make(map[string]event.Event)}
}

// WireAggregates connects the catalog's read-side counters to the stores
// that own the underlying rows.
func (r *EventRepository) WireAggregates(plays *PlayRepository, boxscores *BoxscoreRepository) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if plays != nil {
		r.playCounter = plays.countByEvent
	}
	if boxscores != nil {
		r.boxCounter = boxscores.countPlayersByEvent
	}
}

func (r *EventRepository) ListBySeason(_ context.Context, season string) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0, len(r.items))
	for _, item := range r.items {
		if item.Season != season {
			continue
		}
		out = append(out, r.withAggregates(item))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *EventRepository) Get(_ context.Context, id string) (event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return event.Event{}, fmt.Errorf("%w: event %s", usecase.ErrNotFound, id)
	}
	return r.withAggregates(item), nil
}

func (r *EventRepository) UpsertMany(_ context.Context, items []event.Event) (ingest.Counts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var counts ingest.Counts
	for _, item := range items {
		item.Status = event.NormalizeStatus(item.Status)
		item.ScheduledAt = item.ScheduledAt.UTC()

		existing, ok := r.items[item.ID]
		if !ok {
			item.BoxFetchedAt = nil
			item.PBPFetchedAt = nil
			item.BoxFinalized = false
			item.PBPFinalized = false
			r.items[item.ID] = item
			counts.Added++
			continue
		}

		if existing.Season == item.Season &&
			existing.ScheduledAt.Equal(item.ScheduledAt) &&
			existing.HomeTeam == item.HomeTeam &&
			existing.AwayTeam == item.AwayTeam &&
			existing.Status == item.Status {
			counts.Unchanged++
			continue
		}

		existing.Season = item.Season
		existing.ScheduledAt = item.ScheduledAt
		existing.HomeTeam = item.HomeTeam
		existing.AwayTeam = item.AwayTeam
		existing.Status = item.Status
		r.items[item.ID] = existing
		counts.Updated++
	}

	return counts, nil
}

func (r *EventRepository) MarkFetchAttempt(_ context.Context, eventID string, kind event.FetchKind, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[eventID]
	if !ok {
		return fmt.Errorf("%w: event %s", usecase.ErrNotFound, eventID)
	}

	stamp := at.UTC()
	switch kind {
	case event.FetchBoxscore:
		item.BoxFetchedAt = &stamp
	case event.FetchPlayByPlay:
		item.PBPFetchedAt = &stamp
	default:
		return fmt.Errorf("%w: unknown fetch kind %q", usecase.ErrInvalidInput, kind)
	}

	r.items[eventID] = item
	return nil
}

func (r *EventRepository) SetBoxscoreFinalized(_ context.Context, eventID string) error {
	return r.setFlag(eventID, func(item *event.Event) {
		item.BoxFinalized = true
	})
}

func (r *EventRepository) SetPlayByPlayFinalized(_ context.Context, eventID string) error {
	return r.setFlag(eventID, func(item *event.Event) {
		item.PBPFinalized = true
	})
}

func (r *EventRepository) setFlag(eventID string, apply func(*event.Event)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[eventID]
	if !ok {
		return fmt.Errorf("%w: event %s", usecase.ErrNotFound, eventID)
	}
	apply(&item)
	r.items[eventID] = item
	return nil
}

func (r *EventRepository) withAggregates(item event.Event) event.Event {
	if r.playCounter != nil {
		item.PlayCount = r.playCounter(item.ID)
	}
	if r.boxCounter != nil {
		item.BoxRowCount = r.boxCounter(item.ID)
	}
	return item
}
