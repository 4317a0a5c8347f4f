package memory

import (
	"context"
	"sync"

	"github.com/courtwire/courtwire/internal/domain/ingest"
	"github.com/courtwire/courtwire/internal/domain/play"
)

type PlayRepository struct {
	mu    sync.RWMutex
	items map[string][]play.NormalizedPlay
}

func NewPlayRepository() *PlayRepository {
	return &PlayRepository{items: make(map[string][]play.NormalizedPlay)}
}

func (r *PlayRepository) ReplaceForEvent(_ context.Context, eventID string, items []play.NormalizedPlay) (ingest.Counts, error) {
	var counts ingest.Counts
	if len(items) == 0 {
		return counts, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existingByIndex := make(map[int]play.NormalizedPlay, len(r.items[eventID]))
	for _, row := range r.items[eventID] {
		existingByIndex[row.SequenceIndex] = row
	}

	next := make([]play.NormalizedPlay, 0, len(items))
	for _, item := range items {
		item.EventID = eventID
		next = append(next, item)

		prior, ok := existingByIndex[item.SequenceIndex]
		switch {
		case !ok:
			counts.Added++
		case playEqual(prior, item):
			counts.Unchanged++
		default:
			counts.Updated++
		}
	}

	r.items[eventID] = next
	return counts, nil
}

func (r *PlayRepository) ListByEvent(_ context.Context, eventID string) ([]play.NormalizedPlay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]play.NormalizedPlay(nil), r.items[eventID]...), nil
}

func (r *PlayRepository) CountByEvent(_ context.Context, eventID string) (int, error) {
	return r.countByEvent(eventID), nil
}

func (r *PlayRepository) countByEvent(eventID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items[eventID])
}

func playEqual(a, b play.NormalizedPlay) bool {
	if (a.PlayerPoints == nil) != (b.PlayerPoints == nil) {
		return false
	}
	if a.PlayerPoints != nil && *a.PlayerPoints != *b.PlayerPoints {
		return false
	}
	a.PlayerPoints = nil
	b.PlayerPoints = nil
	return a == b
}
