package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/courtwire/courtwire/internal/domain/gamestate"
	"github.com/courtwire/courtwire/internal/domain/ingest"
)

type GameStateRepository struct {
	mu    sync.RWMutex
	items map[string][]gamestate.GameState
}

func NewGameStateRepository() *GameStateRepository {
	return &GameStateRepository{items: make(map[string][]gamestate.GameState)}
}

func (r *GameStateRepository) ReplaceForEvent(_ context.Context, eventID string, items []gamestate.GameState) (ingest.Counts, error) {
	var counts ingest.Counts
	if len(items) == 0 {
		return counts, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existingByIndex := make(map[int]gamestate.GameState, len(r.items[eventID]))
	for _, row := range r.items[eventID] {
		existingByIndex[row.SequenceIndex] = row
	}

	next := make([]gamestate.GameState, 0, len(items))
	for _, item := range items {
		item.EventID = eventID
		item.PlayerPoints = gamestate.ClonePlayerPoints(item.PlayerPoints)
		next = append(next, item)

		prior, ok := existingByIndex[item.SequenceIndex]
		switch {
		case !ok:
			counts.Added++
		case stateEqual(prior, item):
			counts.Unchanged++
		default:
			counts.Updated++
		}
	}

	r.items[eventID] = next
	return counts, nil
}

func (r *GameStateRepository) ListByEvent(_ context.Context, eventID string) ([]gamestate.GameState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.items[eventID]
	out := make([]gamestate.GameState, 0, len(rows))
	for _, row := range rows {
		row.PlayerPoints = gamestate.ClonePlayerPoints(row.PlayerPoints)
		out = append(out, row)
	}
	return out, nil
}

func (r *GameStateRepository) HasFinalState(_ context.Context, eventID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.items[eventID] {
		if row.IsFinalState {
			return true, nil
		}
	}
	return false, nil
}

func stateEqual(a, b gamestate.GameState) bool {
	if a.EventID != b.EventID ||
		a.SequenceIndex != b.SequenceIndex ||
		a.Period != b.Period ||
		a.Clock != b.Clock ||
		a.HomeScore != b.HomeScore ||
		a.AwayScore != b.AwayScore ||
		a.IsFinalState != b.IsFinalState {
		return false
	}

	if len(a.PlayerPoints) != len(b.PlayerPoints) {
		return false
	}
	for team, players := range a.PlayerPoints {
		if !maps.Equal(players, b.PlayerPoints[team]) {
			return false
		}
	}
	return true
}
