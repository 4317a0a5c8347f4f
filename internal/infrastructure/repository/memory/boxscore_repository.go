package memory

import (
	"context"
	"sync"

	"github.com/courtwire/courtwire/internal/domain/boxscore"
	"github.com/courtwire/courtwire/internal/domain/ingest"
)

type BoxscoreRepository struct {
	mu      sync.RWMutex
	players map[string][]boxscore.PlayerLine
	teams   map[string][]boxscore.TeamLine
}

func NewBoxscoreRepository() *BoxscoreRepository {
	return &BoxscoreRepository{
		players: make(map[string][]boxscore.PlayerLine),
		teams:   make(map[string][]boxscore.TeamLine),
	}
}

func (r *BoxscoreRepository) ReplaceForEvent(_ context.Context, eventID string, players []boxscore.PlayerLine, teams []boxscore.TeamLine) (ingest.Counts, error) {
	var counts ingest.Counts
	if len(players) == 0 && len(teams) == 0 {
		return counts, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(players) > 0 {
		existingByPerson := make(map[int64]boxscore.PlayerLine, len(r.players[eventID]))
		for _, row := range r.players[eventID] {
			existingByPerson[row.PersonID] = row
		}

		next := make([]boxscore.PlayerLine, 0, len(players))
		for _, item := range players {
			item.EventID = eventID
			next = append(next, item)

			prior, ok := existingByPerson[item.PersonID]
			switch {
			case !ok:
				counts.Added++
			case prior == item:
				counts.Unchanged++
			default:
				counts.Updated++
			}
		}
		r.players[eventID] = next
	}

	if len(teams) > 0 {
		existingByTeam := make(map[string]boxscore.TeamLine, len(r.teams[eventID]))
		for _, row := range r.teams[eventID] {
			existingByTeam[row.TeamTricode] = row
		}

		next := make([]boxscore.TeamLine, 0, len(teams))
		for _, item := range teams {
			item.EventID = eventID
			next = append(next, item)

			prior, ok := existingByTeam[item.TeamTricode]
			switch {
			case !ok:
				counts.Added++
			case prior == item:
				counts.Unchanged++
			default:
				counts.Updated++
			}
		}
		r.teams[eventID] = next
	}

	return counts, nil
}

func (r *BoxscoreRepository) ListPlayersByEvent(_ context.Context, eventID string) ([]boxscore.PlayerLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]boxscore.PlayerLine(nil), r.players[eventID]...), nil
}

func (r *BoxscoreRepository) ListTeamsByEvent(_ context.Context, eventID string) ([]boxscore.TeamLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]boxscore.TeamLine(nil), r.teams[eventID]...), nil
}

func (r *BoxscoreRepository) countPlayersByEvent(eventID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.players[eventID])
}
