package usecase

import (
	"github.com/courtwire/courtwire/internal/domain/gamestate"
	"github.com/courtwire/courtwire/internal/domain/play"
)

// ReconstructStates folds a normalized play sequence into one GameState per
// play. The accumulator is owned by this call alone, so concurrent per-event
// reconstructions need no locks, and identical input always yields identical
// output. A play whose attribution cannot be placed (no team for the actor)
// skips the accumulator update only; its state is still emitted with the
// prior totals. At most one state is flagged final: the last terminal play's,
// even when a malformed upstream sequence carries duplicate game-end markers.
func ReconstructStates(plays []play.NormalizedPlay) []gamestate.GameState {
	acc := newPointsAccumulator()

	finalIndex := -1
	for i, item := range plays {
		if item.IsTerminal {
			finalIndex = i
		}
	}

	out := make([]gamestate.GameState, 0, len(plays))
	for i, item := range plays {
		acc.apply(item)

		out = append(out, gamestate.GameState{
			EventID:       item.EventID,
			SequenceIndex: item.SequenceIndex,
			Period:        item.Period,
			Clock:         item.Clock,
			HomeScore:     item.HomeScore,
			AwayScore:     item.AwayScore,
			PlayerPoints:  acc.snapshot(),
			IsFinalState:  i == finalIndex,
		})
	}

	return out
}

type pointsAccumulator struct {
	points map[string]map[int64]int
}

func newPointsAccumulator() *pointsAccumulator {
	return &pointsAccumulator{points: make(map[string]map[int64]int, 2)}
}

// apply records the acting player's cumulative total. At most one actor's
// entry changes per play; every other entry carries forward untouched.
// Returns false when the play carries attribution that cannot be placed.
func (a *pointsAccumulator) apply(item play.NormalizedPlay) bool {
	if item.PersonID <= 0 || item.PlayerPoints == nil {
		return true
	}
	if item.TeamTricode == "" {
		// Unattributable actor: leave the fold untouched rather than abort.
		return false
	}

	team := a.points[item.TeamTricode]
	if team == nil {
		team = make(map[int64]int, 16)
		a.points[item.TeamTricode] = team
	}
	team[item.PersonID] = *item.PlayerPoints
	return true
}

// snapshot returns an immutable copy; states never alias the live fold.
func (a *pointsAccumulator) snapshot() map[string]map[int64]int {
	return gamestate.ClonePlayerPoints(a.points)
}
