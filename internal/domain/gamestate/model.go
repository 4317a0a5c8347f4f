package gamestate

// GameState is one reconstructed snapshot keyed by (event_id, sequence_index).
// The PlayerPoints map is a snapshot copy owned by this state, never a live
// reference into a reconstruction accumulator.
type GameState struct {
	EventID       string
	SequenceIndex int

	Period    int
	Clock     string
	HomeScore int
	AwayScore int

	// PlayerPoints maps team tricode -> person id -> cumulative points.
	PlayerPoints map[string]map[int64]int

	IsFinalState bool
}

// ClonePlayerPoints deep-copies the per-team totals map.
func ClonePlayerPoints(src map[string]map[int64]int) map[string]map[int64]int {
	out := make(map[string]map[int64]int, len(src))
	for team, players := range src {
		inner := make(map[int64]int, len(players))
		for personID, points := range players {
			inner[personID] = points
		}
		out[team] = inner
	}
	return out
}
