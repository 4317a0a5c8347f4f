package boxscore

const (
	// RegulationTeamMinutes is the summed played-minutes a full regulation
	// boxscore accounts for per team (five positions times 48 minutes).
	// Overtime raises the real total; finalization treats this as a floor.
	RegulationTeamMinutes = 240.0

	// MinRosterSize / MaxRosterSize bound the plausible per-team player-row
	// count for a completed game.
	MinRosterSize = 8
	MaxRosterSize = 17
)

// PlayerLine is one player's aggregated totals for an event.
type PlayerLine struct {
	EventID     string
	PersonID    int64
	TeamTricode string
	PlayerName  string
	Minutes     float64
	Points      int
	Rebounds    int
	Assists     int
}

// TeamLine is one team's aggregated totals for an event.
type TeamLine struct {
	EventID     string
	TeamTricode string
	Minutes     float64
	Points      int
	Rebounds    int
	Assists     int
}

// SumPlayerMinutesByTeam folds player lines into per-team minute totals.
func SumPlayerMinutesByTeam(items []PlayerLine) map[string]float64 {
	out := make(map[string]float64, 2)
	for _, item := range items {
		out[item.TeamTricode] += item.Minutes
	}
	return out
}
