package statsapi

type playByPlayEnvelope struct {
	GameID string    `json:"game_id"`
	Plays  []playRow `json:"plays"`
}

type playRow struct {
	EventNum    int64  `json:"event_num"`
	Period      int    `json:"period"`
	Clock       string `json:"clock"` // "MM:SS" remaining in period
	Score       string `json:"score"` // "away - home", empty on non-scoring rows
	EventType   string `json:"event_type"`
	EventAction string `json:"event_action"`

	HomeDescription    string `json:"home_description"`
	VisitorDescription string `json:"visitor_description"`
	NeutralDescription string `json:"neutral_description"`

	PlayerID               int64  `json:"player1_id"`
	PlayerName             string `json:"player1_name"`
	PlayerTeamAbbreviation string `json:"player1_team_abbreviation"`
}

type boxscoreEnvelope struct {
	GameID      string          `json:"game_id"`
	PlayerStats []playerStatRow `json:"player_stats"`
	TeamStats   []teamStatRow   `json:"team_stats"`
}

type playerStatRow struct {
	PlayerID         int64  `json:"player_id"`
	PlayerName       string `json:"player_name"`
	TeamAbbreviation string `json:"team_abbreviation"`
	Minutes          string `json:"min"` // "MM:SS"
	Points           int    `json:"pts"`
	Rebounds         int    `json:"reb"`
	Assists          int    `json:"ast"`
}

type teamStatRow struct {
	TeamID           int64  `json:"team_id"`
	TeamAbbreviation string `json:"team_abbreviation"`
	Minutes          string `json:"min"` // "MMM:SS", 240:00 for regulation
	Points           int    `json:"pts"`
	Rebounds         int    `json:"reb"`
	Assists          int    `json:"ast"`
}
