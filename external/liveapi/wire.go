package liveapi

type playByPlayEnvelope struct {
	Game struct {
		GameID  string       `json:"gameId"`
		Actions []actionItem `json:"actions"`
	} `json:"game"`
}

type actionItem struct {
	ActionNumber int    `json:"actionNumber"`
	OrderNumber  int64  `json:"orderNumber"`
	Clock        string `json:"clock"`
	Period       int    `json:"period"`
	ScoreHome    string `json:"scoreHome"` // API sends strings
	ScoreAway    string `json:"scoreAway"`
	ActionType   string `json:"actionType"`
	SubType      string `json:"subType"`
	Description  string `json:"description"`
	PersonID     int64  `json:"personId"`
	PlayerNameI  string `json:"playerNameI"`
	TeamTricode  string `json:"teamTricode"`
	PointsTotal  *int   `json:"pointsTotal"` // null for non-scoring actors
}

type boxscoreEnvelope struct {
	Game struct {
		GameID   string       `json:"gameId"`
		HomeTeam boxscoreTeam `json:"homeTeam"`
		AwayTeam boxscoreTeam `json:"awayTeam"`
	} `json:"game"`
}

type boxscoreTeam struct {
	TeamID      int64            `json:"teamId"`
	TeamTricode string           `json:"teamTricode"`
	Statistics  teamStatistics   `json:"statistics"`
	Players     []boxscorePlayer `json:"players"`
}

type teamStatistics struct {
	Minutes  string `json:"minutesCalculated"` // "PT240M" style duration
	Points   int    `json:"points"`
	Rebounds int    `json:"reboundsTotal"`
	Assists  int    `json:"assists"`
}

type boxscorePlayer struct {
	PersonID   int64            `json:"personId"`
	Name       string           `json:"name"`
	Statistics playerStatistics `json:"statistics"`
}

type playerStatistics struct {
	Minutes  string `json:"minutes"` // "PT34M12.00S"
	Points   int    `json:"points"`
	Rebounds int    `json:"reboundsTotal"`
	Assists  int    `json:"assists"`
}
