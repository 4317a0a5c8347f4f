package postgres

import "github.com/courtwire/courtwire/internal/domain/play"

type playTableModel struct {
	EventID       string `db:"event_id"`
	SequenceIndex int    `db:"sequence_index"`
	OrderKey      int64  `db:"order_key"`
	Source        string `db:"source"`
	Period        int    `db:"period"`
	Clock         string `db:"clock"`
	HomeScore     int    `db:"home_score"`
	AwayScore     int    `db:"away_score"`
	ActionType    string `db:"action_type"`
	SubType       string `db:"sub_type"`
	Description   string `db:"description"`
	PersonID      int64  `db:"person_id"`
	PlayerName    string `db:"player_name"`
	TeamTricode   string `db:"team_tricode"`
	PlayerPoints  *int   `db:"player_points"`
	IsTerminal    bool   `db:"is_terminal"`
}

func mapPlayToRow(item play.NormalizedPlay) playTableModel {
	return playTableModel{
		EventID:       item.EventID,
		SequenceIndex: item.SequenceIndex,
		OrderKey:      item.OrderKey,
		Source:        item.Source,
		Period:        item.Period,
		Clock:         item.Clock,
		HomeScore:     item.HomeScore,
		AwayScore:     item.AwayScore,
		ActionType:    item.ActionType,
		SubType:       item.SubType,
		Description:   item.Description,
		PersonID:      item.PersonID,
		PlayerName:    item.PlayerName,
		TeamTricode:   item.TeamTricode,
		PlayerPoints:  item.PlayerPoints,
		IsTerminal:    item.IsTerminal,
	}
}

func mapPlayRow(row playTableModel) play.NormalizedPlay {
	return play.NormalizedPlay{
		EventID:       row.EventID,
		SequenceIndex: row.SequenceIndex,
		OrderKey:      row.OrderKey,
		Source:        row.Source,
		Period:        row.Period,
		Clock:         row.Clock,
		HomeScore:     row.HomeScore,
		AwayScore:     row.AwayScore,
		ActionType:    row.ActionType,
		SubType:       row.SubType,
		Description:   row.Description,
		PersonID:      row.PersonID,
		PlayerName:    row.PlayerName,
		TeamTricode:   row.TeamTricode,
		PlayerPoints:  row.PlayerPoints,
		IsTerminal:    row.IsTerminal,
	}
}

func playRowEqual(a, b playTableModel) bool {
	if !intPtrEqual(a.PlayerPoints, b.PlayerPoints) {
		return false
	}
	a.PlayerPoints = nil
	b.PlayerPoints = nil
	return a == b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
