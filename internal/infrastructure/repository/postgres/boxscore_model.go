package postgres

import "github.com/courtwire/courtwire/internal/domain/boxscore"

type playerBoxTableModel struct {
	EventID     string  `db:"event_id"`
	PersonID    int64   `db:"person_id"`
	TeamTricode string  `db:"team_tricode"`
	PlayerName  string  `db:"player_name"`
	Minutes     float64 `db:"minutes"`
	Points      int     `db:"points"`
	Rebounds    int     `db:"rebounds"`
	Assists     int     `db:"assists"`
}

type teamBoxTableModel struct {
	EventID     string  `db:"event_id"`
	TeamTricode string  `db:"team_tricode"`
	Minutes     float64 `db:"minutes"`
	Points      int     `db:"points"`
	Rebounds    int     `db:"rebounds"`
	Assists     int     `db:"assists"`
}

func mapPlayerLineToRow(item boxscore.PlayerLine) playerBoxTableModel {
	return playerBoxTableModel{
		EventID:     item.EventID,
		PersonID:    item.PersonID,
		TeamTricode: item.TeamTricode,
		PlayerName:  item.PlayerName,
		Minutes:     item.Minutes,
		Points:      item.Points,
		Rebounds:    item.Rebounds,
		Assists:     item.Assists,
	}
}

func mapPlayerBoxRow(row playerBoxTableModel) boxscore.PlayerLine {
	return boxscore.PlayerLine{
		EventID:     row.EventID,
		PersonID:    row.PersonID,
		TeamTricode: row.TeamTricode,
		PlayerName:  row.PlayerName,
		Minutes:     row.Minutes,
		Points:      row.Points,
		Rebounds:    row.Rebounds,
		Assists:     row.Assists,
	}
}

func mapTeamLineToRow(item boxscore.TeamLine) teamBoxTableModel {
	return teamBoxTableModel{
		EventID:     item.EventID,
		TeamTricode: item.TeamTricode,
		Minutes:     item.Minutes,
		Points:      item.Points,
		Rebounds:    item.Rebounds,
		Assists:     item.Assists,
	}
}

func mapTeamBoxRow(row teamBoxTableModel) boxscore.TeamLine {
	return boxscore.TeamLine{
		EventID:     row.EventID,
		TeamTricode: row.TeamTricode,
		Minutes:     row.Minutes,
		Points:      row.Points,
		Rebounds:    row.Rebounds,
		Assists:     row.Assists,
	}
}
