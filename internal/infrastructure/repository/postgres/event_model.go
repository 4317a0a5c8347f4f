package postgres

import (
	"time"

	"github.com/courtwire/courtwire/internal/domain/event"
)

type eventTableModel struct {
	ID           string     `db:"id"`
	Season       string     `db:"season"`
	ScheduledAt  time.Time  `db:"scheduled_at"`
	HomeTeam     string     `db:"home_team"`
	AwayTeam     string     `db:"away_team"`
	Status       string     `db:"status"`
	BoxFetchedAt *time.Time `db:"box_fetched_at"`
	PBPFetchedAt *time.Time `db:"pbp_fetched_at"`
	BoxFinalized bool       `db:"box_finalized"`
	PBPFinalized bool       `db:"pbp_finalized"`

	PlayCount   int `db:"play_count"`
	BoxRowCount int `db:"box_row_count"`
}

type eventInsertModel struct {
	ID          string    `db:"id"`
	Season      string    `db:"season"`
	ScheduledAt time.Time `db:"scheduled_at"`
	HomeTeam    string    `db:"home_team"`
	AwayTeam    string    `db:"away_team"`
	Status      string    `db:"status"`
}

func mapEventRow(row eventTableModel) event.Event {
	return event.Event{
		ID:           row.ID,
		Season:       row.Season,
		ScheduledAt:  row.ScheduledAt.UTC(),
		HomeTeam:     row.HomeTeam,
		AwayTeam:     row.AwayTeam,
		Status:       row.Status,
		BoxFetchedAt: utcPtr(row.BoxFetchedAt),
		PBPFetchedAt: utcPtr(row.PBPFetchedAt),
		BoxFinalized: row.BoxFinalized,
		PBPFinalized: row.PBPFinalized,
		PlayCount:    row.PlayCount,
		BoxRowCount:  row.BoxRowCount,
	}
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	v := value.UTC()
	return &v
}
