package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courtwire/courtwire/internal/domain/boxscore"
	"github.com/courtwire/courtwire/internal/domain/ingest"
	qb "github.com/courtwire/courtwire/internal/platform/querybuilder"
)

var playerBoxColumns = []string{
	"event_id",
	"person_id",
	"team_tricode",
	"player_name",
	"minutes",
	"points",
	"rebounds",
	"assists",
}

var teamBoxColumns = []string{
	"event_id",
	"team_tricode",
	"minutes",
	"points",
	"rebounds",
	"assists",
}

type BoxscoreRepository struct {
	db *sqlx.DB
}

func NewBoxscoreRepository(db *sqlx.DB) *BoxscoreRepository {
	return &BoxscoreRepository{db: db}
}

// ReplaceForEvent swaps both boxscore grains for the event in one
// transaction. Empty input for both grains is a no-op; a grain whose rows
// match the stored ones writes nothing and reports unchanged.
func (r *BoxscoreRepository) ReplaceForEvent(ctx context.Context, eventID string, players []boxscore.PlayerLine, teams []boxscore.TeamLine) (ingest.Counts, error) {
	var counts ingest.Counts
	if len(players) == 0 && len(teams) == 0 {
		return counts, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("begin tx replace boxscore: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	playerCounts, err := replacePlayerLines(ctx, tx, eventID, players)
	if err != nil {
		return ingest.Counts{}, err
	}
	counts.Merge(playerCounts)

	teamCounts, err := replaceTeamLines(ctx, tx, eventID, teams)
	if err != nil {
		return ingest.Counts{}, err
	}
	counts.Merge(teamCounts)

	if err := tx.Commit(); err != nil {
		return ingest.Counts{}, fmt.Errorf("commit replace boxscore tx: %w", err)
	}

	return counts, nil
}

func replacePlayerLines(ctx context.Context, tx *sqlx.Tx, eventID string, items []boxscore.PlayerLine) (ingest.Counts, error) {
	var counts ingest.Counts
	if len(items) == 0 {
		return counts, nil
	}

	query, args, err := qb.Select(playerBoxColumns...).
		From("player_boxscores").
		Where(qb.Eq("event_id", eventID)).
		ToSQL()
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("build select player boxscores query: %w", err)
	}
	var existing []playerBoxTableModel
	if err := tx.SelectContext(ctx, &existing, query, args...); err != nil {
		return ingest.Counts{}, fmt.Errorf("select player boxscores event=%s: %w", eventID, err)
	}
	existingByPerson := make(map[int64]playerBoxTableModel, len(existing))
	for _, row := range existing {
		existingByPerson[row.PersonID] = row
	}

	incoming := make([]playerBoxTableModel, 0, len(items))
	for _, item := range items {
		row := mapPlayerLineToRow(item)
		row.EventID = eventID
		incoming = append(incoming, row)

		prior, ok := existingByPerson[row.PersonID]
		switch {
		case !ok:
			counts.Added++
		case prior == row:
			counts.Unchanged++
		default:
			counts.Updated++
		}
	}

	if counts.Added == 0 && counts.Updated == 0 && len(existing) == len(incoming) {
		return counts, nil
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom("player_boxscores").Where(qb.Eq("event_id", eventID)).ToSQL()
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("build delete player boxscores query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return ingest.Counts{}, fmt.Errorf("delete player boxscores event=%s: %w", eventID, err)
	}

	builder := qb.InsertInto("player_boxscores").Columns(playerBoxColumns...)
	for _, row := range incoming {
		builder.Values(
			row.EventID,
			row.PersonID,
			row.TeamTricode,
			row.PlayerName,
			row.Minutes,
			row.Points,
			row.Rebounds,
			row.Assists,
		)
	}
	insertQuery, insertArgs, err := builder.ToSQL()
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("build insert player boxscores query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return ingest.Counts{}, fmt.Errorf("insert player boxscores event=%s: %w", eventID, err)
	}

	return counts, nil
}

func replaceTeamLines(ctx context.Context, tx *sqlx.Tx, eventID string, items []boxscore.TeamLine) (ingest.Counts, error) {
	var counts ingest.Counts
	if len(items) == 0 {
		return counts, nil
	}

	query, args, err := qb.Select(teamBoxColumns...).
		From("team_boxscores").
		Where(qb.Eq("event_id", eventID)).
		ToSQL()
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("build select team boxscores query: %w", err)
	}
	var existing []teamBoxTableModel
	if err := tx.SelectContext(ctx, &existing, query, args...); err != nil {
		return ingest.Counts{}, fmt.Errorf("select team boxscores event=%s: %w", eventID, err)
	}
	existingByTeam := make(map[string]teamBoxTableModel, len(existing))
	for _, row := range existing {
		existingByTeam[row.TeamTricode] = row
	}

	incoming := make([]teamBoxTableModel, 0, len(items))
	for _, item := range items {
		row := mapTeamLineToRow(item)
		row.EventID = eventID
		incoming = append(incoming, row)

		prior, ok := existingByTeam[row.TeamTricode]
		switch {
		case !ok:
			counts.Added++
		case prior == row:
			counts.Unchanged++
		default:
			counts.Updated++
		}
	}

	if counts.Added == 0 && counts.Updated == 0 && len(existing) == len(incoming) {
		return counts, nil
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom("team_boxscores").Where(qb.Eq("event_id", eventID)).ToSQL()
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("build delete team boxscores query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return ingest.Counts{}, fmt.Errorf("delete team boxscores event=%s: %w", eventID, err)
	}

	builder := qb.InsertInto("team_boxscores").Columns(teamBoxColumns...)
	for _, row := range incoming {
		builder.Values(
			row.EventID,
			row.TeamTricode,
			row.Minutes,
			row.Points,
			row.Rebounds,
			row.Assists,
		)
	}
	insertQuery, insertArgs, err := builder.ToSQL()
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("build insert team boxscores query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return ingest.Counts{}, fmt.Errorf("insert team boxscores event=%s: %w", eventID, err)
	}

	return counts, nil
}

func (r *BoxscoreRepository) ListPlayersByEvent(ctx context.Context, eventID string) ([]boxscore.PlayerLine, error) {
	query, args, err := qb.Select(playerBoxColumns...).
		From("player_boxscores").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("team_tricode", "person_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player boxscores query: %w", err)
	}

	var rows []playerBoxTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player boxscores event=%s: %w", eventID, err)
	}

	out := make([]boxscore.PlayerLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPlayerBoxRow(row))
	}
	return out, nil
}

func (r *BoxscoreRepository) ListTeamsByEvent(ctx context.Context, eventID string) ([]boxscore.TeamLine, error) {
	query, args, err := qb.Select(teamBoxColumns...).
		From("team_boxscores").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("team_tricode").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team boxscores query: %w", err)
	}

	var rows []teamBoxTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team boxscores event=%s: %w", eventID, err)
	}

	out := make([]boxscore.TeamLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapTeamBoxRow(row))
	}
	return out, nil
}
