package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courtwire/courtwire/internal/domain/ingest"
	"github.com/courtwire/courtwire/internal/domain/play"
	qb "github.com/courtwire/courtwire/internal/platform/querybuilder"
)

var playColumns = []string{
	"event_id",
	"sequence_index",
	"order_key",
	"source",
	"period",
	"clock",
	"home_score",
	"away_score",
	"action_type",
	"sub_type",
	"description",
	"person_id",
	"player_name",
	"team_tricode",
	"player_points",
	"is_terminal",
}

type PlayRepository struct {
	db *sqlx.DB
}

func NewPlayRepository(db *sqlx.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// ReplaceForEvent swaps the event's sequence for the incoming one inside a
// single transaction. An empty incoming sequence is a no-op so a failed
// upstream fetch can never wipe previously ingested rows. When the incoming
// sequence matches what is stored the rows are left untouched and reported
// as unchanged.
func (r *PlayRepository) ReplaceForEvent(ctx context.Context, eventID string, items []play.NormalizedPlay) (ingest.Counts, error) {
	var counts ingest.Counts
	if len(items) == 0 {
		return counts, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("begin tx replace plays: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	existing, err := selectPlayRows(ctx, tx, eventID)
	if err != nil {
		return ingest.Counts{}, err
	}
	existingByIndex := make(map[int]playTableModel, len(existing))
	for _, row := range existing {
		existingByIndex[row.SequenceIndex] = row
	}

	incoming := make([]playTableModel, 0, len(items))
	for _, item := range items {
		row := mapPlayToRow(item)
		row.EventID = eventID
		incoming = append(incoming, row)

		prior, ok := existingByIndex[row.SequenceIndex]
		switch {
		case !ok:
			counts.Added++
		case playRowEqual(prior, row):
			counts.Unchanged++
		default:
			counts.Updated++
		}
	}

	if counts.Added == 0 && counts.Updated == 0 && len(existing) == len(incoming) {
		return counts, nil
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom("plays").Where(qb.Eq("event_id", eventID)).ToSQL()
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("build delete plays query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return ingest.Counts{}, fmt.Errorf("delete plays event=%s: %w", eventID, err)
	}

	builder := qb.InsertInto("plays").Columns(playColumns...)
	for _, row := range incoming {
		builder.Values(
			row.EventID,
			row.SequenceIndex,
			row.OrderKey,
			row.Source,
			row.Period,
			row.Clock,
			row.HomeScore,
			row.AwayScore,
			row.ActionType,
			row.SubType,
			row.Description,
			row.PersonID,
			row.PlayerName,
			row.TeamTricode,
			row.PlayerPoints,
			row.IsTerminal,
		)
	}
	insertQuery, insertArgs, err := builder.ToSQL()
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("build insert plays query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return ingest.Counts{}, fmt.Errorf("insert plays event=%s: %w", eventID, err)
	}

	if err := tx.Commit(); err != nil {
		return ingest.Counts{}, fmt.Errorf("commit replace plays tx: %w", err)
	}

	return counts, nil
}

func (r *PlayRepository) ListByEvent(ctx context.Context, eventID string) ([]play.NormalizedPlay, error) {
	query, args, err := qb.Select(playColumns...).
		From("plays").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("sequence_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select plays query: %w", err)
	}

	var rows []playTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select plays event=%s: %w", eventID, err)
	}

	out := make([]play.NormalizedPlay, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPlayRow(row))
	}
	return out, nil
}

func (r *PlayRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From("plays").
		Where(qb.Eq("event_id", eventID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count plays query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count plays event=%s: %w", eventID, err)
	}
	return count, nil
}

func selectPlayRows(ctx context.Context, tx *sqlx.Tx, eventID string) ([]playTableModel, error) {
	query, args, err := qb.Select(playColumns...).
		From("plays").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("sequence_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select plays query: %w", err)
	}

	var rows []playTableModel
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select plays event=%s: %w", eventID, err)
	}
	return rows, nil
}
