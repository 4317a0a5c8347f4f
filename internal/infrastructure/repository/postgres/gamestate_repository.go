package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courtwire/courtwire/internal/domain/gamestate"
	"github.com/courtwire/courtwire/internal/domain/ingest"
	qb "github.com/courtwire/courtwire/internal/platform/querybuilder"
)

var gameStateColumns = []string{
	"event_id",
	"sequence_index",
	"period",
	"clock",
	"home_score",
	"away_score",
	"player_points",
	"is_final_state",
}

type GameStateRepository struct {
	db *sqlx.DB
}

func NewGameStateRepository(db *sqlx.DB) *GameStateRepository {
	return &GameStateRepository{db: db}
}

// ReplaceForEvent mirrors the play replace semantics: empty input is a
// no-op, an identical sequence writes nothing, anything else swaps the whole
// sequence transactionally.
func (r *GameStateRepository) ReplaceForEvent(ctx context.Context, eventID string, items []gamestate.GameState) (ingest.Counts, error) {
	var counts ingest.Counts
	if len(items) == 0 {
		return counts, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("begin tx replace game states: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	existing, err := selectGameStateRows(ctx, tx, eventID)
	if err != nil {
		return ingest.Counts{}, err
	}
	existingByIndex := make(map[int]gameStateTableModel, len(existing))
	for _, row := range existing {
		existingByIndex[row.SequenceIndex] = row
	}

	incoming := make([]gameStateTableModel, 0, len(items))
	for _, item := range items {
		row, err := mapGameStateToRow(item)
		if err != nil {
			return ingest.Counts{}, err
		}
		row.EventID = eventID
		incoming = append(incoming, row)

		prior, ok := existingByIndex[row.SequenceIndex]
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

	deleteQuery, deleteArgs, err := qb.DeleteFrom("game_states").Where(qb.Eq("event_id", eventID)).ToSQL()
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("build delete game states query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return ingest.Counts{}, fmt.Errorf("delete game states event=%s: %w", eventID, err)
	}

	builder := qb.InsertInto("game_states").Columns(gameStateColumns...)
	for _, row := range incoming {
		builder.Values(
			row.EventID,
			row.SequenceIndex,
			row.Period,
			row.Clock,
			row.HomeScore,
			row.AwayScore,
			row.PlayerPoints,
			row.IsFinalState,
		)
	}
	insertQuery, insertArgs, err := builder.ToSQL()
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("build insert game states query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return ingest.Counts{}, fmt.Errorf("insert game states event=%s: %w", eventID, err)
	}

	if err := tx.Commit(); err != nil {
		return ingest.Counts{}, fmt.Errorf("commit replace game states tx: %w", err)
	}

	return counts, nil
}

func (r *GameStateRepository) ListByEvent(ctx context.Context, eventID string) ([]gamestate.GameState, error) {
	query, args, err := qb.Select(gameStateColumns...).
		From("game_states").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("sequence_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select game states query: %w", err)
	}

	var rows []gameStateTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select game states event=%s: %w", eventID, err)
	}

	out := make([]gamestate.GameState, 0, len(rows))
	for _, row := range rows {
		item, err := mapGameStateRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *GameStateRepository) HasFinalState(ctx context.Context, eventID string) (bool, error) {
	query, args, err := qb.Select("COUNT(*)").
		From("game_states").
		Where(qb.Eq("event_id", eventID), qb.Eq("is_final_state", true)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build count final states query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("count final states event=%s: %w", eventID, err)
	}
	return count > 0, nil
}

func selectGameStateRows(ctx context.Context, tx *sqlx.Tx, eventID string) ([]gameStateTableModel, error) {
	query, args, err := qb.Select(gameStateColumns...).
		From("game_states").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("sequence_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select game states query: %w", err)
	}

	var rows []gameStateTableModel
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select game states event=%s: %w", eventID, err)
	}
	return rows, nil
}
