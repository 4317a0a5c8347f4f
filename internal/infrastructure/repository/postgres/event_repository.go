package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtwire/courtwire/internal/domain/event"
	"github.com/courtwire/courtwire/internal/domain/ingest"
	"github.com/courtwire/courtwire/internal/platform/logging"
	qb "github.com/courtwire/courtwire/internal/platform/querybuilder"
	"github.com/courtwire/courtwire/internal/usecase"
)

// eventCatalogColumns are the stored columns plus the two read-side
// aggregates the scheduler keys off.
var eventCatalogColumns = []string{
	"e.id",
	"e.season",
	"e.scheduled_at",
	"e.home_team",
	"e.away_team",
	"e.status",
	"e.box_fetched_at",
	"e.pbp_fetched_at",
	"e.box_finalized",
	"e.pbp_finalized",
	"(SELECT COUNT(*) FROM plays p WHERE p.event_id = e.id) AS play_count",
	"(SELECT COUNT(*) FROM player_boxscores b WHERE b.event_id = e.id) AS box_row_count",
}

// eventExtensionColumns are additive columns that may be missing on a schema
// that predates them. They get added in place on first contact.
var eventExtensionColumns = []string{
	"box_fetched_at TIMESTAMPTZ",
	"pbp_fetched_at TIMESTAMPTZ",
	"box_finalized BOOLEAN NOT NULL DEFAULT FALSE",
	"pbp_finalized BOOLEAN NOT NULL DEFAULT FALSE",
}

type EventRepository struct {
	db     *sqlx.DB
	logger *logging.Logger
}

func NewEventRepository(db *sqlx.DB, logger *logging.Logger) *EventRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &EventRepository{db: db, logger: logger}
}

func (r *EventRepository) ListBySeason(ctx context.Context, season string) ([]event.Event, error) {
	query, args, err := qb.Select(eventCatalogColumns...).
		From("events e").
		Where(qb.Eq("e.season", season)).
		OrderBy("e.scheduled_at", "e.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select events by season query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if isUndefinedColumn(err) {
			if extErr := r.extendSchema(ctx); extErr != nil {
				return nil, extErr
			}
			if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
				return nil, fmt.Errorf("select events by season after schema extension: %w", err)
			}
		} else {
			return nil, fmt.Errorf("select events by season: %w", err)
		}
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapEventRow(row))
	}
	return out, nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (event.Event, error) {
	query, args, err := qb.Select(eventCatalogColumns...).
		From("events e").
		Where(qb.Eq("e.id", id)).
		ToSQL()
	if err != nil {
		return event.Event{}, fmt.Errorf("build select event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, fmt.Errorf("%w: event %s", usecase.ErrNotFound, id)
		}
		return event.Event{}, fmt.Errorf("select event id=%s: %w", id, err)
	}

	return mapEventRow(row), nil
}

// UpsertMany reconciles catalog rows. It only writes schedule metadata;
// freshness timestamps and finalization flags are owned by their dedicated
// operations and survive catalog refreshes untouched.
func (r *EventRepository) UpsertMany(ctx context.Context, items []event.Event) (ingest.Counts, error) {
	counts, err := r.upsertMany(ctx, items)
	if err != nil && isUndefinedColumn(err) {
		if extErr := r.extendSchema(ctx); extErr != nil {
			return ingest.Counts{}, extErr
		}
		return r.upsertMany(ctx, items)
	}
	return counts, err
}

func (r *EventRepository) upsertMany(ctx context.Context, items []event.Event) (ingest.Counts, error) {
	var counts ingest.Counts
	if len(items) == 0 {
		return counts, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ingest.Counts{}, fmt.Errorf("begin tx upsert events: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		existing, found, err := getEventCore(ctx, tx, item.ID)
		if err != nil {
			return ingest.Counts{}, err
		}

		incoming := eventInsertModel{
			ID:          item.ID,
			Season:      item.Season,
			ScheduledAt: item.ScheduledAt.UTC(),
			HomeTeam:    item.HomeTeam,
			AwayTeam:    item.AwayTeam,
			Status:      event.NormalizeStatus(item.Status),
		}

		if !found {
			query, args, err := qb.InsertModel("events", incoming, "")
			if err != nil {
				return ingest.Counts{}, fmt.Errorf("build insert event query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return ingest.Counts{}, fmt.Errorf("insert event id=%s: %w", item.ID, err)
			}
			counts.Added++
			continue
		}

		if eventCoreEqual(existing, incoming) {
			counts.Unchanged++
			continue
		}

		query, args, err := qb.Update("events").
			Set("season", incoming.Season).
			Set("scheduled_at", incoming.ScheduledAt).
			Set("home_team", incoming.HomeTeam).
			Set("away_team", incoming.AwayTeam).
			Set("status", incoming.Status).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", item.ID)).
			ToSQL()
		if err != nil {
			return ingest.Counts{}, fmt.Errorf("build update event query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return ingest.Counts{}, fmt.Errorf("update event id=%s: %w", item.ID, err)
		}
		counts.Updated++
	}

	if err := tx.Commit(); err != nil {
		return ingest.Counts{}, fmt.Errorf("commit upsert events tx: %w", err)
	}

	return counts, nil
}

func getEventCore(ctx context.Context, tx *sqlx.Tx, id string) (eventInsertModel, bool, error) {
	query, args, err := qb.Select("id", "season", "scheduled_at", "home_team", "away_team", "status").
		From("events").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return eventInsertModel{}, false, fmt.Errorf("build select event core query: %w", err)
	}

	var row eventInsertModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return eventInsertModel{}, false, nil
		}
		return eventInsertModel{}, false, fmt.Errorf("select event core id=%s: %w", id, err)
	}
	row.ScheduledAt = row.ScheduledAt.UTC()
	return row, true, nil
}

func eventCoreEqual(a, b eventInsertModel) bool {
	return a.ID == b.ID &&
		a.Season == b.Season &&
		a.ScheduledAt.Equal(b.ScheduledAt) &&
		a.HomeTeam == b.HomeTeam &&
		a.AwayTeam == b.AwayTeam &&
		a.Status == b.Status
}

func (r *EventRepository) MarkFetchAttempt(ctx context.Context, eventID string, kind event.FetchKind, at time.Time) error {
	column := ""
	switch kind {
	case event.FetchBoxscore:
		column = "box_fetched_at"
	case event.FetchPlayByPlay:
		column = "pbp_fetched_at"
	default:
		return fmt.Errorf("%w: unknown fetch kind %q", usecase.ErrInvalidInput, kind)
	}

	return r.updateEvent(ctx, eventID, func(b *qb.UpdateBuilder) {
		b.Set(column, at.UTC())
	})
}

func (r *EventRepository) SetBoxscoreFinalized(ctx context.Context, eventID string) error {
	return r.updateEvent(ctx, eventID, func(b *qb.UpdateBuilder) {
		b.Set("box_finalized", true)
	})
}

func (r *EventRepository) SetPlayByPlayFinalized(ctx context.Context, eventID string) error {
	return r.updateEvent(ctx, eventID, func(b *qb.UpdateBuilder) {
		b.Set("pbp_finalized", true)
	})
}

func (r *EventRepository) updateEvent(ctx context.Context, eventID string, apply func(*qb.UpdateBuilder)) error {
	builder := qb.Update("events").SetExpr("updated_at", "NOW()")
	apply(builder)
	query, args, err := builder.Where(qb.Eq("id", eventID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update event query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil && isUndefinedColumn(err) {
		if extErr := r.extendSchema(ctx); extErr != nil {
			return extErr
		}
		result, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("update event id=%s: %w", eventID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event rows affected id=%s: %w", eventID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: event %s", usecase.ErrNotFound, eventID)
	}
	return nil
}

func (r *EventRepository) extendSchema(ctx context.Context) error {
	for _, column := range eventExtensionColumns {
		stmt := "ALTER TABLE events ADD COLUMN IF NOT EXISTS " + column
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("extend events schema (%s): %w", column, err)
		}
	}
	r.logger.InfoContext(ctx, "extended events schema with missing columns")
	return nil
}
