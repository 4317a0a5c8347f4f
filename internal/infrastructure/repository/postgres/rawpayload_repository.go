package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtwire/courtwire/internal/domain/rawpayload"
	qb "github.com/courtwire/courtwire/internal/platform/querybuilder"
)

type RawPayloadRepository struct {
	db *sqlx.DB
}

func NewRawPayloadRepository(db *sqlx.DB) *RawPayloadRepository {
	return &RawPayloadRepository{db: db}
}

// UpsertMany retains one body per (source, event, endpoint). Refetches of an
// identical body only bump fetched_at; the hash makes the dedupe cheap.
func (r *RawPayloadRepository) UpsertMany(ctx context.Context, items []rawpayload.Payload) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		insertModel := rawPayloadInsertModel{
			Source:    item.Source,
			EventID:   item.EventID,
			Endpoint:  item.Endpoint,
			Body:      item.Body,
			Hash:      item.Hash,
			FetchedAt: item.FetchedAt.UTC(),
		}

		query, args, err := qb.InsertModel("raw_payloads", insertModel, `ON CONFLICT (source, event_id, endpoint)
DO UPDATE SET
    body = EXCLUDED.body,
    hash = EXCLUDED.hash,
    fetched_at = EXCLUDED.fetched_at`)
		if err != nil {
			return fmt.Errorf("build upsert raw payload query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert raw payload source=%s event=%s: %w", item.Source, item.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert raw payloads tx: %w", err)
	}

	return nil
}

type rawPayloadInsertModel struct {
	Source    string    `db:"source"`
	EventID   string    `db:"event_id"`
	Endpoint  string    `db:"endpoint"`
	Body      []byte    `db:"body"`
	Hash      string    `db:"hash"`
	FetchedAt time.Time `db:"fetched_at"`
}
