package event

import (
	"context"
	"time"

	"github.com/courtwire/courtwire/internal/domain/ingest"
)

// Repository exposes event catalog reads and idempotent metadata writes.
type Repository interface {
	ListBySeason(ctx context.Context, season string) ([]Event, error)
	Get(ctx context.Context, id string) (Event, error)
	UpsertMany(ctx context.Context, items []Event) (ingest.Counts, error)

	// MarkFetchAttempt stamps the freshness timestamp for one feed. It is
	// called on every fetch attempt, success or not, so freshness reflects
	// fetch recency rather than content delta.
	MarkFetchAttempt(ctx context.Context, eventID string, kind FetchKind, at time.Time) error

	SetBoxscoreFinalized(ctx context.Context, eventID string) error
	SetPlayByPlayFinalized(ctx context.Context, eventID string) error
}
