package play

import (
	"context"

	"github.com/courtwire/courtwire/internal/domain/ingest"
)

// Repository persists the normalized play sequence per event. A replace is
// all-or-nothing for the event; an empty incoming sequence never wipes
// previously ingested rows.
type Repository interface {
	ReplaceForEvent(ctx context.Context, eventID string, items []NormalizedPlay) (ingest.Counts, error)
	ListByEvent(ctx context.Context, eventID string) ([]NormalizedPlay, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
}
