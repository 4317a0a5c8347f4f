package gamestate

import (
	"context"

	"github.com/courtwire/courtwire/internal/domain/ingest"
)

// Repository persists reconstructed states. Order within an event is
// immutable once written and strictly follows the play sequence.
type Repository interface {
	ReplaceForEvent(ctx context.Context, eventID string, items []GameState) (ingest.Counts, error)
	ListByEvent(ctx context.Context, eventID string) ([]GameState, error)
	HasFinalState(ctx context.Context, eventID string) (bool, error)
}
