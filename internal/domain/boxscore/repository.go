package boxscore

import (
	"context"

	"github.com/courtwire/courtwire/internal/domain/ingest"
)

// Repository persists boxscore lines per event at player and team grain.
type Repository interface {
	ReplaceForEvent(ctx context.Context, eventID string, players []PlayerLine, teams []TeamLine) (ingest.Counts, error)
	ListPlayersByEvent(ctx context.Context, eventID string) ([]PlayerLine, error)
	ListTeamsByEvent(ctx context.Context, eventID string) ([]TeamLine, error)
}
