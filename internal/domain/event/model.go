package event

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinal     = "FINAL"
)

// FetchKind distinguishes the two freshness timestamps kept per event.
type FetchKind string

const (
	FetchPlayByPlay FetchKind = "pbp"
	FetchBoxscore   FetchKind = "boxscore"
)

// Event is one tracked game in the catalog. PlayCount and BoxRowCount are
// read-side aggregates filled in by the repository so the scheduler can tell
// a stale event apart from one with no ingested data at all.
type Event struct {
	ID          string
	Season      string
	ScheduledAt time.Time
	HomeTeam    string
	AwayTeam    string
	Status      string

	BoxFetchedAt *time.Time
	PBPFetchedAt *time.Time
	BoxFinalized bool
	PBPFinalized bool

	PlayCount   int
	BoxRowCount int
}

// Finalized reports whether the event is exempt from further refetching.
// Both feeds must be closed out; finalization is one-way.
func (e Event) Finalized() bool {
	return e.BoxFinalized && e.PBPFinalized
}

// LastFetchedAt returns the older of the two freshness timestamps, nil when
// either feed has never been fetched. Staleness of one feed is enough to
// make the whole event refetch-eligible.
func (e Event) LastFetchedAt() *time.Time {
	if e.BoxFetchedAt == nil || e.PBPFetchedAt == nil {
		return nil
	}
	if e.BoxFetchedAt.Before(*e.PBPFetchedAt) {
		return e.BoxFetchedAt
	}
	return e.PBPFetchedAt
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "IN_PROGRESS", "HALFTIME", "Q1", "Q2", "Q3", "Q4", "OT":
		return true
	default:
		return false
	}
}

func IsFinalStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinal, "FINAL/OT", "COMPLETED", "CLOSED":
		return true
	default:
		return false
	}
}
