package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/courtwire/courtwire/internal/domain/boxscore"
	"github.com/courtwire/courtwire/internal/domain/event"
	"github.com/courtwire/courtwire/internal/domain/play"
	"github.com/courtwire/courtwire/internal/domain/rawpayload"
	"github.com/courtwire/courtwire/internal/platform/logging"
)

type fakeFeed struct {
	mu       sync.Mutex
	source   string
	failPBP  map[string]error
	failBox  map[string]error
	pbpCalls []string
}

func newFakeFeed(source string) *fakeFeed {
	return &fakeFeed{
		source:  source,
		failPBP: make(map[string]error),
		failBox: make(map[string]error),
	}
}

func (f *fakeFeed) Source() string { return f.source }

func (f *fakeFeed) FetchPlayByPlay(_ context.Context, eventID string) ([]play.RawPlay, rawpayload.Payload, error) {
	f.mu.Lock()
	f.pbpCalls = append(f.pbpCalls, eventID)
	f.mu.Unlock()

	if err := f.failPBP[eventID]; err != nil {
		return nil, rawpayload.Payload{}, err
	}

	order := int64(1)
	raws := []play.RawPlay{{
		Source:      f.source,
		LiveOrder:   &order,
		Description: "record from " + f.source,
	}}
	payload := rawpayload.New(f.source, eventID, "/pbp", []byte(`{}`), time.Now())
	return raws, payload, nil
}

func (f *fakeFeed) FetchBoxscore(_ context.Context, eventID string) ([]boxscore.PlayerLine, []boxscore.TeamLine, rawpayload.Payload, error) {
	if err := f.failBox[eventID]; err != nil {
		return nil, nil, rawpayload.Payload{}, err
	}

	players := []boxscore.PlayerLine{{EventID: eventID, PersonID: 1, TeamTricode: "BOS", PlayerName: "Player One", Minutes: 30}}
	teams := []boxscore.TeamLine{{EventID: eventID, TeamTricode: "BOS", Minutes: 240}}
	payload := rawpayload.New(f.source, eventID, "/box", []byte(`{}`), time.Now())
	return players, teams, payload, nil
}

func (f *fakeFeed) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.pbpCalls...)
}

func TestFetchService_FailureIsolation(t *testing.T) {
	live := newFakeFeed(play.SourceLive)
	live.failPBP["evt-bad"] = errors.New("upstream exploded")
	stats := newFakeFeed(play.SourceStats)
	stats.failPBP["evt-bad"] = errors.New("upstream exploded here too")

	svc := NewFetchService(live, stats, FetchConfig{Workers: 2}, logging.NewNop())

	events := []event.Event{
		{ID: "evt-good", Status: event.StatusLive},
		{ID: "evt-bad", Status: event.StatusLive},
	}

	got, err := svc.FetchEvents(context.Background(), events)
	if err != nil {
		t.Fatalf("batch fetch must not fail on per-event errors: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected a result per event, got %d", len(got))
	}
	if got["evt-good"].Empty() {
		t.Fatal("healthy event must yield data")
	}
	if !got["evt-bad"].Empty() {
		t.Fatal("failed event must yield an empty result")
	}
}

func TestFetchService_LiveEventPrefersLiveFeed(t *testing.T) {
	live := newFakeFeed(play.SourceLive)
	stats := newFakeFeed(play.SourceStats)
	svc := NewFetchService(live, stats, FetchConfig{Workers: 1}, logging.NewNop())

	got, err := svc.FetchEvents(context.Background(), []event.Event{{ID: "evt-1", Status: event.StatusLive}})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if got["evt-1"].Source != play.SourceLive {
		t.Fatalf("live event must resolve from the live feed, got %q", got["evt-1"].Source)
	}
	if len(stats.calls()) != 0 {
		t.Fatalf("stats feed must not be consulted when live succeeds, got %v", stats.calls())
	}
}

func TestFetchService_TerminalEventPrefersStatsFeed(t *testing.T) {
	live := newFakeFeed(play.SourceLive)
	stats := newFakeFeed(play.SourceStats)
	svc := NewFetchService(live, stats, FetchConfig{Workers: 1}, logging.NewNop())

	got, err := svc.FetchEvents(context.Background(), []event.Event{{ID: "evt-1", Status: event.StatusFinal}})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if got["evt-1"].Source != play.SourceStats {
		t.Fatalf("terminal event must resolve from the stats feed, got %q", got["evt-1"].Source)
	}
}

func TestFetchService_FallsBackWhenPreferredFeedFails(t *testing.T) {
	live := newFakeFeed(play.SourceLive)
	live.failPBP["evt-1"] = errors.New("cdn outage")
	stats := newFakeFeed(play.SourceStats)
	svc := NewFetchService(live, stats, FetchConfig{Workers: 1}, logging.NewNop())

	got, err := svc.FetchEvents(context.Background(), []event.Event{{ID: "evt-1", Status: event.StatusLive}})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if got["evt-1"].Source != play.SourceStats {
		t.Fatalf("expected fallback to the stats feed, got %q", got["evt-1"].Source)
	}
}

func TestFetchService_NoFeedsConfigured(t *testing.T) {
	svc := NewFetchService(nil, nil, FetchConfig{}, logging.NewNop())

	if _, err := svc.FetchEvents(context.Background(), []event.Event{{ID: "evt-1"}}); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestFetchService_BoxscoreFailureKeepsPlays(t *testing.T) {
	live := newFakeFeed(play.SourceLive)
	live.failBox["evt-1"] = errors.New("boxscore endpoint down")
	svc := NewFetchService(live, nil, FetchConfig{Workers: 1}, logging.NewNop())

	got, err := svc.FetchEvents(context.Background(), []event.Event{{ID: "evt-1", Status: event.StatusLive}})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	result := got["evt-1"]
	if len(result.RawPlays) == 0 {
		t.Fatal("plays fetched before the boxscore failure must be kept")
	}
	if len(result.PlayerBox) != 0 || len(result.TeamBox) != 0 {
		t.Fatal("boxscore must stay empty after its fetch failed")
	}
}
