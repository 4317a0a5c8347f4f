package liveapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/courtwire/courtwire/internal/platform/logging"
	"github.com/courtwire/courtwire/internal/platform/resilience"
	"github.com/courtwire/courtwire/internal/usecase"
)

const playByPlayBody = `{
	"game": {
		"gameId": "0022500123",
		"actions": [
			{"actionNumber": 2, "orderNumber": 20000, "clock": "PT11M45S", "period": 1,
			 "scoreHome": "2", "scoreAway": "0", "actionType": "2pt", "subType": "Layup",
			 "description": "J. Tatum driving Layup (2 PTS)", "personId": 1628369,
			 "playerNameI": "J. Tatum", "teamTricode": "BOS", "pointsTotal": 2},
			{"actionNumber": 1, "orderNumber": 10000, "clock": "PT12M00S", "period": 1,
			 "scoreHome": "", "scoreAway": "", "actionType": "period", "subType": "start",
			 "description": "Period Start", "personId": 0, "pointsTotal": null}
		]
	}
}`

const boxscoreBody = `{
	"game": {
		"gameId": "0022500123",
		"homeTeam": {
			"teamId": 1610612738, "teamTricode": "BOS",
			"statistics": {"minutesCalculated": "PT240M", "points": 108, "reboundsTotal": 44, "assists": 25},
			"players": [
				{"personId": 1628369, "name": "Jayson Tatum",
				 "statistics": {"minutes": "PT34M12.00S", "points": 30, "reboundsTotal": 8, "assists": 5}}
			]
		},
		"awayTeam": {
			"teamId": 1610612747, "teamTricode": "LAL",
			"statistics": {"minutesCalculated": "PT240M", "points": 102, "reboundsTotal": 40, "assists": 22},
			"players": [
				{"personId": 2544, "name": "LeBron James",
				 "statistics": {"minutes": "PT36M03.00S", "points": 28, "reboundsTotal": 9, "assists": 11}}
			]
		}
	}
}`

func newTestClient(serverURL string, maxRetries int) *Client {
	return NewClient(ClientConfig{
		BaseURL:    serverURL,
		MaxRetries: maxRetries,
		Logger:     logging.NewNop(),
	})
}

func TestFetchPlayByPlay_MapsActions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playbyplay/playbyplay_0022500123.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(playByPlayBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)

	raws, payload, err := client.FetchPlayByPlay(context.Background(), "0022500123")
	if err != nil {
		t.Fatalf("fetch play-by-play: %v", err)
	}

	if len(raws) != 2 {
		t.Fatalf("expected 2 raw plays, got %d", len(raws))
	}

	shot := raws[0]
	if shot.LiveOrder == nil || *shot.LiveOrder != 20000 {
		t.Fatalf("order number: got=%v", shot.LiveOrder)
	}
	if shot.HomeScore == nil || *shot.HomeScore != 2 {
		t.Fatalf("home score must parse from string: %v", shot.HomeScore)
	}
	if shot.PersonID == nil || *shot.PersonID != 1628369 {
		t.Fatalf("person id: got=%v", shot.PersonID)
	}
	if shot.PointsTotal == nil || *shot.PointsTotal != 2 {
		t.Fatalf("points total: got=%v", shot.PointsTotal)
	}

	start := raws[1]
	if start.HomeScore != nil {
		t.Fatal("blank score strings must stay nil")
	}
	if start.PersonID != nil {
		t.Fatal("personId 0 must stay nil")
	}

	if payload.Hash == "" || len(payload.Body) == 0 {
		t.Fatal("payload must carry body and hash")
	}
}

func TestFetchBoxscore_MapsBothTeams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(boxscoreBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)

	players, teams, _, err := client.FetchBoxscore(context.Background(), "0022500123")
	if err != nil {
		t.Fatalf("fetch boxscore: %v", err)
	}

	if len(teams) != 2 {
		t.Fatalf("expected 2 team lines, got %d", len(teams))
	}
	if teams[0].TeamTricode != "BOS" || teams[0].Minutes != 240 {
		t.Fatalf("home team line: %+v", teams[0])
	}

	if len(players) != 2 {
		t.Fatalf("expected 2 player lines, got %d", len(players))
	}
	if players[0].PersonID != 1628369 || players[0].TeamTricode != "BOS" {
		t.Fatalf("home player line: %+v", players[0])
	}
	if players[0].Minutes < 34.19 || players[0].Minutes > 34.21 {
		t.Fatalf("minutes conversion: got=%f", players[0].Minutes)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(playByPlayBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)

	if _, _, err := client.FetchPlayByPlay(context.Background(), "0022500123"); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestClient_DoesNotRetryHardFailure(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)

	if _, _, err := client.FetchPlayByPlay(context.Background(), "0022500123"); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried, got %d attempts", calls.Load())
	}
}

func TestClient_CircuitOpenMapsToDependencyUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		MaxRetries: 0,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
		},
	})

	if _, _, err := client.FetchPlayByPlay(context.Background(), "0022500123"); err == nil {
		t.Fatal("first request must fail")
	}

	_, _, err := client.FetchPlayByPlay(context.Background(), "0022500123")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("open breaker must map to ErrDependencyUnavailable, got %v", err)
	}
}

func TestClient_RequiresEventID(t *testing.T) {
	client := newTestClient("http://localhost:1", 0)

	if _, _, err := client.FetchPlayByPlay(context.Background(), "  "); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseISOMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"PT34M12.00S", 34.2},
		{"PT240M", 240},
		{"PT00M00.00S", 0},
		{"garbage", 0},
		{"", 0},
	}

	for _, tc := range cases {
		got := parseISOMinutes(tc.in)
		if got < tc.want-0.001 || got > tc.want+0.001 {
			t.Fatalf("parseISOMinutes(%q): got=%f want=%f", tc.in, got, tc.want)
		}
	}
}
