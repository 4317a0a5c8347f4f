package statsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courtwire/courtwire/internal/domain/play"
	"github.com/courtwire/courtwire/internal/platform/logging"
)

const playByPlayBody = `{
	"game_id": "0022500123",
	"plays": [
		{"event_num": 7, "period": 1, "clock": "10:23", "score": "0 - 2",
		 "event_type": "1", "event_action": "5",
		 "home_description": "Tatum 2' Driving Layup (2 PTS)",
		 "player1_id": 1628369, "player1_name": "Jayson Tatum", "player1_team_abbreviation": "BOS"},
		{"event_num": 9, "period": 1, "clock": "10:01",
		 "visitor_description": "James 25' 3PT Jump Shot (3 PTS)",
		 "event_type": "1", "event_action": "1",
		 "player1_id": 2544, "player1_name": "LeBron James", "player1_team_abbreviation": "LAL"},
		{"event_num": 11, "period": 1, "clock": "9:45",
		 "neutral_description": "Official Timeout", "event_type": "9", "event_action": "0"}
	]
}`

const boxscoreBody = `{
	"game_id": "0022500123",
	"player_stats": [
		{"player_id": 1628369, "player_name": "Jayson Tatum", "team_abbreviation": "BOS",
		 "min": "34:12", "pts": 30, "reb": 8, "ast": 5},
		{"player_id": 0, "player_name": "", "team_abbreviation": "BOS", "min": "", "pts": 0, "reb": 0, "ast": 0}
	],
	"team_stats": [
		{"team_id": 1610612738, "team_abbreviation": "BOS", "min": "240:00", "pts": 108, "reb": 44, "ast": 25},
		{"team_id": 1610612747, "team_abbreviation": "LAL", "min": "240:00", "pts": 102, "reb": 40, "ast": 22}
	]
}`

func newTestClient(serverURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL: serverURL,
		Logger:  logging.NewNop(),
	})
}

func TestFetchPlayByPlay_MapsRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/game/0022500123/playbyplay" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(playByPlayBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	raws, payload, err := client.FetchPlayByPlay(context.Background(), "0022500123")
	if err != nil {
		t.Fatalf("fetch play-by-play: %v", err)
	}

	if len(raws) != 3 {
		t.Fatalf("expected 3 raw plays, got %d", len(raws))
	}

	first := raws[0]
	if first.Source != play.SourceStats {
		t.Fatalf("source: got=%q", first.Source)
	}
	if first.StatsEventNum == nil || *first.StatsEventNum != 7 {
		t.Fatalf("event num: got=%v", first.StatsEventNum)
	}
	if first.Description != "Tatum 2' Driving Layup (2 PTS)" {
		t.Fatalf("home description must win: %q", first.Description)
	}
	// Score string is away-first.
	if first.AwayScore == nil || *first.AwayScore != 0 {
		t.Fatalf("away score: got=%v", first.AwayScore)
	}
	if first.HomeScore == nil || *first.HomeScore != 2 {
		t.Fatalf("home score: got=%v", first.HomeScore)
	}

	second := raws[1]
	if second.Description != "James 25' 3PT Jump Shot (3 PTS)" {
		t.Fatalf("visitor description fallback: %q", second.Description)
	}
	if second.HomeScore != nil {
		t.Fatal("missing score string must stay nil")
	}

	third := raws[2]
	if third.Description != "Official Timeout" {
		t.Fatalf("neutral description fallback: %q", third.Description)
	}
	if third.PersonID != nil {
		t.Fatal("player1_id 0 must stay nil")
	}

	if payload.Source != play.SourceStats || payload.Hash == "" {
		t.Fatalf("payload metadata: %+v", payload)
	}
}

func TestFetchBoxscore_MapsStatRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(boxscoreBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	players, teams, _, err := client.FetchBoxscore(context.Background(), "0022500123")
	if err != nil {
		t.Fatalf("fetch boxscore: %v", err)
	}

	if len(players) != 1 {
		t.Fatalf("zero player_id rows must be dropped, got %d", len(players))
	}
	if players[0].Minutes < 34.19 || players[0].Minutes > 34.21 {
		t.Fatalf("minutes conversion: got=%f", players[0].Minutes)
	}
	if players[0].Points != 30 {
		t.Fatalf("points: got=%d", players[0].Points)
	}

	if len(teams) != 2 {
		t.Fatalf("expected 2 team lines, got %d", len(teams))
	}
	if teams[0].Minutes != 240 {
		t.Fatalf("team minutes: got=%f", teams[0].Minutes)
	}
}

func TestParseScore(t *testing.T) {
	away, home, ok := parseScore("98 - 102")
	if !ok || away != 98 || home != 102 {
		t.Fatalf("parseScore: got=%d/%d ok=%t", away, home, ok)
	}

	if _, _, ok := parseScore(""); ok {
		t.Fatal("empty score must not parse")
	}
	if _, _, ok := parseScore("TIE"); ok {
		t.Fatal("non-numeric score must not parse")
	}
}

func TestParseMMSSMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"34:12", 34.2},
		{"240:00", 240},
		{"0:30", 0.5},
		{"DNP", 0},
		{"", 0},
	}

	for _, tc := range cases {
		got := parseMMSSMinutes(tc.in)
		if got < tc.want-0.001 || got > tc.want+0.001 {
			t.Fatalf("parseMMSSMinutes(%q): got=%f want=%f", tc.in, got, tc.want)
		}
	}
}
