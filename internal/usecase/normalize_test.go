package usecase

import (
	"testing"

	"github.com/courtwire/courtwire/internal/domain/play"
)

func TestNormalizePlays_OrdersAndIndexes(t *testing.T) {
	raws := []play.RawPlay{
		liveRaw(30, "Jump ball won"),
		liveRaw(10, "Period start"),
		liveRaw(20, "Tip-off"),
	}

	got := NormalizePlays("evt-1", raws)

	if len(got) != 3 {
		t.Fatalf("unexpected play count: %d", len(got))
	}
	for i, item := range got {
		if item.SequenceIndex != i {
			t.Fatalf("sequence index not dense at %d: got=%d", i, item.SequenceIndex)
		}
		if item.EventID != "evt-1" {
			t.Fatalf("event id not stamped: %q", item.EventID)
		}
	}
	if got[0].OrderKey != 10 || got[1].OrderKey != 20 || got[2].OrderKey != 30 {
		t.Fatalf("plays not sorted by order key: %d %d %d", got[0].OrderKey, got[1].OrderKey, got[2].OrderKey)
	}
}

func TestNormalizePlays_DropsUnusableRecords(t *testing.T) {
	raws := []play.RawPlay{
		liveRaw(1, "   "),
		{Source: play.SourceLive, Description: "no order key"},
		{Source: "unknown", Description: "bad source"},
		liveRaw(2, "kept"),
	}

	got := NormalizePlays("evt-1", raws)

	if len(got) != 1 {
		t.Fatalf("expected only the usable record to survive, got %d", len(got))
	}
	if got[0].Description != "kept" {
		t.Fatalf("wrong record survived: %q", got[0].Description)
	}
}

func TestNormalizePlays_AppliesDefaults(t *testing.T) {
	got := NormalizePlays("evt-1", []play.RawPlay{liveRaw(1, "bare record")})

	if len(got) != 1 {
		t.Fatalf("unexpected play count: %d", len(got))
	}
	item := got[0]
	if item.Period != 1 {
		t.Fatalf("default period: got=%d want=1", item.Period)
	}
	if item.Clock != play.ClockPeriodStart {
		t.Fatalf("default clock: got=%q want=%q", item.Clock, play.ClockPeriodStart)
	}
	if item.HomeScore != 0 || item.AwayScore != 0 {
		t.Fatalf("default scores: got=%d/%d", item.HomeScore, item.AwayScore)
	}
	if item.PlayerPoints != nil {
		t.Fatal("no attribution expected on a bare record")
	}
}

func TestNormalizePlays_EmptyInputYieldsEmptySlice(t *testing.T) {
	got := NormalizePlays("evt-1", nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected non-nil empty slice, got %#v", got)
	}
}

func TestNormalizePlays_LiveAttributionAndTerminal(t *testing.T) {
	person := int64(1628369)
	points := 12

	end := liveRaw(999, "Game End")
	end.ActionType = "game"
	end.SubType = "end"

	shot := liveRaw(500, "J. Tatum 3PT shot made")
	shot.PersonID = &person
	shot.PointsTotal = &points
	shot.PlayerName = "J. Tatum"
	shot.TeamTricode = "bos"

	got := NormalizePlays("evt-1", []play.RawPlay{shot, end})

	if got[0].PersonID != person {
		t.Fatalf("person id: got=%d want=%d", got[0].PersonID, person)
	}
	if got[0].PlayerPoints == nil || *got[0].PlayerPoints != 12 {
		t.Fatalf("player points: got=%v want=12", got[0].PlayerPoints)
	}
	if got[0].TeamTricode != "BOS" {
		t.Fatalf("tricode not upper-cased: %q", got[0].TeamTricode)
	}
	if got[0].IsTerminal {
		t.Fatal("shot must not be terminal")
	}
	if !got[1].IsTerminal {
		t.Fatal("game end action must be terminal")
	}
}

func TestNormalizePlays_StatsClockAndEmbeddedPoints(t *testing.T) {
	person := int64(201939)
	clock := "7:45"

	raw := statsRaw(42, "Curry 27' 3PT Jump Shot (12 PTS)")
	raw.PersonID = &person
	raw.Clock = &clock

	got := NormalizePlays("evt-1", []play.RawPlay{raw})

	if got[0].Clock != "PT07M45S" {
		t.Fatalf("clock conversion: got=%q want=PT07M45S", got[0].Clock)
	}
	if got[0].PlayerPoints == nil || *got[0].PlayerPoints != 12 {
		t.Fatalf("embedded points: got=%v want=12", got[0].PlayerPoints)
	}
}

func TestNormalizePlays_StatsUnparsedPointsKeepsPlay(t *testing.T) {
	person := int64(201939)
	raw := statsRaw(42, "Curry driving layup")
	raw.PersonID = &person

	got := NormalizePlays("evt-1", []play.RawPlay{raw})

	if len(got) != 1 {
		t.Fatalf("play must survive an unmatched points pattern, got %d", len(got))
	}
	if got[0].PlayerPoints != nil {
		t.Fatalf("expected nil points without a (N PTS) match, got %d", *got[0].PlayerPoints)
	}
	if got[0].PersonID != person {
		t.Fatalf("person id must still carry: got=%d", got[0].PersonID)
	}
}

func TestNormalizePlays_StatsTerminalDetection(t *testing.T) {
	endPeriod := statsRaw(500, "End of 3rd Period")
	endPeriod.ActionType = "13"

	endGame := statsRaw(999, "Game End")
	endGame.ActionType = "13"

	got := NormalizePlays("evt-1", []play.RawPlay{endPeriod, endGame})

	if got[0].IsTerminal {
		t.Fatal("period end must not be terminal")
	}
	if !got[1].IsTerminal {
		t.Fatal("game end must be terminal")
	}
}

func liveRaw(order int64, description string) play.RawPlay {
	return play.RawPlay{
		Source:      play.SourceLive,
		LiveOrder:   &order,
		Description: description,
	}
}

func statsRaw(eventNum int64, description string) play.RawPlay {
	return play.RawPlay{
		Source:        play.SourceStats,
		StatsEventNum: &eventNum,
		Description:   description,
	}
}
