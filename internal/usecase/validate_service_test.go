package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/courtwire/courtwire/internal/domain/boxscore"
	"github.com/courtwire/courtwire/internal/domain/event"
	"github.com/courtwire/courtwire/internal/domain/play"
	"github.com/courtwire/courtwire/internal/infrastructure/repository/memory"
	"github.com/courtwire/courtwire/internal/platform/logging"
	"github.com/courtwire/courtwire/internal/usecase"
)

type validatorFixture struct {
	events    *memory.EventRepository
	plays     *memory.PlayRepository
	states    *memory.GameStateRepository
	boxscores *memory.BoxscoreRepository
	svc       *usecase.ValidatorService
}

func newValidatorFixture(t *testing.T, cfg usecase.ValidatorConfig) *validatorFixture {
	t.Helper()

	events := memory.NewEventRepository()
	plays := memory.NewPlayRepository()
	states := memory.NewGameStateRepository()
	boxscores := memory.NewBoxscoreRepository()
	events.WireAggregates(plays, boxscores)

	return &validatorFixture{
		events:    events,
		plays:     plays,
		states:    states,
		boxscores: boxscores,
		svc:       usecase.NewValidatorService(events, plays, states, boxscores, cfg, logging.NewNop()),
	}
}

func (f *validatorFixture) addEvent(t *testing.T, item event.Event) {
	t.Helper()
	if _, err := f.events.UpsertMany(context.Background(), []event.Event{item}); err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func (f *validatorFixture) addPlays(t *testing.T, eventID string, count int, withTerminal bool) {
	t.Helper()

	items := make([]play.NormalizedPlay, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, play.NormalizedPlay{
			EventID:       eventID,
			SequenceIndex: i,
			OrderKey:      int64(i + 1),
			Source:        play.SourceLive,
			Period:        1,
			Clock:         "PT10M00S",
			Description:   fmt.Sprintf("play %d", i),
		})
	}
	if withTerminal && count > 0 {
		items[count-1].IsTerminal = true
		items[count-1].ActionType = "game"
		items[count-1].SubType = "end"
	}

	if _, err := f.plays.ReplaceForEvent(context.Background(), eventID, items); err != nil {
		t.Fatalf("seed plays: %v", err)
	}

	states := usecase.ReconstructStates(items)
	if _, err := f.states.ReplaceForEvent(context.Background(), eventID, states); err != nil {
		t.Fatalf("seed states: %v", err)
	}
}

func (f *validatorFixture) addBoxscore(t *testing.T, eventID string, minutesPerTeam map[string]float64) {
	t.Helper()

	players := make([]boxscore.PlayerLine, 0, 16)
	teams := make([]boxscore.TeamLine, 0, 2)
	personID := int64(1)
	for code, total := range minutesPerTeam {
		// Eight players splitting the team total evenly.
		for i := 0; i < 8; i++ {
			players = append(players, boxscore.PlayerLine{
				EventID:     eventID,
				PersonID:    personID,
				TeamTricode: code,
				PlayerName:  fmt.Sprintf("Player %d", personID),
				Minutes:     total / 8,
			})
			personID++
		}
		teams = append(teams, boxscore.TeamLine{EventID: eventID, TeamTricode: code, Minutes: total})
	}

	if _, err := f.boxscores.ReplaceForEvent(context.Background(), eventID, players, teams); err != nil {
		t.Fatalf("seed boxscore: %v", err)
	}
}

func issueIDs(result usecase.ValidationResult) []string {
	out := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		out = append(out, issue.CheckID)
	}
	return out
}

func hasIssue(result usecase.ValidationResult, checkID string) bool {
	for _, issue := range result.Issues {
		if issue.CheckID == checkID {
			return true
		}
	}
	return false
}

func TestValidator_TerminalEventMissingEverything(t *testing.T) {
	f := newValidatorFixture(t, usecase.ValidatorConfig{})
	f.addEvent(t, event.Event{ID: "evt-1", Season: "2025-26", Status: event.StatusFinal})

	result, err := f.svc.Validate(context.Background(), []string{"evt-1"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	for _, want := range []string{usecase.CheckMissingPBP, usecase.CheckMissingPlayerBox, usecase.CheckMissingTeamBox} {
		if !hasIssue(result, want) {
			t.Fatalf("missing %s in %v", want, issueIDs(result))
		}
	}
	if !result.HasCriticalIssues() {
		t.Fatal("empty terminal event must raise critical issues")
	}
}

func TestValidator_LowPlayCountIsWarningNotCritical(t *testing.T) {
	f := newValidatorFixture(t, usecase.ValidatorConfig{MinPlayCount: 100})
	f.addEvent(t, event.Event{ID: "evt-1", Season: "2025-26", Status: event.StatusFinal})
	f.addPlays(t, "evt-1", 50, true)
	f.addBoxscore(t, "evt-1", map[string]float64{"BOS": 240, "LAL": 240})

	result, err := f.svc.Validate(context.Background(), []string{"evt-1"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if !hasIssue(result, usecase.CheckLowPlayCount) {
		t.Fatalf("expected LOW_PLAY_COUNT in %v", issueIDs(result))
	}
	if result.HasCriticalIssues() {
		t.Fatalf("low play count alone must not be critical: %v", issueIDs(result))
	}
}

func TestValidator_NoFinalStateWarning(t *testing.T) {
	f := newValidatorFixture(t, usecase.ValidatorConfig{MinPlayCount: 10})
	f.addEvent(t, event.Event{ID: "evt-1", Season: "2025-26", Status: event.StatusFinal})
	f.addPlays(t, "evt-1", 20, false)
	f.addBoxscore(t, "evt-1", map[string]float64{"BOS": 240, "LAL": 240})

	result, err := f.svc.Validate(context.Background(), []string{"evt-1"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if !hasIssue(result, usecase.CheckNoFinalState) {
		t.Fatalf("expected NO_FINAL_STATE in %v", issueIDs(result))
	}
}

func TestValidator_StaleLivePlayByPlay(t *testing.T) {
	f := newValidatorFixture(t, usecase.ValidatorConfig{StalenessWindow: 5 * time.Minute})
	f.addEvent(t, event.Event{ID: "evt-1", Season: "2025-26", Status: event.StatusLive})

	stale := time.Now().UTC().Add(-time.Hour)
	if err := f.events.MarkFetchAttempt(context.Background(), "evt-1", event.FetchPlayByPlay, stale); err != nil {
		t.Fatalf("mark fetch: %v", err)
	}

	result, err := f.svc.Validate(context.Background(), []string{"evt-1"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if !hasIssue(result, usecase.CheckStaleInProgressPBP) {
		t.Fatalf("expected STALE_INPROGRESS_PBP in %v", issueIDs(result))
	}
}

func TestValidator_FinalizeBoxscoreMinutesFloor(t *testing.T) {
	f := newValidatorFixture(t, usecase.ValidatorConfig{})

	f.addEvent(t, event.Event{ID: "evt-full", Season: "2025-26", Status: event.StatusFinal})
	f.addBoxscore(t, "evt-full", map[string]float64{"BOS": 240, "LAL": 240})

	f.addEvent(t, event.Event{ID: "evt-short", Season: "2025-26", Status: event.StatusFinal})
	f.addBoxscore(t, "evt-short", map[string]float64{"BOS": 240, "LAL": 236})

	finalized, err := f.svc.FinalizeEvents(context.Background(), []string{"evt-full", "evt-short"})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if len(finalized) != 1 || finalized[0] != "evt-full" {
		t.Fatalf("only the complete event may finalize, got %v", finalized)
	}

	full, err := f.events.Get(context.Background(), "evt-full")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !full.BoxFinalized {
		t.Fatal("boxscore flag must be set after finalization")
	}

	short, err := f.events.Get(context.Background(), "evt-short")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if short.BoxFinalized {
		t.Fatal("one short team must block boxscore finalization")
	}
}

func TestValidator_FinalizePlayByPlayNeedsFinalState(t *testing.T) {
	f := newValidatorFixture(t, usecase.ValidatorConfig{MinPlayCount: 10})

	f.addEvent(t, event.Event{ID: "evt-open", Season: "2025-26", Status: event.StatusFinal})
	f.addPlays(t, "evt-open", 20, false)

	f.addEvent(t, event.Event{ID: "evt-closed", Season: "2025-26", Status: event.StatusFinal})
	f.addPlays(t, "evt-closed", 20, true)

	if _, err := f.svc.FinalizeEvents(context.Background(), []string{"evt-open", "evt-closed"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	open, _ := f.events.Get(context.Background(), "evt-open")
	if open.PBPFinalized {
		t.Fatal("no final state, play-by-play must stay open")
	}

	closed, _ := f.events.Get(context.Background(), "evt-closed")
	if !closed.PBPFinalized {
		t.Fatal("terminal sequence with a final state must finalize")
	}
}

func TestValidator_LiveEventNeverFinalizes(t *testing.T) {
	f := newValidatorFixture(t, usecase.ValidatorConfig{})
	f.addEvent(t, event.Event{ID: "evt-1", Season: "2025-26", Status: event.StatusLive})
	f.addPlays(t, "evt-1", 20, true)
	f.addBoxscore(t, "evt-1", map[string]float64{"BOS": 240, "LAL": 240})

	finalized, err := f.svc.FinalizeEvents(context.Background(), []string{"evt-1"})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(finalized) != 0 {
		t.Fatalf("live event must never finalize, got %v", finalized)
	}
}
