package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/courtwire/courtwire/internal/domain/boxscore"
	"github.com/courtwire/courtwire/internal/domain/event"
	"github.com/courtwire/courtwire/internal/domain/gamestate"
	"github.com/courtwire/courtwire/internal/domain/play"
	"github.com/courtwire/courtwire/internal/platform/logging"
)

const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"

	CheckMissingPlayerBox   = "MISSING_PLAYER_BOX"
	CheckMissingTeamBox     = "MISSING_TEAM_BOX"
	CheckInvalidTeamCount   = "INVALID_TEAM_COUNT"
	CheckInvalidPlayerCount = "INVALID_PLAYER_COUNT"
	CheckLowMinutes         = "LOW_MINUTES"
	CheckNullPlayerFields   = "NULL_PLAYER_FIELDS"
	CheckMissingPBP         = "MISSING_PBP"
	CheckLowPlayCount       = "LOW_PLAY_COUNT"
	CheckStaleInProgressPBP = "STALE_INPROGRESS_PBP"
	CheckNoFinalState       = "NO_FINAL_STATE"

	// DefaultMinPlayCount is the floor under which a completed game's play
	// count is implausible. A normal game logs several hundred plays.
	DefaultMinPlayCount = 300
)

// ValidationIssue is one classified data-quality finding. Findings are never
// raised as errors; CRITICAL issues gate finalization decisions by the
// caller instead of throwing.
type ValidationIssue struct {
	CheckID  string `json:"check_id"`
	Severity string `json:"severity"`
	EventID  string `json:"event_id"`
	Count    int    `json:"count"`
	Message  string `json:"message"`
}

type ValidationResult struct {
	Issues []ValidationIssue `json:"issues"`
}

func (r ValidationResult) HasCriticalIssues() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

func (r ValidationResult) HasWarnings() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

func (r ValidationResult) Summary() string {
	critical := 0
	warnings := 0
	events := make(map[string]struct{}, len(r.Issues))
	for _, issue := range r.Issues {
		events[issue.EventID] = struct{}{}
		if issue.Severity == SeverityCritical {
			critical++
		} else {
			warnings++
		}
	}
	if len(r.Issues) == 0 {
		return "no issues"
	}
	return fmt.Sprintf("%d critical, %d warning issue(s) across %d event(s)", critical, warnings, len(events))
}

type ValidatorConfig struct {
	StalenessWindow time.Duration
	MinPlayCount    int
	MinRosterSize   int
	MaxRosterSize   int
	MinTeamMinutes  float64
}

// ValidatorService classifies completeness issues and drives the one-way
// finalization gate. Validation only reads; it never mutates data.
type ValidatorService struct {
	events    event.Repository
	plays     play.Repository
	states    gamestate.Repository
	boxscores boxscore.Repository
	cfg       ValidatorConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewValidatorService(
	events event.Repository,
	plays play.Repository,
	states gamestate.Repository,
	boxscores boxscore.Repository,
	cfg ValidatorConfig,
	logger *logging.Logger,
) *ValidatorService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = DefaultStalenessWindow
	}
	if cfg.MinPlayCount <= 0 {
		cfg.MinPlayCount = DefaultMinPlayCount
	}
	if cfg.MinRosterSize <= 0 {
		cfg.MinRosterSize = boxscore.MinRosterSize
	}
	if cfg.MaxRosterSize <= 0 {
		cfg.MaxRosterSize = boxscore.MaxRosterSize
	}
	if cfg.MinTeamMinutes <= 0 {
		cfg.MinTeamMinutes = boxscore.RegulationTeamMinutes
	}

	return &ValidatorService{
		events:    events,
		plays:     plays,
		states:    states,
		boxscores: boxscores,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ValidatorService) Validate(ctx context.Context, eventIDs []string) (ValidationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidatorService.Validate")
	defer span.End()

	result := ValidationResult{Issues: make([]ValidationIssue, 0, len(eventIDs))}
	now := s.now().UTC()

	for _, eventID := range eventIDs {
		issues, err := s.validateEvent(ctx, eventID, now)
		if err != nil {
			return ValidationResult{}, err
		}
		result.Issues = append(result.Issues, issues...)
	}

	sort.SliceStable(result.Issues, func(i, j int) bool {
		if result.Issues[i].EventID != result.Issues[j].EventID {
			return result.Issues[i].EventID < result.Issues[j].EventID
		}
		return result.Issues[i].CheckID < result.Issues[j].CheckID
	})

	return result, nil
}

func (s *ValidatorService) validateEvent(ctx context.Context, eventID string, now time.Time) ([]ValidationIssue, error) {
	item, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event %s for validation: %w", eventID, err)
	}

	issues := make([]ValidationIssue, 0, 4)
	terminal := event.IsFinalStatus(item.Status)

	playCount, err := s.plays.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count plays event=%s: %w", eventID, err)
	}

	if terminal {
		boxIssues, err := s.validateBoxscore(ctx, eventID)
		if err != nil {
			return nil, err
		}
		issues = append(issues, boxIssues...)

		switch {
		case playCount == 0:
			issues = append(issues, ValidationIssue{
				CheckID:  CheckMissingPBP,
				Severity: SeverityCritical,
				EventID:  eventID,
				Message:  "terminal event has no play records",
			})
		case playCount < s.cfg.MinPlayCount:
			issues = append(issues, ValidationIssue{
				CheckID:  CheckLowPlayCount,
				Severity: SeverityWarning,
				EventID:  eventID,
				Count:    playCount,
				Message:  fmt.Sprintf("terminal event has only %d plays (expected at least %d)", playCount, s.cfg.MinPlayCount),
			})
		}

		if playCount > 0 {
			hasFinal, err := s.states.HasFinalState(ctx, eventID)
			if err != nil {
				return nil, fmt.Errorf("check final state event=%s: %w", eventID, err)
			}
			if !hasFinal {
				issues = append(issues, ValidationIssue{
					CheckID:  CheckNoFinalState,
					Severity: SeverityWarning,
					EventID:  eventID,
					Message:  "terminal event has plays but no state flagged final",
				})
			}
		}
	}

	if event.IsLiveStatus(item.Status) {
		if item.PBPFetchedAt == nil || now.Sub(item.PBPFetchedAt.UTC()) > s.cfg.StalenessWindow {
			issues = append(issues, ValidationIssue{
				CheckID:  CheckStaleInProgressPBP,
				Severity: SeverityWarning,
				EventID:  eventID,
				Message:  "live event's play-by-play has not been fetched within the staleness window",
			})
		}
	}

	return issues, nil
}

func (s *ValidatorService) validateBoxscore(ctx context.Context, eventID string) ([]ValidationIssue, error) {
	players, err := s.boxscores.ListPlayersByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list player box event=%s: %w", eventID, err)
	}
	teams, err := s.boxscores.ListTeamsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list team box event=%s: %w", eventID, err)
	}

	issues := make([]ValidationIssue, 0, 4)

	if len(players) == 0 {
		issues = append(issues, ValidationIssue{
			CheckID:  CheckMissingPlayerBox,
			Severity: SeverityCritical,
			EventID:  eventID,
			Message:  "terminal event has no player boxscore rows",
		})
	}
	if len(teams) == 0 {
		issues = append(issues, ValidationIssue{
			CheckID:  CheckMissingTeamBox,
			Severity: SeverityCritical,
			EventID:  eventID,
			Message:  "terminal event has no team boxscore rows",
		})
	} else if teamCount := countDistinctTeams(teams); teamCount != 2 {
		issues = append(issues, ValidationIssue{
			CheckID:  CheckInvalidTeamCount,
			Severity: SeverityCritical,
			EventID:  eventID,
			Count:    teamCount,
			Message:  fmt.Sprintf("terminal event has %d team rows, expected exactly 2", teamCount),
		})
	}

	playersByTeam := make(map[string][]boxscore.PlayerLine, 2)
	for _, row := range players {
		playersByTeam[row.TeamTricode] = append(playersByTeam[row.TeamTricode], row)
	}

	teamCodes := make([]string, 0, len(playersByTeam))
	for code := range playersByTeam {
		teamCodes = append(teamCodes, code)
	}
	sort.Strings(teamCodes)

	for _, code := range teamCodes {
		rows := playersByTeam[code]
		if len(rows) < s.cfg.MinRosterSize || len(rows) > s.cfg.MaxRosterSize {
			issues = append(issues, ValidationIssue{
				CheckID:  CheckInvalidPlayerCount,
				Severity: SeverityWarning,
				EventID:  eventID,
				Count:    len(rows),
				Message:  fmt.Sprintf("team %s has %d player rows, outside [%d, %d]", code, len(rows), s.cfg.MinRosterSize, s.cfg.MaxRosterSize),
			})
		}

		minutes := 0.0
		nullFields := 0
		for _, row := range rows {
			minutes += row.Minutes
			if row.Minutes > 0 && (strings.TrimSpace(row.PlayerName) == "" || strings.TrimSpace(row.TeamTricode) == "") {
				nullFields++
			}
		}
		if minutes < s.cfg.MinTeamMinutes {
			issues = append(issues, ValidationIssue{
				CheckID:  CheckLowMinutes,
				Severity: SeverityWarning,
				EventID:  eventID,
				Message:  fmt.Sprintf("team %s has %.1f summed minutes, below %.0f", code, minutes, s.cfg.MinTeamMinutes),
			})
		}
		if nullFields > 0 {
			issues = append(issues, ValidationIssue{
				CheckID:  CheckNullPlayerFields,
				Severity: SeverityWarning,
				EventID:  eventID,
				Count:    nullFields,
				Message:  fmt.Sprintf("team %s has %d player rows with null always-expected fields", code, nullFields),
			})
		}
	}

	return issues, nil
}

// FinalizeEvents applies the one-way finalization gates for the given
// events and returns the ids whose boxscore side flipped this pass.
//
// Boxscore: terminal status AND each participating team independently has
// summed played-minutes at or above the regulation floor. One team's
// completeness never excuses the other's gap.
//
// Play-by-play: terminal status, a non-empty play sequence and a state
// flagged final.
func (s *ValidatorService) FinalizeEvents(ctx context.Context, eventIDs []string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidatorService.FinalizeEvents")
	defer span.End()

	finalized := make([]string, 0, len(eventIDs))
	for _, eventID := range eventIDs {
		item, err := s.events.Get(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("load event %s for finalization: %w", eventID, err)
		}
		if !event.IsFinalStatus(item.Status) {
			continue
		}

		if !item.BoxFinalized {
			ok, err := s.boxscoreComplete(ctx, eventID)
			if err != nil {
				return nil, err
			}
			if ok {
				if err := s.events.SetBoxscoreFinalized(ctx, eventID); err != nil {
					return nil, fmt.Errorf("finalize boxscore event=%s: %w", eventID, err)
				}
				finalized = append(finalized, eventID)
			}
		}

		if !item.PBPFinalized {
			ok, err := s.playByPlayComplete(ctx, eventID)
			if err != nil {
				return nil, err
			}
			if ok {
				if err := s.events.SetPlayByPlayFinalized(ctx, eventID); err != nil {
					return nil, fmt.Errorf("finalize play-by-play event=%s: %w", eventID, err)
				}
			}
		}
	}

	return finalized, nil
}

func (s *ValidatorService) boxscoreComplete(ctx context.Context, eventID string) (bool, error) {
	players, err := s.boxscores.ListPlayersByEvent(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("list player box event=%s: %w", eventID, err)
	}
	if len(players) == 0 {
		return false, nil
	}

	minutesByTeam := boxscore.SumPlayerMinutesByTeam(players)
	if len(minutesByTeam) != 2 {
		return false, nil
	}
	for _, minutes := range minutesByTeam {
		if minutes < s.cfg.MinTeamMinutes {
			return false, nil
		}
	}
	return true, nil
}

func (s *ValidatorService) playByPlayComplete(ctx context.Context, eventID string) (bool, error) {
	count, err := s.plays.CountByEvent(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("count plays event=%s: %w", eventID, err)
	}
	if count == 0 {
		return false, nil
	}
	return s.states.HasFinalState(ctx, eventID)
}

func countDistinctTeams(teams []boxscore.TeamLine) int {
	seen := make(map[string]struct{}, len(teams))
	for _, row := range teams {
		seen[row.TeamTricode] = struct{}{}
	}
	return len(seen)
}
