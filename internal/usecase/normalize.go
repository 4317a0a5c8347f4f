package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/courtwire/courtwire/internal/domain/play"
)

const (
	liveActionGame    = "game"
	liveSubTypeEnd    = "end"
	statsActionEndPer = "13"
	statsGameEndText  = "game end"
)

// statsPointsRegex matches the cumulative point total the stats feed embeds
// in its free-text descriptions, e.g. "Tatum 25' 3PT Jump Shot (12 PTS)".
var statsPointsRegex = regexp.MustCompile(`\((\d+)\s*PTS\)`)

// mmssClockRegex matches the stats feed's "MM:SS" period clock.
var mmssClockRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// sourceParser resolves the source-specific parts of a raw record. The two
// implementations keep all schema divergence out of downstream code.
type sourceParser interface {
	orderKey(raw play.RawPlay) (int64, bool)
	isTerminal(raw play.RawPlay) bool
	clock(raw play.RawPlay) string
	playerPoints(raw play.RawPlay) (int64, *int)
}

// NormalizePlays converts raw heterogeneous records into the canonical
// ordered sequence. Records without a description are dropped before
// normalization; so are records missing their source's ordering key. The
// result is always a non-nil slice, empty when nothing survives.
func NormalizePlays(eventID string, raws []play.RawPlay) []play.NormalizedPlay {
	out := make([]play.NormalizedPlay, 0, len(raws))

	for _, raw := range raws {
		description := strings.TrimSpace(raw.Description)
		if description == "" {
			// Not renderable and useless for terminal detection: not a play.
			continue
		}

		parser, ok := parserForSource(raw.Source)
		if !ok {
			continue
		}
		key, ok := parser.orderKey(raw)
		if !ok {
			continue
		}

		personID, points := parser.playerPoints(raw)

		normalized := play.NormalizedPlay{
			EventID:      eventID,
			OrderKey:     key,
			Source:       raw.Source,
			Period:       1,
			Clock:        parser.clock(raw),
			ActionType:   strings.TrimSpace(raw.ActionType),
			SubType:      strings.TrimSpace(raw.SubType),
			Description:  description,
			PersonID:     personID,
			PlayerName:   strings.TrimSpace(raw.PlayerName),
			TeamTricode:  strings.ToUpper(strings.TrimSpace(raw.TeamTricode)),
			PlayerPoints: points,
			IsTerminal:   parser.isTerminal(raw),
		}
		if raw.Period != nil && *raw.Period > 0 {
			normalized.Period = *raw.Period
		}
		if raw.HomeScore != nil {
			normalized.HomeScore = *raw.HomeScore
		}
		if raw.AwayScore != nil {
			normalized.AwayScore = *raw.AwayScore
		}

		out = append(out, normalized)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderKey < out[j].OrderKey
	})
	for i := range out {
		out[i].SequenceIndex = i
	}

	return out
}

func parserForSource(source string) (sourceParser, bool) {
	switch source {
	case play.SourceLive:
		return liveParser{}, true
	case play.SourceStats:
		return statsParser{}, true
	default:
		return nil, false
	}
}

// liveParser handles the low-latency feed: monotonic order number, ISO-8601
// period clock, structured actor and cumulative point total.
type liveParser struct{}

func (liveParser) orderKey(raw play.RawPlay) (int64, bool) {
	if raw.LiveOrder == nil {
		return 0, false
	}
	return *raw.LiveOrder, true
}

func (liveParser) isTerminal(raw play.RawPlay) bool {
	return strings.EqualFold(strings.TrimSpace(raw.ActionType), liveActionGame) &&
		strings.EqualFold(strings.TrimSpace(raw.SubType), liveSubTypeEnd)
}

func (liveParser) clock(raw play.RawPlay) string {
	if raw.Clock == nil {
		return play.ClockPeriodStart
	}
	clock := strings.TrimSpace(*raw.Clock)
	if clock == "" {
		return play.ClockPeriodStart
	}
	return clock
}

func (liveParser) playerPoints(raw play.RawPlay) (int64, *int) {
	if raw.PersonID == nil || *raw.PersonID <= 0 {
		return 0, nil
	}
	if raw.PointsTotal == nil {
		return *raw.PersonID, nil
	}
	points := *raw.PointsTotal
	return *raw.PersonID, &points
}

// statsParser handles the post-game feed: monotonic event number, "MM:SS"
// period clock, point totals embedded in description text. The text match
// is best-effort enrichment only; a failed match keeps the play and just
// skips per-player attribution.
type statsParser struct{}

func (statsParser) orderKey(raw play.RawPlay) (int64, bool) {
	if raw.StatsEventNum == nil {
		return 0, false
	}
	return *raw.StatsEventNum, true
}

func (statsParser) isTerminal(raw play.RawPlay) bool {
	if strings.TrimSpace(raw.ActionType) != statsActionEndPer {
		return false
	}
	return strings.Contains(strings.ToLower(raw.Description), statsGameEndText)
}

func (statsParser) clock(raw play.RawPlay) string {
	if raw.Clock == nil {
		return play.ClockPeriodStart
	}
	clock := strings.TrimSpace(*raw.Clock)
	if clock == "" {
		return play.ClockPeriodStart
	}
	if match := mmssClockRegex.FindStringSubmatch(clock); match != nil {
		minutes, _ := strconv.Atoi(match[1])
		return fmt.Sprintf("PT%02dM%sS", minutes, match[2])
	}
	return clock
}

func (statsParser) playerPoints(raw play.RawPlay) (int64, *int) {
	if raw.PersonID == nil || *raw.PersonID <= 0 {
		return 0, nil
	}

	match := statsPointsRegex.FindStringSubmatch(raw.Description)
	if match == nil {
		return *raw.PersonID, nil
	}
	points, err := strconv.Atoi(match[1])
	if err != nil {
		return *raw.PersonID, nil
	}
	return *raw.PersonID, &points
}
