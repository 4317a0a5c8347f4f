package statsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/courtwire/courtwire/internal/domain/boxscore"
	"github.com/courtwire/courtwire/internal/domain/play"
	"github.com/courtwire/courtwire/internal/domain/rawpayload"
	"github.com/courtwire/courtwire/internal/platform/logging"
	"github.com/courtwire/courtwire/internal/platform/resilience"
	"github.com/courtwire/courtwire/internal/usecase"
)

const defaultBaseURL = "https://stats.nba.com/api/v2"

var errStatsTransient = crerr.New("stats feed transient failure")

// scoreRegex matches the running score string, away total first: "98 - 102".
var scoreRegex = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)

// mmssMinutesRegex matches the boxscore played-minutes column: "34:12".
var mmssMinutesRegex = regexp.MustCompile(`^(\d{1,3}):(\d{2})$`)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the post-game feed: event-numbered rows with "MM:SS" period
// clocks, free-text descriptions split by side, and cumulative point totals
// embedded in the description text.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.Group[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	var breaker *resilience.CircuitBreaker
	if cfg.CircuitBreaker.Enabled {
		breaker = resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    breaker,
	}
}

func (c *Client) Source() string {
	return play.SourceStats
}

func (c *Client) FetchPlayByPlay(ctx context.Context, eventID string) ([]play.RawPlay, rawpayload.Payload, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, rawpayload.Payload{}, fmt.Errorf("%w: event id is required", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/game/%s/playbyplay", eventID)
	var envelope playByPlayEnvelope
	raw, err := c.doJSON(ctx, path, &envelope)
	if err != nil {
		return nil, rawpayload.Payload{}, fmt.Errorf("fetch stats play-by-play event=%s: %w", eventID, err)
	}

	out := make([]play.RawPlay, 0, len(envelope.Plays))
	for _, row := range envelope.Plays {
		out = append(out, mapPlayRow(row))
	}

	payload := rawpayload.New(play.SourceStats, eventID, path, raw, time.Now())
	return out, payload, nil
}

func (c *Client) FetchBoxscore(ctx context.Context, eventID string) ([]boxscore.PlayerLine, []boxscore.TeamLine, rawpayload.Payload, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, nil, rawpayload.Payload{}, fmt.Errorf("%w: event id is required", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/game/%s/boxscore", eventID)
	var envelope boxscoreEnvelope
	raw, err := c.doJSON(ctx, path, &envelope)
	if err != nil {
		return nil, nil, rawpayload.Payload{}, fmt.Errorf("fetch stats boxscore event=%s: %w", eventID, err)
	}

	players := make([]boxscore.PlayerLine, 0, len(envelope.PlayerStats))
	for _, row := range envelope.PlayerStats {
		if row.PlayerID <= 0 {
			continue
		}
		players = append(players, boxscore.PlayerLine{
			EventID:     eventID,
			PersonID:    row.PlayerID,
			TeamTricode: strings.ToUpper(strings.TrimSpace(row.TeamAbbreviation)),
			PlayerName:  strings.TrimSpace(row.PlayerName),
			Minutes:     parseMMSSMinutes(row.Minutes),
			Points:      row.Points,
			Rebounds:    row.Rebounds,
			Assists:     row.Assists,
		})
	}

	teams := make([]boxscore.TeamLine, 0, len(envelope.TeamStats))
	for _, row := range envelope.TeamStats {
		tricode := strings.ToUpper(strings.TrimSpace(row.TeamAbbreviation))
		if tricode == "" {
			continue
		}
		teams = append(teams, boxscore.TeamLine{
			EventID:     eventID,
			TeamTricode: tricode,
			Minutes:     parseMMSSMinutes(row.Minutes),
			Points:      row.Points,
			Rebounds:    row.Rebounds,
			Assists:     row.Assists,
		})
	}

	payload := rawpayload.New(play.SourceStats, eventID, path, raw, time.Now())
	return players, teams, payload, nil
}

func mapPlayRow(row playRow) play.RawPlay {
	eventNum := row.EventNum
	raw := play.RawPlay{
		Source:        play.SourceStats,
		StatsEventNum: &eventNum,
		ActionType:    strings.TrimSpace(row.EventType),
		SubType:       strings.TrimSpace(row.EventAction),
		Description:   resolveDescription(row),
		PlayerName:    strings.TrimSpace(row.PlayerName),
		TeamTricode:   strings.TrimSpace(row.PlayerTeamAbbreviation),
	}

	if row.Period > 0 {
		period := row.Period
		raw.Period = &period
	}
	if clock := strings.TrimSpace(row.Clock); clock != "" {
		raw.Clock = &clock
	}
	if away, home, ok := parseScore(row.Score); ok {
		raw.HomeScore = &home
		raw.AwayScore = &away
	}
	if row.PlayerID > 0 {
		playerID := row.PlayerID
		raw.PersonID = &playerID
	}

	return raw
}

// resolveDescription picks the side-specific text, home first. A row where
// every side is blank stays blank and gets dropped downstream.
func resolveDescription(row playRow) string {
	for _, candidate := range []string{row.HomeDescription, row.VisitorDescription, row.NeutralDescription} {
		if text := strings.TrimSpace(candidate); text != "" {
			return text
		}
	}
	return ""
}

// parseScore splits the "away - home" running score string.
func parseScore(raw string) (away, home int, ok bool) {
	match := scoreRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return 0, 0, false
	}
	away, _ = strconv.Atoi(match[1])
	home, _ = strconv.Atoi(match[2])
	return away, home, true
}

// parseMMSSMinutes converts the "MM:SS" played-minutes column into
// fractional minutes.
func parseMMSSMinutes(raw string) float64 {
	match := mmssMinutesRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return 0
	}
	minutes, _ := strconv.Atoi(match[1])
	seconds, _ := strconv.Atoi(match[2])
	return float64(minutes) + float64(seconds)/60
}

func (c *Client) doJSON(ctx context.Context, path string, target any) ([]byte, error) {
	fullURL := c.baseURL + path

	raw, err, _ := c.flight.Do(path, func() ([]byte, error) {
		var body []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		})
		if crerr.Is(execErr, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "stats feed circuit breaker rejected request", "path", path)
			return nil, fmt.Errorf("%w: stats feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return body, execErr
	})
	if err != nil {
		return nil, err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode stats feed payload: %w", err)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errStatsTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errStatsTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: feed status=%d", errStatsTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("feed status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("stats feed request failed")
	}
	c.logger.WarnContext(ctx, "stats feed request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
