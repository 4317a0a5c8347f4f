package liveapi

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

const defaultBaseURL = "https://cdn.nba.com/static/json/liveData"

var errLiveTransient = crerr.New("live feed transient failure")

// isoMinutesRegex matches the live feed's played-minutes durations, both the
// player form "PT34M12.00S" and the team form "PT240M".
var isoMinutesRegex = regexp.MustCompile(`^PT(\d+)M(?:(\d+(?:\.\d+)?)S)?$`)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the low-latency feed: structured actions keyed by a monotonic
// order number, ISO-8601 period clocks and per-player cumulative totals.
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
	return play.SourceLive
}

func (c *Client) FetchPlayByPlay(ctx context.Context, eventID string) ([]play.RawPlay, rawpayload.Payload, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, rawpayload.Payload{}, fmt.Errorf("%w: event id is required", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/playbyplay/playbyplay_%s.json", eventID)
	var envelope playByPlayEnvelope
	raw, err := c.doJSON(ctx, path, &envelope)
	if err != nil {
		return nil, rawpayload.Payload{}, fmt.Errorf("fetch live play-by-play event=%s: %w", eventID, err)
	}

	out := make([]play.RawPlay, 0, len(envelope.Game.Actions))
	for _, action := range envelope.Game.Actions {
		out = append(out, mapAction(action))
	}

	payload := rawpayload.New(play.SourceLive, eventID, path, raw, time.Now())
	return out, payload, nil
}

func (c *Client) FetchBoxscore(ctx context.Context, eventID string) ([]boxscore.PlayerLine, []boxscore.TeamLine, rawpayload.Payload, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, nil, rawpayload.Payload{}, fmt.Errorf("%w: event id is required", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/boxscore/boxscore_%s.json", eventID)
	var envelope boxscoreEnvelope
	raw, err := c.doJSON(ctx, path, &envelope)
	if err != nil {
		return nil, nil, rawpayload.Payload{}, fmt.Errorf("fetch live boxscore event=%s: %w", eventID, err)
	}

	players := make([]boxscore.PlayerLine, 0, 32)
	teams := make([]boxscore.TeamLine, 0, 2)
	for _, side := range []boxscoreTeam{envelope.Game.HomeTeam, envelope.Game.AwayTeam} {
		tricode := strings.ToUpper(strings.TrimSpace(side.TeamTricode))
		if tricode == "" {
			continue
		}

		teams = append(teams, boxscore.TeamLine{
			EventID:     eventID,
			TeamTricode: tricode,
			Minutes:     parseISOMinutes(side.Statistics.Minutes),
			Points:      side.Statistics.Points,
			Rebounds:    side.Statistics.Rebounds,
			Assists:     side.Statistics.Assists,
		})

		for _, row := range side.Players {
			if row.PersonID <= 0 {
				continue
			}
			players = append(players, boxscore.PlayerLine{
				EventID:     eventID,
				PersonID:    row.PersonID,
				TeamTricode: tricode,
				PlayerName:  strings.TrimSpace(row.Name),
				Minutes:     parseISOMinutes(row.Statistics.Minutes),
				Points:      row.Statistics.Points,
				Rebounds:    row.Statistics.Rebounds,
				Assists:     row.Statistics.Assists,
			})
		}
	}

	payload := rawpayload.New(play.SourceLive, eventID, path, raw, time.Now())
	return players, teams, payload, nil
}

func mapAction(action actionItem) play.RawPlay {
	order := action.OrderNumber
	raw := play.RawPlay{
		Source:      play.SourceLive,
		LiveOrder:   &order,
		ActionType:  strings.TrimSpace(action.ActionType),
		SubType:     strings.TrimSpace(action.SubType),
		Description: strings.TrimSpace(action.Description),
		PlayerName:  strings.TrimSpace(action.PlayerNameI),
		TeamTricode: strings.TrimSpace(action.TeamTricode),
	}

	if action.Period > 0 {
		period := action.Period
		raw.Period = &period
	}
	if clock := strings.TrimSpace(action.Clock); clock != "" {
		raw.Clock = &clock
	}
	if home, ok := parseScore(action.ScoreHome); ok {
		raw.HomeScore = &home
	}
	if away, ok := parseScore(action.ScoreAway); ok {
		raw.AwayScore = &away
	}
	if action.PersonID > 0 {
		personID := action.PersonID
		raw.PersonID = &personID
	}
	if action.PointsTotal != nil {
		points := *action.PointsTotal
		raw.PointsTotal = &points
	}

	return raw
}

// parseScore handles the feed's stringly-typed running score.
func parseScore(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

// parseISOMinutes converts "PT34M12.00S" into fractional minutes.
func parseISOMinutes(raw string) float64 {
	match := isoMinutesRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return 0
	}
	minutes, _ := strconv.Atoi(match[1])
	var seconds float64
	if match[2] != "" {
		seconds, _ = strconv.ParseFloat(match[2], 64)
	}
	return float64(minutes) + seconds/60
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
			c.logger.WarnContext(ctx, "live feed circuit breaker rejected request", "path", path)
			return nil, fmt.Errorf("%w: live feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return body, execErr
	})
	if err != nil {
		return nil, err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode live feed payload: %w", err)
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
			lastErr = fmt.Errorf("%w: send request: %v", errLiveTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errLiveTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: feed status=%d", errLiveTransient, resp.StatusCode)
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
		lastErr = fmt.Errorf("live feed request failed")
	}
	c.logger.WarnContext(ctx, "live feed request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
