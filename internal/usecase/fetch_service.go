package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/courtwire/courtwire/internal/domain/boxscore"
	"github.com/courtwire/courtwire/internal/domain/event"
	"github.com/courtwire/courtwire/internal/domain/play"
	"github.com/courtwire/courtwire/internal/domain/rawpayload"
	"github.com/courtwire/courtwire/internal/platform/logging"
)

// PlayFeed is one upstream source of play-by-play and boxscore documents.
// The live feed is the low-latency variant; the stats feed is the richer
// post-game variant. Both resolve to the same shapes here.
type PlayFeed interface {
	Source() string
	FetchPlayByPlay(ctx context.Context, eventID string) ([]play.RawPlay, rawpayload.Payload, error)
	FetchBoxscore(ctx context.Context, eventID string) ([]boxscore.PlayerLine, []boxscore.TeamLine, rawpayload.Payload, error)
}

type FetchConfig struct {
	// Workers caps fetch concurrency independently of batch size.
	Workers int
	// Timeout bounds each per-event fetch; a timed-out event yields an
	// empty result without touching its siblings.
	Timeout time.Duration
}

// FetchResult is the per-event outcome of one fetch pass. A totally failed
// event still gets a result, just an empty one.
type FetchResult struct {
	EventID   string
	Source    string
	RawPlays  []play.RawPlay
	PlayerBox []boxscore.PlayerLine
	TeamBox   []boxscore.TeamLine
	Payloads  []rawpayload.Payload
}

func (r FetchResult) Empty() bool {
	return len(r.RawPlays) == 0 && len(r.PlayerBox) == 0 && len(r.TeamBox) == 0
}

type FetchService struct {
	live   PlayFeed
	stats  PlayFeed
	cfg    FetchConfig
	logger *logging.Logger
}

func NewFetchService(live, stats PlayFeed, cfg FetchConfig, logger *logging.Logger) *FetchService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &FetchService{
		live:   live,
		stats:  stats,
		cfg:    cfg,
		logger: logger,
	}
}

// FetchEvents runs bounded-parallel fetches for the batch and returns one
// result per event. Per-event failures are logged and become empty results;
// only pool construction or submission errors surface to the caller.
func (s *FetchService) FetchEvents(ctx context.Context, events []event.Event) (map[string]FetchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FetchService.FetchEvents")
	defer span.End()

	if s.live == nil && s.stats == nil {
		return nil, fmt.Errorf("%w: no upstream feed is configured", ErrDependencyUnavailable)
	}

	out := make(map[string]FetchResult, len(events))
	if len(events) == 0 {
		return out, nil
	}

	results := make(chan FetchResult, len(events))

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create fetch worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, item := range events {
		item := item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results <- s.fetchOne(ctx, item)
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit fetch task event=%s: %w", item.ID, err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		out[row.EventID] = row
	}

	return out, nil
}

func (s *FetchService) fetchOne(ctx context.Context, item event.Event) FetchResult {
	result := FetchResult{EventID: item.ID}

	for _, feed := range s.feedOrder(item) {
		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		raws, payload, err := feed.FetchPlayByPlay(fetchCtx, item.ID)
		cancel()
		if err != nil {
			s.logger.WarnContext(ctx, "play-by-play fetch failed",
				"event_id", item.ID,
				"source", feed.Source(),
				"error", err,
			)
			continue
		}

		result.Source = feed.Source()
		result.RawPlays = raws
		result.Payloads = append(result.Payloads, payload)

		boxCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		players, teams, boxPayload, boxErr := feed.FetchBoxscore(boxCtx, item.ID)
		cancel()
		if boxErr != nil {
			s.logger.WarnContext(ctx, "boxscore fetch failed",
				"event_id", item.ID,
				"source", feed.Source(),
				"error", boxErr,
			)
			break
		}

		result.PlayerBox = players
		result.TeamBox = teams
		result.Payloads = append(result.Payloads, boxPayload)
		break
	}

	if result.Empty() {
		s.logger.WarnContext(ctx, "event yielded no data this cycle", "event_id", item.ID)
	}

	return result
}

// feedOrder prefers the live feed while an event is in progress and the
// richer stats feed once it has completed, falling back to the other feed
// either way.
func (s *FetchService) feedOrder(item event.Event) []PlayFeed {
	feeds := make([]PlayFeed, 0, 2)
	if event.IsLiveStatus(item.Status) {
		feeds = appendFeed(feeds, s.live)
		feeds = appendFeed(feeds, s.stats)
		return feeds
	}
	feeds = appendFeed(feeds, s.stats)
	feeds = appendFeed(feeds, s.live)
	return feeds
}

func appendFeed(feeds []PlayFeed, feed PlayFeed) []PlayFeed {
	if feed == nil {
		return feeds
	}
	return append(feeds, feed)
}
