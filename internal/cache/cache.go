// Package cache implements the dated game cache: a 10-hour TTL cache keyed by
// YYYYMMDD date key that shields the rest of the pipeline from repeated
// upstream fetches and from upstream outages.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/logging"
	"nba-totals-service/internal/metrics"
	"nba-totals-service/internal/providers"
)

const defaultTTL = 10 * time.Hour

// Freshness classifies a cache read so callers can distinguish degraded
// results from authoritative ones.
type Freshness int

const (
	// Empty means no data could be served: the fetch failed and no prior
	// entry existed for the date.
	Empty Freshness = iota
	// Fresh means the entry was served within its TTL window, or was just
	// fetched.
	Fresh
	// Stale means the fetch failed and an expired entry was served as a
	// degraded fallback.
	Stale
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "empty"
	}
}

// Result is the outcome of one dated cache read.
type Result struct {
	Games     []domain.Game
	Freshness Freshness
}

type entry struct {
	games     []domain.Game
	fetchedAt time.Time
}

// Dated caches normalized games per date key. Entries are superseded wholesale
// on refetch and never evicted; size is bounded by the distinct dates queried
// in a session.
type Dated struct {
	provider providers.GameProvider
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Recorder

	mu      sync.Mutex
	entries map[string]entry
}

// New constructs a dated cache over the provider. A ttl <= 0 falls back to the
// 10-hour default.
func New(provider providers.GameProvider, ttl time.Duration, logger *slog.Logger, recorder *metrics.Recorder) *Dated {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Dated{
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		metrics:  recorder,
		entries:  make(map[string]entry),
	}
}

// Get returns the games for the date key. A valid entry is served without any
// upstream call. On a miss or an expired entry the upstream is fetched; fetch
// failure degrades to the stale entry when one exists and to an empty result
// otherwise. Fetch failure is never propagated as an error.
func (c *Dated) Get(ctx context.Context, date string) Result {
	c.mu.Lock()
	cached, ok := c.entries[date]
	if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		c.mu.Unlock()
		c.metrics.RecordCacheLookup(Fresh.String())
		return Result{Games: cached.games, Freshness: Fresh}
	}
	c.mu.Unlock()

	games, err := c.provider.FetchGames(ctx, date)
	if err != nil {
		if ok {
			logging.Warn(c.logger, "serving stale games after fetch failure",
				slog.String(logging.FieldDate, date),
				slog.Int(logging.FieldCount, len(cached.games)),
				"error", err,
			)
			c.metrics.RecordCacheLookup(Stale.String())
			return Result{Games: cached.games, Freshness: Stale}
		}
		logging.Warn(c.logger, "no cached games to fall back on",
			slog.String(logging.FieldDate, date),
			"error", err,
		)
		c.metrics.RecordCacheLookup(Empty.String())
		return Result{Freshness: Empty}
	}

	c.mu.Lock()
	c.entries[date] = entry{games: games, fetchedAt: c.now()}
	c.mu.Unlock()

	logging.Info(c.logger, "cached games for date",
		slog.String(logging.FieldDate, date),
		slog.Int(logging.FieldCount, len(games)),
	)
	c.metrics.RecordCacheLookup(Fresh.String())
	return Result{Games: games, Freshness: Fresh}
}

// Len reports the number of distinct dates currently cached.
func (c *Dated) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
