package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type cacheStats struct {
	fresh int
	stale int
	empty int
}

type modelStats struct {
	fits        int
	fitSkips    int
	projections int
	backtests   int
}

// Recorder captures lightweight, in-memory metrics about provider calls and
// the modeling pipeline. It is intentionally simple so it can be swapped for
// a real backend later.
type Recorder struct {
	mu     sync.Mutex
	stats  map[string]*providerStats
	cache  cacheStats
	models modelStats
	otel   *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*providerStats),
		otel:  otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(provider)
	r.mu.Lock()
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that a provider response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	stats := r.ensureStats(provider)
	r.mu.Lock()
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// RecordCacheLookup tracks the freshness outcome of one dated-cache read.
// freshness is one of "fresh", "stale", "empty".
func (r *Recorder) RecordCacheLookup(freshness string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	switch freshness {
	case "fresh":
		r.cache.fresh++
	case "stale":
		r.cache.stale++
	default:
		r.cache.empty++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCacheLookup(freshness)
	}
}

// RecordModelFit tracks one per-team fit (or skip when the sample was too small).
func (r *Recorder) RecordModelFit(team string, duration time.Duration, fitted bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	if fitted {
		r.models.fits++
	} else {
		r.models.fitSkips++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordModelFit(team, duration, fitted)
	}
}

// RecordProjection tracks one live projection computation.
func (r *Recorder) RecordProjection(team string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.models.projections++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordProjection(team)
	}
}

// RecordBacktest tracks one backtest replay.
func (r *Recorder) RecordBacktest(team string, games int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.models.backtests++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordBacktest(team, games)
	}
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	return r.Snapshot(provider).RateLimitHits
}

// CacheLookups returns the fresh/stale/empty lookup tallies.
func (r *Recorder) CacheLookups() (fresh, stale, empty int) {
	if r == nil {
		return 0, 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.fresh, r.cache.stale, r.cache.empty
}

// ModelFits returns the fit and skip tallies.
func (r *Recorder) ModelFits() (fits, skips int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.models.fits, r.models.fitSkips
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	stats := r.snapshot(provider)
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

func (r *Recorder) ensureStats(provider string) *providerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	return stats
}

func (r *Recorder) snapshot(provider string) providerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats, ok := r.stats[provider]; ok && stats != nil {
		return *stats
	}
	return providerStats{}
}
