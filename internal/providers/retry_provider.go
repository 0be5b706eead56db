package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/metrics"
)

const (
	defaultRetryAttempts   = 3
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxInterval     = 5 * time.Second
)

// retryingProvider wraps a GameProvider with exponential backoff retries.
type retryingProvider struct {
	inner           GameProvider
	logger          *slog.Logger
	metrics         *metrics.Recorder
	name            string
	maxAttempts     int
	initialInterval time.Duration
}

// NewRetryingProvider wraps the given provider with retries. If maxAttempts or
// initialInterval are <= 0, defaults are used. name labels metrics and logs.
func NewRetryingProvider(inner GameProvider, logger *slog.Logger, recorder *metrics.Recorder, name string, maxAttempts int, initialInterval time.Duration) GameProvider {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if initialInterval <= 0 {
		initialInterval = defaultInitialInterval
	}
	return &retryingProvider{
		inner:           inner,
		logger:          logger,
		metrics:         recorder,
		name:            name,
		maxAttempts:     maxAttempts,
		initialInterval: initialInterval,
	}
}

func (r *retryingProvider) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	if r.inner == nil {
		return nil, ErrProviderUnavailable
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialInterval
	policy.MaxInterval = defaultMaxInterval
	policy.RandomizationFactor = 0.2

	var games []domain.Game
	attempt := 0

	op := func() error {
		attempt++
		start := time.Now()
		fetched, err := r.inner.FetchGames(ctx, date)
		r.metrics.RecordProviderAttempt(r.name, time.Since(start), err)
		if err != nil {
			if rl, ok := AsRateLimitError(err); ok {
				r.metrics.RecordRateLimit(r.name, rl.RetryAfter)
			}
			return err
		}
		games = fetched
		return nil
	}

	notify := func(err error, delay time.Duration) {
		logWithProvider(ctx, r.logger, slog.LevelWarn, r.name, "provider fetch retry",
			"attempt", attempt, "max_attempts", r.maxAttempts, "delay", delay.String(), "err", err)
	}

	wrapped := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.maxAttempts-1)), ctx)
	if err := backoff.RetryNotify(op, wrapped, notify); err != nil {
		logWithProvider(ctx, r.logger, slog.LevelWarn, r.name, "provider fetch failed",
			"attempts", attempt, "err", err)
		return nil, err
	}
	return games, nil
}

// Close forwards to the wrapped provider when it holds resources.
func (r *retryingProvider) Close() {
	if c, ok := r.inner.(interface{ Close() }); ok {
		c.Close()
	}
}
