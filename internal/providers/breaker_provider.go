package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"nba-totals-service/internal/domain"
)

const (
	defaultBreakerTimeout  = 60 * time.Second
	defaultBreakerFailures = 5
)

// breakerProvider wraps a GameProvider with a circuit breaker so a failing
// upstream is given time to recover instead of being hammered by every
// date-range fetch.
type breakerProvider struct {
	inner  GameProvider
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
	name   string
}

// NewBreakerProvider wraps the given provider with a circuit breaker that
// opens after consecutive failures and half-opens after a cooldown.
func NewBreakerProvider(inner GameProvider, logger *slog.Logger, name string) GameProvider {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: defaultBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= defaultBreakerFailures
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("provider circuit state change",
					slog.String("provider", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}
		},
	}

	return &breakerProvider{
		inner:  inner,
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
		name:   name,
	}
}

func (p *breakerProvider) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	if p.inner == nil {
		return nil, ErrProviderUnavailable
	}

	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.inner.FetchGames(ctx, date)
	})
	if err != nil {
		return nil, err
	}

	games, _ := result.([]domain.Game)
	return games, nil
}

// Close forwards to the wrapped provider when it holds resources.
func (p *breakerProvider) Close() {
	if c, ok := p.inner.(interface{ Close() }); ok {
		c.Close()
	}
}
