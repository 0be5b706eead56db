package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/metrics"
)

type countingProvider struct {
	calls    int
	failures int
	games    []domain.Game
}

func (p *countingProvider) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	_ = ctx
	_ = date
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("transient")
	}
	return p.games, nil
}

func TestRetryingProviderSucceedsAfterTransientFailures(t *testing.T) {
	inner := &countingProvider{failures: 2, games: []domain.Game{{ID: "g1"}}}
	rec := metrics.NewRecorder()
	p := NewRetryingProvider(inner, nil, rec, "test", 3, time.Millisecond)

	games, err := p.FetchGames(context.Background(), "20240101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 || games[0].ID != "g1" {
		t.Fatalf("unexpected games %v", games)
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", inner.calls)
	}
	if rec.ProviderCalls("test") != 3 || rec.ProviderErrors("test") != 2 {
		t.Fatalf("unexpected recorder state: calls=%d errors=%d", rec.ProviderCalls("test"), rec.ProviderErrors("test"))
	}
}

func TestRetryingProviderGivesUpAfterMaxAttempts(t *testing.T) {
	inner := &countingProvider{failures: 10}
	p := NewRetryingProvider(inner, nil, nil, "test", 3, time.Millisecond)

	if _, err := p.FetchGames(context.Background(), "20240101"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", inner.calls)
	}
}

func TestRetryingProviderHonorsContextCancellation(t *testing.T) {
	inner := &countingProvider{failures: 10}
	p := NewRetryingProvider(inner, nil, nil, "test", 5, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.FetchGames(ctx, "20240101")
	if err == nil {
		t.Fatal("expected error after context cancellation")
	}
	if inner.calls >= 5 {
		t.Fatalf("expected early stop, got %d attempts", inner.calls)
	}
}

func TestRetryingProviderRecordsRateLimits(t *testing.T) {
	rlProvider := fetchFunc(func(ctx context.Context, date string) ([]domain.Game, error) {
		return nil, &RateLimitError{Provider: "test", StatusCode: 429, RetryAfter: time.Second}
	})
	rec := metrics.NewRecorder()
	p := NewRetryingProvider(rlProvider, nil, rec, "test", 2, time.Millisecond)

	if _, err := p.FetchGames(context.Background(), "20240101"); err == nil {
		t.Fatal("expected rate limit failure")
	}
	if rec.RateLimitHits("test") != 2 {
		t.Fatalf("expected 2 rate limit hits, got %d", rec.RateLimitHits("test"))
	}
}

func TestRetryingProviderNilInner(t *testing.T) {
	p := NewRetryingProvider(nil, nil, nil, "test", 0, 0)
	if _, err := p.FetchGames(context.Background(), ""); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

type fetchFunc func(ctx context.Context, date string) ([]domain.Game, error)

func (f fetchFunc) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	return f(ctx, date)
}
