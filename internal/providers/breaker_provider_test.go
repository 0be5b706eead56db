package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"

	"nba-totals-service/internal/domain"
)

func TestBreakerProviderPassesThrough(t *testing.T) {
	inner := fetchFunc(func(ctx context.Context, date string) ([]domain.Game, error) {
		return []domain.Game{{ID: "g1", Date: date}}, nil
	})
	p := NewBreakerProvider(inner, nil, "test")

	games, err := p.FetchGames(context.Background(), "20240101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 || games[0].Date != "20240101" {
		t.Fatalf("unexpected games %v", games)
	}
}

func TestBreakerProviderOpensAfterConsecutiveFailures(t *testing.T) {
	inner := fetchFunc(func(ctx context.Context, date string) ([]domain.Game, error) {
		return nil, errors.New("upstream down")
	})
	p := NewBreakerProvider(inner, nil, "test")

	for i := 0; i < defaultBreakerFailures; i++ {
		if _, err := p.FetchGames(context.Background(), "20240101"); err == nil {
			t.Fatal("expected failure")
		}
	}

	_, err := p.FetchGames(context.Background(), "20240101")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestBreakerProviderNilInner(t *testing.T) {
	p := NewBreakerProvider(nil, nil, "test")
	if _, err := p.FetchGames(context.Background(), ""); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}
