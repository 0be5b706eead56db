// Package games coordinates live-slate and historical game queries.
package games

import (
	"context"
	"time"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/repo"
	"nba-totals-service/internal/timeutil"
)

// Store is the live slate maintained by the poller.
type Store interface {
	ListGames() []domain.Game
	GetGame(id string) (domain.Game, bool)
}

// History answers date-range queries over the cached historical record.
type History interface {
	GamesInRange(ctx context.Context, startDate, endDate string) ([]domain.Game, error)
}

// Service coordinates game reads across the live store and history.
type Service struct {
	store   Store
	history History
	now     func() time.Time
}

// NewService constructs a Service over the live store and history.
func NewService(store Store, history History) *Service {
	return &Service{store: store, history: history, now: time.Now}
}

// Today returns the current live slate.
func (s *Service) Today() []domain.Game {
	return s.store.ListGames()
}

// GameByID returns a single live game if present.
func (s *Service) GameByID(id string) (domain.Game, bool) {
	return s.store.GetGame(id)
}

// ByDate returns the games for one date. Today's date is answered from the
// live store so in-progress quarter data stays current; past dates come from
// history. An empty date means today.
func (s *Service) ByDate(ctx context.Context, date string) ([]domain.Game, error) {
	today := timeutil.FormatDateKey(s.now())
	if date == "" || date == today {
		return s.store.ListGames(), nil
	}
	return s.history.GamesInRange(ctx, date, date)
}

// Range returns games between startDate and endDate inclusive, optionally
// narrowed to one team and further to games against one opponent.
func (s *Service) Range(ctx context.Context, startDate, endDate, team, opponent string) ([]domain.Game, error) {
	games, err := s.history.GamesInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if team != "" {
		games = repo.GamesForTeam(team, games)
		if opponent != "" {
			games = repo.GamesAgainst(team, opponent, games)
		}
	}
	return games, nil
}
