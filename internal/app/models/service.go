// Package models orchestrates model fitting, live projections, and
// backtests over the historical record.
package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/regression"
	"nba-totals-service/internal/repo"
	"nba-totals-service/internal/timeutil"
)

// ErrGameNotFound is returned when a projection names a game that is not on
// the live slate.
var ErrGameNotFound = errors.New("game not on the live slate")

// ErrNoLiveGame is returned when a projection without a game ID finds no live
// game for the team.
var ErrNoLiveGame = errors.New("no live game for team")

// History answers date-range queries over the cached historical record.
type History interface {
	GamesInRange(ctx context.Context, startDate, endDate string) ([]domain.Game, error)
}

// LiveGames is the live slate maintained by the poller.
type LiveGames interface {
	ListGames() []domain.Game
	GetGame(id string) (domain.Game, bool)
}

// Directory is the team listing maintained by the poller.
type Directory interface {
	ListTeams() []domain.Team
}

// Fitter owns the fitted model set.
type Fitter interface {
	FitAll(teams []domain.Team, games []domain.Game, force bool) *regression.ModelSet
	Model(abbr string) (domain.RegressionModel, bool)
	Set() *regression.ModelSet
}

// Projector turns a model and a live game into a projected total.
type Projector interface {
	Project(game domain.Game, abbr string) *domain.Projection
}

// Backtester replays a model over historical games.
type Backtester interface {
	Run(abbr string, games []domain.Game) (*domain.BacktestSummary, error)
}

// Service coordinates the modeling operations.
type Service struct {
	history        History
	live           LiveGames
	directory      Directory
	fitter         Fitter
	projector      Projector
	backtester     Backtester
	historicalDays int
	now            func() time.Time
}

// NewService constructs a Service. historicalDays bounds the default fit and
// backtest window; <= 0 falls back to 360.
func NewService(history History, live LiveGames, directory Directory, fitter Fitter, projector Projector, backtester Backtester, historicalDays int) *Service {
	if historicalDays <= 0 {
		historicalDays = 360
	}
	return &Service{
		history:        history,
		live:           live,
		directory:      directory,
		fitter:         fitter,
		projector:      projector,
		backtester:     backtester,
		historicalDays: historicalDays,
		now:            time.Now,
	}
}

// Refresh fits models over the given date range, or over the default
// trailing window when the range is empty. force bypasses the model-set TTL.
func (s *Service) Refresh(ctx context.Context, startDate, endDate string, force bool) (*regression.ModelSet, error) {
	startDate, endDate = s.defaultRange(startDate, endDate)
	games, err := s.history.GamesInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("load games for fit: %w", err)
	}
	teams := s.teamsFor(games)
	return s.fitter.FitAll(teams, games, force), nil
}

// Model returns the current fitted model for a team.
func (s *Service) Model(abbr string) (domain.RegressionModel, error) {
	model, ok := s.fitter.Model(abbr)
	if !ok {
		return domain.RegressionModel{}, regression.ErrMissingModel
	}
	return model, nil
}

// Set returns the current model set, which may be nil before the first fit.
func (s *Service) Set() *regression.ModelSet {
	return s.fitter.Set()
}

// Project computes a live projection for the team. When gameID is empty the
// team's current live game is used. A nil-model or pre-game state yields
// regression.ErrMissingModel or ErrNoLiveGame respectively.
func (s *Service) Project(abbr, gameID string) (*domain.Projection, error) {
	var game domain.Game
	if gameID != "" {
		g, ok := s.live.GetGame(gameID)
		if !ok {
			return nil, ErrGameNotFound
		}
		game = g
	} else {
		g, ok := s.liveGameFor(abbr)
		if !ok {
			return nil, ErrNoLiveGame
		}
		game = g
	}
	if !game.Involves(abbr) {
		return nil, ErrGameNotFound
	}
	if _, ok := s.fitter.Model(abbr); !ok {
		return nil, regression.ErrMissingModel
	}

	projection := s.projector.Project(game, abbr)
	if projection == nil {
		return nil, ErrNoLiveGame
	}
	return projection, nil
}

// Backtest replays the team's model over its games in the given range, or
// over the default trailing window when the range is empty.
func (s *Service) Backtest(ctx context.Context, abbr, startDate, endDate string) (*domain.BacktestSummary, error) {
	startDate, endDate = s.defaultRange(startDate, endDate)
	games, err := s.history.GamesInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("load games for backtest: %w", err)
	}
	return s.backtester.Run(abbr, repo.GamesForTeam(abbr, games))
}

// liveGameFor returns the team's current in-progress game, or its first
// slate game when none is in progress yet.
func (s *Service) liveGameFor(abbr string) (domain.Game, bool) {
	var fallback domain.Game
	var found bool
	for _, g := range s.live.ListGames() {
		if !g.Involves(abbr) {
			continue
		}
		if g.InProgress {
			return g, true
		}
		if !found {
			fallback = g
			found = true
		}
	}
	return fallback, found
}

func (s *Service) defaultRange(startDate, endDate string) (string, string) {
	if startDate != "" && endDate != "" {
		return startDate, endDate
	}
	now := s.now()
	if endDate == "" {
		endDate = timeutil.FormatDateKey(now)
	}
	if startDate == "" {
		startDate = timeutil.FormatDateKey(now.AddDate(0, 0, -s.historicalDays))
	}
	return startDate, endDate
}

// teamsFor prefers the polled directory and falls back to teams derived from
// the sampled games when the directory has not loaded yet.
func (s *Service) teamsFor(games []domain.Game) []domain.Team {
	if s.directory != nil {
		if teams := s.directory.ListTeams(); len(teams) > 0 {
			return teams
		}
	}
	seen := make(map[string]bool)
	var teams []domain.Team
	for _, g := range games {
		for _, team := range []domain.Team{g.HomeTeam, g.AwayTeam} {
			if team.Abbreviation == "" || seen[team.Abbreviation] {
				continue
			}
			seen[team.Abbreviation] = true
			teams = append(teams, team)
		}
	}
	return teams
}
