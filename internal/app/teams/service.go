// Package teams coordinates team-directory reads and scoring averages.
package teams

import (
	"context"
	"errors"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/repo"
)

// ErrInsufficientData is returned when a team has no evaluable games in the
// sampled window.
var ErrInsufficientData = errors.New("not enough recorded games for team")

// defaultSampleGames is how many recent games feed the averages when the
// caller does not say.
const defaultSampleGames = 10

// Directory is the team listing maintained by the poller.
type Directory interface {
	ListTeams() []domain.Team
	TeamByAbbr(abbr string) (domain.Team, bool)
}

// History answers recent-game queries over the cached historical record.
type History interface {
	LastNGames(ctx context.Context, abbr string, n int) ([]domain.Game, error)
}

// Service coordinates team reads.
type Service struct {
	directory Directory
	history   History
}

// NewService constructs a Service over the directory and history.
func NewService(directory Directory, history History) *Service {
	return &Service{directory: directory, history: history}
}

// Teams returns the current team directory.
func (s *Service) Teams() []domain.Team {
	return s.directory.ListTeams()
}

// TeamByAbbr returns a single team if present.
func (s *Service) TeamByAbbr(abbr string) (domain.Team, bool) {
	return s.directory.TeamByAbbr(abbr)
}

// Averages computes per-quarter scoring averages over the team's n most
// recent evaluable games. n <= 0 uses the default sample size.
func (s *Service) Averages(ctx context.Context, abbr string, n int) (domain.TeamAverages, error) {
	if n <= 0 {
		n = defaultSampleGames
	}
	games, err := s.history.LastNGames(ctx, abbr, n)
	if err != nil {
		return domain.TeamAverages{}, err
	}
	averages, ok := repo.TeamAverages(abbr, games)
	if !ok {
		return domain.TeamAverages{}, ErrInsufficientData
	}
	return averages, nil
}
