package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"nba-totals-service/internal/domain"
)

// StubGameProvider is a test double for providers.GameProvider.
type StubGameProvider struct {
	Games  []domain.Game
	Err    error
	Calls  atomic.Int32
	Notify chan struct{}
}

// FetchGames returns configured games and error while tracking calls.
func (s *StubGameProvider) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	_ = ctx
	_ = date
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	return s.Games, s.Err
}

// StubTeamProvider is a test double for providers.TeamProvider.
type StubTeamProvider struct {
	Teams []domain.Team
	Err   error
	Calls atomic.Int32
}

func (s *StubTeamProvider) FetchTeams(ctx context.Context) ([]domain.Team, error) {
	_ = ctx
	s.Calls.Add(1)
	return s.Teams, s.Err
}

// StubGameSink records each slate handed to it.
type StubGameSink struct {
	mu     sync.Mutex
	slates [][]domain.Game
}

func (s *StubGameSink) SetGames(games []domain.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slates = append(s.slates, games)
}

// Last returns the most recent slate, or nil when none was set.
func (s *StubGameSink) Last() []domain.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.slates) == 0 {
		return nil
	}
	return s.slates[len(s.slates)-1]
}

// Sets reports how many slates were set.
func (s *StubGameSink) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slates)
}

// StubTeamSink records the last team directory handed to it.
type StubTeamSink struct {
	mu    sync.Mutex
	teams []domain.Team
	sets  int
}

func (s *StubTeamSink) SetTeams(teams []domain.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = teams
	s.sets++
}

func (s *StubTeamSink) Teams() []domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teams
}

func (s *StubTeamSink) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

// StubAlertSink records each slate synced into it.
type StubAlertSink struct {
	mu    sync.Mutex
	syncs int
	last  []domain.Game
}

func (s *StubAlertSink) Sync(games []domain.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs++
	s.last = games
}

func (s *StubAlertSink) Syncs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncs
}

func (s *StubAlertSink) Last() []domain.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
