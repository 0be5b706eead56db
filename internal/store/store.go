// Package store holds the latest polled slate of games and the team
// directory in memory.
package store

import (
	"sort"
	"sync"

	"nba-totals-service/internal/domain"
)

// MemoryStore is a concurrency-safe snapshot store. Writers replace whole
// snapshots; partial merges never happen.
type MemoryStore struct {
	mu    sync.RWMutex
	games []domain.Game
	byID  map[string]domain.Game
	teams []domain.Team
	byAbb map[string]domain.Team
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]domain.Game),
		byAbb: make(map[string]domain.Team),
	}
}

// SetGames replaces the current slate wholesale.
func (s *MemoryStore) SetGames(games []domain.Game) {
	next := make([]domain.Game, len(games))
	copy(next, games)
	byID := make(map[string]domain.Game, len(next))
	for _, g := range next {
		byID[g.ID] = g
	}

	s.mu.Lock()
	s.games = next
	s.byID = byID
	s.mu.Unlock()
}

// ListGames returns a copy of the current slate.
func (s *MemoryStore) ListGames() []domain.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Game, len(s.games))
	copy(out, s.games)
	return out
}

// GetGame looks up one game by ID.
func (s *MemoryStore) GetGame(id string) (domain.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.byID[id]
	return g, ok
}

// SetTeams replaces the team directory wholesale, sorted by abbreviation.
func (s *MemoryStore) SetTeams(teams []domain.Team) {
	next := make([]domain.Team, len(teams))
	copy(next, teams)
	sort.Slice(next, func(i, j int) bool {
		return next[i].Abbreviation < next[j].Abbreviation
	})
	byAbb := make(map[string]domain.Team, len(next))
	for _, t := range next {
		byAbb[t.Abbreviation] = t
	}

	s.mu.Lock()
	s.teams = next
	s.byAbb = byAbb
	s.mu.Unlock()
}

// ListTeams returns a copy of the team directory.
func (s *MemoryStore) ListTeams() []domain.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Team, len(s.teams))
	copy(out, s.teams)
	return out
}

// TeamByAbbr looks up one team by abbreviation.
func (s *MemoryStore) TeamByAbbr(abbr string) (domain.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byAbb[abbr]
	return t, ok
}
