package regression

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/logging"
	"nba-totals-service/internal/metrics"
	"nba-totals-service/internal/repo"
)

const defaultSetTTL = 10 * time.Minute

// ModelSet is one published generation of fitted models. Never mutated after
// publication; FitAll replaces it wholesale.
type ModelSet struct {
	LastUpdated time.Time                         `json:"lastUpdated"`
	TeamStats   []domain.RegressionModel          `json:"teamStats"`
	Models      map[string]domain.RegressionModel `json:"-"`
}

// Engine owns the fitted model set and serves it while fresh.
type Engine struct {
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Recorder

	mu  sync.RWMutex
	set *ModelSet
}

// NewEngine constructs an Engine. A ttl <= 0 falls back to 10 minutes.
func NewEngine(ttl time.Duration, logger *slog.Logger, recorder *metrics.Recorder) *Engine {
	if ttl <= 0 {
		ttl = defaultSetTTL
	}
	return &Engine{
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		metrics: recorder,
	}
}

// FitAll fits a model for every team with more than MinTeamGames candidate
// games and publishes the resulting set atomically. When the current set is
// younger than the TTL it is served as-is unless force is set.
func (e *Engine) FitAll(teams []domain.Team, games []domain.Game, force bool) *ModelSet {
	if !force {
		if set := e.freshSet(); set != nil {
			return set
		}
	}

	models := make(map[string]domain.RegressionModel)
	var stats []domain.RegressionModel

	for _, team := range teams {
		teamGames := repo.GamesForTeam(team.Abbreviation, games)
		if len(teamGames) <= MinTeamGames {
			continue
		}

		start := e.now()
		model := Fit(team, teamGames)
		e.metrics.RecordModelFit(team.Abbreviation, e.now().Sub(start), model != nil)
		if model == nil {
			logging.Info(e.logger, "insufficient sample for team",
				slog.String(logging.FieldTeam, team.Abbreviation),
				slog.Int(logging.FieldCount, len(teamGames)),
			)
			continue
		}

		models[team.Abbreviation] = *model
		stats = append(stats, *model)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Team.Abbreviation < stats[j].Team.Abbreviation
	})

	set := &ModelSet{
		LastUpdated: e.now(),
		TeamStats:   stats,
		Models:      models,
	}

	e.mu.Lock()
	e.set = set
	e.mu.Unlock()

	logging.Info(e.logger, "model set refreshed", slog.Int(logging.FieldCount, len(models)))
	return set
}

// Model returns the fitted model for the abbreviation from the current set.
func (e *Engine) Model(abbr string) (domain.RegressionModel, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.set == nil {
		return domain.RegressionModel{}, false
	}
	model, ok := e.set.Models[abbr]
	return model, ok
}

// Set returns the current published set, which may be nil before the first
// fit.
func (e *Engine) Set() *ModelSet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.set
}

func (e *Engine) freshSet() *ModelSet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.set != nil && e.now().Sub(e.set.LastUpdated) < e.ttl {
		return e.set
	}
	return nil
}
