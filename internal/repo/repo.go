// Package repo answers range and team-filtered queries over the dated game
// cache, fetching missing dates on demand.
package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"nba-totals-service/internal/cache"
	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/logging"
	"nba-totals-service/internal/timeutil"
)

// ErrInvalidRange is returned when a range query's start date falls after its
// end date. It is raised before any fetch is issued.
var ErrInvalidRange = errors.New("start date must not be after end date")

// Repository owns the dated cache and exposes date-scoped game queries.
type Repository struct {
	cache          *cache.Dated
	logger         *slog.Logger
	now            func() time.Time
	historicalDays int
}

// New constructs a Repository over the dated cache. historicalDays bounds the
// trailing window used by LastNGames; <= 0 falls back to 360.
func New(c *cache.Dated, logger *slog.Logger, historicalDays int) *Repository {
	if historicalDays <= 0 {
		historicalDays = 360
	}
	return &Repository{
		cache:          c,
		logger:         logger,
		now:            time.Now,
		historicalDays: historicalDays,
	}
}

// GamesInRange returns every game from startDate to endDate inclusive, in
// chronological date order. Dates whose fetch degraded to empty contribute no
// games; the query itself only fails on invalid input.
func (r *Repository) GamesInRange(ctx context.Context, startDate, endDate string) ([]domain.Game, error) {
	start, err := timeutil.ParseDateKey(startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := timeutil.ParseDateKey(endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	var games []domain.Game
	for _, date := range timeutil.DateKeysBetween(start, end) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := r.cache.Get(ctx, date)
		games = append(games, res.Games...)
	}

	logging.Info(r.logger, "range query served",
		slog.String("start", startDate),
		slog.String("end", endDate),
		slog.Int(logging.FieldCount, len(games)),
	)
	return games, nil
}

// GamesForTeam filters games down to those in which either side carries the
// abbreviation. Pure; preserves input order.
func GamesForTeam(abbr string, games []domain.Game) []domain.Game {
	var filtered []domain.Game
	for _, g := range games {
		if g.Involves(abbr) {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// GamesAgainst filters games down to those where the opponent of abbr is
// opponentAbbr.
func GamesAgainst(abbr, opponentAbbr string, games []domain.Game) []domain.Game {
	var filtered []domain.Game
	for _, g := range games {
		if g.Involves(abbr) && g.Opponent(abbr).Abbreviation == opponentAbbr {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// LastNGames returns the team's most recent n games within the repository's
// trailing historical window, most recent first.
func (r *Repository) LastNGames(ctx context.Context, abbr string, n int) ([]domain.Game, error) {
	if n <= 0 {
		return nil, nil
	}

	end := r.now()
	start := end.AddDate(0, 0, -r.historicalDays*2)

	games, err := r.GamesInRange(ctx, timeutil.FormatDateKey(start), timeutil.FormatDateKey(end))
	if err != nil {
		return nil, err
	}

	teamGames := GamesForTeam(abbr, games)
	sort.SliceStable(teamGames, func(i, j int) bool {
		return teamGames[i].Date > teamGames[j].Date
	})
	if len(teamGames) > n {
		teamGames = teamGames[:n]
	}
	return teamGames, nil
}
