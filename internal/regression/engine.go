// Package regression fits per-team linear models relating first-three-quarter
// scoring to final totals, and caches the fitted set.
package regression

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"nba-totals-service/internal/domain"
)

// MinSamplePairs is the hard floor on (3Q-sum, total) pairs below which no
// model is constructed.
const MinSamplePairs = 5

// MinTeamGames is the pre-screen applied by FitAll: teams with this many
// candidate games or fewer are not fitted at all. Independent of
// MinSamplePairs; both checks are applied as-is.
const MinTeamGames = 10

// ErrMissingModel is returned when a projection or backtest is requested for a
// team with no fitted model. It is distinct from "zero games".
var ErrMissingModel = errors.New("no fitted model for team")

// Fit builds a per-team model from the games the team participated in. A game
// qualifies when at least three quarter slots are recorded and the team's
// total is positive; unplayed slots inside the first three contribute zero to
// the sum. Returns nil when fewer than MinSamplePairs games qualify.
func Fit(team domain.Team, games []domain.Game) *domain.RegressionModel {
	var (
		xs, ys  []float64
		points  []domain.SamplePoint
		details []domain.GameDetail
	)

	for _, g := range games {
		quarters, total, home, ok := g.Side(team.Abbreviation)
		if !ok || quarters.Recorded() < 3 || total <= 0 {
			continue
		}
		sum3Q := quarters.Sum3Q()
		xs = append(xs, float64(sum3Q))
		ys = append(ys, float64(total))
		points = append(points, domain.SamplePoint{Sum3Q: float64(sum3Q), Total: float64(total)})
		details = append(details, domain.GameDetail{
			GameID:   g.ID,
			Date:     g.Date,
			Opponent: g.Opponent(team.Abbreviation),
			Home:     home,
			Sum3Q:    sum3Q,
			Total:    total,
		})
	}

	if len(points) < MinSamplePairs {
		return nil
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	// Near-zero x variance makes the closed form degenerate and R2 can leave
	// [0,1]; tolerated, callers treat it as a data-quality signal.
	r2 := stat.RSquared(xs, ys, nil, intercept, slope)

	avgSum3Q := stat.Mean(xs, nil)
	model := &domain.RegressionModel{
		Team:        team,
		Points:      points,
		Slope:       slope,
		Intercept:   intercept,
		R2:          r2,
		Count:       len(points),
		AvgSum3Q:    avgSum3Q,
		GameDetails: details,
	}
	model.RMSE = rmse(*model, xs, ys)
	model.ProjectedTotal = model.Predict(avgSum3Q)
	return model
}

func rmse(model domain.RegressionModel, xs, ys []float64) float64 {
	var sumSquares float64
	for i, x := range xs {
		residual := ys[i] - model.Predict(x)
		sumSquares += residual * residual
	}
	return math.Sqrt(sumSquares / float64(len(xs)))
}
