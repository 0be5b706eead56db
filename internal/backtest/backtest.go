// Package backtest replays a fitted model over historical games to measure
// how often its predictions land within the model's error band.
package backtest

import (
	"log/slog"
	"math"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/logging"
	"nba-totals-service/internal/metrics"
	"nba-totals-service/internal/regression"
)

// ModelSource yields the current model for a team, if one exists.
type ModelSource interface {
	Model(abbr string) (domain.RegressionModel, bool)
}

// Runner evaluates team models against completed games.
type Runner struct {
	models  ModelSource
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func NewRunner(models ModelSource, logger *slog.Logger, recorder *metrics.Recorder) *Runner {
	return &Runner{models: models, logger: logger, metrics: recorder}
}

// Run replays the team's model over the given games. A game counts as
// accurate when the absolute prediction error is within the model's RMSE.
// Games without at least three recorded quarters or without a final total are
// skipped. Returns regression.ErrMissingModel when no model exists for the
// team.
func (r *Runner) Run(abbr string, games []domain.Game) (*domain.BacktestSummary, error) {
	model, ok := r.models.Model(abbr)
	if !ok {
		return nil, regression.ErrMissingModel
	}

	summary := &domain.BacktestSummary{Team: abbr, Results: []domain.BacktestResult{}}
	var absErrSum, sqErrSum float64
	accurate := 0

	for _, game := range games {
		quarters, total, home, ok := game.Side(abbr)
		if !ok || quarters.Recorded() < 3 || total <= 0 {
			continue
		}

		sum3Q := quarters.Sum3Q()
		predicted := model.Predict(float64(sum3Q))
		// Signed as actual minus predicted: positive means the model undershot.
		errVal := float64(total) - predicted
		hit := math.Abs(errVal) <= model.RMSE
		if hit {
			accurate++
		}
		absErrSum += math.Abs(errVal)
		sqErrSum += errVal * errVal

		summary.Results = append(summary.Results, domain.BacktestResult{
			GameID:         game.ID,
			Date:           game.Date,
			Opponent:       game.Opponent(abbr),
			Home:           home,
			Sum3Q:          sum3Q,
			PredictedTotal: predicted,
			ActualTotal:    total,
			Error:          errVal,
			Accurate:       hit,
		})
	}

	if n := len(summary.Results); n > 0 {
		summary.Accuracy = float64(accurate) / float64(n)
		summary.AvgAbsError = absErrSum / float64(n)
		summary.RMSE = math.Sqrt(sqErrSum / float64(n))
	}

	r.metrics.RecordBacktest(abbr, len(summary.Results))
	logging.Info(r.logger, "backtest complete",
		slog.String(logging.FieldTeam, abbr),
		slog.Int("games", len(summary.Results)),
		slog.Float64("accuracy", summary.Accuracy))
	return summary, nil
}
