// Package projection turns a fitted regression model and a live game into a
// projected final total.
package projection

import (
	"log/slog"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/logging"
	"nba-totals-service/internal/metrics"
)

// ModelSource yields the current model for a team, if one exists.
type ModelSource interface {
	Model(abbr string) (domain.RegressionModel, bool)
}

// Projector applies team models to in-progress games.
type Projector struct {
	models  ModelSource
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func NewProjector(models ModelSource, logger *slog.Logger, recorder *metrics.Recorder) *Projector {
	return &Projector{models: models, logger: logger, metrics: recorder}
}

// Project computes a live projection for the given team in the given game.
// It returns nil when no model exists for the team, when the team is not in
// the game, or when the game has no contiguous played quarters to project
// from.
func (p *Projector) Project(game domain.Game, abbr string) *domain.Projection {
	model, ok := p.models.Model(abbr)
	if !ok {
		logging.Info(p.logger, "projection skipped: no model",
			slog.String(logging.FieldTeam, abbr),
			slog.String(logging.FieldGameID, game.ID))
		return nil
	}

	quarters, _, _, ok := game.Side(abbr)
	if !ok {
		logging.Info(p.logger, "projection skipped: team not in game",
			slog.String(logging.FieldTeam, abbr),
			slog.String(logging.FieldGameID, game.ID))
		return nil
	}

	quarter, sum := quarters.Contiguous()
	if quarter == 0 {
		logging.Info(p.logger, "projection skipped: no played quarters",
			slog.String(logging.FieldTeam, abbr),
			slog.String(logging.FieldGameID, game.ID))
		return nil
	}

	p.metrics.RecordProjection(abbr)
	return &domain.Projection{
		Team:           abbr,
		GameID:         game.ID,
		CurrentQuarter: quarter,
		CurrentPoints:  sum,
		ProjectedTotal: model.Predict(float64(sum)),
		Confidence:     model.R2 * 100,
		ErrorMargin:    model.RMSE,
	}
}
