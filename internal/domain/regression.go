package domain

import "time"

// SamplePoint is one (3Q-sum, final-total) fitting pair.
type SamplePoint struct {
	Sum3Q float64 `json:"sum3Q"`
	Total float64 `json:"total"`
}

// GameDetail records the provenance of one fitting pair, aligned index-for-
// index with RegressionModel.Points.
type GameDetail struct {
	GameID   string `json:"gameId"`
	Date     string `json:"date"`
	Opponent Team   `json:"opponent"`
	Home     bool   `json:"home"`
	Sum3Q    int    `json:"sum3Q"`
	Total    int    `json:"total"`
}

// RegressionModel is a fitted per-team line relating the first three quarters
// of scoring to the final total. Models are replaced wholesale on refit, never
// mutated.
type RegressionModel struct {
	Team           Team          `json:"team"`
	Points         []SamplePoint `json:"points"`
	Slope          float64       `json:"slope"`
	Intercept      float64       `json:"intercept"`
	R2             float64       `json:"r2"`
	RMSE           float64       `json:"rmse"`
	Count          int           `json:"count"`
	AvgSum3Q       float64       `json:"avgSum3Q"`
	ProjectedTotal float64       `json:"projectedTotal"`
	GameDetails    []GameDetail  `json:"gameDetails"`
}

// Predict applies the fitted equation to a 3Q point sum.
func (m RegressionModel) Predict(sum3Q float64) float64 {
	return m.Slope*sum3Q + m.Intercept
}

// Projection estimates a final total from a game's in-progress partial score.
type Projection struct {
	Team           string  `json:"team"`
	GameID         string  `json:"gameId"`
	CurrentQuarter int     `json:"currentQuarter"`
	CurrentPoints  int     `json:"currentPoints"`
	ProjectedTotal float64 `json:"projectedTotal"`
	// Confidence is R2 expressed as a percentage, not a calibrated probability.
	Confidence  float64 `json:"confidence"`
	ErrorMargin float64 `json:"errorMargin"`
}

// BacktestResult evaluates the model against one historical game.
type BacktestResult struct {
	GameID         string  `json:"gameId"`
	Date           string  `json:"date"`
	Opponent       Team    `json:"opponent"`
	Home           bool    `json:"home"`
	Sum3Q          int     `json:"sum3Q"`
	PredictedTotal float64 `json:"predictedTotal"`
	ActualTotal    int     `json:"actualTotal"`
	Error          float64 `json:"error"`
	Accurate       bool    `json:"accurate"`
}

// BacktestSummary aggregates a backtest replay for one team.
type BacktestSummary struct {
	Team        string           `json:"team"`
	Results     []BacktestResult `json:"results"`
	Accuracy    float64          `json:"accuracy"`
	AvgAbsError float64          `json:"avgAbsError"`
	RMSE        float64          `json:"rmse"`
}

// TeamAverages summarizes a team's per-quarter scoring over a game sample.
type TeamAverages struct {
	Team          string  `json:"team"`
	AvgQ1         float64 `json:"avgQ1"`
	AvgQ2         float64 `json:"avgQ2"`
	AvgQ3         float64 `json:"avgQ3"`
	AvgQ4         float64 `json:"avgQ4"`
	AvgSum3Q      float64 `json:"avgSum3Q"`
	AvgTotal      float64 `json:"avgTotal"`
	GamesAnalyzed int     `json:"gamesAnalyzed"`
}

// AlertKind identifies one class of game notification.
type AlertKind string

const (
	AlertStartingSoon  AlertKind = "starting_soon"
	AlertQuarterEnding AlertKind = "quarter_ending"
)

// AlertEvent is the abstract notification emitted by the scheduler; delivery
// is an external collaborator's responsibility.
type AlertEvent struct {
	Kind   AlertKind `json:"kind"`
	GameID string    `json:"gameId"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	At     time.Time `json:"at"`
}
