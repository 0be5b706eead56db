package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appgames "nba-totals-service/internal/app/games"
	appmodels "nba-totals-service/internal/app/models"
	appteams "nba-totals-service/internal/app/teams"
	"nba-totals-service/internal/backtest"
	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/poller"
	"nba-totals-service/internal/projection"
	"nba-totals-service/internal/regression"
	"nba-totals-service/internal/repo"
	"nba-totals-service/internal/store"
)

// stubHistory serves a fixed set of games for any range and recent-game query.
type stubHistory struct {
	games []domain.Game
	err   error
}

func (s *stubHistory) GamesInRange(ctx context.Context, startDate, endDate string) ([]domain.Game, error) {
	_ = ctx
	if s.err != nil {
		return nil, s.err
	}
	return s.games, nil
}

func (s *stubHistory) LastNGames(ctx context.Context, abbr string, n int) ([]domain.Game, error) {
	_ = ctx
	if s.err != nil {
		return nil, s.err
	}
	games := repo.GamesForTeam(abbr, s.games)
	if len(games) > n {
		games = games[:n]
	}
	return games, nil
}

var (
	bos = domain.Team{Abbreviation: "BOS", DisplayName: "Boston Celtics"}
	mia = domain.Team{Abbreviation: "MIA", DisplayName: "Miami Heat"}
)

func completedGame(idx, sum3Q, total int) domain.Game {
	q4 := total - sum3Q
	return domain.Game{
		ID:       fmt.Sprintf("game-%d", idx),
		Date:     fmt.Sprintf("202401%02d", idx+1),
		HomeTeam: bos,
		AwayTeam: mia,
		HomeQuarters: domain.Quarters{
			{Points: sum3Q - 50, Played: true},
			{Points: 25, Played: true},
			{Points: 25, Played: true},
			{Points: q4, Played: true},
		},
		HomeScore: total,
		Completed: true,
		State:     domain.StatePost,
	}
}

func historicalGames() []domain.Game {
	pairs := [][2]int{
		{75, 100}, {80, 105}, {78, 102}, {82, 108}, {76, 101}, {79, 104},
		{81, 107}, {77, 103}, {83, 109}, {74, 99}, {80, 106}, {78, 105},
	}
	games := make([]domain.Game, 0, len(pairs))
	for i, p := range pairs {
		games = append(games, completedGame(i, p[0], p[1]))
	}
	return games
}

type env struct {
	handler *Handler
	live    *store.MemoryStore
	engine  *regression.Engine
}

func newEnv(t *testing.T, history *stubHistory, status func() poller.Status) *env {
	t.Helper()
	live := store.NewMemoryStore()
	live.SetTeams([]domain.Team{bos, mia})

	engine := regression.NewEngine(10*time.Minute, nil, nil)
	projector := projection.NewProjector(engine, nil, nil)
	backtester := backtest.NewRunner(engine, nil, nil)

	gamesSvc := appgames.NewService(live, history)
	teamsSvc := appteams.NewService(live, history)
	modelsSvc := appmodels.NewService(history, live, live, engine, projector, backtester, 360)

	return &env{
		handler: NewHandler(gamesSvc, teamsSvc, modelsSvc, nil, status),
		live:    live,
		engine:  engine,
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	rec := httptest.NewRecorder()
	e.handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHealthMethodNotAllowed(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	rec := httptest.NewRecorder()
	e.handler.Health(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestReadyReflectsPollerStatus(t *testing.T) {
	status := poller.Status{ConsecutiveFailures: 5, LastError: "upstream down"}
	e := newEnv(t, &stubHistory{}, func() poller.Status { return status })

	rec := httptest.NewRecorder()
	e.handler.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	status = poller.Status{LastSuccess: time.Now()}
	rec = httptest.NewRecorder()
	e.handler.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGamesServesLiveSlate(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	e.live.SetGames([]domain.Game{{ID: "live-1", HomeTeam: bos, AwayTeam: mia}})

	rec := httptest.NewRecorder()
	e.handler.Games(rec, httptest.NewRequest(http.MethodGet, "/games", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body gamesResponse
	decode(t, rec, &body)
	if body.Count != 1 || body.Games[0].ID != "live-1" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Date == "" {
		t.Fatal("expected date in response")
	}
}

func TestGamesRejectsBadDate(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	rec := httptest.NewRecorder()
	e.handler.Games(rec, httptest.NewRequest(http.MethodGet, "/games?date=2024-01-15", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGamesRangeRequiresBounds(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	rec := httptest.NewRecorder()
	e.handler.GamesRange(rec, httptest.NewRequest(http.MethodGet, "/games/range?start=20240101", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGamesRangeFilters(t *testing.T) {
	e := newEnv(t, &stubHistory{games: historicalGames()}, nil)
	rec := httptest.NewRecorder()
	e.handler.GamesRange(rec, httptest.NewRequest(http.MethodGet, "/games/range?start=20240101&end=20240131&team=BOS&opponent=MIA", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body gamesResponse
	decode(t, rec, &body)
	if body.Count != len(historicalGames()) {
		t.Fatalf("expected all games (all BOS-MIA), got %d", body.Count)
	}
}

func TestGameByID(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	e.live.SetGames([]domain.Game{{ID: "live-1"}})

	rec := httptest.NewRecorder()
	e.handler.GameByID(rec, httptest.NewRequest(http.MethodGet, "/games/live-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.handler.GameByID(rec, httptest.NewRequest(http.MethodGet, "/games/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTeams(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	rec := httptest.NewRecorder()
	e.handler.Teams(rec, httptest.NewRequest(http.MethodGet, "/teams", nil))

	var body teamsResponse
	decode(t, rec, &body)
	if body.Count != 2 || body.Teams[0].Abbreviation != "BOS" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestTeamAverages(t *testing.T) {
	e := newEnv(t, &stubHistory{games: historicalGames()}, nil)
	rec := httptest.NewRecorder()
	e.handler.TeamAverages(rec, httptest.NewRequest(http.MethodGet, "/teams/bos/averages", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body domain.TeamAverages
	decode(t, rec, &body)
	if body.Team != "BOS" || body.GamesAnalyzed == 0 {
		t.Fatalf("unexpected averages %+v", body)
	}
}

func TestTeamAveragesUnknownTeam(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	rec := httptest.NewRecorder()
	e.handler.TeamAverages(rec, httptest.NewRequest(http.MethodGet, "/teams/NYK/averages", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestModelsRefreshAndLookup(t *testing.T) {
	e := newEnv(t, &stubHistory{games: historicalGames()}, nil)

	rec := httptest.NewRecorder()
	e.handler.Models(rec, httptest.NewRequest(http.MethodGet, "/models?start=20240101&end=20240131", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var set regression.ModelSet
	decode(t, rec, &set)
	if len(set.TeamStats) != 1 || set.TeamStats[0].Team.Abbreviation != "BOS" {
		t.Fatalf("expected one BOS model, got %+v", set.TeamStats)
	}

	rec = httptest.NewRecorder()
	e.handler.ModelRoutes(rec, httptest.NewRequest(http.MethodGet, "/models/BOS", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var model domain.RegressionModel
	decode(t, rec, &model)
	if model.Count != len(historicalGames()) {
		t.Fatalf("unexpected model %+v", model)
	}
}

func TestModelsRejectsBadForceFlag(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	rec := httptest.NewRecorder()
	e.handler.Models(rec, httptest.NewRequest(http.MethodGet, "/models?force=maybe", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestModelByTeamMissing(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	rec := httptest.NewRecorder()
	e.handler.ModelRoutes(rec, httptest.NewRequest(http.MethodGet, "/models/BOS", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProjectionEndToEnd(t *testing.T) {
	e := newEnv(t, &stubHistory{games: historicalGames()}, nil)

	// Fit first, then put a live game on the slate.
	rec := httptest.NewRecorder()
	e.handler.Models(rec, httptest.NewRequest(http.MethodGet, "/models?start=20240101&end=20240131", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("model fit failed: %d", rec.Code)
	}

	e.live.SetGames([]domain.Game{{
		ID:       "live-1",
		HomeTeam: bos,
		AwayTeam: mia,
		HomeQuarters: domain.Quarters{
			{Points: 28, Played: true},
			{Points: 26, Played: true},
		},
		InProgress:    true,
		State:         domain.StateIn,
		CurrentPeriod: 3,
	}})

	rec = httptest.NewRecorder()
	e.handler.ModelRoutes(rec, httptest.NewRequest(http.MethodGet, "/models/BOS/projection?gameId=live-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var projection domain.Projection
	decode(t, rec, &projection)
	if projection.CurrentQuarter != 2 || projection.CurrentPoints != 54 {
		t.Fatalf("unexpected projection %+v", projection)
	}
	if projection.ProjectedTotal <= float64(projection.CurrentPoints) {
		t.Fatalf("projected total %.1f should exceed current points", projection.ProjectedTotal)
	}
}

func TestProjectionWithoutModel(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	e.live.SetGames([]domain.Game{{ID: "live-1", HomeTeam: bos, AwayTeam: mia, InProgress: true}})

	rec := httptest.NewRecorder()
	e.handler.ModelRoutes(rec, httptest.NewRequest(http.MethodGet, "/models/BOS/projection?gameId=live-1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBacktestEndToEnd(t *testing.T) {
	e := newEnv(t, &stubHistory{games: historicalGames()}, nil)

	rec := httptest.NewRecorder()
	e.handler.Models(rec, httptest.NewRequest(http.MethodGet, "/models", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("model fit failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.handler.ModelRoutes(rec, httptest.NewRequest(http.MethodGet, "/models/BOS/backtest?start=20240101&end=20240131", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary domain.BacktestSummary
	decode(t, rec, &summary)
	if summary.Team != "BOS" || len(summary.Results) != len(historicalGames()) {
		t.Fatalf("unexpected summary team=%s results=%d", summary.Team, len(summary.Results))
	}
	if summary.Accuracy < 0 || summary.Accuracy > 1 {
		t.Fatalf("accuracy out of range: %.2f", summary.Accuracy)
	}
}

func TestBacktestWithoutModel(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	rec := httptest.NewRecorder()
	e.handler.ModelRoutes(rec, httptest.NewRequest(http.MethodGet, "/models/BOS/backtest", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestModelRoutesUnknownSubpath(t *testing.T) {
	e := newEnv(t, &stubHistory{}, nil)
	rec := httptest.NewRecorder()
	e.handler.ModelRoutes(rec, httptest.NewRequest(http.MethodGet, "/models/BOS/history", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
