// Package handlers wires HTTP routes to the app services.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	appgames "nba-totals-service/internal/app/games"
	appmodels "nba-totals-service/internal/app/models"
	appteams "nba-totals-service/internal/app/teams"
	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/logging"
	"nba-totals-service/internal/poller"
	"nba-totals-service/internal/regression"
	"nba-totals-service/internal/repo"
	"nba-totals-service/internal/timeutil"
)

type nowFunc func() time.Time

// Handler wires HTTP routes to the app services.
type Handler struct {
	games    *appgames.Service
	teams    *appteams.Service
	models   *appmodels.Service
	logger   *slog.Logger
	now      nowFunc
	statusFn func() poller.Status
}

// NewHandler constructs a Handler with defaults.
func NewHandler(games *appgames.Service, teams *appteams.Service, models *appmodels.Service, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		games:    games,
		teams:    teams,
		models:   models,
		logger:   logger,
		now:      time.Now,
		statusFn: statusFn,
	}
}

type gamesResponse struct {
	Date  string        `json:"date,omitempty"`
	Count int           `json:"count"`
	Games []domain.Game `json:"games"`
}

type teamsResponse struct {
	Count int           `json:"count"`
	Teams []domain.Team `json:"teams"`
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	if h.statusFn().IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := h.statusFn().LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Games returns the slate for one date; today's live slate when the date is
// omitted or today.
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	logger := loggerFromContext(r, h.logger)

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date != "" {
		if _, err := timeutil.ParseDateKey(date); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid date format (expected YYYYMMDD)", logger)
			return
		}
	}

	games, err := h.games.ByDate(r.Context(), date)
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "failed to load games", logger)
		return
	}
	if date == "" {
		date = timeutil.FormatDateKey(h.now())
	}
	logging.Info(logger, "served games",
		slog.String(logging.FieldDate, date),
		slog.Int(logging.FieldCount, len(games)))
	writeJSON(w, http.StatusOK, gamesResponse{Date: date, Count: len(games), Games: games}, logger)
}

// GamesRange returns games between start and end inclusive, optionally
// narrowed by team and opponent.
func (h *Handler) GamesRange(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	q := r.URL.Query()
	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))
	if start == "" || end == "" {
		writeError(w, r, http.StatusBadRequest, "start and end are required (YYYYMMDD)", logger)
		return
	}

	games, err := h.games.Range(r.Context(), start, end, strings.TrimSpace(q.Get("team")), strings.TrimSpace(q.Get("opponent")))
	if err != nil {
		if errors.Is(err, repo.ErrInvalidRange) {
			writeError(w, r, http.StatusBadRequest, "start date must not be after end date", logger)
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid date format (expected YYYYMMDD)", logger)
		return
	}
	writeJSON(w, http.StatusOK, gamesResponse{Count: len(games), Games: games}, logger)
}

// GameByID returns a specific live game if present.
func (h *Handler) GameByID(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	idRaw := strings.TrimPrefix(r.URL.Path, "/games/")
	id, err := url.PathUnescape(idRaw)
	if err != nil || id == "" || strings.ContainsAny(id, " \t/") {
		writeError(w, r, http.StatusBadRequest, "invalid game id", h.logger)
		return
	}

	game, ok := h.games.GameByID(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "game not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, game, h.logger)
}

// Teams returns the current team directory.
func (h *Handler) Teams(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	teams := h.teams.Teams()
	writeJSON(w, http.StatusOK, teamsResponse{Count: len(teams), Teams: teams}, h.logger)
}

// TeamAverages returns recent per-quarter scoring averages for one team.
// Expects /teams/{abbr}/averages.
func (h *Handler) TeamAverages(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	abbr, rest, ok := teamPath(r.URL.Path, "/teams/")
	if !ok || rest != "averages" {
		writeError(w, r, http.StatusNotFound, "not found", logger)
		return
	}

	n := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("games")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, r, http.StatusBadRequest, "invalid games count", logger)
			return
		}
		n = parsed
	}

	averages, err := h.teams.Averages(r.Context(), abbr, n)
	if err != nil {
		if errors.Is(err, appteams.ErrInsufficientData) {
			writeError(w, r, http.StatusNotFound, "no recorded games for team", logger)
			return
		}
		writeError(w, r, http.StatusBadGateway, "failed to load games", logger)
		return
	}
	writeJSON(w, http.StatusOK, averages, logger)
}

// Models refreshes and returns the model set. start/end narrow the fit
// window; force=true bypasses the model-set TTL.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	q := r.URL.Query()
	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))

	force := false
	if raw := strings.TrimSpace(q.Get("force")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid force flag", logger)
			return
		}
		force = parsed
	}

	set, err := h.models.Refresh(r.Context(), start, end, force)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidRange) {
			writeError(w, r, http.StatusBadRequest, "start date must not be after end date", logger)
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid date format (expected YYYYMMDD)", logger)
		return
	}
	writeJSON(w, http.StatusOK, set, logger)
}

// ModelRoutes dispatches /models/{abbr}, /models/{abbr}/projection, and
// /models/{abbr}/backtest.
func (h *Handler) ModelRoutes(w http.ResponseWriter, r *http.Request) {
	abbr, rest, ok := teamPath(r.URL.Path, "/models/")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid team", h.logger)
		return
	}
	switch rest {
	case "":
		h.modelByTeam(w, r, abbr)
	case "projection":
		h.projection(w, r, abbr)
	case "backtest":
		h.backtest(w, r, abbr)
	default:
		writeError(w, r, http.StatusNotFound, "not found", h.logger)
	}
}

func (h *Handler) modelByTeam(w http.ResponseWriter, r *http.Request, abbr string) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	model, err := h.models.Model(abbr)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "no model for team", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model, h.logger)
}

func (h *Handler) projection(w http.ResponseWriter, r *http.Request, abbr string) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	gameID := strings.TrimSpace(r.URL.Query().Get("gameId"))

	projection, err := h.models.Project(abbr, gameID)
	if err != nil {
		switch {
		case errors.Is(err, regression.ErrMissingModel):
			writeError(w, r, http.StatusNotFound, "no model for team", logger)
		case errors.Is(err, appmodels.ErrGameNotFound):
			writeError(w, r, http.StatusNotFound, "game not found", logger)
		case errors.Is(err, appmodels.ErrNoLiveGame):
			writeError(w, r, http.StatusConflict, "no projectable live game for team", logger)
		default:
			writeError(w, r, http.StatusInternalServerError, "projection failed", logger)
		}
		return
	}
	writeJSON(w, http.StatusOK, projection, logger)
}

func (h *Handler) backtest(w http.ResponseWriter, r *http.Request, abbr string) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	q := r.URL.Query()

	summary, err := h.models.Backtest(r.Context(), abbr, strings.TrimSpace(q.Get("start")), strings.TrimSpace(q.Get("end")))
	if err != nil {
		switch {
		case errors.Is(err, regression.ErrMissingModel):
			writeError(w, r, http.StatusNotFound, "no model for team", logger)
		case errors.Is(err, repo.ErrInvalidRange):
			writeError(w, r, http.StatusBadRequest, "start date must not be after end date", logger)
		default:
			writeError(w, r, http.StatusBadRequest, "invalid date format (expected YYYYMMDD)", logger)
		}
		return
	}
	writeJSON(w, http.StatusOK, summary, logger)
}

// teamPath splits "/{prefix}{abbr}[/rest]" into the team abbreviation and the
// remainder after it.
func teamPath(path, prefix string) (abbr, rest string, ok bool) {
	trimmed := strings.TrimPrefix(path, prefix)
	if trimmed == path || trimmed == "" {
		return "", "", false
	}
	parts := strings.SplitN(trimmed, "/", 2)
	abbr = strings.ToUpper(strings.TrimSpace(parts[0]))
	if abbr == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		rest = parts[1]
	}
	return abbr, rest, true
}
