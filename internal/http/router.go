// Package http assembles the service's HTTP surface.
package http

import (
	nethttp "net/http"

	"nba-totals-service/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux. metricsHandler is mounted at
// /metrics when non-nil.
func NewRouter(handler *handlers.Handler, metricsHandler nethttp.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/ready", handler.Ready)
	mux.HandleFunc("/games", handler.Games)
	mux.HandleFunc("/games/range", handler.GamesRange)
	mux.HandleFunc("/games/", handler.GameByID)
	mux.HandleFunc("/teams", handler.Teams)
	mux.HandleFunc("/teams/", handler.TeamAverages)
	mux.HandleFunc("/models", handler.Models)
	mux.HandleFunc("/models/", handler.ModelRoutes)
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}
	return mux
}
