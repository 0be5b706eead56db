// Package server wires configuration, providers, the modeling stack, and the
// HTTP surface into a runnable service.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"nba-totals-service/internal/alerts"
	appgames "nba-totals-service/internal/app/games"
	appmodels "nba-totals-service/internal/app/models"
	appteams "nba-totals-service/internal/app/teams"
	"nba-totals-service/internal/backtest"
	"nba-totals-service/internal/cache"
	"nba-totals-service/internal/config"
	httpserver "nba-totals-service/internal/http"
	"nba-totals-service/internal/http/handlers"
	"nba-totals-service/internal/http/middleware"
	"nba-totals-service/internal/logging"
	"nba-totals-service/internal/metrics"
	"nba-totals-service/internal/poller"
	"nba-totals-service/internal/projection"
	"nba-totals-service/internal/providers"
	"nba-totals-service/internal/regression"
	"nba-totals-service/internal/repo"
	"nba-totals-service/internal/store"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         *store.MemoryStore
	gamesService  *appgames.Service
	teamsService  *appteams.Service
	modelsService *appmodels.Service
	scheduler     *alerts.Scheduler
	httpServer    httpServer
	metricsServer httpServer
	poller        Poller
	metricsStop   func(context.Context) error
}

// New constructs a server with default provider and poller wiring.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return newServer(cfg, logger, nil)
}

func newServer(cfg config.Config, logger *slog.Logger, base baseProvider) *Server {
	recorder, metricsSrv, metricsHandler, metricsShutdown := buildMetrics(cfg, logger)

	factory := newProviderFactory(logger, recorder)
	if base == nil {
		base = selectProvider(cfg, logger)
	}
	liveProvider := factory.buildLive(cfg, base)
	historical := factory.buildHistorical(cfg, base)

	dated := cache.New(historical, cfg.Modeling.GameCacheTTL, logger, recorder)
	history := repo.New(dated, logger, cfg.Modeling.HistoricalDays)
	memoryStore := store.NewMemoryStore()

	engine := regression.NewEngine(cfg.Modeling.ModelSetTTL, logger, recorder)
	projector := projection.NewProjector(engine, logger, recorder)
	backtester := backtest.NewRunner(engine, logger, recorder)

	gamesSvc := appgames.NewService(memoryStore, history)
	teamsSvc := appteams.NewService(memoryStore, history)
	modelsSvc := appmodels.NewService(history, memoryStore, memoryStore, engine, projector, backtester, cfg.Modeling.HistoricalDays)

	scheduler := alerts.NewScheduler(alerts.LogNotifier{Logger: logger}, logger)
	plr := poller.New(liveProvider, base, memoryStore, memoryStore, scheduler, logger, recorder, cfg.PollInterval)

	httpSrv := buildHTTPServer(cfg, gamesSvc, teamsSvc, modelsSvc, logger, recorder, plr, metricsHandler)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         memoryStore,
		gamesService:  gamesSvc,
		teamsService:  teamsSvc,
		modelsService: modelsSvc,
		scheduler:     scheduler,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		poller:        plr,
		metricsStop:   metricsShutdown,
	}
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpSrv,
		poller:     plr,
	}
}

func buildHTTPServer(cfg config.Config, gamesSvc *appgames.Service, teamsSvc *appteams.Service, modelsSvc *appmodels.Service, logger *slog.Logger, recorder *metrics.Recorder, plr Poller, metricsHandler http.Handler) httpServer {
	var statusFn func() poller.Status
	if plr != nil {
		statusFn = plr.Status
	}

	handler := handlers.NewHandler(gamesSvc, teamsSvc, modelsSvc, logger, statusFn)
	router := httpserver.NewRouter(handler, metricsHandler)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

func buildMetrics(cfg config.Config, logger *slog.Logger) (*metrics.Recorder, httpServer, http.Handler, func(context.Context) error) {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return metrics.NewRecorder(), nil, nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled && recCfg.Port != "" && recCfg.Port != cfg.Port {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, handler, shutdown
}

// Run starts the poller and HTTP server, then waits for context cancellation
// to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.poller.Start(ctx)

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if err := s.poller.Stop(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("failed to stop poller", "error", err)
	}

	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	// Stop rate-limited providers to avoid ticker leaks when present.
	if rl, ok := s.pollerProvider().(interface{ Close() }); ok {
		rl.Close()
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

// pollerProvider extracts the underlying provider from the poller when
// available, to enable cleanup of rate-limited tickers.
func (s *Server) pollerProvider() providers.GameProvider {
	if pa, ok := s.poller.(interface {
		Provider() providers.GameProvider
	}); ok {
		return pa.Provider()
	}
	return nil
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
