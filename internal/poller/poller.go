// Package poller refreshes the live slate on an interval and feeds it to the
// in-memory store and the alert scheduler.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/logging"
	"nba-totals-service/internal/metrics"
	"nba-totals-service/internal/providers"
	"nba-totals-service/internal/timeutil"
)

const defaultInterval = 30 * time.Second

// GameSink receives each refreshed slate wholesale.
type GameSink interface {
	SetGames(games []domain.Game)
}

// TeamSink receives the refreshed team directory.
type TeamSink interface {
	SetTeams(teams []domain.Team)
}

// AlertSink reconciles notification timers against the refreshed slate.
type AlertSink interface {
	Sync(games []domain.Game)
}

// Poller fetches today's games on an interval, bypassing the historical
// cache so live quarter data stays current.
type Poller struct {
	games    providers.GameProvider
	teams    providers.TeamProvider
	sink     GameSink
	teamSink TeamSink
	alerts   AlertSink
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	teamsLoaded bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the poller loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the poller has had a recent success and is not
// failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Poller with sane defaults.
func New(games providers.GameProvider, teams providers.TeamProvider, sink GameSink, teamSink TeamSink, alerts AlertSink, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		games:    games,
		teams:    teams,
		sink:     sink,
		teamSink: teamSink,
		alerts:   alerts,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins polling until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	p.ticker = time.NewTicker(p.interval)

	go func() {
		logging.Info(p.logger, "poller started", slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()))
		// Initial fetch to warm data on boot.
		p.fetchOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.done:
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.ticker.C:
				p.fetchOnce(ctx)
			}
		}
	}()
}

// Stop halts the polling loop.
func (p *Poller) Stop(ctx context.Context) error {
	_ = ctx
	p.stopOnce.Do(func() {
		close(p.done)
		p.stopTicker()
	})
	return nil
}

func (p *Poller) fetchOnce(ctx context.Context) {
	start := time.Now()
	p.recordAttempt(start)

	p.loadTeams(ctx)

	today := timeutil.FormatDateKey(p.now())
	games, err := p.games.FetchGames(ctx, today)
	p.metrics.RecordPollerCycle(time.Since(start), err)
	if err != nil {
		logging.Error(p.logger, "poller fetch failed", err,
			slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()))
		p.recordFailure(err, start)
		return
	}

	if p.sink != nil {
		p.sink.SetGames(games)
	}
	if p.alerts != nil {
		p.alerts.Sync(games)
	}
	p.recordSuccess(start)
	logging.Info(p.logger, "poller refreshed games",
		slog.Int(logging.FieldCount, len(games)),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
}

// loadTeams fills the team directory once; failures retry next cycle.
func (p *Poller) loadTeams(ctx context.Context) {
	if p.teamsLoaded || p.teams == nil || p.teamSink == nil {
		return
	}
	teams, err := p.teams.FetchTeams(ctx)
	if err != nil {
		logging.Warn(p.logger, "team directory fetch failed", slog.String("error", err.Error()))
		return
	}
	p.teamSink.SetTeams(teams)
	p.teamsLoaded = true
	logging.Info(p.logger, "team directory loaded", slog.Int(logging.FieldCount, len(teams)))
}

func (p *Poller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

// Provider exposes the underlying game provider for caller cleanup.
func (p *Poller) Provider() providers.GameProvider {
	return p.games
}
