// Package alerts schedules game notifications: a heads-up shortly before
// tip-off and a heads-up when the third quarter is about to end.
package alerts

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nba-totals-service/internal/domain"
	"nba-totals-service/internal/logging"
	"nba-totals-service/internal/timeutil"
)

const (
	// startLead is how far before tip-off the starting-soon alert fires.
	startLead = 10 * time.Minute
	// quarterThreshold is the remaining game clock at which the
	// quarter-ending alert fires.
	quarterThreshold = 2 * time.Minute
	// alertQuarter is the period the quarter-ending alert watches.
	alertQuarter = 3
)

// Notifier delivers one alert event. Delivery transport is the caller's
// concern; the scheduler only decides when to fire.
type Notifier interface {
	Notify(event domain.AlertEvent)
}

// LogNotifier writes alert events to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(event domain.AlertEvent) {
	logging.Info(n.Logger, "alert fired",
		slog.String("kind", string(event.Kind)),
		slog.String(logging.FieldGameID, event.GameID),
		slog.String("title", event.Title))
}

type timerKey struct {
	kind   domain.AlertKind
	gameID string
}

type pendingTimer interface {
	Stop() bool
}

// Scheduler owns per-game alert timers. Each (kind, game) pair fires at most
// once; re-syncing with updated game data re-arms pending timers and cancels
// timers for games that disappeared from the slate.
type Scheduler struct {
	notifier Notifier
	logger   *slog.Logger

	now   func() time.Time
	after func(d time.Duration, fn func()) pendingTimer

	mu     sync.Mutex
	timers map[timerKey]pendingTimer
	fired  map[timerKey]bool
}

func NewScheduler(notifier Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		after: func(d time.Duration, fn func()) pendingTimer {
			return time.AfterFunc(d, fn)
		},
		timers: make(map[timerKey]pendingTimer),
		fired:  make(map[timerKey]bool),
	}
}

// Sync reconciles the timer set against the current slate of games. Timers
// for games no longer on the slate are cancelled; eligible alerts are armed
// or re-armed from the latest start time and clock.
func (s *Scheduler) Sync(games []domain.Game) {
	present := make(map[string]bool, len(games))
	for _, g := range games {
		present[g.ID] = true
	}

	s.mu.Lock()
	for key, timer := range s.timers {
		if !present[key.gameID] {
			timer.Stop()
			delete(s.timers, key)
			logging.Info(s.logger, "alert cancelled: game left slate",
				slog.String("kind", string(key.kind)),
				slog.String(logging.FieldGameID, key.gameID))
		}
	}
	s.mu.Unlock()

	for _, g := range games {
		s.syncStartingSoon(g)
		s.syncQuarterEnding(g)
	}
}

func (s *Scheduler) syncStartingSoon(g domain.Game) {
	if g.State != domain.StatePre || g.StartTime.IsZero() {
		return
	}
	fireAt := g.StartTime.Add(-startLead)
	delay := fireAt.Sub(s.now())
	if delay < 0 {
		return
	}
	s.arm(timerKey{kind: domain.AlertStartingSoon, gameID: g.ID}, delay, domain.AlertEvent{
		Kind:   domain.AlertStartingSoon,
		GameID: g.ID,
		Title:  "Game starting soon",
		Body:   fmt.Sprintf("%s tips off in %d minutes", g.Name, int(startLead.Minutes())),
		At:     fireAt,
	})
}

func (s *Scheduler) syncQuarterEnding(g domain.Game) {
	if !g.InProgress || g.CurrentPeriod != alertQuarter || g.Clock == "" {
		return
	}
	remaining, err := timeutil.ParseClock(g.Clock)
	if err != nil {
		logging.Warn(s.logger, "alert skipped: unreadable clock",
			slog.String(logging.FieldGameID, g.ID),
			slog.String("clock", g.Clock))
		return
	}
	delay := remaining - quarterThreshold
	if delay < 0 {
		delay = 0
	}
	s.arm(timerKey{kind: domain.AlertQuarterEnding, gameID: g.ID}, delay, domain.AlertEvent{
		Kind:   domain.AlertQuarterEnding,
		GameID: g.ID,
		Title:  "Third quarter ending",
		Body:   fmt.Sprintf("%s: under two minutes left in the third", g.Name),
		At:     s.now().Add(delay),
	})
}

// arm replaces any pending timer for the key. Keys that already fired stay
// fired; a later Sync never re-triggers them.
func (s *Scheduler) arm(key timerKey, delay time.Duration, event domain.AlertEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fired[key] {
		return
	}
	if prev, ok := s.timers[key]; ok {
		prev.Stop()
	}
	s.timers[key] = s.after(delay, func() {
		s.fire(key, event)
	})
}

func (s *Scheduler) fire(key timerKey, event domain.AlertEvent) {
	s.mu.Lock()
	if s.fired[key] {
		s.mu.Unlock()
		return
	}
	s.fired[key] = true
	delete(s.timers, key)
	s.mu.Unlock()

	s.notifier.Notify(event)
}

// Stop cancels every pending timer. Fired state is retained so a scheduler
// cannot replay alerts after a restart of its sync loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

// Pending reports how many timers are currently armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
