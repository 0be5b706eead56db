package alerts

import (
	"sync"
	"testing"
	"time"

	"nba-totals-service/internal/domain"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return !t.stopped
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.AlertEvent
}

func (n *recordingNotifier) Notify(event domain.AlertEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func newTestScheduler(t *testing.T, at time.Time) (*Scheduler, *recordingNotifier, *[]*fakeTimer) {
	t.Helper()
	notifier := &recordingNotifier{}
	s := NewScheduler(notifier, nil)
	s.now = func() time.Time { return at }
	timers := &[]*fakeTimer{}
	s.after = func(d time.Duration, fn func()) pendingTimer {
		timer := &fakeTimer{delay: d, fn: fn}
		*timers = append(*timers, timer)
		return timer
	}
	return s, notifier, timers
}

func upcomingGame(id string, start time.Time) domain.Game {
	return domain.Game{
		ID:        id,
		Name:      "Miami Heat at Boston Celtics",
		State:     domain.StatePre,
		StartTime: start,
	}
}

func thirdQuarterGame(id, clock string) domain.Game {
	return domain.Game{
		ID:            id,
		Name:          "Miami Heat at Boston Celtics",
		State:         domain.StateIn,
		InProgress:    true,
		CurrentPeriod: 3,
		Clock:         clock,
	}
}

func TestSyncArmsStartingSoonTenMinutesBeforeTip(t *testing.T) {
	at := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	s, _, timers := newTestScheduler(t, at)

	s.Sync([]domain.Game{upcomingGame("g1", at.Add(time.Hour))})

	if len(*timers) != 1 {
		t.Fatalf("expected 1 timer, got %d", len(*timers))
	}
	if got := (*timers)[0].delay; got != 50*time.Minute {
		t.Fatalf("expected 50m delay, got %s", got)
	}
}

func TestSyncSkipsStartingSoonInsideLeadWindow(t *testing.T) {
	at := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	s, _, timers := newTestScheduler(t, at)

	// Tip-off in 5 minutes: the 10-minute mark already passed.
	s.Sync([]domain.Game{upcomingGame("g1", at.Add(5 * time.Minute))})

	if len(*timers) != 0 {
		t.Fatalf("expected no timer, got %d", len(*timers))
	}
}

func TestSyncArmsQuarterEndingAlert(t *testing.T) {
	at := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	s, _, timers := newTestScheduler(t, at)

	s.Sync([]domain.Game{thirdQuarterGame("g1", "7:30")})

	if len(*timers) != 1 {
		t.Fatalf("expected 1 timer, got %d", len(*timers))
	}
	if got := (*timers)[0].delay; got != 5*time.Minute+30*time.Second {
		t.Fatalf("expected 5m30s delay, got %s", got)
	}
}

func TestSyncQuarterEndingAlreadyUnderThresholdFiresImmediately(t *testing.T) {
	at := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	s, _, timers := newTestScheduler(t, at)

	s.Sync([]domain.Game{thirdQuarterGame("g1", "1:30")})

	if len(*timers) != 1 {
		t.Fatalf("expected 1 timer, got %d", len(*timers))
	}
	if got := (*timers)[0].delay; got != 0 {
		t.Fatalf("expected zero delay, got %s", got)
	}
}

func TestSyncIgnoresOtherQuarters(t *testing.T) {
	at := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	s, _, timers := newTestScheduler(t, at)

	second := thirdQuarterGame("g1", "7:30")
	second.CurrentPeriod = 2
	fourth := thirdQuarterGame("g2", "7:30")
	fourth.CurrentPeriod = 4

	s.Sync([]domain.Game{second, fourth})

	if len(*timers) != 0 {
		t.Fatalf("expected no timers outside the third quarter, got %d", len(*timers))
	}
}

func TestResyncCancelsSupersededTimer(t *testing.T) {
	at := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	s, _, timers := newTestScheduler(t, at)

	s.Sync([]domain.Game{thirdQuarterGame("g1", "7:30")})
	s.Sync([]domain.Game{thirdQuarterGame("g1", "6:00")})

	if len(*timers) != 2 {
		t.Fatalf("expected 2 timers created, got %d", len(*timers))
	}
	if !(*timers)[0].stopped {
		t.Fatal("first timer must be stopped when re-armed")
	}
	if (*timers)[1].stopped {
		t.Fatal("replacement timer must still be armed")
	}
	if got := s.Pending(); got != 1 {
		t.Fatalf("expected 1 pending timer, got %d", got)
	}
}

func TestAlertFiresAtMostOnce(t *testing.T) {
	at := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	s, notifier, timers := newTestScheduler(t, at)

	s.Sync([]domain.Game{thirdQuarterGame("g1", "7:30")})
	(*timers)[0].fn()
	(*timers)[0].fn()

	if got := notifier.count(); got != 1 {
		t.Fatalf("expected one notification, got %d", got)
	}

	// A later sync for the same game must not re-arm a fired key.
	s.Sync([]domain.Game{thirdQuarterGame("g1", "3:00")})
	if len(*timers) != 1 {
		t.Fatal("fired alert must not be re-armed")
	}
}

func TestSyncCancelsTimersForGamesOffTheSlate(t *testing.T) {
	at := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	s, _, timers := newTestScheduler(t, at)

	s.Sync([]domain.Game{
		upcomingGame("g1", at.Add(time.Hour)),
		upcomingGame("g2", at.Add(2 * time.Hour)),
	})
	if s.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", s.Pending())
	}

	s.Sync([]domain.Game{upcomingGame("g2", at.Add(2 * time.Hour))})

	if s.Pending() != 1 {
		t.Fatalf("expected 1 pending after g1 left the slate, got %d", s.Pending())
	}
	if !(*timers)[0].stopped {
		t.Fatal("g1 timer must be stopped")
	}
}

func TestStopCancelsEverything(t *testing.T) {
	at := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	s, _, timers := newTestScheduler(t, at)

	s.Sync([]domain.Game{
		upcomingGame("g1", at.Add(time.Hour)),
		thirdQuarterGame("g2", "8:00"),
	})
	s.Stop()

	if s.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", s.Pending())
	}
	for i, timer := range *timers {
		if !timer.stopped {
			t.Fatalf("timer %d not stopped", i)
		}
	}
}

func TestBadClockSkipsQuarterAlert(t *testing.T) {
	at := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	s, _, timers := newTestScheduler(t, at)

	s.Sync([]domain.Game{thirdQuarterGame("g1", "halftime")})

	if len(*timers) != 0 {
		t.Fatalf("expected no timer for unreadable clock, got %d", len(*timers))
	}
}
