package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-planboard/internal/domain/events"
)

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	alerted []string
	err     error
}

func (f *fakeNotifier) Alert(_ context.Context, ev events.CareEvent) error {
	f.alerted = append(f.alerted, ev.ID)
	return f.err
}

func ev(id string, status events.Status, scheduledAt time.Time) events.CareEvent {
	return events.CareEvent{
		ID:          id,
		Subject:     events.Subject{PetID: "pet-1"},
		Type:        events.TypeReminder,
		Title:       "title " + id,
		ScheduledAt: scheduledAt,
		Status:      status,
	}
}

func newTestScanner(n Notifier, evs ...events.CareEvent) *Scanner {
	s := NewScanner(func() []events.CareEvent { return evs }, n, nil)
	s.now = func() time.Time { return testNow }
	return s
}

func TestScan_Window(t *testing.T) {
	n := &fakeNotifier{}
	s := newTestScanner(n,
		ev("past", events.StatusPlanned, testNow.Add(-time.Minute)),
		ev("edge-now", events.StatusPlanned, testNow),
		ev("in-window", events.StatusPlanned, testNow.Add(10*time.Minute)),
		ev("edge-15m", events.StatusPlanned, testNow.Add(15*time.Minute)),
		ev("beyond", events.StatusPlanned, testNow.Add(15*time.Minute+time.Second)),
	)

	if got := s.Scan(context.Background()); got != 3 {
		t.Fatalf("expected 3 alerts, got %d (%v)", got, n.alerted)
	}

	want := map[string]bool{"edge-now": true, "in-window": true, "edge-15m": true}
	for _, id := range n.alerted {
		if !want[id] {
			t.Errorf("unexpected alert for %s", id)
		}
	}
	if s.Notified("past") || s.Notified("beyond") {
		t.Errorf("events outside the window must not be marked")
	}
}

func TestScan_SkipsClosedEvents(t *testing.T) {
	n := &fakeNotifier{}
	s := newTestScanner(n,
		ev("done", events.StatusCompleted, testNow.Add(5*time.Minute)),
		ev("missed", events.StatusMissed, testNow.Add(5*time.Minute)),
	)

	if got := s.Scan(context.Background()); got != 0 {
		t.Fatalf("closed events must not alert, got %d", got)
	}
}

func TestScan_OncePerSession(t *testing.T) {
	n := &fakeNotifier{}
	s := newTestScanner(n, ev("e1", events.StatusPlanned, testNow.Add(5*time.Minute)))

	if got := s.Scan(context.Background()); got != 1 {
		t.Fatalf("first scan: expected 1 alert, got %d", got)
	}
	for i := 0; i < 3; i++ {
		if got := s.Scan(context.Background()); got != 0 {
			t.Fatalf("repeat scan %d: expected 0 alerts, got %d", i, got)
		}
	}
	if len(n.alerted) != 1 {
		t.Fatalf("expected exactly one alert total, got %d", len(n.alerted))
	}
}

func TestScan_TwoEventsSameTick(t *testing.T) {
	n := &fakeNotifier{}
	s := newTestScanner(n,
		ev("a", events.StatusPlanned, testNow.Add(3*time.Minute)),
		ev("b", events.StatusPlanned, testNow.Add(7*time.Minute)),
	)

	if got := s.Scan(context.Background()); got != 2 {
		t.Fatalf("expected 2 alerts in one pass, got %d", got)
	}
}

func TestScan_MarksEvenWhenEmissionFails(t *testing.T) {
	n := &fakeNotifier{err: errors.New("speaker broken")}
	s := newTestScanner(n, ev("e1", events.StatusPlanned, testNow.Add(5*time.Minute)))

	if got := s.Scan(context.Background()); got != 1 {
		t.Fatalf("failed emission still counts, got %d", got)
	}
	if !s.Notified("e1") {
		t.Fatalf("failed emission must still mark the event")
	}
	if got := s.Scan(context.Background()); got != 0 {
		t.Fatalf("no retry loop after failure, got %d", got)
	}
}

func TestScan_EditedTimeDoesNotReAlert(t *testing.T) {
	e := ev("e1", events.StatusPlanned, testNow.Add(5*time.Minute))
	current := []events.CareEvent{e}

	n := &fakeNotifier{}
	s := NewScanner(func() []events.CareEvent { return current }, n, nil)
	s.now = func() time.Time { return testNow }

	s.Scan(context.Background())

	// La hora se edita y el evento vuelve a caer en la ventana más tarde.
	e.ScheduledAt = testNow.Add(40 * time.Minute)
	current = []events.CareEvent{e}
	s.now = func() time.Time { return testNow.Add(30 * time.Minute) }

	if got := s.Scan(context.Background()); got != 0 {
		t.Fatalf("edited event already notified must not re-alert, got %d", got)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := newTestScanner(&fakeNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop on cancel")
	}
}
