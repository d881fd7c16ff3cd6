package planboard

import (
	"testing"
	"time"

	"pet-planboard/internal/domain/events"
)

func TestParseSourceKey(t *testing.T) {
	cases := []struct {
		key    string
		wantID string
		wantOK bool
	}{
		{"event-abc123", "abc123", true},
		{"event-", "", false},
		{"abc123", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		id, ok := ParseSourceKey(tc.key)
		if ok != tc.wantOK || id != tc.wantID {
			t.Errorf("ParseSourceKey(%q) = (%q, %v), want (%q, %v)", tc.key, id, ok, tc.wantID, tc.wantOK)
		}
	}
}

func TestParseTargetKey(t *testing.T) {
	ref, ok := ParseTargetKey("urgent-pet-42")
	if !ok || ref.Kind != BucketUrgent || ref.PetID != "42" {
		t.Fatalf("urgent-pet-42: got (%+v, %v)", ref, ok)
	}

	ref, ok = ParseTargetKey("history-pet-abc")
	if !ok || ref.Kind != BucketHistory || ref.PetID != "abc" {
		t.Fatalf("history-pet-abc: got (%+v, %v)", ref, ok)
	}

	for _, bad := range []string{"", "urgent-pet-", "banana-pet-42", "urgent-42", "pet-42"} {
		if _, ok := ParseTargetKey(bad); ok {
			t.Errorf("ParseTargetKey(%q) should fail", bad)
		}
	}
}

func fixedMediator(now time.Time) *Mediator {
	m := NewMediator()
	m.now = func() time.Time { return now }
	return m
}

func TestMediator_HistoryDropCompletesImmediately(t *testing.T) {
	m := fixedMediator(testNow)
	e := ev("e1", events.StatusPlanned, testNow.Add(time.Hour))

	d, session := m.Decide(e, TargetRef{Kind: BucketHistory, PetID: "pet-1"})
	if d != DecisionComplete {
		t.Fatalf("expected complete, got %v", d)
	}
	if session != nil {
		t.Fatalf("complete decision should not open a session")
	}
}

func TestMediator_UrgentDropOpensCapture(t *testing.T) {
	m := fixedMediator(testNow)
	e := ev("e1", events.StatusPlanned, testNow.AddDate(0, 0, 3))

	d, session := m.Decide(e, TargetRef{Kind: BucketUrgent, PetID: "pet-1"})
	if d != DecisionCapture || session == nil {
		t.Fatalf("expected capture with session, got (%v, %v)", d, session)
	}

	if !session.Default.Equal(testNow) {
		t.Errorf("urgent default should be now, got %v", session.Default)
	}

	wantPresets := []time.Time{
		testNow.Add(1 * time.Hour),
		testNow.Add(3 * time.Hour),
		time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
	}
	if len(session.Presets) != len(wantPresets) {
		t.Fatalf("expected %d presets, got %d", len(wantPresets), len(session.Presets))
	}
	for i, want := range wantPresets {
		if !session.Presets[i].At.Equal(want) {
			t.Errorf("preset %q: got %v, want %v", session.Presets[i].Label, session.Presets[i].At, want)
		}
	}
}

func TestMediator_PlansDropOpensCapture(t *testing.T) {
	m := fixedMediator(testNow)
	e := ev("e1", events.StatusPlanned, testNow.Add(-time.Hour))

	d, session := m.Decide(e, TargetRef{Kind: BucketPlans, PetID: "pet-1"})
	if d != DecisionCapture || session == nil {
		t.Fatalf("expected capture with session, got (%v, %v)", d, session)
	}

	tomorrow := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	if !session.Default.Equal(tomorrow) {
		t.Errorf("plans default should be tomorrow 09:00, got %v", session.Default)
	}

	wantPresets := []time.Time{
		tomorrow,
		tomorrow.AddDate(0, 0, 1),
		tomorrow.AddDate(0, 0, 6),
	}
	for i, want := range wantPresets {
		if !session.Presets[i].At.Equal(want) {
			t.Errorf("preset %q: got %v, want %v", session.Presets[i].Label, session.Presets[i].At, want)
		}
	}
}

func TestMediator_CrossPetDropIsRejected(t *testing.T) {
	m := fixedMediator(testNow)
	e := ev("e1", events.StatusPlanned, testNow) // pet-1

	for _, kind := range []Bucket{BucketUrgent, BucketPlans, BucketHistory} {
		d, session := m.Decide(e, TargetRef{Kind: kind, PetID: "pet-OTHER"})
		if d != DecisionNone || session != nil {
			t.Errorf("cross-pet drop to %s: expected none, got (%v, %v)", kind, d, session)
		}
	}
}

func TestMediator_GuestEventCannotBeDragged(t *testing.T) {
	m := fixedMediator(testNow)
	e := events.CareEvent{
		ID:          "g1",
		Subject:     events.Subject{GuestName: "walk-in"},
		ScheduledAt: testNow,
		Status:      events.StatusPlanned,
	}

	d, _ := m.Decide(e, TargetRef{Kind: BucketHistory, PetID: "pet-1"})
	if d != DecisionNone {
		t.Fatalf("guest event has no pet column, expected none, got %v", d)
	}
}
