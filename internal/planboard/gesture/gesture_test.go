package gesture

import (
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type recorder struct {
	drags []Result
	taps  []string
}

func record(src Source) *recorder {
	r := &recorder{}
	src.OnDragEnd(func(res Result) { r.drags = append(r.drags, res) })
	src.OnTap(func(key string) { r.taps = append(r.taps, key) })
	return r
}

// -------------------------
// Pointer
// -------------------------

func TestPointer_DragAtThreshold(t *testing.T) {
	p := NewPointer()
	r := record(p)

	p.Feed(Sample{Phase: PhasePress, At: t0, X: 100, Y: 100, SourceKey: "event-e1"})
	p.Feed(Sample{Phase: PhaseMove, At: t0, X: 110, Y: 100}) // exactamente 10px
	p.Feed(Sample{Phase: PhaseRelease, At: t0, X: 200, Y: 200, TargetKey: "urgent-pet-p1"})

	if len(r.drags) != 1 {
		t.Fatalf("expected 1 drag, got %d (taps=%v)", len(r.drags), r.taps)
	}
	if r.drags[0].SourceKey != "event-e1" || r.drags[0].TargetKey != "urgent-pet-p1" {
		t.Fatalf("wrong drag result: %+v", r.drags[0])
	}
}

func TestPointer_BelowThresholdIsTap(t *testing.T) {
	p := NewPointer()
	r := record(p)

	p.Feed(Sample{Phase: PhasePress, At: t0, X: 100, Y: 100, SourceKey: "event-e1"})
	p.Feed(Sample{Phase: PhaseMove, At: t0, X: 105, Y: 105}) // ~7px
	p.Feed(Sample{Phase: PhaseRelease, At: t0, X: 105, Y: 105})

	if len(r.drags) != 0 {
		t.Fatalf("small movement must not drag: %+v", r.drags)
	}
	if len(r.taps) != 1 || r.taps[0] != "event-e1" {
		t.Fatalf("expected tap on event-e1, got %v", r.taps)
	}
}

func TestPointer_OnceActiveStaysActive(t *testing.T) {
	p := NewPointer()
	r := record(p)

	p.Feed(Sample{Phase: PhasePress, At: t0, X: 0, Y: 0, SourceKey: "event-e1"})
	p.Feed(Sample{Phase: PhaseMove, At: t0, X: 50, Y: 0})
	// Vuelve cerca del origen antes de soltar: sigue siendo drag.
	p.Feed(Sample{Phase: PhaseMove, At: t0, X: 1, Y: 0})
	p.Feed(Sample{Phase: PhaseRelease, At: t0, X: 1, Y: 0, TargetKey: "plans-pet-p1"})

	if len(r.drags) != 1 || len(r.taps) != 0 {
		t.Fatalf("activated drag must not demote to tap: drags=%v taps=%v", r.drags, r.taps)
	}
}

func TestPointer_PressOutsideCardIsIgnored(t *testing.T) {
	p := NewPointer()
	r := record(p)

	p.Feed(Sample{Phase: PhasePress, At: t0, X: 0, Y: 0}) // sin SourceKey
	p.Feed(Sample{Phase: PhaseMove, At: t0, X: 50, Y: 50})
	p.Feed(Sample{Phase: PhaseRelease, At: t0, X: 50, Y: 50, TargetKey: "urgent-pet-p1"})

	if len(r.drags) != 0 || len(r.taps) != 0 {
		t.Fatalf("press outside a card must be inert: drags=%v taps=%v", r.drags, r.taps)
	}
}

func TestPointer_ReleaseOutsideTargetReportsEmptyTarget(t *testing.T) {
	p := NewPointer()
	r := record(p)

	p.Feed(Sample{Phase: PhasePress, At: t0, X: 0, Y: 0, SourceKey: "event-e1"})
	p.Feed(Sample{Phase: PhaseMove, At: t0, X: 30, Y: 0})
	p.Feed(Sample{Phase: PhaseRelease, At: t0, X: 30, Y: 0}) // TargetKey vacía

	if len(r.drags) != 1 || r.drags[0].TargetKey != "" {
		t.Fatalf("expected drag with empty target, got %v", r.drags)
	}
}

// -------------------------
// Touch
// -------------------------

func TestTouch_HoldThenMoveIsDrag(t *testing.T) {
	tc := NewTouch()
	r := record(tc)

	tc.Feed(Sample{Phase: PhasePress, At: t0, X: 100, Y: 100, SourceKey: "event-e1"})
	// Dedo quieto hasta cumplir el hold.
	tc.Feed(Sample{Phase: PhaseMove, At: t0.Add(300 * time.Millisecond), X: 101, Y: 100})
	tc.Feed(Sample{Phase: PhaseMove, At: t0.Add(400 * time.Millisecond), X: 200, Y: 200})
	tc.Feed(Sample{Phase: PhaseRelease, At: t0.Add(500 * time.Millisecond), X: 200, Y: 200, TargetKey: "history-pet-p1"})

	if len(r.drags) != 1 || r.drags[0].TargetKey != "history-pet-p1" {
		t.Fatalf("expected drag, got drags=%v taps=%v", r.drags, r.taps)
	}
}

func TestTouch_QuickTap(t *testing.T) {
	tc := NewTouch()
	r := record(tc)

	tc.Feed(Sample{Phase: PhasePress, At: t0, X: 100, Y: 100, SourceKey: "event-e1"})
	tc.Feed(Sample{Phase: PhaseRelease, At: t0.Add(80 * time.Millisecond), X: 100, Y: 100})

	if len(r.taps) != 1 || r.taps[0] != "event-e1" {
		t.Fatalf("expected tap, got drags=%v taps=%v", r.drags, r.taps)
	}
}

func TestTouch_MoveBeforeHoldIsScroll(t *testing.T) {
	tc := NewTouch()
	r := record(tc)

	tc.Feed(Sample{Phase: PhasePress, At: t0, X: 100, Y: 100, SourceKey: "event-e1"})
	// Se mueve 20px a los 100ms: scroll. Ni drag ni tap.
	tc.Feed(Sample{Phase: PhaseMove, At: t0.Add(100 * time.Millisecond), X: 100, Y: 120})
	tc.Feed(Sample{Phase: PhaseMove, At: t0.Add(400 * time.Millisecond), X: 100, Y: 200})
	tc.Feed(Sample{Phase: PhaseRelease, At: t0.Add(500 * time.Millisecond), X: 100, Y: 200, TargetKey: "urgent-pet-p1"})

	if len(r.drags) != 0 || len(r.taps) != 0 {
		t.Fatalf("scroll must be inert: drags=%v taps=%v", r.drags, r.taps)
	}
}

func TestTouch_SlopToleratedDuringHold(t *testing.T) {
	tc := NewTouch()
	r := record(tc)

	tc.Feed(Sample{Phase: PhasePress, At: t0, X: 100, Y: 100, SourceKey: "event-e1"})
	// 4px de temblor antes del hold: dentro del slop.
	tc.Feed(Sample{Phase: PhaseMove, At: t0.Add(100 * time.Millisecond), X: 104, Y: 100})
	tc.Feed(Sample{Phase: PhaseMove, At: t0.Add(300 * time.Millisecond), X: 104, Y: 100})
	tc.Feed(Sample{Phase: PhaseRelease, At: t0.Add(400 * time.Millisecond), X: 180, Y: 100, TargetKey: "plans-pet-p1"})

	if len(r.drags) != 1 {
		t.Fatalf("jitter within slop should still drag: drags=%v taps=%v", r.drags, r.taps)
	}
}

func TestTouch_StillHoldIsDragOnRelease(t *testing.T) {
	tc := NewTouch()
	r := record(tc)

	// Dedo perfectamente quieto: ni un move entre press y release.
	tc.Feed(Sample{Phase: PhasePress, At: t0, X: 100, Y: 100, SourceKey: "event-e1"})
	tc.Feed(Sample{Phase: PhaseRelease, At: t0.Add(300 * time.Millisecond), X: 100, Y: 100, TargetKey: "history-pet-p1"})

	if len(r.taps) != 0 {
		t.Fatalf("held press must not open the edit form: taps=%v", r.taps)
	}
	if len(r.drags) != 1 || r.drags[0].TargetKey != "history-pet-p1" {
		t.Fatalf("expected drag after still hold, got %v", r.drags)
	}
}

func TestFeed_ConcurrentSamplesAreSerialized(t *testing.T) {
	// Las muestras llegan por HTTP y pueden solaparse; cada reconocedor tiene
	// que aguantar Feed desde varios goroutines sin romper su estado.
	for _, src := range []Source{NewPointer(), NewTouch()} {
		var mu sync.Mutex
		var results []Result
		src.OnDragEnd(func(res Result) {
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		})
		src.OnTap(func(string) {})

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				src.Feed(Sample{Phase: PhasePress, At: t0, X: 0, Y: 0, SourceKey: "event-e1"})
				src.Feed(Sample{Phase: PhaseMove, At: t0.Add(300 * time.Millisecond), X: 50, Y: 0})
				src.Feed(Sample{Phase: PhaseRelease, At: t0.Add(400 * time.Millisecond), X: 50, Y: 0, TargetKey: "urgent-pet-p1"})
			}()
		}
		wg.Wait()

		mu.Lock()
		for _, res := range results {
			if res.SourceKey != "event-e1" {
				t.Errorf("torn source key: %+v", res)
			}
		}
		mu.Unlock()
	}
}

func TestForModality(t *testing.T) {
	if _, ok := ForModality(ModalityTouch).(*Touch); !ok {
		t.Fatalf("touch modality should build a Touch recognizer")
	}
	if _, ok := ForModality(ModalityPointer).(*Pointer); !ok {
		t.Fatalf("pointer modality should build a Pointer recognizer")
	}
	if _, ok := ForModality("").(*Pointer); !ok {
		t.Fatalf("unknown modality should default to pointer")
	}
}
