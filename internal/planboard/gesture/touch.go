package gesture

import (
	"sync"
	"time"
)

const (
	// DefaultTouchHold es el hold mínimo para que un toque se vuelva drag.
	DefaultTouchHold = 250 * time.Millisecond
	// DefaultTouchSlop es el movimiento tolerado (px) durante el hold;
	// más que esto antes de cumplir el hold es un scroll, no un drag.
	DefaultTouchSlop = 5.0
)

// Touch reconoce drags táctiles: press sostenido Hold ms con el dedo quieto
// (dentro de Slop px); después de activarse el dedo se mueve libre. Feed puede
// llamarse desde varios goroutines; el estado del gesto va detrás de mu.
type Touch struct {
	Hold time.Duration
	Slop float64

	onDragEnd func(Result)
	onTap     func(string)

	mu        sync.Mutex
	pressed   bool
	active    bool
	cancelled bool
	pressedAt time.Time
	originX   float64
	originY   float64
	sourceKey string
}

func NewTouch() *Touch {
	return &Touch{Hold: DefaultTouchHold, Slop: DefaultTouchSlop}
}

func (t *Touch) OnDragEnd(fn func(Result)) { t.onDragEnd = fn }
func (t *Touch) OnTap(fn func(string))     { t.onTap = fn }

func (t *Touch) Feed(s Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch s.Phase {
	case PhasePress:
		if s.SourceKey == "" {
			t.reset()
			return
		}
		t.pressed = true
		t.active = false
		t.cancelled = false
		t.pressedAt = s.At
		t.originX, t.originY = s.X, s.Y
		t.sourceKey = s.SourceKey

	case PhaseMove:
		if !t.pressed || t.active || t.cancelled {
			return
		}
		held := s.At.Sub(t.pressedAt) >= t.Hold
		moved := dist(t.originX, t.originY, s.X, s.Y) > t.Slop

		switch {
		case held:
			t.active = true
		case moved:
			// Se movió antes de cumplir el hold: scroll, no drag ni tap.
			t.cancelled = true
		}

	case PhaseRelease:
		if !t.pressed {
			return
		}
		// Un dedo perfectamente quieto no genera moves: el hold también se
		// evalúa al soltar, si no quedó cancelado por scroll.
		held := s.At.Sub(t.pressedAt) >= t.Hold
		switch {
		case t.active || (held && !t.cancelled):
			if t.onDragEnd != nil {
				t.onDragEnd(Result{SourceKey: t.sourceKey, TargetKey: s.TargetKey})
			}
		case !t.cancelled:
			if t.onTap != nil {
				t.onTap(t.sourceKey)
			}
		}
		t.reset()
	}
}

// reset asume t.mu tomado.
func (t *Touch) reset() {
	t.pressed = false
	t.active = false
	t.cancelled = false
	t.sourceKey = ""
}
