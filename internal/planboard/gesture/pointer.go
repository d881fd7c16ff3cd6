package gesture

import "sync"

// DefaultPointerThreshold es el movimiento mínimo (px) para que un gesto de
// mouse se vuelva drag. Desambigua el drag del click que abre el form.
const DefaultPointerThreshold = 10.0

// Pointer reconoce drags de mouse: el gesto se activa cuando el puntero se
// movió al menos Threshold px desde el press. Feed puede llamarse desde
// varios goroutines; el estado del gesto va detrás de mu.
type Pointer struct {
	Threshold float64

	onDragEnd func(Result)
	onTap     func(string)

	mu        sync.Mutex
	pressed   bool
	active    bool
	originX   float64
	originY   float64
	sourceKey string
}

func NewPointer() *Pointer {
	return &Pointer{Threshold: DefaultPointerThreshold}
}

func (p *Pointer) OnDragEnd(fn func(Result)) { p.onDragEnd = fn }
func (p *Pointer) OnTap(fn func(string))     { p.onTap = fn }

func (p *Pointer) Feed(s Sample) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch s.Phase {
	case PhasePress:
		if s.SourceKey == "" {
			// Press fuera de un card arrastrable: se ignora entero.
			p.reset()
			return
		}
		p.pressed = true
		p.active = false
		p.originX, p.originY = s.X, s.Y
		p.sourceKey = s.SourceKey

	case PhaseMove:
		if !p.pressed || p.active {
			return
		}
		if dist(p.originX, p.originY, s.X, s.Y) >= p.Threshold {
			p.active = true
		}

	case PhaseRelease:
		if !p.pressed {
			return
		}
		if p.active {
			if p.onDragEnd != nil {
				p.onDragEnd(Result{SourceKey: p.sourceKey, TargetKey: s.TargetKey})
			}
		} else if p.onTap != nil {
			p.onTap(p.sourceKey)
		}
		p.reset()
	}
}

// reset asume p.mu tomado.
func (p *Pointer) reset() {
	p.pressed = false
	p.active = false
	p.sourceKey = ""
}
