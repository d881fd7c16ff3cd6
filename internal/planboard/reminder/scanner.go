package reminder

import (
	"context"
	"time"

	"pet-planboard/internal/domain/events"
	"pet-planboard/internal/platform/logger"
)

const (
	// DefaultInterval es el período del scan.
	DefaultInterval = time.Minute

	// lookahead es la ventana de aviso: eventos a <= 15 minutos.
	lookahead = 15 * time.Minute
)

// Notifier emite el aviso (sonido + notificación de sistema). La emisión es
// best-effort: un error no frena el scan ni provoca reintentos.
type Notifier interface {
	Alert(ctx context.Context, ev events.CareEvent) error
}

// Scanner revisa periódicamente los eventos activos y avisa una sola vez por
// evento y por sesión. El NotifiedSet vive en el scanner: se crea vacío al
// abrir sesión, las entradas nunca se sacan y se pierde entero al recargar.
type Scanner struct {
	source   func() []events.CareEvent
	notifier Notifier
	log      logger.Logger
	now      func() time.Time

	notified map[string]struct{}
}

func NewScanner(source func() []events.CareEvent, notifier Notifier, log logger.Logger) *Scanner {
	if log == nil {
		log = logger.Nop()
	}
	return &Scanner{
		source:   source,
		notifier: notifier,
		log:      log.With(map[string]any{"component": "reminder"}),
		now:      time.Now,
		notified: make(map[string]struct{}),
	}
}

// Scan hace una pasada: para cada evento planned que entra en la ventana
// [0, 15m] y no fue avisado, emite un aviso y lo marca. Devuelve cuántos
// avisos emitió (sirve para logs y tests).
//
// El evento se marca aunque la emisión falle: así no se lo reintenta en loop.
// Un evento cuya hora se edita después de avisado no se re-avisa aunque
// vuelva a entrar en la ventana (simplificación aceptada).
func (s *Scanner) Scan(ctx context.Context) int {
	now := s.now()
	emitted := 0

	for _, e := range s.source() {
		if e.Status != events.StatusPlanned {
			continue
		}
		until := e.ScheduledAt.Sub(now)
		if until < 0 || until > lookahead {
			continue
		}
		if _, done := s.notified[e.ID]; done {
			continue
		}

		s.notified[e.ID] = struct{}{}
		emitted++

		if err := s.notifier.Alert(ctx, e); err != nil {
			s.log.Warn("alert emission failed", map[string]any{
				"event_id": e.ID,
				"err":      err.Error(),
			})
		}
	}

	return emitted
}

// Notified reporta si un evento ya fue avisado en esta sesión.
func (s *Scanner) Notified(eventID string) bool {
	_, ok := s.notified[eventID]
	return ok
}

// Run corre el loop de scan hasta que ctx se cancele. interval <= 0 usa
// DefaultInterval.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Scan(ctx); n > 0 {
				s.log.Info("reminders emitted", map[string]any{"count": n})
			}
		}
	}
}
