package planboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"pet-planboard/internal/domain/events"
	"pet-planboard/internal/domain/pets"
	"pet-planboard/internal/platform/logger"
)

var (
	ErrNoSession = errors.New("no capture session")
	ErrNoDate    = errors.New("capture date required")
)

const storeCallTimeout = 10 * time.Second

// Board es el coordinador de sesión del planboard. Es dueño de todo el estado
// de sesión: listas cacheadas, filtros, la DragSession pendiente y (vía el
// scanner) el NotifiedSet. Se construye al abrir sesión y se descarta al
// cerrarla; no hay estado ambiente.
//
// Las listas tienen un solo escritor conceptual: apply() y los resyncs. El
// clasificador y el scanner solo leen snapshots.
type Board struct {
	mu sync.Mutex

	store Store
	log   logger.Logger
	now   func() time.Time

	userID string

	events   []events.CareEvent
	patients []pets.Pet

	filters      Filters
	autoSwitched bool

	session  *DragSession
	mediator *Mediator

	// resyncGen descarta refetches viejos: solo el resync más reciente
	// reemplaza la lista.
	resyncGen int

	// onSettled se dispara cuando un patch en vuelo terminó (confirmado o
	// resincronizado). Solo lo usan los tests.
	onSettled func()
}

func NewBoard(store Store, userID string, log logger.Logger) *Board {
	if log == nil {
		log = logger.Nop()
	}
	return &Board{
		store:    store,
		log:      log.With(map[string]any{"component": "planboard"}),
		now:      time.Now,
		userID:   userID,
		mediator: NewMediator(),
		filters:  Filters{Mode: ViewMine},
	}
}

// Refresh trae eventos y mascotas del store y reemplaza ambas listas.
// Se usa al abrir sesión y cuando la UI pide recargar.
func (b *Board) Refresh(ctx context.Context) error {
	evs, err := b.store.ListEvents(ctx, "")
	if err != nil {
		return err
	}
	ps, err := b.store.ListPatients(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.events = evs
	b.patients = ps
	b.mu.Unlock()
	return nil
}

// EventsSnapshot devuelve una copia de la lista de eventos. Es la fuente de
// lectura del scanner de recordatorios.
func (b *Board) EventsSnapshot() []events.CareEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]events.CareEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Buckets clasifica los eventos de una mascota con el tope de History por
// defecto. now se toma una vez acá para toda la pasada.
func (b *Board) Buckets(petID string, now time.Time) Buckets {
	return Classify(now, b.eventsForPet(petID), DefaultHistoryLimit)
}

// FullHistory devuelve History sin tope (el "ver el resto" de la UI).
func (b *Board) FullHistory(petID string, now time.Time) []Card {
	return Classify(now, b.eventsForPet(petID), 0).History
}

func (b *Board) eventsForPet(petID string) []events.CareEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]events.CareEvent, 0)
	for _, e := range b.events {
		if e.Subject.PetID == petID {
			out = append(out, e)
		}
	}
	return out
}

// SetFilters reemplaza los filtros. No resetea el auto-switch: la partición
// solo cambia sola una vez por sesión.
func (b *Board) SetFilters(f Filters) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f.Mode == "" {
		f.Mode = b.filters.Mode
	}
	b.filters = f
}

func (b *Board) CurrentFilters() Filters {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters
}

// VisiblePatients corre el pipeline de filtrado. Si la partición "mine" quedó
// vacía y "others" no, cambia a "others" una única vez por sesión y nunca
// vuelve solo.
func (b *Board) VisiblePatients() []pets.Pet {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := b.filters
	if f.Mode == "" {
		f.Mode = ViewMine
	}

	attrs := FilterByAttributes(b.patients, f)

	if !b.autoSwitched && f.Mode == ViewMine {
		mine := PartitionByRole(attrs, b.userID, ViewMine)
		others := PartitionByRole(attrs, b.userID, ViewOthers)
		if len(mine) == 0 && len(others) > 0 {
			b.filters.Mode = ViewOthers
			b.autoSwitched = true
			f.Mode = ViewOthers
		}
	}

	out := PartitionByRole(attrs, b.userID, f.Mode)
	return FilterByEventType(out, b.events, f.EventType)
}

// BeginTransition interpreta un drag terminado. Devuelve la DragSession si el
// destino pide captura secundaria; nil si resolvió inmediato o fue rechazado.
// Los rechazos (cross-pet, fuera de target) son no-ops silenciosos.
func (b *Board) BeginTransition(drag DragResult) *DragSession {
	eventID, ok := ParseSourceKey(drag.SourceKey)
	if !ok {
		return nil
	}
	target, ok := ParseTargetKey(drag.TargetKey)
	if !ok {
		return nil
	}

	b.mu.Lock()
	ev, found := b.findEvent(eventID)
	b.mu.Unlock()
	if !found {
		return nil
	}

	decision, session := b.mediator.Decide(ev, target)
	switch decision {
	case DecisionComplete:
		st := events.StatusCompleted
		b.Apply(eventID, events.Patch{Status: &st})
		return nil

	case DecisionCapture:
		b.mu.Lock()
		b.session = session
		b.mu.Unlock()
		return session

	default:
		return nil
	}
}

// PendingCapture devuelve la sesión de captura abierta, si hay.
func (b *Board) PendingCapture() *DragSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

// ConfirmCapture cierra la captura con la fecha elegida: status vuelve a
// planned y scheduled_at queda en chosen. Con fecha cero se niega a confirmar
// y la sesión sigue abierta.
func (b *Board) ConfirmCapture(chosen time.Time) error {
	b.mu.Lock()
	session := b.session
	b.mu.Unlock()

	if session == nil {
		return ErrNoSession
	}
	if chosen.IsZero() {
		return ErrNoDate
	}

	st := events.StatusPlanned
	b.Apply(session.EventID, events.Patch{
		Status:      &st,
		ScheduledAt: &chosen,
	})

	b.mu.Lock()
	b.session = nil
	b.mu.Unlock()
	return nil
}

// CancelCapture descarta la DragSession sin mutar nada; el evento queda en su
// bucket anterior.
func (b *Board) CancelCapture() {
	b.mu.Lock()
	b.session = nil
	b.mu.Unlock()
}

// ToggleStatus es el toggle tipo checkbox (planned <-> completed) fuera del
// drag. Usa el mismo contrato Apply.
func (b *Board) ToggleStatus(eventID string, completed bool) {
	st := events.StatusPlanned
	if completed {
		st = events.StatusCompleted
	}
	b.Apply(eventID, events.Patch{Status: &st})
}

// Apply es el contrato del coordinador optimista: mezcla el patch en memoria
// de forma síncrona y manda el patch al store sin bloquear. Si el store
// falla, la única vuelta atrás es un refetch completo que reemplaza la lista.
//
// Dos Apply sobre el mismo evento no se encolan ni se mezclan: el segundo
// pisa el estado optimista y sale como patch independiente (last-write-wins
// del backend; el orden de llegada no está garantizado).
func (b *Board) Apply(eventID string, p events.Patch) {
	b.mu.Lock()
	if i, ok := b.findEventIndex(eventID); ok {
		p.ApplyTo(&b.events[i])
		b.events[i].UpdatedAt = b.now()
	}
	b.mu.Unlock()

	go b.push(eventID, p)
}

func (b *Board) push(eventID string, p events.Patch) {
	ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer cancel()

	_, err := b.store.PatchEvent(ctx, eventID, p)
	if err != nil {
		b.log.Warn("patch failed, resyncing", map[string]any{
			"event_id": eventID,
			"err":      err.Error(),
		})
		b.resync()
	}

	b.mu.Lock()
	settled := b.onSettled
	b.mu.Unlock()
	if settled != nil {
		settled()
	}
}

// resync descarta el estado local y lo reemplaza por la verdad del servidor.
// Solo gana el resync más reciente: uno viejo que llegue tarde se descarta.
func (b *Board) resync() {
	b.mu.Lock()
	b.resyncGen++
	gen := b.resyncGen
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer cancel()

	evs, err := b.store.ListEvents(ctx, "")
	if err != nil {
		b.log.Error("resync fetch failed", map[string]any{"err": err.Error()})
		return
	}

	b.mu.Lock()
	if gen == b.resyncGen {
		b.events = evs
	}
	b.mu.Unlock()
}

// findEvent / findEventIndex asumen b.mu tomado.
func (b *Board) findEvent(id string) (events.CareEvent, bool) {
	if i, ok := b.findEventIndex(id); ok {
		return b.events[i], true
	}
	return events.CareEvent{}, false
}

func (b *Board) findEventIndex(id string) (int, bool) {
	for i := range b.events {
		if b.events[i].ID == id {
			return i, true
		}
	}
	return 0, false
}
