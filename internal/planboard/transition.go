package planboard

import (
	"strings"
	"time"

	"pet-planboard/internal/domain/events"
)

// DragResult es lo que reporta la capa de gestos al soltar: la key del card
// origen y la del drop target (vacía si soltó fuera de cualquier target).
type DragResult struct {
	SourceKey string
	TargetKey string
}

// TargetRef es la variante tipada de una key de drop target.
// Se parsea una sola vez en el borde del gesto; de ahí en más el mediador
// trabaja sobre el enum cerrado, no sobre strings.
type TargetRef struct {
	Kind  Bucket
	PetID string
}

const (
	sourceKeyPrefix = "event-"
	targetKeyInfix  = "-pet-"
)

// ParseSourceKey parsea "event-<id>".
func ParseSourceKey(key string) (string, bool) {
	if !strings.HasPrefix(key, sourceKeyPrefix) {
		return "", false
	}
	id := key[len(sourceKeyPrefix):]
	if id == "" {
		return "", false
	}
	return id, true
}

// ParseTargetKey parsea "<bucket>-pet-<petID>", p.ej. "urgent-pet-42".
func ParseTargetKey(key string) (TargetRef, bool) {
	i := strings.Index(key, targetKeyInfix)
	if i < 0 {
		return TargetRef{}, false
	}

	kind := Bucket(key[:i])
	petID := key[i+len(targetKeyInfix):]
	if !kind.Valid() || petID == "" {
		return TargetRef{}, false
	}
	return TargetRef{Kind: kind, PetID: petID}, true
}

// CapturePreset es un atajo del paso de captura secundaria (+1h, mañana 09:00, ...).
type CapturePreset struct {
	Label string
	At    time.Time
}

// DragSession es el estado efímero de un drag pendiente de captura secundaria.
// Existe solo mientras el modal de fecha/hora está abierto; se destruye al
// confirmar o cancelar.
type DragSession struct {
	EventID     string
	SourcePetID string
	Target      Bucket

	// Default es el valor con el que se abre la captura; Presets son los atajos.
	Default time.Time
	Presets []CapturePreset
}

// Decision es el resultado de interpretar un drag terminado.
type Decision int

const (
	// DecisionNone: rechazo silencioso (cross-pet, fuera de target, evento desconocido).
	DecisionNone Decision = iota
	// DecisionComplete: drop en History; completar ya, sin captura.
	DecisionComplete
	// DecisionCapture: drop en Urgent/Plans; abre captura secundaria.
	DecisionCapture
)

// Mediator interpreta drags terminados. Los buckets con tiempo (Urgent, Plans)
// son ambiguos (¿a qué hora? ¿qué día?) y siempre piden un valor explícito;
// History es inequívoco (se hizo, ahora) y resuelve inmediato.
type Mediator struct {
	now func() time.Time
}

func NewMediator() *Mediator {
	return &Mediator{now: time.Now}
}

// Decide evalúa un drop ya parseado. Cross-pet se rechaza: un evento no puede
// cambiar de dueño arrastrándolo.
func (m *Mediator) Decide(ev events.CareEvent, target TargetRef) (Decision, *DragSession) {
	if ev.Subject.PetID == "" || ev.Subject.PetID != target.PetID {
		return DecisionNone, nil
	}

	switch target.Kind {
	case BucketHistory:
		return DecisionComplete, nil

	case BucketUrgent:
		now := m.now()
		return DecisionCapture, &DragSession{
			EventID:     ev.ID,
			SourcePetID: ev.Subject.PetID,
			Target:      BucketUrgent,
			Default:     now,
			Presets: []CapturePreset{
				{Label: "+1 Hour", At: now.Add(1 * time.Hour)},
				{Label: "+3 Hours", At: now.Add(3 * time.Hour)},
				{Label: "Tomorrow 09:00", At: tomorrowMorning(now)},
			},
		}

	case BucketPlans:
		now := m.now()
		tomorrow := tomorrowMorning(now)
		return DecisionCapture, &DragSession{
			EventID:     ev.ID,
			SourcePetID: ev.Subject.PetID,
			Target:      BucketPlans,
			Default:     tomorrow,
			Presets: []CapturePreset{
				{Label: "+1 Day", At: tomorrow},
				{Label: "+2 Days", At: tomorrow.AddDate(0, 0, 1)},
				{Label: "+7 Days", At: tomorrow.AddDate(0, 0, 6)},
			},
		}
	}

	return DecisionNone, nil
}

func tomorrowMorning(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 9, 0, 0, 0, now.Location())
}
