package planboard

import (
	"sort"
	"time"

	"pet-planboard/internal/domain/events"
)

// Bucket es una de las tres agrupaciones derivadas del planboard.
// Nunca se persiste: la pertenencia se calcula siempre de status + scheduled_at.
type Bucket string

const (
	BucketUrgent  Bucket = "urgent"
	BucketPlans   Bucket = "plans"
	BucketHistory Bucket = "history"
)

func (b Bucket) Valid() bool {
	switch b {
	case BucketUrgent, BucketPlans, BucketHistory:
		return true
	}
	return false
}

// DefaultHistoryLimit es el tope inicial del bucket History.
const DefaultHistoryLimit = 5

// Card es un evento listo para mostrar: el evento más el flag de atraso.
// Overdue es solo presentación; el evento sigue en Urgent, no se mueve solo.
type Card struct {
	events.CareEvent
	Overdue bool
}

// Buckets es la salida del clasificador para una mascota.
// HistoryTotal informa cuántos eventos cerrados hay en total, para que la UI
// ofrezca "ver el resto" cuando History viene acotado.
type Buckets struct {
	Urgent  []Card
	Plans   []Card
	History []Card

	HistoryTotal int
}

// EndOfToday fija el límite del día a 23:59:59.999 hora local de now.
// Se calcula una sola vez por pasada para evitar flicker en el borde.
func EndOfToday(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), now.Location())
}

// BucketFor clasifica un solo evento. endOfToday debe venir de EndOfToday(now)
// calculado una vez por pasada.
func BucketFor(e events.CareEvent, endOfToday time.Time) Bucket {
	if e.Status.Closed() {
		return BucketHistory
	}
	if !e.ScheduledAt.After(endOfToday) {
		return BucketUrgent
	}
	return BucketPlans
}

// Classify reparte los eventos de una mascota en los tres buckets.
// historyLimit <= 0 significa sin tope.
//
// Orden: Urgent y Plans ascendente por scheduled_at; History descendente
// (lo más reciente primero), acotado a historyLimit.
func Classify(now time.Time, evs []events.CareEvent, historyLimit int) Buckets {
	endOfToday := EndOfToday(now)

	out := Buckets{
		Urgent:  make([]Card, 0),
		Plans:   make([]Card, 0),
		History: make([]Card, 0),
	}

	for _, e := range evs {
		switch BucketFor(e, endOfToday) {
		case BucketHistory:
			out.History = append(out.History, Card{CareEvent: e})
		case BucketUrgent:
			out.Urgent = append(out.Urgent, Card{
				CareEvent: e,
				Overdue:   e.ScheduledAt.Before(now),
			})
		default:
			out.Plans = append(out.Plans, Card{CareEvent: e})
		}
	}

	sortAsc(out.Urgent)
	sortAsc(out.Plans)
	sortDesc(out.History)

	out.HistoryTotal = len(out.History)
	if historyLimit > 0 && len(out.History) > historyLimit {
		out.History = out.History[:historyLimit]
	}

	return out
}

func sortAsc(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].ScheduledAt.Equal(cards[j].ScheduledAt) {
			return cards[i].ID < cards[j].ID
		}
		return cards[i].ScheduledAt.Before(cards[j].ScheduledAt)
	})
}

func sortDesc(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].ScheduledAt.Equal(cards[j].ScheduledAt) {
			return cards[i].ID < cards[j].ID
		}
		return cards[i].ScheduledAt.After(cards[j].ScheduledAt)
	})
}
