package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pet-planboard/internal/domain/events"
)

type eventRepo struct {
	mu   sync.RWMutex
	byID map[string]events.CareEvent
}

func NewEventRepo() events.Repository {
	return &eventRepo{
		byID: make(map[string]events.CareEvent),
	}
}

func (r *eventRepo) Create(ctx context.Context, e events.CareEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("event already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (events.CareEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return events.CareEvent{}, ErrNotFound
	}
	return e, nil
}

func (r *eventRepo) Update(ctx context.Context, e events.CareEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, exists := r.byID[e.ID]; !exists {
		return ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) ListByPet(ctx context.Context, petID string) ([]events.CareEvent, error) {
	return r.list(func(e events.CareEvent) bool {
		return e.Subject.PetID == petID
	}), nil
}

func (r *eventRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]events.CareEvent, error) {
	return r.list(func(e events.CareEvent) bool {
		return e.OwnerUserID == ownerUserID
	}), nil
}

func (r *eventRepo) List(ctx context.Context) ([]events.CareEvent, error) {
	return r.list(func(events.CareEvent) bool { return true }), nil
}

func (r *eventRepo) list(keep func(events.CareEvent) bool) []events.CareEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]events.CareEvent, 0)
	for _, e := range r.byID {
		if keep(e) {
			out = append(out, e)
		}
	}

	// Orden por scheduled_at asc; el planboard reordena por bucket igual,
	// esto es solo para respuestas estables en dev.
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})

	return out
}
