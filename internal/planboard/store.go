package planboard

import (
	"context"

	"pet-planboard/internal/domain/events"
	"pet-planboard/internal/domain/pets"
)

// Store es el colaborador de persistencia del planboard (REST en producción,
// fake en tests). I/O puro, sin política: el board decide qué hacer con los
// fallos.
type Store interface {
	// ListEvents trae los eventos; petID vacío = todos.
	ListEvents(ctx context.Context, petID string) ([]events.CareEvent, error)
	ListPatients(ctx context.Context) ([]pets.Pet, error)
	PatchEvent(ctx context.Context, id string, p events.Patch) (events.CareEvent, error)
}
