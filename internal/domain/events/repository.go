package events

import "context"

type Repository interface {
	Create(ctx context.Context, e CareEvent) error
	GetByID(ctx context.Context, id string) (CareEvent, error)
	ListByPet(ctx context.Context, petID string) ([]CareEvent, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]CareEvent, error)
	List(ctx context.Context) ([]CareEvent, error)
	Update(ctx context.Context, e CareEvent) error
}
