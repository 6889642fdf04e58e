package dogs

import "context"

type Repository interface {
	Create(ctx context.Context, d Dog) error
	Update(ctx context.Context, d Dog) error
	// Delete borra el perro y sus recordatorios.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Dog, error)
	// ListByOwner ordena por created_at desc.
	ListByOwner(ctx context.Context, ownerUserID string) ([]Dog, error)
	// ListByOwners ordena por created_at asc.
	ListByOwners(ctx context.Context, ownerUserIDs []string) ([]Dog, error)
}
