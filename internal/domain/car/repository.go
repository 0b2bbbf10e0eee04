package car

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows a car listing.
type Filter struct {
	Status *Status
}

// Repository defines the persistence interface for the car aggregate.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Car, error)
	// FindByIDForUpdate reads the car and locks its row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Car, error)
	List(ctx context.Context, filter Filter, page, limit int) ([]*Car, int64, error)
	Save(ctx context.Context, c *Car) error
	UpdateStatus(ctx context.Context, c *Car) error
}
