package customer

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for the customer aggregate.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Customer, error)
	List(ctx context.Context, page, limit int) ([]*Customer, int64, error)
	Save(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
}
