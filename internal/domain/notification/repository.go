package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for customer notifications.
type Repository interface {
	Save(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// FindByCustomerID returns the customer's notifications, newest first, excluding deleted ones.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*Notification, int64, error)
	Update(ctx context.Context, n *Notification) error
}
