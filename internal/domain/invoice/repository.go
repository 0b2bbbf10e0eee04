package invoice

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for invoices.
type Repository interface {
	FindByContractID(ctx context.Context, contractID uuid.UUID) ([]*Invoice, error)
	// NextNumberSequence atomically increments and returns the invoice number counter.
	NextNumberSequence(ctx context.Context) (int64, error)
	Save(ctx context.Context, inv *Invoice) error
	Update(ctx context.Context, inv *Invoice) error
	DeleteByContractID(ctx context.Context, contractID uuid.UUID) error
}
