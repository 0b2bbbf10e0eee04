package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/thuexe/service-rental/internal/domain/rental"
)

// Filter narrows a contract listing.
type Filter struct {
	Status     *Status
	CustomerID *uuid.UUID
	CarID      *uuid.UUID
}

// Repository defines the persistence contract for rental contracts.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	FindByNumber(ctx context.Context, number string) (*Contract, error)
	// FindActiveByBookingID returns the active contract derived from a booking, or nil.
	FindActiveByBookingID(ctx context.Context, bookingID uuid.UUID) (*Contract, error)
	List(ctx context.Context, filter Filter, page, limit int) ([]*Contract, int64, error)
	// HasActiveOverlap reports whether an active contract for the car overlaps the period,
	// touching endpoints included.
	HasActiveOverlap(ctx context.Context, carID uuid.UUID, period rental.Period) (bool, error)
	// NextNumberSequence atomically increments and returns the contract number counter.
	NextNumberSequence(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	Save(ctx context.Context, c *Contract) error
	Update(ctx context.Context, c *Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
}
