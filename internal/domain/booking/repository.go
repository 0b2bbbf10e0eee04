package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a booking listing.
type Filter struct {
	Status     *BookingStatus
	CustomerID *uuid.UUID
	CarID      *uuid.UUID
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// List retrieves bookings matching the filter, newest first, with pagination.
	List(ctx context.Context, filter Filter, page, limit int) ([]*Booking, int64, error)

	// FindStalePending returns pending bookings whose start date is before the given day.
	FindStalePending(ctx context.Context, before time.Time, limit int) ([]*Booking, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// Delete removes a booking row.
	Delete(ctx context.Context, id uuid.UUID) error
}
