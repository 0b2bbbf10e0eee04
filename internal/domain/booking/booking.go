package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

const (
	maxNotesLength = 500
	maxRentalDays  = 365
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id         uuid.UUID
	customerID uuid.UUID
	carID      uuid.UUID
	period     rental.Period
	channel    Channel
	status     BookingStatus

	rentalDays  int
	pricePerDay decimal.Decimal
	totalPrice  decimal.Decimal

	notes string

	version   int64
	createdAt time.Time
	updatedAt *time.Time
}

// NewBooking creates a new Booking aggregate with status=pending from a priced quote.
func NewBooking(
	customerID, carID uuid.UUID,
	period rental.Period,
	quote rental.Quote,
	channel Channel,
	notes string,
	now time.Time,
) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if carID == uuid.Nil {
		return nil, domain.NewValidationError("car ID is required")
	}
	if !channel.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid booking channel: %s", channel))
	}
	if quote.RentalDays < 1 || quote.RentalDays > maxRentalDays {
		return nil, domain.NewValidationError(fmt.Sprintf("rental days must be between 1 and %d", maxRentalDays))
	}
	if len(notes) > maxNotesLength {
		return nil, domain.NewValidationError(fmt.Sprintf("notes must be at most %d characters", maxNotesLength))
	}

	return &Booking{
		id:          uuid.New(),
		customerID:  customerID,
		carID:       carID,
		period:      period,
		channel:     channel,
		status:      StatusPending,
		rentalDays:  quote.RentalDays,
		pricePerDay: quote.PricePerDay,
		totalPrice:  quote.TotalPrice,
		notes:       notes,
		version:     1,
		createdAt:   now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, customerID, carID uuid.UUID,
	period rental.Period,
	channel Channel,
	status BookingStatus,
	rentalDays int,
	pricePerDay, totalPrice decimal.Decimal,
	notes string,
	version int64,
	createdAt time.Time,
	updatedAt *time.Time,
) *Booking {
	return &Booking{
		id:          id,
		customerID:  customerID,
		carID:       carID,
		period:      period,
		channel:     channel,
		status:      status,
		rentalDays:  rentalDays,
		pricePerDay: pricePerDay,
		totalPrice:  totalPrice,
		notes:       notes,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// CustomerID returns the renting customer's ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// CarID returns the booked car's ID.
func (b *Booking) CarID() uuid.UUID { return b.carID }

// Period returns the booked date range.
func (b *Booking) Period() rental.Period { return b.period }

// Channel returns how the booking was made.
func (b *Booking) Channel() Channel { return b.channel }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// RentalDays returns the billable days under the channel's policy.
func (b *Booking) RentalDays() int { return b.rentalDays }

// PricePerDay returns the daily rate captured at booking time.
func (b *Booking) PricePerDay() decimal.Decimal { return b.pricePerDay }

// TotalPrice returns rental days × price per day.
func (b *Booking) TotalPrice() decimal.Decimal { return b.totalPrice }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp, or nil if never updated.
func (b *Booking) UpdatedAt() *time.Time { return b.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the booking belongs to the given customer.
func (b *Booking) IsOwnedBy(customerID uuid.UUID) bool {
	return b.customerID == customerID
}

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm(now time.Time) error {
	return b.transition(StatusConfirmed, now)
}

// Cancel transitions a pending or confirmed booking to cancelled.
func (b *Booking) Cancel(now time.Time) error {
	return b.transition(StatusCancelled, now)
}

// Complete transitions a confirmed booking to completed.
func (b *Booking) Complete(now time.Time) error {
	return b.transition(StatusCompleted, now)
}

// Expire transitions a pending or confirmed booking to expired.
func (b *Booking) Expire(now time.Time) error {
	return b.transition(StatusExpired, now)
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion(now time.Time) {
	b.version++
	b.updatedAt = &now
}

func (b *Booking) transition(target BookingStatus, now time.Time) error {
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = &now
	return nil
}
