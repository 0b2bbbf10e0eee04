package car

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thuexe/service-rental/internal/platform/domain"
)

// Car is the aggregate root for a fleet vehicle.
type Car struct {
	id           uuid.UUID
	name         string
	licensePlate string
	brand        string
	model        string
	year         int
	seats        int
	fuelType     string
	pricePerDay  decimal.Decimal
	status       Status
	createdAt    time.Time
	updatedAt    time.Time
}

// NewCar creates a new car. Only available, maintenance and out_of_service are accepted
// as an initial status; an empty status means available.
func NewCar(
	name, licensePlate, brand, model string,
	year, seats int,
	fuelType string,
	pricePerDay decimal.Decimal,
	status Status,
	now time.Time,
) (*Car, error) {
	licensePlate = strings.ToUpper(strings.TrimSpace(licensePlate))
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("car name is required")
	}
	if licensePlate == "" || len(licensePlate) > 20 {
		return nil, domain.NewValidationError("license plate is required and must be at most 20 characters")
	}
	if pricePerDay.IsNegative() {
		return nil, domain.NewValidationError("price per day must not be negative")
	}
	if seats < 0 {
		return nil, domain.NewValidationError("seats must not be negative")
	}
	if status == "" {
		status = StatusAvailable
	}
	switch status {
	case StatusAvailable, StatusMaintenance, StatusOutOfService:
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("a new car cannot start as %s", status))
	}

	return &Car{
		id:           uuid.New(),
		name:         strings.TrimSpace(name),
		licensePlate: licensePlate,
		brand:        brand,
		model:        model,
		year:         year,
		seats:        seats,
		fuelType:     fuelType,
		pricePerDay:  pricePerDay,
		status:       status,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a Car from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	name, licensePlate, brand, model string,
	year, seats int,
	fuelType string,
	pricePerDay decimal.Decimal,
	status Status,
	createdAt, updatedAt time.Time,
) *Car {
	return &Car{
		id:           id,
		name:         name,
		licensePlate: licensePlate,
		brand:        brand,
		model:        model,
		year:         year,
		seats:        seats,
		fuelType:     fuelType,
		pricePerDay:  pricePerDay,
		status:       status,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

func (c *Car) ID() uuid.UUID                { return c.id }
func (c *Car) Name() string                 { return c.name }
func (c *Car) LicensePlate() string         { return c.licensePlate }
func (c *Car) Brand() string                { return c.brand }
func (c *Car) Model() string                { return c.model }
func (c *Car) Year() int                    { return c.year }
func (c *Car) Seats() int                   { return c.seats }
func (c *Car) FuelType() string             { return c.fuelType }
func (c *Car) PricePerDay() decimal.Decimal { return c.pricePerDay }
func (c *Car) Status() Status               { return c.status }
func (c *Car) CreatedAt() time.Time         { return c.createdAt }
func (c *Car) UpdatedAt() time.Time         { return c.updatedAt }

// --- Behavior ---

// IsAvailable returns true if the car can take a new booking or contract.
func (c *Car) IsAvailable() bool {
	return c.status == StatusAvailable
}

// Reserve holds an available car for a counter booking.
func (c *Car) Reserve(now time.Time) error {
	if c.status != StatusAvailable {
		return domain.NewConflictError(fmt.Sprintf("car %s is %s", c.licensePlate, c.status))
	}
	c.setStatus(StatusReserved, now)
	return nil
}

// MarkRented hands the car over to an active contract. A car reserved for the booking
// being confirmed is accepted as well as an available one.
func (c *Car) MarkRented(now time.Time) error {
	if c.status != StatusAvailable && c.status != StatusReserved {
		return domain.NewConflictError(fmt.Sprintf("car %s is %s", c.licensePlate, c.status))
	}
	c.setStatus(StatusRented, now)
	return nil
}

// Release returns a reserved or rented car to the fleet. Other statuses are left alone.
// It reports whether the status changed.
func (c *Car) Release(now time.Time) bool {
	return c.ReleaseIfReserved(now) || c.ReleaseIfRented(now)
}

// ReleaseIfReserved makes a reserved car available.
func (c *Car) ReleaseIfReserved(now time.Time) bool {
	if c.status != StatusReserved {
		return false
	}
	c.setStatus(StatusAvailable, now)
	return true
}

// ReleaseIfRented makes a rented car available.
func (c *Car) ReleaseIfRented(now time.Time) bool {
	if c.status != StatusRented {
		return false
	}
	c.setStatus(StatusAvailable, now)
	return true
}

func (c *Car) setStatus(s Status, now time.Time) {
	c.status = s
	c.updatedAt = now
}
