package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/thuexe/service-rental/internal/domain/car"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

// CarReader is the slice of the car repository the checker needs.
type CarReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*car.Car, error)
}

// ContractReader is the slice of the contract repository the checker needs.
type ContractReader interface {
	HasActiveOverlap(ctx context.Context, carID uuid.UUID, period rental.Period) (bool, error)
}

// Checker answers whether a car can be booked for a period. It never writes.
type Checker struct {
	cars      CarReader
	contracts ContractReader
}

// NewChecker creates a new Checker.
func NewChecker(cars CarReader, contracts ContractReader) *Checker {
	return &Checker{cars: cars, contracts: contracts}
}

// IsAvailable reports whether the car exists, is available, and has no active contract
// overlapping the period. An unknown car is simply unavailable.
func (c *Checker) IsAvailable(ctx context.Context, carID uuid.UUID, period rental.Period) (bool, error) {
	cr, err := c.cars.FindByID(ctx, carID)
	if err != nil {
		if domain.IsCode(err, domain.CodeNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load car: %w", err)
	}
	if !cr.IsAvailable() {
		return false, nil
	}

	conflict, err := c.HasConflict(ctx, carID, period)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// HasConflict reports whether an active contract for the car overlaps the period.
func (c *Checker) HasConflict(ctx context.Context, carID uuid.UUID, period rental.Period) (bool, error) {
	conflict, err := c.contracts.HasActiveOverlap(ctx, carID, period)
	if err != nil {
		return false, fmt.Errorf("failed to check contract overlap: %w", err)
	}
	return conflict, nil
}
