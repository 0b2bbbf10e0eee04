package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuexe/service-rental/internal/domain/car"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

type stubCars map[uuid.UUID]*car.Car

func (s stubCars) FindByID(_ context.Context, id uuid.UUID) (*car.Car, error) {
	c, ok := s[id]
	if !ok {
		return nil, domain.NewNotFoundError("Car", id.String())
	}
	return c, nil
}

type stubContracts struct {
	active map[uuid.UUID][]rental.Period
	err    error
}

func (s stubContracts) HasActiveOverlap(_ context.Context, carID uuid.UUID, p rental.Period) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for _, a := range s.active[carID] {
		if a.Overlaps(p) {
			return true, nil
		}
	}
	return false, nil
}

func mustPeriod(t *testing.T, start, end string) rental.Period {
	t.Helper()
	p, err := rental.ParsePeriod(start, end)
	require.NoError(t, err)
	return p
}

func TestIsAvailable_ActiveContractBoundary(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := car.NewCar("Vios", "P1", "Toyota", "Vios", 2022, 5, "petrol", decimal.NewFromInt(500000), "", now)
	require.NoError(t, err)

	checker := NewChecker(
		stubCars{c.ID(): c},
		stubContracts{active: map[uuid.UUID][]rental.Period{c.ID(): {mustPeriod(t, "2025-01-10", "2025-01-15")}}},
	)
	ctx := context.Background()

	ok, err := checker.IsAvailable(ctx, c.ID(), mustPeriod(t, "2025-01-15", "2025-01-20"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = checker.IsAvailable(ctx, c.ID(), mustPeriod(t, "2025-01-16", "2025-01-20"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsAvailable_UnknownOrBusyCar(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := car.NewCar("Vios", "P1", "", "", 0, 0, "", decimal.Zero, car.StatusMaintenance, now)
	require.NoError(t, err)
	checker := NewChecker(stubCars{c.ID(): c}, stubContracts{})
	p := mustPeriod(t, "2025-02-01", "2025-02-03")

	ok, err := checker.IsAvailable(context.Background(), uuid.New(), p)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = checker.IsAvailable(context.Background(), c.ID(), p)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasConflict_PropagatesErrors(t *testing.T) {
	checker := NewChecker(stubCars{}, stubContracts{err: errors.New("db down")})

	_, err := checker.HasConflict(context.Background(), uuid.New(), mustPeriod(t, "2025-02-01", "2025-02-03"))
	assert.Error(t, err)
}
