package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuexe/service-rental/internal/domain/car"
	"github.com/thuexe/service-rental/internal/domain/uow"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

var now = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

func TestStore_DoRollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	c, err := car.NewCar("Vios", "P1", "", "", 0, 0, "", decimal.NewFromInt(1), "", now)
	require.NoError(t, err)
	require.NoError(t, store.Repositories().Cars().Save(ctx, c))

	boom := errors.New("boom")
	err = store.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		locked, err := repos.Cars().FindByIDForUpdate(ctx, c.ID())
		require.NoError(t, err)
		require.NoError(t, locked.Reserve(now))
		require.NoError(t, repos.Cars().UpdateStatus(ctx, locked))
		_, _ = repos.Contracts().NextNumberSequence(ctx)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Repositories().Cars().FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, car.StatusAvailable, got.Status())

	seq, err := store.Repositories().Contracts().NextNumberSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	c, err := car.NewCar("Vios", "P1", "", "", 0, 0, "", decimal.NewFromInt(1), "", now)
	require.NoError(t, err)
	require.NoError(t, store.Repositories().Cars().Save(ctx, c))

	loaded, err := store.Repositories().Cars().FindByID(ctx, c.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.Reserve(now))

	again, err := store.Repositories().Cars().FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, car.StatusAvailable, again.Status())
}

func TestStore_FailNext(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	store.FailNext("cars.Save", domain.NewRetryableError("taken", nil))

	c, err := car.NewCar("Vios", "P1", "", "", 0, 0, "", decimal.NewFromInt(1), "", now)
	require.NoError(t, err)

	assert.True(t, domain.IsRetryable(store.Repositories().Cars().Save(ctx, c)))
	assert.NoError(t, store.Repositories().Cars().Save(ctx, c))
	assert.True(t, domain.IsCode(store.Repositories().Cars().Save(ctx, c), domain.CodeConflict))
}
