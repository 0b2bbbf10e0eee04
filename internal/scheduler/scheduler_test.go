package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (e *countingExpirer) ExpireStaleBookings(context.Context) (int, error) {
	e.calls.Add(1)
	return 2, e.err
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := New(&countingExpirer{}, "hourly", zap.NewNop())
	assert.Error(t, err)

	_, err = New(&countingExpirer{}, "0 0 * * *", zap.NewNop())
	assert.Error(t, err, "schedules need a seconds field")
}

func TestExpireStaleBookings_RunsExpirer(t *testing.T) {
	expirer := &countingExpirer{}
	s, err := New(expirer, "0 0 * * * *", zap.NewNop())
	require.NoError(t, err)

	s.ExpireStaleBookings()
	expirer.err = errors.New("db down")
	s.ExpireStaleBookings()

	assert.Equal(t, int32(2), expirer.calls.Load())
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	expirer := &countingExpirer{}
	s, err := New(expirer, "* * * * * *", zap.NewNop())
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return expirer.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
