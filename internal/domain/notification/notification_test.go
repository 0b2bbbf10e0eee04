package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification_MarkRead(t *testing.T) {
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	n, err := NewNotification(uuid.New(), nil, TypeBookingConfirmed, "Booking confirmed", "", now)
	require.NoError(t, err)
	assert.Equal(t, StatusUnread, n.Status())

	assert.True(t, n.MarkRead(now))
	assert.Equal(t, StatusRead, n.Status())
	require.NotNil(t, n.ReadAt())
	assert.False(t, n.MarkRead(now))
}

func TestNewNotification_Validation(t *testing.T) {
	_, err := NewNotification(uuid.New(), nil, Type("sms"), "x", "", time.Now())
	assert.Error(t, err)

	_, err = NewNotification(uuid.New(), nil, TypeGeneral, "", "", time.Now())
	assert.Error(t, err)
}
