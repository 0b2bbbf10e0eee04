package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf_FindsWrappedAppError(t *testing.T) {
	err := fmt.Errorf("confirm booking: %w", NewInvalidStateError("confirmed", "confirmed"))

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, CodeInvalidState, code)
	assert.True(t, IsCode(err, CodeInvalidState))
	assert.False(t, IsRetryable(err))
}

func TestCodeOf_PlainError(t *testing.T) {
	_, ok := CodeOf(errors.New("boom"))
	assert.False(t, ok)
}

func TestRetryableError_UnwrapsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewRetryableError("contract number already taken", cause)

	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestNewPaginatedResult_NeverNil(t *testing.T) {
	res := NewPaginatedResult[int](nil, 0, 1, 20)
	assert.NotNil(t, res.Items)
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 40, Offset(3, 20))
	assert.Equal(t, 0, Offset(0, 20))
}
