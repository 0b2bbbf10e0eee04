package invoice

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuexe/service-rental/internal/platform/domain"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestInvoice_Lifecycle(t *testing.T) {
	inv, err := NewInvoice("INV2026030001", uuid.New(), uuid.New(), TypeDeposit, decimal.NewFromInt(750000), "", nil, now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, inv.Status())

	require.NoError(t, inv.MarkPaid(now))
	assert.Equal(t, StatusPaid, inv.Status())
	require.NotNil(t, inv.PaymentDate())
	assert.NoError(t, inv.MarkPaid(now))
	assert.False(t, inv.Cancel(now))
}

func TestInvoice_CancelledCannotBePaid(t *testing.T) {
	inv, err := NewInvoice("INV2026030002", uuid.New(), uuid.New(), TypeFinalPayment, decimal.NewFromInt(1), "", nil, now)
	require.NoError(t, err)

	assert.True(t, inv.Cancel(now))
	assert.True(t, domain.IsCode(inv.MarkPaid(now), domain.CodeInvalidState))
}

func TestNewInvoice_Validation(t *testing.T) {
	_, err := NewInvoice("", uuid.New(), uuid.New(), TypeDeposit, decimal.Zero, "", nil, now)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewInvoice("INV1", uuid.New(), uuid.New(), Type("tip"), decimal.Zero, "", nil, now)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewInvoice("INV1", uuid.New(), uuid.New(), TypeRefund, decimal.NewFromInt(-5), "", nil, now)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}
