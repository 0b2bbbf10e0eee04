package invoice

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thuexe/service-rental/internal/platform/domain"
)

// Type is the reason an invoice was issued.
type Type string

const (
	TypeDeposit       Type = "deposit"
	TypeFinalPayment  Type = "final_payment"
	TypeRefund        Type = "refund"
	TypeAdditionalFee Type = "additional_fee"
)

// IsValid returns true if the type is recognized.
func (t Type) IsValid() bool {
	switch t {
	case TypeDeposit, TypeFinalPayment, TypeRefund, TypeAdditionalFee:
		return true
	}
	return false
}

// Status is the payment state of an invoice.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusCancelled
}

// Invoice is a billable amount attached to a contract.
type Invoice struct {
	id            uuid.UUID
	invoiceNumber string
	customerID    uuid.UUID
	contractID    uuid.UUID
	invoiceType   Type
	amount        decimal.Decimal
	status        Status
	paymentDate   *time.Time
	notes         string
	createdBy     *uuid.UUID
	createdAt     time.Time
	updatedAt     *time.Time
}

// NewInvoice issues a pending invoice.
func NewInvoice(
	invoiceNumber string,
	customerID, contractID uuid.UUID,
	invoiceType Type,
	amount decimal.Decimal,
	notes string,
	createdBy *uuid.UUID,
	now time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" || len(invoiceNumber) > 20 {
		return nil, domain.NewValidationError("invoice number is required and must be at most 20 characters")
	}
	if !invoiceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid invoice type: %s", invoiceType))
	}
	if amount.IsNegative() {
		return nil, domain.NewValidationError("invoice amount must not be negative")
	}

	return &Invoice{
		id:            uuid.New(),
		invoiceNumber: invoiceNumber,
		customerID:    customerID,
		contractID:    contractID,
		invoiceType:   invoiceType,
		amount:        amount,
		status:        StatusPending,
		notes:         notes,
		createdBy:     createdBy,
		createdAt:     now,
	}, nil
}

// Reconstruct rebuilds an Invoice from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	invoiceNumber string,
	customerID, contractID uuid.UUID,
	invoiceType Type,
	amount decimal.Decimal,
	status Status,
	paymentDate *time.Time,
	notes string,
	createdBy *uuid.UUID,
	createdAt time.Time,
	updatedAt *time.Time,
) *Invoice {
	return &Invoice{
		id:            id,
		invoiceNumber: invoiceNumber,
		customerID:    customerID,
		contractID:    contractID,
		invoiceType:   invoiceType,
		amount:        amount,
		status:        status,
		paymentDate:   paymentDate,
		notes:         notes,
		createdBy:     createdBy,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Getters.
func (i *Invoice) ID() uuid.UUID           { return i.id }
func (i *Invoice) InvoiceNumber() string   { return i.invoiceNumber }
func (i *Invoice) CustomerID() uuid.UUID   { return i.customerID }
func (i *Invoice) ContractID() uuid.UUID   { return i.contractID }
func (i *Invoice) Type() Type              { return i.invoiceType }
func (i *Invoice) Amount() decimal.Decimal { return i.amount }
func (i *Invoice) Status() Status          { return i.status }
func (i *Invoice) PaymentDate() *time.Time { return i.paymentDate }
func (i *Invoice) Notes() string           { return i.notes }
func (i *Invoice) CreatedBy() *uuid.UUID   { return i.createdBy }
func (i *Invoice) CreatedAt() time.Time    { return i.createdAt }
func (i *Invoice) UpdatedAt() *time.Time   { return i.updatedAt }

// MarkPaid settles a pending invoice. Settling a paid invoice again is a no-op.
func (i *Invoice) MarkPaid(now time.Time) error {
	switch i.status {
	case StatusPaid:
		return nil
	case StatusCancelled:
		return domain.NewInvalidStateError(string(i.status), string(StatusPaid))
	}
	i.status = StatusPaid
	i.paymentDate = &now
	i.updatedAt = &now
	return nil
}

// Cancel voids a pending invoice. It reports whether the status changed.
func (i *Invoice) Cancel(now time.Time) bool {
	if i.status != StatusPending {
		return false
	}
	i.status = StatusCancelled
	i.updatedAt = &now
	return true
}
