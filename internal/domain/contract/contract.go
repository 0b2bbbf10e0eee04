package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

const (
	maxTextLength   = 500
	maxNumberLength = 20
	maxRentalDays   = 365
)

// DefaultTerms is attached to every contract created without explicit terms.
const DefaultTerms = "1. The customer uses the car for its intended purpose and obeys traffic law.\n" +
	"2. The customer is responsible for the car during the rental period.\n" +
	"3. Damage caused by the customer is deducted from the deposit.\n" +
	"4. The customer returns the car at the agreed time and place."

// Contract is the aggregate root for a rental contract.
type Contract struct {
	id             uuid.UUID
	contractNumber string
	bookingID      *uuid.UUID
	customerID     uuid.UUID
	carID          uuid.UUID
	period         rental.Period

	rentalDays  int
	pricePerDay decimal.Decimal
	totalPrice  decimal.Decimal
	deposit     decimal.Decimal

	terms  string
	notes  string
	status Status

	version   int64
	createdAt time.Time
	signedAt  *time.Time
	updatedAt *time.Time
}

// NewContractParams holds the data needed to open a contract.
type NewContractParams struct {
	ContractNumber string
	BookingID      *uuid.UUID
	CustomerID     uuid.UUID
	CarID          uuid.UUID
	Period         rental.Period
	Quote          rental.Quote
	Deposit        decimal.Decimal
	Terms          string
	Notes          string
}

// NewContract creates an active contract. Contracts are binding from creation;
// SignedAt stays empty until the customer signs.
func NewContract(p NewContractParams, now time.Time) (*Contract, error) {
	if p.ContractNumber == "" || len(p.ContractNumber) > maxNumberLength {
		return nil, domain.NewValidationError("contract number is required and must be at most 20 characters")
	}
	if p.CustomerID == uuid.Nil || p.CarID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID and car ID are required")
	}
	if p.Quote.RentalDays < 1 || p.Quote.RentalDays > maxRentalDays {
		return nil, domain.NewValidationError(fmt.Sprintf("rental days must be between 1 and %d", maxRentalDays))
	}
	if p.Quote.PricePerDay.IsNegative() || p.Quote.TotalPrice.IsNegative() || p.Deposit.IsNegative() {
		return nil, domain.NewValidationError("prices and deposit must not be negative")
	}
	terms := strings.TrimSpace(p.Terms)
	if terms == "" {
		terms = DefaultTerms
	}
	if len(terms) > maxTextLength || len(p.Notes) > maxTextLength {
		return nil, domain.NewValidationError(fmt.Sprintf("terms and notes must be at most %d characters", maxTextLength))
	}

	return &Contract{
		id:             uuid.New(),
		contractNumber: p.ContractNumber,
		bookingID:      p.BookingID,
		customerID:     p.CustomerID,
		carID:          p.CarID,
		period:         p.Period,
		rentalDays:     p.Quote.RentalDays,
		pricePerDay:    p.Quote.PricePerDay,
		totalPrice:     p.Quote.TotalPrice,
		deposit:        p.Deposit,
		terms:          terms,
		notes:          p.Notes,
		status:         StatusActive,
		version:        1,
		createdAt:      now,
	}, nil
}

// Reconstruct rebuilds a Contract from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	contractNumber string,
	bookingID *uuid.UUID,
	customerID, carID uuid.UUID,
	period rental.Period,
	rentalDays int,
	pricePerDay, totalPrice, deposit decimal.Decimal,
	terms, notes string,
	status Status,
	version int64,
	createdAt time.Time,
	signedAt, updatedAt *time.Time,
) *Contract {
	return &Contract{
		id:             id,
		contractNumber: contractNumber,
		bookingID:      bookingID,
		customerID:     customerID,
		carID:          carID,
		period:         period,
		rentalDays:     rentalDays,
		pricePerDay:    pricePerDay,
		totalPrice:     totalPrice,
		deposit:        deposit,
		terms:          terms,
		notes:          notes,
		status:         status,
		version:        version,
		createdAt:      createdAt,
		signedAt:       signedAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (c *Contract) ID() uuid.UUID                { return c.id }
func (c *Contract) ContractNumber() string       { return c.contractNumber }
func (c *Contract) BookingID() *uuid.UUID        { return c.bookingID }
func (c *Contract) CustomerID() uuid.UUID        { return c.customerID }
func (c *Contract) CarID() uuid.UUID             { return c.carID }
func (c *Contract) Period() rental.Period        { return c.period }
func (c *Contract) RentalDays() int              { return c.rentalDays }
func (c *Contract) PricePerDay() decimal.Decimal { return c.pricePerDay }
func (c *Contract) TotalPrice() decimal.Decimal  { return c.totalPrice }
func (c *Contract) Deposit() decimal.Decimal     { return c.deposit }
func (c *Contract) Terms() string                { return c.terms }
func (c *Contract) Notes() string                { return c.notes }
func (c *Contract) Status() Status               { return c.status }
func (c *Contract) Version() int64               { return c.version }
func (c *Contract) CreatedAt() time.Time         { return c.createdAt }
func (c *Contract) SignedAt() *time.Time         { return c.signedAt }
func (c *Contract) UpdatedAt() *time.Time        { return c.updatedAt }

// Balance is what remains to be paid after the deposit.
func (c *Contract) Balance() decimal.Decimal {
	return c.totalPrice.Sub(c.deposit)
}

// IsOwnedBy checks if the contract belongs to the given customer.
func (c *Contract) IsOwnedBy(customerID uuid.UUID) bool {
	return c.customerID == customerID
}

// --- Behavior ---

// Sign records the signature and makes the contract active.
func (c *Contract) Sign(now time.Time) error {
	if err := c.transition(StatusActive, now); err != nil {
		return err
	}
	c.signedAt = &now
	return nil
}

// Complete closes an active contract after the car is returned.
func (c *Contract) Complete(now time.Time) error {
	return c.transition(StatusCompleted, now)
}

// Cancel voids a draft or active contract.
func (c *Contract) Cancel(now time.Time) error {
	return c.transition(StatusCancelled, now)
}

// Expire marks a draft or active contract as lapsed.
func (c *Contract) Expire(now time.Time) error {
	return c.transition(StatusExpired, now)
}

// IncrementVersion bumps the version for optimistic locking.
func (c *Contract) IncrementVersion(now time.Time) {
	c.version++
	c.updatedAt = &now
}

func (c *Contract) transition(target Status, now time.Time) error {
	if !c.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(c.status), string(target))
	}
	c.status = target
	c.updatedAt = &now
	return nil
}
