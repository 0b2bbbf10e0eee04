package rental

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thuexe/service-rental/internal/platform/domain"
)

// DefaultDepositRate is the deposit share of the total price unless configured otherwise.
var DefaultDepositRate = decimal.NewFromFloat(0.5)

// DayCountPolicy decides how many billable days a period has.
type DayCountPolicy string

const (
	// PolicyInclusive counts both the pickup and the return day.
	PolicyInclusive DayCountPolicy = "inclusive"
	// PolicyExclusive counts nights between pickup and return.
	PolicyExclusive DayCountPolicy = "exclusive"
)

// RentalDays returns the billable days of p under the policy.
func (d DayCountPolicy) RentalDays(p Period) int {
	if d == PolicyExclusive {
		return p.Days()
	}
	return p.Days() + 1
}

// Quote is the price of a period at a daily rate.
type Quote struct {
	RentalDays  int
	PricePerDay decimal.Decimal
	TotalPrice  decimal.Decimal
}

// Calculator prices rentals and deposits.
type Calculator struct {
	depositRate decimal.Decimal
}

// NewCalculator creates a Calculator. The deposit rate must be within [0, 1] with at most one decimal place.
func NewCalculator(depositRate decimal.Decimal) (*Calculator, error) {
	if depositRate.IsNegative() || depositRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, domain.NewValidationError(fmt.Sprintf("deposit rate %s must be between 0 and 1", depositRate))
	}
	// Prices carry two decimals and deposits are stored with three.
	if !depositRate.Equal(depositRate.Truncate(1)) {
		return nil, domain.NewValidationError(fmt.Sprintf("deposit rate %s must have at most one decimal place", depositRate))
	}
	return &Calculator{depositRate: depositRate}, nil
}

// DefaultCalculator uses DefaultDepositRate.
func DefaultCalculator() *Calculator {
	return &Calculator{depositRate: DefaultDepositRate}
}

// DepositRate returns the configured deposit rate.
func (c *Calculator) DepositRate() decimal.Decimal { return c.depositRate }

// ComputeRental prices p at pricePerDay under policy.
func (c *Calculator) ComputeRental(p Period, pricePerDay decimal.Decimal, policy DayCountPolicy) Quote {
	days := policy.RentalDays(p)
	return Quote{
		RentalDays:  days,
		PricePerDay: pricePerDay,
		TotalPrice:  pricePerDay.Mul(decimal.NewFromInt(int64(days))),
	}
}

// ComputeDeposit returns total × deposit rate, unrounded.
func (c *Calculator) ComputeDeposit(total decimal.Decimal) decimal.Decimal {
	return total.Mul(c.depositRate)
}

// FormatContractNumber renders "HD" + yyyy + MM + seq as four digits.
func FormatContractNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("HD%04d%02d%04d", at.Year(), int(at.Month()), seq)
}

// FormatInvoiceNumber renders "INV" + yyyy + MM + seq as four digits.
func FormatInvoiceNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("INV%04d%02d%04d", at.Year(), int(at.Month()), seq)
}
