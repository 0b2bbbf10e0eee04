package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Topics.
const (
	TopicRentalEvents  = "rental.events"
	TopicPaymentEvents = "payment.events"
)

// Rental event types published by this service.
const (
	BookingCreated    = "rental.booking.created"
	BookingConfirmed  = "rental.booking.confirmed"
	BookingCancelled  = "rental.booking.cancelled"
	BookingExpired    = "rental.booking.expired"
	ContractCreated   = "rental.contract.created"
	ContractSigned    = "rental.contract.signed"
	ContractCompleted = "rental.contract.completed"
	ContractCancelled = "rental.contract.cancelled"
	ContractExpired   = "rental.contract.expired"
)

// Payment event types consumed by this service.
const (
	PaymentDepositPaid  = "payment.deposit_paid"
	PaymentFinalSettled = "payment.final_settled"
)

// BookingEvent is the payload of every rental.booking.* event.
type BookingEvent struct {
	BookingID  uuid.UUID       `json:"booking_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	CarID      uuid.UUID       `json:"car_id"`
	Channel    string          `json:"channel"`
	Status     string          `json:"status"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Currency   string          `json:"currency"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ContractEvent is the payload of every rental.contract.* event.
type ContractEvent struct {
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number"`
	BookingID      *uuid.UUID      `json:"booking_id,omitempty"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CarID          uuid.UUID       `json:"car_id"`
	Status         string          `json:"status"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Deposit        decimal.Decimal `json:"deposit"`
	Currency       string          `json:"currency"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// DepositPaidEvent reports that the deposit invoice of a contract was settled.
type DepositPaidEvent struct {
	PaymentID  uuid.UUID       `json:"payment_id"`
	ContractID uuid.UUID       `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     time.Time       `json:"paid_at"`
}

// FinalSettledEvent reports that the remaining balance of a contract was settled.
type FinalSettledEvent struct {
	PaymentID  uuid.UUID       `json:"payment_id"`
	ContractID uuid.UUID       `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     time.Time       `json:"paid_at"`
}
