//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuexe/service-rental/internal/application"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/proto/events"
	"github.com/thuexe/service-rental/internal/repository"
)

// TestDepositPaid_SignsContract books and confirms a car against PostgreSQL, then
// publishes a payment.deposit_paid event and expects the contract to be signed,
// the deposit invoice paid and rental.contract.signed published.
func TestDepositPaid_SignsContract(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx := context.Background()
	admin := application.Actor{UserID: uuid.New(), Role: auth.RoleAdmin, IPAddress: "127.0.0.1"}
	svc := stack.Services

	car, err := svc.Fleet.CreateCar(ctx, admin, application.CreateCarRequest{
		Name: "Toyota Vios", LicensePlate: "51A-99999", Seats: 5, PricePerDay: decimal.NewFromInt(500000),
	})
	require.NoError(t, err)

	cust, err := svc.Customers.CreateCustomer(ctx, admin, application.CustomerRequest{
		FullName:       "Le Van C",
		Phone:          "0987654321",
		Email:          "c@example.com",
		IdentityNumber: "079111222333",
		Address:        "5 Hai Ba Trung, District 3",
		DateOfBirth:    "1988-03-09",
	})
	require.NoError(t, err)

	start := time.Now().UTC().AddDate(0, 0, 5)
	bk, err := svc.Rentals.CreateBooking(ctx, admin, application.CreateBookingRequest{
		CustomerID: cust.ID,
		CarID:      car.ID,
		StartDate:  start.Format(rental.DateLayout),
		EndDate:    start.AddDate(0, 0, 2).Format(rental.DateLayout),
	})
	require.NoError(t, err)

	confirmed, err := svc.Rentals.ConfirmBooking(ctx, admin, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "rented", mustCarStatus(t, svc, car.ID))

	// Start the consumer.
	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = stack.Consumer.Start(consumerCtx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, events.TopicPaymentEvents, "service-payment", events.PaymentDepositPaid,
		events.DepositPaidEvent{
			PaymentID:  uuid.New(),
			ContractID: confirmed.Contract.ID,
			Amount:     confirmed.Contract.Deposit,
			PaidAt:     time.Now().UTC(),
		})

	model := waitForSignedContract(t, infra.DB, confirmed.Contract.ID, 15*time.Second)
	assert.Equal(t, "active", model.Status)

	var invoice repository.InvoiceModel
	require.NoError(t, infra.DB.Where("contract_id = ? AND invoice_type = ?", confirmed.Contract.ID, "deposit").First(&invoice).Error)
	assert.Equal(t, "paid", invoice.Status)
	assert.NotNil(t, invoice.PaymentDate)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicRentalEvents, events.ContractSigned, 15*time.Second)
	var signed events.ContractEvent
	require.NoError(t, ce.ParseData(&signed))
	assert.Equal(t, confirmed.Contract.ID, signed.ContractID)
	assert.Equal(t, confirmed.Contract.ContractNumber, signed.ContractNumber)
}

func mustCarStatus(t *testing.T, svc *application.Services, id uuid.UUID) string {
	t.Helper()
	c, err := svc.Fleet.GetCar(context.Background(), id)
	require.NoError(t, err)
	return c.Status
}
