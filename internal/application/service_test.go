package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	carDomain "github.com/thuexe/service-rental/internal/domain/car"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/platform/domain"
	"github.com/thuexe/service-rental/internal/platform/kafka"
	"github.com/thuexe/service-rental/internal/proto/events"
	"github.com/thuexe/service-rental/internal/repository/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, e kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	store     *memory.Store
	svc       *Services
	publisher *recordingPublisher
	clock     *time.Time
	staff     Actor
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.NewStore(),
		publisher: &recordingPublisher{},
		clock:     &now,
		staff:     Actor{UserID: uuid.New(), Role: auth.RoleEmployee, IPAddress: "10.0.0.1"},
	}
	f.svc = NewServices(f.store, rental.DefaultCalculator(), zap.NewNop(),
		WithClock(func() time.Time { return *f.clock }),
		WithPublisher(f.publisher),
	)
	return f
}

func (f *fixture) setNow(t time.Time) { *f.clock = t }

func (f *fixture) addCar(t *testing.T, plate string, price int64) *CarDTO {
	t.Helper()
	c, err := f.svc.Fleet.CreateCar(context.Background(), Actor{UserID: uuid.New(), Role: auth.RoleAdmin},
		CreateCarRequest{Name: "Toyota Vios", LicensePlate: plate, Seats: 5, PricePerDay: decimal.NewFromInt(price)})
	require.NoError(t, err)
	return c
}

func completeProfile() CustomerRequest {
	return CustomerRequest{
		FullName:       "Nguyen Van A",
		Phone:          "0901234567",
		Email:          "a@example.com",
		IdentityNumber: "079123456789",
		Address:        "1 Le Loi, District 1",
		DateOfBirth:    "1990-05-01",
	}
}

func (f *fixture) addCustomer(t *testing.T) *CustomerDTO {
	t.Helper()
	c, err := f.svc.Customers.CreateCustomer(context.Background(), f.staff, completeProfile())
	require.NoError(t, err)
	return c
}

func (f *fixture) carStatus(t *testing.T, id uuid.UUID) string {
	t.Helper()
	c, err := f.svc.Fleet.GetCar(context.Background(), id)
	require.NoError(t, err)
	return c.Status
}

var jan20 = time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)

func TestRentalLifecycle_CounterBookingScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-12345", 500000)
	cust := f.addCustomer(t)

	bk, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", bk.Status)
	assert.Equal(t, 3, bk.RentalDays)
	assert.True(t, decimal.NewFromInt(1500000).Equal(bk.TotalPrice))
	assert.Equal(t, "reserved", f.carStatus(t, car.ID))

	confirmed, err := f.svc.Rentals.ConfirmBooking(ctx, f.staff, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Booking.Status)
	assert.Equal(t, "active", confirmed.Contract.Status)
	assert.Equal(t, "HD2025010001", confirmed.Contract.ContractNumber)
	assert.True(t, decimal.NewFromInt(750000).Equal(confirmed.Contract.Deposit))
	assert.Nil(t, confirmed.Contract.SignedAt)
	assert.Equal(t, "rented", f.carStatus(t, car.ID))

	invoices, err := f.svc.Rentals.ListInvoices(ctx, confirmed.Contract.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "deposit", invoices[0].Type)
	assert.Equal(t, "pending", invoices[0].Status)
	assert.True(t, decimal.NewFromInt(750000).Equal(invoices[0].Amount))

	cancelled, err := f.svc.Rentals.CancelContract(ctx, f.staff, confirmed.Contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "available", f.carStatus(t, car.ID))

	invoices, err = f.svc.Rentals.ListInvoices(ctx, confirmed.Contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", invoices[0].Status)

	assert.Equal(t, []string{
		events.BookingCreated,
		events.ContractCreated, events.BookingConfirmed,
		events.ContractCancelled,
	}, f.publisher.types())
}

func TestConfirmBooking_SecondConfirmIsInvalidState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00001", 500000)
	cust := f.addCustomer(t)

	bk, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)
	_, err = f.svc.Rentals.ConfirmBooking(ctx, f.staff, bk.ID)
	require.NoError(t, err)

	_, err = f.svc.Rentals.ConfirmBooking(ctx, f.staff, bk.ID)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))

	contracts, err := f.svc.Rentals.ListContracts(ctx, ContractQuery{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), contracts.Total)
}

func TestConfirmBooking_MissingBooking(t *testing.T) {
	f := newFixture(t, jan20)
	_, err := f.svc.Rentals.ConfirmBooking(context.Background(), f.staff, uuid.New())
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestCreateBooking_Preconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00002", 400000)
	cust := f.addCustomer(t)

	incomplete, err := f.svc.Customers.CreateCustomer(ctx, f.staff, CustomerRequest{FullName: "Tran B"})
	require.NoError(t, err)
	assert.Contains(t, incomplete.MissingFields, "identity_number")

	cases := []struct {
		name string
		req  CreateBookingRequest
		code domain.ErrorCode
	}{
		{"incomplete profile", CreateBookingRequest{CustomerID: incomplete.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03"}, domain.CodeValidation},
		{"unknown customer", CreateBookingRequest{CustomerID: uuid.New(), CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03"}, domain.CodeNotFound},
		{"unknown car", CreateBookingRequest{CustomerID: cust.ID, CarID: uuid.New(), StartDate: "2025-02-01", EndDate: "2025-02-03"}, domain.CodeNotFound},
		{"start in the past", CreateBookingRequest{CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-01-19", EndDate: "2025-01-22"}, domain.CodeValidation},
		{"end before start", CreateBookingRequest{CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-03", EndDate: "2025-02-01"}, domain.CodeValidation},
		{"end equals start", CreateBookingRequest{CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-03", EndDate: "2025-02-03"}, domain.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Rentals.CreateBooking(ctx, f.staff, tc.req)
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, tc.code), "got %v", err)
		})
	}
	assert.Equal(t, "available", f.carStatus(t, car.ID))

	_, err = f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)
	_, err = f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-03-01", EndDate: "2025-03-03",
	})
	assert.True(t, domain.IsCode(err, domain.CodeConflict), "reserved car must not be booked twice")
}

func TestSelfServiceBooking_ExclusivePricingLeavesCarAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00003", 500000)
	me := Actor{UserID: uuid.New(), Role: auth.RoleCustomer}

	_, err := f.svc.Rentals.CreateSelfServiceBooking(ctx, me, SelfServiceBookingRequest{
		CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	assert.True(t, domain.IsCode(err, domain.CodeNotFound), "no profile yet")

	_, err = f.svc.Customers.UpsertMyProfile(ctx, me, completeProfile())
	require.NoError(t, err)

	bk, err := f.svc.Rentals.CreateSelfServiceBooking(ctx, me, SelfServiceBookingRequest{
		CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)
	assert.Equal(t, "self_service", bk.Channel)
	assert.Equal(t, 2, bk.RentalDays)
	assert.True(t, decimal.NewFromInt(1000000).Equal(bk.TotalPrice))
	assert.Equal(t, "available", f.carStatus(t, car.ID))

	mine, err := f.svc.Rentals.ListMyBookings(ctx, me, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Total)

	cancelled, err := f.svc.Rentals.CancelBooking(ctx, me, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "available", f.carStatus(t, car.ID))

	notes, err := f.svc.Customers.ListMyNotifications(ctx, me, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), notes.Total)
	assert.Equal(t, "booking_cancelled", notes.Items[0].Type)

	require.NoError(t, f.svc.Customers.MarkNotificationRead(ctx, me, notes.Items[0].ID))
	notes, err = f.svc.Customers.ListMyNotifications(ctx, me, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, "read", notes.Items[0].Status)
}

func TestCancelBooking_CustomerCannotCancelAnotherCustomersBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00004", 500000)
	cust := f.addCustomer(t)

	bk, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)

	other := Actor{UserID: uuid.New(), Role: auth.RoleCustomer}
	_, err = f.svc.Customers.UpsertMyProfile(ctx, other, completeProfile())
	require.NoError(t, err)

	_, err = f.svc.Rentals.CancelBooking(ctx, other, bk.ID)
	assert.True(t, domain.IsCode(err, domain.CodeForbidden))
	assert.Equal(t, "reserved", f.carStatus(t, car.ID))
}

func TestCancelBooking_ConfirmedBookingCancelsItsContract(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00005", 500000)
	cust := f.addCustomer(t)

	bk, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)
	confirmed, err := f.svc.Rentals.ConfirmBooking(ctx, f.staff, bk.ID)
	require.NoError(t, err)

	_, err = f.svc.Rentals.CancelBooking(ctx, f.staff, bk.ID)
	require.NoError(t, err)

	ct, err := f.svc.Rentals.GetContract(ctx, confirmed.Contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", ct.Status)
	assert.Equal(t, "available", f.carStatus(t, car.ID))

	_, err = f.svc.Rentals.CancelBooking(ctx, f.staff, bk.ID)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))
}

func TestCreateContract_NumberSequence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	cust := f.addCustomer(t)

	var last *ContractDTO
	for i := 0; i < 7; i++ {
		car := f.addCar(t, "30A-0000"+string(rune('1'+i)), 300000)
		ct, err := f.svc.Rentals.CreateContract(ctx, f.staff, CreateContractRequest{
			CustomerID: cust.ID, CarID: car.ID, StartDate: "2026-03-10", EndDate: "2026-03-12",
		})
		require.NoError(t, err)
		last = ct
	}

	assert.Equal(t, "HD2026030007", last.ContractNumber)
	assert.Equal(t, 3, last.RentalDays)
	assert.True(t, decimal.NewFromInt(900000).Equal(last.TotalPrice))
	assert.Equal(t, "rented", f.carStatus(t, last.CarID))
}

func TestCreateContract_RejectsUnavailableCar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00006", 500000)
	cust := f.addCustomer(t)

	_, err := f.svc.Rentals.CreateContract(ctx, f.staff, CreateContractRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-01-10", EndDate: "2025-01-15",
		PricePerDay: decimal.NewFromInt(450000),
	})
	require.NoError(t, err)

	_, err = f.svc.Rentals.CreateContract(ctx, f.staff, CreateContractRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-01-16", EndDate: "2025-01-20",
	})
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestConfirmBooking_RetriesOnceAfterNumberCollision(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00007", 500000)
	cust := f.addCustomer(t)

	bk, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)

	f.store.FailNext("contracts.Save", domain.NewRetryableError("contract number taken", nil))
	confirmed, err := f.svc.Rentals.ConfirmBooking(ctx, f.staff, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "HD2025010001", confirmed.Contract.ContractNumber)

	created := 0
	for _, typ := range f.publisher.types() {
		if typ == events.ContractCreated {
			created++
		}
	}
	assert.Equal(t, 1, created, "events of the failed attempt are dropped")
}

func TestConfirmBooking_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00008", 500000)
	cust := f.addCustomer(t)

	bk, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)

	f.store.FailNext("contracts.Save", errors.New("disk full"))
	_, err = f.svc.Rentals.ConfirmBooking(ctx, f.staff, bk.ID)
	require.Error(t, err)

	got, err := f.svc.Rentals.GetBooking(ctx, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, "reserved", f.carStatus(t, car.ID))
}

func TestExpireStaleBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00009", 500000)
	cust := f.addCustomer(t)

	stale, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-01-25", EndDate: "2025-01-27",
	})
	require.NoError(t, err)

	f.setNow(time.Date(2025, 1, 26, 0, 5, 0, 0, time.UTC))
	n, err := f.svc.Rentals.ExpireStaleBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.Rentals.GetBooking(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", got.Status)
	assert.Equal(t, "available", f.carStatus(t, car.ID))

	n, err = f.svc.Rentals.ExpireStaleBookings(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteBooking_ReleasesReservedCar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00010", 500000)
	cust := f.addCustomer(t)
	admin := Actor{UserID: uuid.New(), Role: auth.RoleAdmin}

	bk, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Rentals.DeleteBooking(ctx, admin, bk.ID))
	assert.Equal(t, "available", f.carStatus(t, car.ID))

	_, err = f.svc.Rentals.GetBooking(ctx, bk.ID)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestPayments_DepositThenFinalSettlement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00011", 500000)
	cust := f.addCustomer(t)

	bk, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)
	confirmed, err := f.svc.Rentals.ConfirmBooking(ctx, f.staff, bk.ID)
	require.NoError(t, err)
	contractID := confirmed.Contract.ID

	require.NoError(t, f.svc.Rentals.RecordDepositPaid(ctx, contractID, decimal.NewFromInt(750000)))
	ct, err := f.svc.Rentals.GetContract(ctx, contractID)
	require.NoError(t, err)
	require.NotNil(t, ct.SignedAt)
	version := ct.Version

	require.NoError(t, f.svc.Rentals.RecordDepositPaid(ctx, contractID, decimal.NewFromInt(750000)))
	ct, err = f.svc.Rentals.GetContract(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, version, ct.Version, "replayed deposit is ignored")

	require.NoError(t, f.svc.Rentals.SettleFinalPayment(ctx, contractID))
	ct, err = f.svc.Rentals.GetContract(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, "completed", ct.Status)
	assert.Equal(t, "available", f.carStatus(t, car.ID))

	got, err := f.svc.Rentals.GetBooking(ctx, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)

	invoices, err := f.svc.Rentals.ListInvoices(ctx, contractID)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	for _, inv := range invoices {
		assert.Equal(t, "paid", inv.Status, inv.Type)
		assert.True(t, decimal.NewFromInt(750000).Equal(inv.Amount), inv.Type)
	}

	require.NoError(t, f.svc.Rentals.SettleFinalPayment(ctx, contractID))
}

func TestCompleteContract_ReleasesCarAndBillsBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00015", 500000)
	cust := f.addCustomer(t)

	bk, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)
	confirmed, err := f.svc.Rentals.ConfirmBooking(ctx, f.staff, bk.ID)
	require.NoError(t, err)
	require.Equal(t, "rented", f.carStatus(t, car.ID))

	completed, err := f.svc.Rentals.CompleteContract(ctx, f.staff, confirmed.Contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)
	assert.Equal(t, "available", f.carStatus(t, car.ID))

	got, err := f.svc.Rentals.GetBooking(ctx, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)

	invoices, err := f.svc.Rentals.ListInvoices(ctx, confirmed.Contract.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	byType := map[string]InvoiceDTO{}
	for _, inv := range invoices {
		byType[inv.Type] = inv
	}
	require.Contains(t, byType, "final_payment")
	assert.Equal(t, "pending", byType["final_payment"].Status)
	assert.True(t, decimal.NewFromInt(750000).Equal(byType["final_payment"].Amount))
	assert.Equal(t, "pending", byType["deposit"].Status)

	assert.Equal(t, []string{
		events.BookingCreated,
		events.ContractCreated, events.BookingConfirmed,
		events.ContractCompleted,
	}, f.publisher.types())

	_, err = f.svc.Rentals.CompleteContract(ctx, f.staff, confirmed.Contract.ID)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))
}

func TestExpireContract_ReleasesCar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00012", 500000)
	cust := f.addCustomer(t)

	ct, err := f.svc.Rentals.CreateContract(ctx, f.staff, CreateContractRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-01-20", EndDate: "2025-01-22",
	})
	require.NoError(t, err)

	expired, err := f.svc.Rentals.ExpireContract(ctx, f.staff, ct.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", expired.Status)
	assert.Equal(t, "available", f.carStatus(t, car.ID))

	_, err = f.svc.Rentals.SignContract(ctx, f.staff, ct.ID)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidState))
}

func TestAdminStatsAndAudit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00013", 500000)
	cust := f.addCustomer(t)

	bk, err := f.svc.Rentals.CreateBooking(ctx, f.staff, CreateBookingRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-02-01", EndDate: "2025-02-03",
	})
	require.NoError(t, err)
	_, err = f.svc.Rentals.ConfirmBooking(ctx, f.staff, bk.ID)
	require.NoError(t, err)

	stats, err := f.svc.Admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.BookingsByStatus["confirmed"])
	assert.Equal(t, int64(1), stats.ContractsByStatus["active"])

	logs, err := f.svc.Admin.ListAuditLogs(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(4), logs.Total)
	assert.Equal(t, "booking.confirm", logs.Items[0].Action)
	assert.Equal(t, "employee", logs.Items[0].ActorRole)
}

func TestListCars_FiltersByStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	f.addCar(t, "51A-00014", 500000)
	_, err := f.svc.Fleet.CreateCar(ctx, Actor{Role: auth.RoleAdmin}, CreateCarRequest{
		Name: "Kia Morning", LicensePlate: "51A-00015", PricePerDay: decimal.NewFromInt(300000),
		Status: string(carDomain.StatusMaintenance),
	})
	require.NoError(t, err)

	page, err := f.svc.Fleet.ListCars(ctx, "maintenance", 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "51A-00015", page.Items[0].LicensePlate)

	_, err = f.svc.Fleet.ListCars(ctx, "flying", 1, 20)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = f.svc.Fleet.CreateCar(ctx, Actor{Role: auth.RoleAdmin}, CreateCarRequest{
		Name: "Dup", LicensePlate: "51a-00014", PricePerDay: decimal.NewFromInt(1),
	})
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestDeleteContract_RemovesInvoicesAndReleasesCar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, jan20)
	car := f.addCar(t, "51A-00042", 600000)
	cust := f.addCustomer(t)

	ct, err := f.svc.Rentals.CreateContract(ctx, f.staff, CreateContractRequest{
		CustomerID: cust.ID, CarID: car.ID, StartDate: "2025-01-22", EndDate: "2025-01-23",
	})
	require.NoError(t, err)
	assert.Equal(t, "rented", f.carStatus(t, car.ID))

	admin := Actor{UserID: uuid.New(), Role: auth.RoleAdmin}
	require.NoError(t, f.svc.Rentals.DeleteContract(ctx, admin, ct.ID))

	assert.Equal(t, "available", f.carStatus(t, car.ID))
	_, err = f.svc.Rentals.GetContract(ctx, ct.ID)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
	_, err = f.svc.Rentals.ListInvoices(ctx, ct.ID)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	err = f.svc.Rentals.DeleteContract(ctx, admin, ct.ID)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}
