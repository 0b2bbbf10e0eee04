// Package memory is an in-process implementation of the unit of work used by tests
// and local tooling. Aggregates are stored by value so callers never share state
// with the store, and a failed Do restores the state it started from.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/thuexe/service-rental/internal/domain/audit"
	"github.com/thuexe/service-rental/internal/domain/booking"
	"github.com/thuexe/service-rental/internal/domain/car"
	"github.com/thuexe/service-rental/internal/domain/contract"
	"github.com/thuexe/service-rental/internal/domain/customer"
	"github.com/thuexe/service-rental/internal/domain/invoice"
	"github.com/thuexe/service-rental/internal/domain/notification"
	"github.com/thuexe/service-rental/internal/domain/uow"
)

type state struct {
	cars          map[uuid.UUID]car.Car
	customers     map[uuid.UUID]customer.Customer
	bookings      map[uuid.UUID]booking.Booking
	contracts     map[uuid.UUID]contract.Contract
	invoices      map[uuid.UUID]invoice.Invoice
	notifications map[uuid.UUID]notification.Notification
	audit         []audit.Entry
	counters      map[string]int64
}

func newState() *state {
	return &state{
		cars:          make(map[uuid.UUID]car.Car),
		customers:     make(map[uuid.UUID]customer.Customer),
		bookings:      make(map[uuid.UUID]booking.Booking),
		contracts:     make(map[uuid.UUID]contract.Contract),
		invoices:      make(map[uuid.UUID]invoice.Invoice),
		notifications: make(map[uuid.UUID]notification.Notification),
		counters:      make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.cars {
		c.cars[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.contracts {
		c.contracts[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	c.audit = append([]audit.Entry(nil), s.audit...)
	for k, v := range s.counters {
		c.counters[k] = v
	}
	return c
}

// Store is an in-memory uow.UnitOfWork. Transactions are serialized.
type Store struct {
	mu    sync.Mutex
	state *state

	failures map[string][]error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{state: newState(), failures: make(map[string][]error)}
}

// FailNext makes the next call of the named operation (for example "contracts.Save")
// return err. Calls queue up in order.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

func (s *Store) injected(op string) error {
	q := s.failures[op]
	if len(q) == 0 {
		return nil
	}
	s.failures[op] = q[1:]
	return q[0]
}

// Do runs fn with repositories bound to a snapshot that is discarded if fn fails.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(ctx, &repositories{store: s, inTx: true}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// Repositories returns repositories that lock the store per call.
func (s *Store) Repositories() uow.Repositories {
	return &repositories{store: s}
}

type repositories struct {
	store *Store
	inTx  bool
}

func (r *repositories) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *repositories) Cars() car.Repository                   { return &carRepo{r} }
func (r *repositories) Customers() customer.Repository         { return &customerRepo{r} }
func (r *repositories) Bookings() booking.BookingRepository    { return &bookingRepo{r} }
func (r *repositories) Contracts() contract.Repository         { return &contractRepo{r} }
func (r *repositories) Invoices() invoice.Repository           { return &invoiceRepo{r} }
func (r *repositories) Notifications() notification.Repository { return &notificationRepo{r} }
func (r *repositories) AuditLog() audit.Repository             { return &auditRepo{r} }

func page[T any](items []T, pageNum, limit int) []T {
	if limit <= 0 {
		return items
	}
	if pageNum < 1 {
		pageNum = 1
	}
	start := (pageNum - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
