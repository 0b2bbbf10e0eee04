package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/thuexe/service-rental/internal/domain/audit"
	"github.com/thuexe/service-rental/internal/domain/booking"
	"github.com/thuexe/service-rental/internal/domain/car"
	"github.com/thuexe/service-rental/internal/domain/contract"
	"github.com/thuexe/service-rental/internal/domain/customer"
	"github.com/thuexe/service-rental/internal/domain/invoice"
	"github.com/thuexe/service-rental/internal/domain/notification"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

func conflictOnVersion(entity string) error {
	return domain.NewRetryableError(entity+" was modified by another transaction", nil)
}

// --- Cars ---

type carRepo struct{ *repositories }

func (r *carRepo) FindByID(_ context.Context, id uuid.UUID) (*car.Car, error) {
	defer r.lock()()
	c, ok := r.store.state.cars[id]
	if !ok {
		return nil, domain.NewNotFoundError("Car", id.String())
	}
	return &c, nil
}

func (r *carRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*car.Car, error) {
	return r.FindByID(ctx, id)
}

func (r *carRepo) List(_ context.Context, filter car.Filter, pageNum, limit int) ([]*car.Car, int64, error) {
	defer r.lock()()
	var out []*car.Car
	for _, c := range r.store.state.cars {
		if filter.Status != nil && c.Status() != *filter.Status {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return page(out, pageNum, limit), int64(len(out)), nil
}

func (r *carRepo) Save(_ context.Context, c *car.Car) error {
	defer r.lock()()
	if err := r.store.injected("cars.Save"); err != nil {
		return err
	}
	for _, existing := range r.store.state.cars {
		if existing.LicensePlate() == c.LicensePlate() {
			return domain.NewConflictError("license plate " + c.LicensePlate() + " already exists")
		}
	}
	r.store.state.cars[c.ID()] = *c
	return nil
}

func (r *carRepo) UpdateStatus(_ context.Context, c *car.Car) error {
	defer r.lock()()
	stored, ok := r.store.state.cars[c.ID()]
	if !ok {
		return domain.NewNotFoundError("Car", c.ID().String())
	}
	r.store.state.cars[c.ID()] = *car.Reconstruct(
		stored.ID(), stored.Name(), stored.LicensePlate(), stored.Brand(), stored.Model(),
		stored.Year(), stored.Seats(), stored.FuelType(), stored.PricePerDay(),
		c.Status(), stored.CreatedAt(), c.UpdatedAt(),
	)
	return nil
}

// --- Customers ---

type customerRepo struct{ *repositories }

func (r *customerRepo) FindByID(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	defer r.lock()()
	c, ok := r.store.state.customers[id]
	if !ok {
		return nil, domain.NewNotFoundError("Customer", id.String())
	}
	return &c, nil
}

func (r *customerRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*customer.Customer, error) {
	defer r.lock()()
	for _, c := range r.store.state.customers {
		if c.IsOwnedBy(userID) {
			c := c
			return &c, nil
		}
	}
	return nil, domain.NewNotFoundError("Customer for user", userID.String())
}

func (r *customerRepo) List(_ context.Context, pageNum, limit int) ([]*customer.Customer, int64, error) {
	defer r.lock()()
	var out []*customer.Customer
	for _, c := range r.store.state.customers {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return page(out, pageNum, limit), int64(len(out)), nil
}

func (r *customerRepo) Save(_ context.Context, c *customer.Customer) error {
	defer r.lock()()
	if c.UserID() != nil {
		for _, existing := range r.store.state.customers {
			if existing.IsOwnedBy(*c.UserID()) {
				return domain.NewConflictError("a profile already exists for this user")
			}
		}
	}
	r.store.state.customers[c.ID()] = *c
	return nil
}

func (r *customerRepo) Update(_ context.Context, c *customer.Customer) error {
	defer r.lock()()
	stored, ok := r.store.state.customers[c.ID()]
	if !ok || stored.Version() != c.Version()-1 {
		return conflictOnVersion("customer")
	}
	r.store.state.customers[c.ID()] = *c
	return nil
}

// --- Bookings ---

type bookingRepo struct{ *repositories }

func (r *bookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	defer r.lock()()
	b, ok := r.store.state.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return &b, nil
}

func (r *bookingRepo) List(_ context.Context, filter booking.Filter, pageNum, limit int) ([]*booking.Booking, int64, error) {
	defer r.lock()()
	var out []*booking.Booking
	for _, b := range r.store.state.bookings {
		if filter.Status != nil && b.Status() != *filter.Status {
			continue
		}
		if filter.CustomerID != nil && b.CustomerID() != *filter.CustomerID {
			continue
		}
		if filter.CarID != nil && b.CarID() != *filter.CarID {
			continue
		}
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return page(out, pageNum, limit), int64(len(out)), nil
}

func (r *bookingRepo) FindStalePending(_ context.Context, before time.Time, limit int) ([]*booking.Booking, error) {
	defer r.lock()()
	var out []*booking.Booking
	for _, b := range r.store.state.bookings {
		if b.Status() == booking.StatusPending && b.Period().StartsBefore(before) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period().Start.Before(out[j].Period().Start) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *bookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	defer r.lock()()
	counts := make(map[string]int64)
	for _, b := range r.store.state.bookings {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (r *bookingRepo) Save(_ context.Context, b *booking.Booking) error {
	defer r.lock()()
	if err := r.store.injected("bookings.Save"); err != nil {
		return err
	}
	r.store.state.bookings[b.ID()] = *b
	return nil
}

func (r *bookingRepo) Update(_ context.Context, b *booking.Booking) error {
	defer r.lock()()
	if err := r.store.injected("bookings.Update"); err != nil {
		return err
	}
	stored, ok := r.store.state.bookings[b.ID()]
	if !ok || stored.Version() != b.Version()-1 {
		return conflictOnVersion("booking")
	}
	r.store.state.bookings[b.ID()] = *b
	return nil
}

func (r *bookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.lock()()
	if _, ok := r.store.state.bookings[id]; !ok {
		return domain.NewNotFoundError("Booking", id.String())
	}
	delete(r.store.state.bookings, id)
	return nil
}

// --- Contracts ---

type contractRepo struct{ *repositories }

func (r *contractRepo) FindByID(_ context.Context, id uuid.UUID) (*contract.Contract, error) {
	defer r.lock()()
	c, ok := r.store.state.contracts[id]
	if !ok {
		return nil, domain.NewNotFoundError("Contract", id.String())
	}
	return &c, nil
}

func (r *contractRepo) FindByNumber(_ context.Context, number string) (*contract.Contract, error) {
	defer r.lock()()
	for _, c := range r.store.state.contracts {
		if c.ContractNumber() == number {
			c := c
			return &c, nil
		}
	}
	return nil, domain.NewNotFoundError("Contract", number)
}

func (r *contractRepo) FindActiveByBookingID(_ context.Context, bookingID uuid.UUID) (*contract.Contract, error) {
	defer r.lock()()
	for _, c := range r.store.state.contracts {
		if c.BookingID() != nil && *c.BookingID() == bookingID && c.Status() == contract.StatusActive {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *contractRepo) List(_ context.Context, filter contract.Filter, pageNum, limit int) ([]*contract.Contract, int64, error) {
	defer r.lock()()
	var out []*contract.Contract
	for _, c := range r.store.state.contracts {
		if filter.Status != nil && c.Status() != *filter.Status {
			continue
		}
		if filter.CustomerID != nil && c.CustomerID() != *filter.CustomerID {
			continue
		}
		if filter.CarID != nil && c.CarID() != *filter.CarID {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractNumber() > out[j].ContractNumber() })
	return page(out, pageNum, limit), int64(len(out)), nil
}

func (r *contractRepo) HasActiveOverlap(_ context.Context, carID uuid.UUID, p rental.Period) (bool, error) {
	defer r.lock()()
	for _, c := range r.store.state.contracts {
		if c.CarID() == carID && c.Status() == contract.StatusActive && c.Period().Overlaps(p) {
			return true, nil
		}
	}
	return false, nil
}

func (r *contractRepo) NextNumberSequence(_ context.Context) (int64, error) {
	defer r.lock()()
	r.store.state.counters["contract"]++
	return r.store.state.counters["contract"], nil
}

func (r *contractRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	defer r.lock()()
	counts := make(map[string]int64)
	for _, c := range r.store.state.contracts {
		counts[string(c.Status())]++
	}
	return counts, nil
}

func (r *contractRepo) Save(_ context.Context, c *contract.Contract) error {
	defer r.lock()()
	if err := r.store.injected("contracts.Save"); err != nil {
		return err
	}
	for _, existing := range r.store.state.contracts {
		if existing.ContractNumber() == c.ContractNumber() {
			return domain.NewRetryableError("contract number "+c.ContractNumber()+" is already taken", nil)
		}
	}
	r.store.state.contracts[c.ID()] = *c
	return nil
}

func (r *contractRepo) Update(_ context.Context, c *contract.Contract) error {
	defer r.lock()()
	stored, ok := r.store.state.contracts[c.ID()]
	if !ok || stored.Version() != c.Version()-1 {
		return conflictOnVersion("contract")
	}
	r.store.state.contracts[c.ID()] = *c
	return nil
}

func (r *contractRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.lock()()
	if _, ok := r.store.state.contracts[id]; !ok {
		return domain.NewNotFoundError("Contract", id.String())
	}
	delete(r.store.state.contracts, id)
	return nil
}

// --- Invoices ---

type invoiceRepo struct{ *repositories }

func (r *invoiceRepo) FindByContractID(_ context.Context, contractID uuid.UUID) ([]*invoice.Invoice, error) {
	defer r.lock()()
	var out []*invoice.Invoice
	for _, inv := range r.store.state.invoices {
		if inv.ContractID() == contractID {
			inv := inv
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber() < out[j].InvoiceNumber() })
	return out, nil
}

func (r *invoiceRepo) NextNumberSequence(_ context.Context) (int64, error) {
	defer r.lock()()
	r.store.state.counters["invoice"]++
	return r.store.state.counters["invoice"], nil
}

func (r *invoiceRepo) Save(_ context.Context, inv *invoice.Invoice) error {
	defer r.lock()()
	r.store.state.invoices[inv.ID()] = *inv
	return nil
}

func (r *invoiceRepo) Update(_ context.Context, inv *invoice.Invoice) error {
	defer r.lock()()
	if _, ok := r.store.state.invoices[inv.ID()]; !ok {
		return domain.NewNotFoundError("Invoice", inv.ID().String())
	}
	r.store.state.invoices[inv.ID()] = *inv
	return nil
}

func (r *invoiceRepo) DeleteByContractID(_ context.Context, contractID uuid.UUID) error {
	defer r.lock()()
	for id, inv := range r.store.state.invoices {
		if inv.ContractID() == contractID {
			delete(r.store.state.invoices, id)
		}
	}
	return nil
}

// --- Notifications ---

type notificationRepo struct{ *repositories }

func (r *notificationRepo) Save(_ context.Context, n *notification.Notification) error {
	defer r.lock()()
	r.store.state.notifications[n.ID()] = *n
	return nil
}

func (r *notificationRepo) FindByID(_ context.Context, id uuid.UUID) (*notification.Notification, error) {
	defer r.lock()()
	n, ok := r.store.state.notifications[id]
	if !ok {
		return nil, domain.NewNotFoundError("Notification", id.String())
	}
	return &n, nil
}

func (r *notificationRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, pageNum, limit int) ([]*notification.Notification, int64, error) {
	defer r.lock()()
	var out []*notification.Notification
	for _, n := range r.store.state.notifications {
		if n.CustomerID() == customerID && n.Status() != notification.StatusDeleted {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return page(out, pageNum, limit), int64(len(out)), nil
}

func (r *notificationRepo) Update(_ context.Context, n *notification.Notification) error {
	defer r.lock()()
	if _, ok := r.store.state.notifications[n.ID()]; !ok {
		return domain.NewNotFoundError("Notification", n.ID().String())
	}
	r.store.state.notifications[n.ID()] = *n
	return nil
}

// --- Audit ---

type auditRepo struct{ *repositories }

func (r *auditRepo) Save(_ context.Context, e *audit.Entry) error {
	defer r.lock()()
	r.store.state.audit = append(r.store.state.audit, *e)
	return nil
}

func (r *auditRepo) List(_ context.Context, pageNum, limit int) ([]*audit.Entry, int64, error) {
	defer r.lock()()
	out := make([]*audit.Entry, 0, len(r.store.state.audit))
	for i := len(r.store.state.audit) - 1; i >= 0; i-- {
		e := r.store.state.audit[i]
		out = append(out, &e)
	}
	return page(out, pageNum, limit), int64(len(out)), nil
}
