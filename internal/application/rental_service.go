package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thuexe/service-rental/internal/domain/availability"
	carDomain "github.com/thuexe/service-rental/internal/domain/car"
	contractDomain "github.com/thuexe/service-rental/internal/domain/contract"
	customerDomain "github.com/thuexe/service-rental/internal/domain/customer"
	invoiceDomain "github.com/thuexe/service-rental/internal/domain/invoice"
	notificationDomain "github.com/thuexe/service-rental/internal/domain/notification"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/auth"
	"github.com/thuexe/service-rental/internal/platform/domain"
	"github.com/thuexe/service-rental/internal/proto/events"
)

// RentalService runs the booking and contract lifecycles. Every operation is one
// transaction covering the booking, the contract, the car status, invoices,
// notifications, and the audit entry it touches.
type RentalService struct {
	*core
}

// --- Shared lifecycle steps ---

// bookableCustomer loads a customer and checks they may rent today.
func bookableCustomer(ctx context.Context, tx *txScope, id uuid.UUID) (*customerDomain.Customer, error) {
	c, err := tx.repos.Customers().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.CanBook(rental.DateOf(tx.now)); err != nil {
		return nil, err
	}
	return c, nil
}

// customerOf resolves the profile linked to the actor's login.
func customerOf(ctx context.Context, tx *txScope) (*customerDomain.Customer, error) {
	return tx.repos.Customers().FindByUserID(ctx, tx.actor.UserID)
}

// lockAvailableCar locks the car row and requires it to be available with no
// active contract overlapping the period.
func lockAvailableCar(ctx context.Context, tx *txScope, carID uuid.UUID, period rental.Period) (*carDomain.Car, error) {
	c, err := tx.repos.Cars().FindByIDForUpdate(ctx, carID)
	if err != nil {
		return nil, err
	}
	if !c.IsAvailable() {
		return nil, domain.NewConflictError(fmt.Sprintf("car %s is %s", c.LicensePlate(), c.Status()))
	}
	if err := requireNoOverlap(ctx, tx, carID, period); err != nil {
		return nil, err
	}
	return c, nil
}

func requireNoOverlap(ctx context.Context, tx *txScope, carID uuid.UUID, period rental.Period) error {
	conflict, err := availability.NewChecker(tx.repos.Cars(), tx.repos.Contracts()).HasConflict(ctx, carID, period)
	if err != nil {
		return err
	}
	if conflict {
		return domain.NewConflictError(fmt.Sprintf("car is already under an active contract between %s and %s",
			formatDate(period.Start), formatDate(period.End)))
	}
	return nil
}

type contractDraft struct {
	bookingID  *uuid.UUID
	customerID uuid.UUID
	carID      uuid.UUID
	period     rental.Period
	quote      rental.Quote
	terms      string
	notes      string
}

// issueContract numbers and saves an active contract together with its deposit invoice.
func (s *RentalService) issueContract(ctx context.Context, tx *txScope, d contractDraft) (*contractDomain.Contract, error) {
	seq, err := tx.repos.Contracts().NextNumberSequence(ctx)
	if err != nil {
		return nil, err
	}

	ct, err := contractDomain.NewContract(contractDomain.NewContractParams{
		ContractNumber: rental.FormatContractNumber(tx.now, seq),
		BookingID:      d.bookingID,
		CustomerID:     d.customerID,
		CarID:          d.carID,
		Period:         d.period,
		Quote:          d.quote,
		Deposit:        s.calc.ComputeDeposit(d.quote.TotalPrice),
		Terms:          d.terms,
		Notes:          d.notes,
	}, tx.now)
	if err != nil {
		return nil, err
	}
	if err := tx.repos.Contracts().Save(ctx, ct); err != nil {
		return nil, err
	}

	if ct.Deposit().IsPositive() {
		if _, err := issueInvoice(ctx, tx, ct, invoiceDomain.TypeDeposit, ct.Deposit(),
			"Deposit for contract "+ct.ContractNumber()); err != nil {
			return nil, err
		}
	}

	tx.emit(events.ContractCreated, ct.ID().String(), contractEvent(ct, tx.now))
	return ct, nil
}

func issueInvoice(ctx context.Context, tx *txScope, ct *contractDomain.Contract, t invoiceDomain.Type, amount decimal.Decimal, notes string) (*invoiceDomain.Invoice, error) {
	seq, err := tx.repos.Invoices().NextNumberSequence(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := invoiceDomain.NewInvoice(rental.FormatInvoiceNumber(tx.now, seq), ct.CustomerID(), ct.ID(),
		t, amount, notes, tx.actor.auditID(), tx.now)
	if err != nil {
		return nil, err
	}
	if err := tx.repos.Invoices().Save(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// cancelContract voids the contract and its pending invoices. The caller releases the car.
func cancelContract(ctx context.Context, tx *txScope, ct *contractDomain.Contract) error {
	if err := ct.Cancel(tx.now); err != nil {
		return err
	}
	ct.IncrementVersion(tx.now)
	if err := tx.repos.Contracts().Update(ctx, ct); err != nil {
		return err
	}

	invoices, err := tx.repos.Invoices().FindByContractID(ctx, ct.ID())
	if err != nil {
		return err
	}
	for _, inv := range invoices {
		if inv.Cancel(tx.now) {
			if err := tx.repos.Invoices().Update(ctx, inv); err != nil {
				return err
			}
		}
	}

	tx.emit(events.ContractCancelled, ct.ID().String(), contractEvent(ct, tx.now))
	return nil
}

// updateCar writes the car status when a release or hand-over changed it.
func updateCar(ctx context.Context, tx *txScope, c *carDomain.Car, changed bool) error {
	if !changed {
		return nil
	}
	return tx.repos.Cars().UpdateStatus(ctx, c)
}

func notify(ctx context.Context, tx *txScope, customerID uuid.UUID, carID *uuid.UUID, t notificationDomain.Type, title, content string) error {
	n, err := notificationDomain.NewNotification(customerID, carID, t, title, content, tx.now)
	if err != nil {
		return fmt.Errorf("failed to build notification: %w", err)
	}
	return tx.repos.Notifications().Save(ctx, n)
}

// requireOwnership lets staff through and restricts customers to their own records.
func requireOwnership(ctx context.Context, tx *txScope, ownerID uuid.UUID) error {
	switch tx.actor.Role {
	case auth.RoleEmployee, auth.RoleAdmin:
		return nil
	case auth.RoleCustomer:
		c, err := customerOf(ctx, tx)
		if err != nil {
			return err
		}
		if c.ID() != ownerID {
			return domain.NewForbiddenError("this record belongs to another customer")
		}
		return nil
	default:
		return domain.NewForbiddenError("unknown role")
	}
}
