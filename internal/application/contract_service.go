package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/thuexe/service-rental/internal/domain/audit"
	bookingDomain "github.com/thuexe/service-rental/internal/domain/booking"
	contractDomain "github.com/thuexe/service-rental/internal/domain/contract"
	invoiceDomain "github.com/thuexe/service-rental/internal/domain/invoice"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
	"github.com/thuexe/service-rental/internal/proto/events"
)

// CreateContractRequest holds the data for a contract written directly at the counter.
type CreateContractRequest struct {
	CustomerID  uuid.UUID       `json:"customer_id" binding:"required"`
	CarID       uuid.UUID       `json:"car_id" binding:"required"`
	StartDate   string          `json:"start_date" binding:"required,isodate"`
	EndDate     string          `json:"end_date" binding:"required,isodate"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	Terms       string          `json:"terms" binding:"max=500"`
	Notes       string          `json:"notes" binding:"max=500"`
}

// ContractQuery narrows a contract listing.
type ContractQuery struct {
	Status     string
	CustomerID *uuid.UUID
	CarID      *uuid.UUID
}

// CreateContract writes an active contract without a prior booking and hands the car over.
// A zero price per day means the car's current price.
func (s *RentalService) CreateContract(ctx context.Context, actor Actor, req CreateContractRequest) (*ContractDTO, error) {
	period, err := rental.ParsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	var result ContractDTO
	err = s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		cust, err := bookableCustomer(ctx, tx, req.CustomerID)
		if err != nil {
			return err
		}
		car, err := lockAvailableCar(ctx, tx, req.CarID, period)
		if err != nil {
			return err
		}

		price := req.PricePerDay
		if price.IsZero() {
			price = car.PricePerDay()
		}

		ct, err := s.issueContract(ctx, tx, contractDraft{
			customerID: cust.ID(),
			carID:      car.ID(),
			period:     period,
			quote:      s.calc.ComputeRental(period, price, rental.PolicyInclusive),
			terms:      req.Terms,
			notes:      req.Notes,
		})
		if err != nil {
			return err
		}
		if err := car.MarkRented(tx.now); err != nil {
			return err
		}
		if err := tx.repos.Cars().UpdateStatus(ctx, car); err != nil {
			return err
		}

		if err := tx.audit(ctx, audit.ActionCreateContract, fmt.Sprintf("contract %s for car %s", ct.ContractNumber(), car.LicensePlate())); err != nil {
			return err
		}
		result = toContractDTO(ct)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contract created", zap.String("contract_number", result.ContractNumber))
	return &result, nil
}

// SignContract records the customer's signature.
func (s *RentalService) SignContract(ctx context.Context, actor Actor, contractID uuid.UUID) (*ContractDTO, error) {
	return s.transitionContract(ctx, actor, contractID, func(ctx context.Context, tx *txScope, ct *contractDomain.Contract) error {
		if err := ct.Sign(tx.now); err != nil {
			return err
		}
		if err := saveContract(ctx, tx, ct); err != nil {
			return err
		}
		tx.emit(events.ContractSigned, ct.ID().String(), contractEvent(ct, tx.now))
		return tx.audit(ctx, audit.ActionSignContract, "signed contract "+ct.ContractNumber())
	})
}

// CompleteContract closes the contract on return of the car, completes the booking it
// came from, and bills the remaining balance.
func (s *RentalService) CompleteContract(ctx context.Context, actor Actor, contractID uuid.UUID) (*ContractDTO, error) {
	return s.transitionContract(ctx, actor, contractID, func(ctx context.Context, tx *txScope, ct *contractDomain.Contract) error {
		return completeContract(ctx, tx, ct, false)
	})
}

// CancelContract voids the contract and its pending invoices and releases the car.
func (s *RentalService) CancelContract(ctx context.Context, actor Actor, contractID uuid.UUID) (*ContractDTO, error) {
	return s.transitionContract(ctx, actor, contractID, func(ctx context.Context, tx *txScope, ct *contractDomain.Contract) error {
		if err := cancelContract(ctx, tx, ct); err != nil {
			return err
		}
		car, err := tx.repos.Cars().FindByIDForUpdate(ctx, ct.CarID())
		if err != nil {
			return err
		}
		if err := updateCar(ctx, tx, car, car.Release(tx.now)); err != nil {
			return err
		}
		return tx.audit(ctx, audit.ActionCancelContract, "cancelled contract "+ct.ContractNumber())
	})
}

// ExpireContract lapses a draft or active contract and releases a rented car.
func (s *RentalService) ExpireContract(ctx context.Context, actor Actor, contractID uuid.UUID) (*ContractDTO, error) {
	return s.transitionContract(ctx, actor, contractID, func(ctx context.Context, tx *txScope, ct *contractDomain.Contract) error {
		if err := ct.Expire(tx.now); err != nil {
			return err
		}
		if err := saveContract(ctx, tx, ct); err != nil {
			return err
		}
		car, err := tx.repos.Cars().FindByIDForUpdate(ctx, ct.CarID())
		if err != nil {
			return err
		}
		if err := updateCar(ctx, tx, car, car.ReleaseIfRented(tx.now)); err != nil {
			return err
		}
		tx.emit(events.ContractExpired, ct.ID().String(), contractEvent(ct, tx.now))
		return tx.audit(ctx, audit.ActionExpireContract, "expired contract "+ct.ContractNumber())
	})
}

// DeleteContract removes a contract and its invoices. An active contract gives its car back.
func (s *RentalService) DeleteContract(ctx context.Context, actor Actor, contractID uuid.UUID) error {
	return s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		ct, err := tx.repos.Contracts().FindByID(ctx, contractID)
		if err != nil {
			return err
		}

		if ct.Status() == contractDomain.StatusActive {
			car, err := tx.repos.Cars().FindByIDForUpdate(ctx, ct.CarID())
			if err != nil {
				return err
			}
			if err := updateCar(ctx, tx, car, car.ReleaseIfRented(tx.now)); err != nil {
				return err
			}
		}

		if err := tx.repos.Invoices().DeleteByContractID(ctx, ct.ID()); err != nil {
			return err
		}
		if err := tx.repos.Contracts().Delete(ctx, ct.ID()); err != nil {
			return err
		}
		return tx.audit(ctx, audit.ActionDeleteContract, fmt.Sprintf("deleted contract %s (%s)", ct.ContractNumber(), ct.Status()))
	})
}

// RecordDepositPaid settles the deposit invoice and signs the contract. Replays of the
// same payment are ignored.
func (s *RentalService) RecordDepositPaid(ctx context.Context, contractID uuid.UUID, amount decimal.Decimal) error {
	return s.run(ctx, SystemActor, func(ctx context.Context, tx *txScope) error {
		ct, err := tx.repos.Contracts().FindByID(ctx, contractID)
		if err != nil {
			return err
		}
		invoices, err := tx.repos.Invoices().FindByContractID(ctx, ct.ID())
		if err != nil {
			return err
		}

		var deposit *invoiceDomain.Invoice
		for _, inv := range invoices {
			if inv.Type() == invoiceDomain.TypeDeposit && inv.Status() != invoiceDomain.StatusCancelled {
				deposit = inv
				break
			}
		}

		if deposit != nil {
			if deposit.Status() == invoiceDomain.StatusPaid && ct.SignedAt() != nil {
				return nil
			}
			if !amount.IsZero() && !amount.Equal(deposit.Amount()) {
				s.logger.Warn("deposit payment amount differs from invoice",
					zap.String("contract_number", ct.ContractNumber()),
					zap.String("invoice_amount", deposit.Amount().String()),
					zap.String("paid_amount", amount.String()),
				)
			}
			if err := deposit.MarkPaid(tx.now); err != nil {
				return err
			}
			if err := tx.repos.Invoices().Update(ctx, deposit); err != nil {
				return err
			}
		}

		if err := ct.Sign(tx.now); err != nil {
			return err
		}
		if err := saveContract(ctx, tx, ct); err != nil {
			return err
		}
		tx.emit(events.ContractSigned, ct.ID().String(), contractEvent(ct, tx.now))
		return tx.audit(ctx, audit.ActionRecordDepositPayment,
			fmt.Sprintf("deposit %s received for contract %s", amount.String(), ct.ContractNumber()))
	})
}

// SettleFinalPayment completes the contract with its balance invoice already paid.
// A contract that is already completed is left as is.
func (s *RentalService) SettleFinalPayment(ctx context.Context, contractID uuid.UUID) error {
	return s.run(ctx, SystemActor, func(ctx context.Context, tx *txScope) error {
		ct, err := tx.repos.Contracts().FindByID(ctx, contractID)
		if err != nil {
			return err
		}
		if ct.Status() == contractDomain.StatusCompleted {
			return nil
		}
		return completeContract(ctx, tx, ct, true)
	})
}

// GetContract retrieves a single contract by ID.
func (s *RentalService) GetContract(ctx context.Context, contractID uuid.UUID) (*ContractDTO, error) {
	ct, err := s.uow.Repositories().Contracts().FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	result := toContractDTO(ct)
	return &result, nil
}

// ListContracts returns contracts matching the query, highest number first.
func (s *RentalService) ListContracts(ctx context.Context, q ContractQuery, page, limit int) (*domain.PaginatedResult[ContractDTO], error) {
	filter := contractDomain.Filter{CustomerID: q.CustomerID, CarID: q.CarID}
	if q.Status != "" {
		status, err := contractDomain.ParseStatus(q.Status)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		filter.Status = &status
	}

	page, limit = normalizePage(page, limit)
	contracts, total, err := s.uow.Repositories().Contracts().List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(mapSlice(contracts, toContractDTO), total, page, limit)
	return &result, nil
}

// ListMyContracts returns the calling customer's contracts.
func (s *RentalService) ListMyContracts(ctx context.Context, actor Actor, page, limit int) (*domain.PaginatedResult[ContractDTO], error) {
	c, err := s.uow.Repositories().Customers().FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	id := c.ID()
	return s.ListContracts(ctx, ContractQuery{CustomerID: &id}, page, limit)
}

// ListInvoices returns the invoices issued for a contract.
func (s *RentalService) ListInvoices(ctx context.Context, contractID uuid.UUID) ([]InvoiceDTO, error) {
	repos := s.uow.Repositories()
	if _, err := repos.Contracts().FindByID(ctx, contractID); err != nil {
		return nil, err
	}
	invoices, err := repos.Invoices().FindByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return mapSlice(invoices, toInvoiceDTO), nil
}

// --- Helpers ---

func (s *RentalService) transitionContract(
	ctx context.Context,
	actor Actor,
	contractID uuid.UUID,
	fn func(ctx context.Context, tx *txScope, ct *contractDomain.Contract) error,
) (*ContractDTO, error) {
	var result ContractDTO
	err := s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		ct, err := tx.repos.Contracts().FindByID(ctx, contractID)
		if err != nil {
			return err
		}
		if err := fn(ctx, tx, ct); err != nil {
			return err
		}
		result = toContractDTO(ct)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contract updated",
		zap.String("contract_number", result.ContractNumber),
		zap.String("status", result.Status),
	)
	return &result, nil
}

func saveContract(ctx context.Context, tx *txScope, ct *contractDomain.Contract) error {
	ct.IncrementVersion(tx.now)
	return tx.repos.Contracts().Update(ctx, ct)
}

func completeContract(ctx context.Context, tx *txScope, ct *contractDomain.Contract, balancePaid bool) error {
	if err := ct.Complete(tx.now); err != nil {
		return err
	}
	if err := saveContract(ctx, tx, ct); err != nil {
		return err
	}

	car, err := tx.repos.Cars().FindByIDForUpdate(ctx, ct.CarID())
	if err != nil {
		return err
	}
	if err := updateCar(ctx, tx, car, car.Release(tx.now)); err != nil {
		return err
	}

	if id := ct.BookingID(); id != nil {
		bk, err := tx.repos.Bookings().FindByID(ctx, *id)
		switch {
		case domain.IsCode(err, domain.CodeNotFound):
		case err != nil:
			return err
		case bk.Status() == bookingDomain.StatusConfirmed:
			if err := bk.Complete(tx.now); err != nil {
				return err
			}
			bk.IncrementVersion(tx.now)
			if err := tx.repos.Bookings().Update(ctx, bk); err != nil {
				return err
			}
		}
	}

	if balance := ct.Balance(); balance.IsPositive() {
		inv, err := issueInvoice(ctx, tx, ct, invoiceDomain.TypeFinalPayment, balance,
			"Final payment for contract "+ct.ContractNumber())
		if err != nil {
			return err
		}
		if balancePaid {
			if err := inv.MarkPaid(tx.now); err != nil {
				return err
			}
			if err := tx.repos.Invoices().Update(ctx, inv); err != nil {
				return err
			}
		}
	}

	tx.emit(events.ContractCompleted, ct.ID().String(), contractEvent(ct, tx.now))
	return tx.audit(ctx, audit.ActionCompleteContract, "completed contract "+ct.ContractNumber())
}
