package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thuexe/service-rental/internal/domain/audit"
	bookingDomain "github.com/thuexe/service-rental/internal/domain/booking"
	customerDomain "github.com/thuexe/service-rental/internal/domain/customer"
	notificationDomain "github.com/thuexe/service-rental/internal/domain/notification"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
	"github.com/thuexe/service-rental/internal/proto/events"
)

// staleBatchSize caps how many bookings one expiry run touches.
const staleBatchSize = 500

// CreateBookingRequest holds the data needed to book a car at the counter.
type CreateBookingRequest struct {
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
	CarID      uuid.UUID `json:"car_id" binding:"required"`
	StartDate  string    `json:"start_date" binding:"required,isodate"`
	EndDate    string    `json:"end_date" binding:"required,isodate"`
	Notes      string    `json:"notes" binding:"max=500"`
}

// SelfServiceBookingRequest holds the data a customer sends to book for themselves.
type SelfServiceBookingRequest struct {
	CarID     uuid.UUID `json:"car_id" binding:"required"`
	StartDate string    `json:"start_date" binding:"required,isodate"`
	EndDate   string    `json:"end_date" binding:"required,isodate"`
	Notes     string    `json:"notes" binding:"max=500"`
}

// BookingQuery narrows a booking listing.
type BookingQuery struct {
	Status     string
	CustomerID *uuid.UUID
	CarID      *uuid.UUID
}

// ConfirmResult is returned by ConfirmBooking.
type ConfirmResult struct {
	Booking  BookingDTO  `json:"booking"`
	Contract ContractDTO `json:"contract"`
}

// CreateBooking books a car for a customer at the counter. The car is reserved
// until the booking is confirmed, cancelled, or expired.
func (s *RentalService) CreateBooking(ctx context.Context, actor Actor, req CreateBookingRequest) (*BookingDTO, error) {
	return s.createBooking(ctx, actor, bookingDomain.ChannelCounter, req.CarID, req.StartDate, req.EndDate, req.Notes,
		func(ctx context.Context, tx *txScope) (*customerDomain.Customer, error) {
			return bookableCustomer(ctx, tx, req.CustomerID)
		})
}

// CreateSelfServiceBooking books a car for the calling customer. The car status is left alone.
func (s *RentalService) CreateSelfServiceBooking(ctx context.Context, actor Actor, req SelfServiceBookingRequest) (*BookingDTO, error) {
	return s.createBooking(ctx, actor, bookingDomain.ChannelSelfService, req.CarID, req.StartDate, req.EndDate, req.Notes,
		func(ctx context.Context, tx *txScope) (*customerDomain.Customer, error) {
			c, err := customerOf(ctx, tx)
			if err != nil {
				return nil, err
			}
			return bookableCustomer(ctx, tx, c.ID())
		})
}

func (s *RentalService) createBooking(
	ctx context.Context,
	actor Actor,
	channel bookingDomain.Channel,
	carID uuid.UUID,
	start, end, notes string,
	resolveCustomer func(ctx context.Context, tx *txScope) (*customerDomain.Customer, error),
) (*BookingDTO, error) {
	period, err := rental.ParsePeriod(start, end)
	if err != nil {
		return nil, err
	}

	var result BookingDTO
	err = s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		if period.StartsBefore(rental.DateOf(tx.now)) {
			return domain.NewValidationError("start date must not be in the past")
		}
		cust, err := resolveCustomer(ctx, tx)
		if err != nil {
			return err
		}
		car, err := lockAvailableCar(ctx, tx, carID, period)
		if err != nil {
			return err
		}

		quote := s.calc.ComputeRental(period, car.PricePerDay(), channel.DayCountPolicy())
		bk, err := bookingDomain.NewBooking(cust.ID(), car.ID(), period, quote, channel, notes, tx.now)
		if err != nil {
			return err
		}
		if err := tx.repos.Bookings().Save(ctx, bk); err != nil {
			return err
		}

		if channel.ReservesCar() {
			if err := car.Reserve(tx.now); err != nil {
				return err
			}
			if err := tx.repos.Cars().UpdateStatus(ctx, car); err != nil {
				return err
			}
		}

		if err := tx.audit(ctx, audit.ActionCreateBooking, fmt.Sprintf("%s booking %s for car %s, %s to %s",
			channel, bk.ID(), car.LicensePlate(), formatDate(period.Start), formatDate(period.End))); err != nil {
			return err
		}
		tx.emit(events.BookingCreated, bk.ID().String(), bookingEvent(bk, tx.now))
		result = toBookingDTO(bk)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", result.ID.String()),
		zap.String("channel", result.Channel),
		zap.String("total_price", result.TotalPrice.String()),
	)
	return &result, nil
}

// ConfirmBooking turns a pending booking into an active contract, hands the car
// over, issues the deposit invoice, and notifies the customer.
func (s *RentalService) ConfirmBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*ConfirmResult, error) {
	var result ConfirmResult
	err := s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		bk, err := tx.repos.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := bk.Confirm(tx.now); err != nil {
			return err
		}

		car, err := tx.repos.Cars().FindByIDForUpdate(ctx, bk.CarID())
		if err != nil {
			return err
		}
		if err := requireNoOverlap(ctx, tx, car.ID(), bk.Period()); err != nil {
			return err
		}
		if err := car.MarkRented(tx.now); err != nil {
			return err
		}

		bk.IncrementVersion(tx.now)
		if err := tx.repos.Bookings().Update(ctx, bk); err != nil {
			return err
		}

		bookingID := bk.ID()
		ct, err := s.issueContract(ctx, tx, contractDraft{
			bookingID:  &bookingID,
			customerID: bk.CustomerID(),
			carID:      car.ID(),
			period:     bk.Period(),
			quote: rental.Quote{
				RentalDays:  bk.RentalDays(),
				PricePerDay: car.PricePerDay(),
				TotalPrice:  bk.TotalPrice(),
			},
			notes: bk.Notes(),
		})
		if err != nil {
			return err
		}
		if err := tx.repos.Cars().UpdateStatus(ctx, car); err != nil {
			return err
		}

		carID := car.ID()
		if err := notify(ctx, tx, bk.CustomerID(), &carID, notificationDomain.TypeBookingConfirmed,
			"Booking confirmed",
			fmt.Sprintf("Your booking of %s from %s to %s is confirmed under contract %s. Deposit due: %s %s.",
				car.Name(), formatDate(bk.Period().Start), formatDate(bk.Period().End),
				ct.ContractNumber(), ct.Deposit().String(), domain.CurrencyVND)); err != nil {
			return err
		}

		if err := tx.audit(ctx, audit.ActionConfirmBooking, fmt.Sprintf("confirmed booking %s as contract %s",
			bk.ID(), ct.ContractNumber())); err != nil {
			return err
		}
		tx.emit(events.BookingConfirmed, bk.ID().String(), bookingEvent(bk, tx.now))

		result = ConfirmResult{Booking: toBookingDTO(bk), Contract: toContractDTO(ct)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking confirmed",
		zap.String("booking_id", bookingID.String()),
		zap.String("contract_number", result.Contract.ContractNumber),
	)
	return &result, nil
}

// CancelBooking cancels a pending or confirmed booking. A confirmed booking takes its
// active contract down with it, and the car goes back to the fleet.
func (s *RentalService) CancelBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	var result BookingDTO
	err := s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		bk, err := tx.repos.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := requireOwnership(ctx, tx, bk.CustomerID()); err != nil {
			return err
		}

		wasConfirmed := bk.Status() == bookingDomain.StatusConfirmed
		if err := bk.Cancel(tx.now); err != nil {
			return err
		}
		bk.IncrementVersion(tx.now)
		if err := tx.repos.Bookings().Update(ctx, bk); err != nil {
			return err
		}

		car, err := tx.repos.Cars().FindByIDForUpdate(ctx, bk.CarID())
		if err != nil {
			return err
		}

		changed := false
		if wasConfirmed {
			ct, err := tx.repos.Contracts().FindActiveByBookingID(ctx, bk.ID())
			if err != nil {
				return err
			}
			if ct != nil {
				if err := cancelContract(ctx, tx, ct); err != nil {
					return err
				}
				changed = car.ReleaseIfRented(tx.now)
			}
		} else if bk.Channel().ReservesCar() {
			changed = car.ReleaseIfReserved(tx.now)
		}
		if err := updateCar(ctx, tx, car, changed); err != nil {
			return err
		}

		carID := car.ID()
		if err := notify(ctx, tx, bk.CustomerID(), &carID, notificationDomain.TypeBookingCancelled,
			"Booking cancelled",
			fmt.Sprintf("Your booking of %s from %s to %s has been cancelled.",
				car.Name(), formatDate(bk.Period().Start), formatDate(bk.Period().End))); err != nil {
			return err
		}

		if err := tx.audit(ctx, audit.ActionCancelBooking, fmt.Sprintf("cancelled booking %s", bk.ID())); err != nil {
			return err
		}
		tx.emit(events.BookingCancelled, bk.ID().String(), bookingEvent(bk, tx.now))
		result = toBookingDTO(bk)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled", zap.String("booking_id", bookingID.String()))
	return &result, nil
}

// ExpireBooking lapses a pending or confirmed booking and frees a car it had reserved.
func (s *RentalService) ExpireBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	var result BookingDTO
	err := s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		bk, err := tx.repos.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		wasPending := bk.Status() == bookingDomain.StatusPending
		if err := bk.Expire(tx.now); err != nil {
			return err
		}
		bk.IncrementVersion(tx.now)
		if err := tx.repos.Bookings().Update(ctx, bk); err != nil {
			return err
		}

		if wasPending && bk.Channel().ReservesCar() {
			car, err := tx.repos.Cars().FindByIDForUpdate(ctx, bk.CarID())
			if err != nil {
				return err
			}
			if err := updateCar(ctx, tx, car, car.ReleaseIfReserved(tx.now)); err != nil {
				return err
			}
		}

		if err := tx.audit(ctx, audit.ActionExpireBooking, fmt.Sprintf("expired booking %s", bk.ID())); err != nil {
			return err
		}
		tx.emit(events.BookingExpired, bk.ID().String(), bookingEvent(bk, tx.now))
		result = toBookingDTO(bk)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ExpireStaleBookings expires every pending booking whose start date has passed.
// Each booking is expired in its own transaction; failures are logged and skipped.
func (s *RentalService) ExpireStaleBookings(ctx context.Context) (int, error) {
	stale, err := s.uow.Repositories().Bookings().FindStalePending(ctx, s.today(), staleBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, bk := range stale {
		if _, err := s.ExpireBooking(ctx, SystemActor, bk.ID()); err != nil {
			s.logger.Warn("failed to expire stale booking", zap.String("booking_id", bk.ID().String()), zap.Error(err))
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("stale bookings expired", zap.Int("count", expired))
	}
	return expired, nil
}

// DeleteBooking removes a booking outright. A car still held for it is released.
func (s *RentalService) DeleteBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) error {
	return s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		bk, err := tx.repos.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			return err
		}

		if bk.Status() == bookingDomain.StatusPending && bk.Channel().ReservesCar() {
			car, err := tx.repos.Cars().FindByIDForUpdate(ctx, bk.CarID())
			if err != nil {
				return err
			}
			if err := updateCar(ctx, tx, car, car.ReleaseIfReserved(tx.now)); err != nil {
				return err
			}
		}

		if err := tx.repos.Bookings().Delete(ctx, bk.ID()); err != nil {
			return err
		}
		return tx.audit(ctx, audit.ActionDeleteBooking, fmt.Sprintf("deleted booking %s (%s)", bk.ID(), bk.Status()))
	})
}

// GetBooking retrieves a single booking by ID.
func (s *RentalService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.uow.Repositories().Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings returns bookings matching the query, newest first.
func (s *RentalService) ListBookings(ctx context.Context, q BookingQuery, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	filter := bookingDomain.Filter{CustomerID: q.CustomerID, CarID: q.CarID}
	if q.Status != "" {
		status, err := bookingDomain.ParseBookingStatus(q.Status)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		filter.Status = &status
	}

	page, limit = normalizePage(page, limit)
	bookings, total, err := s.uow.Repositories().Bookings().List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(mapSlice(bookings, toBookingDTO), total, page, limit)
	return &result, nil
}

// ListMyBookings returns the calling customer's bookings.
func (s *RentalService) ListMyBookings(ctx context.Context, actor Actor, status string, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	c, err := s.uow.Repositories().Customers().FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	id := c.ID()
	return s.ListBookings(ctx, BookingQuery{Status: status, CustomerID: &id}, page, limit)
}
