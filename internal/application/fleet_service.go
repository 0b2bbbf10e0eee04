package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/thuexe/service-rental/internal/domain/audit"
	"github.com/thuexe/service-rental/internal/domain/availability"
	carDomain "github.com/thuexe/service-rental/internal/domain/car"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

// CreateCarRequest holds the data needed to register a car.
type CreateCarRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	LicensePlate string          `json:"license_plate" binding:"required,max=20"`
	Brand        string          `json:"brand" binding:"max=50"`
	Model        string          `json:"model" binding:"max=50"`
	Year         int             `json:"year" binding:"omitempty,min=1900,max=2100"`
	Seats        int             `json:"seats" binding:"omitempty,min=1,max=60"`
	FuelType     string          `json:"fuel_type" binding:"max=20"`
	PricePerDay  decimal.Decimal `json:"price_per_day"`
	Status       string          `json:"status" binding:"omitempty,oneof=available maintenance out_of_service"`
}

// FleetService exposes the fleet read model and car registration.
type FleetService struct {
	*core
}

// CreateCar registers a car. Only admins reach this through the router.
func (s *FleetService) CreateCar(ctx context.Context, actor Actor, req CreateCarRequest) (*CarDTO, error) {
	var status carDomain.Status
	if req.Status != "" {
		parsed, err := carDomain.ParseStatus(req.Status)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		status = parsed
	}

	var result CarDTO
	err := s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		c, err := carDomain.NewCar(req.Name, req.LicensePlate, req.Brand, req.Model,
			req.Year, req.Seats, req.FuelType, req.PricePerDay, status, tx.now)
		if err != nil {
			return err
		}
		if err := tx.repos.Cars().Save(ctx, c); err != nil {
			return err
		}
		if err := tx.audit(ctx, audit.ActionCreateCar, fmt.Sprintf("registered car %s", c.LicensePlate())); err != nil {
			return err
		}
		result = toCarDTO(c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("car registered", zap.String("car_id", result.ID.String()), zap.String("plate", result.LicensePlate))
	return &result, nil
}

// ListCars returns cars, optionally filtered by status.
func (s *FleetService) ListCars(ctx context.Context, status string, page, limit int) (*domain.PaginatedResult[CarDTO], error) {
	var filter carDomain.Filter
	if status != "" {
		parsed, err := carDomain.ParseStatus(status)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		filter.Status = &parsed
	}

	page, limit = normalizePage(page, limit)
	cars, total, err := s.uow.Repositories().Cars().List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(mapSlice(cars, toCarDTO), total, page, limit)
	return &result, nil
}

// GetCar retrieves a single car by ID.
func (s *FleetService) GetCar(ctx context.Context, id uuid.UUID) (*CarDTO, error) {
	c, err := s.uow.Repositories().Cars().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toCarDTO(c)
	return &result, nil
}

// CheckAvailability answers whether the car can be booked for [start, end].
func (s *FleetService) CheckAvailability(ctx context.Context, carID uuid.UUID, start, end string) (*AvailabilityDTO, error) {
	period, err := rental.ParsePeriod(start, end)
	if err != nil {
		return nil, err
	}

	repos := s.uow.Repositories()
	available, err := availability.NewChecker(repos.Cars(), repos.Contracts()).IsAvailable(ctx, carID, period)
	if err != nil {
		return nil, err
	}
	return &AvailabilityDTO{
		CarID:     carID,
		StartDate: formatDate(period.Start),
		EndDate:   formatDate(period.End),
		Available: available,
	}, nil
}
