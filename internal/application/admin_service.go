package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/domain/uow"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

// AdminService serves the admin dashboard.
type AdminService struct {
	*core
}

// Stats returns booking and contract counts by status.
func (s *AdminService) Stats(ctx context.Context) (*StatsDTO, error) {
	repos := s.uow.Repositories()
	bookings, err := repos.Bookings().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	contracts, err := repos.Contracts().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &StatsDTO{
		TotalBookings:     sum(bookings),
		BookingsByStatus:  bookings,
		TotalContracts:    sum(contracts),
		ContractsByStatus: contracts,
		DepositRate:       s.calc.DepositRate(),
	}, nil
}

// ListAuditLogs returns a page of the audit log, newest first.
func (s *AdminService) ListAuditLogs(ctx context.Context, page, limit int) (*domain.PaginatedResult[AuditEntryDTO], error) {
	page, limit = normalizePage(page, limit)
	entries, total, err := s.uow.Repositories().AuditLog().List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(mapSlice(entries, toAuditEntryDTO), total, page, limit)
	return &result, nil
}

func sum(counts map[string]int64) int64 {
	var total int64
	for _, n := range counts {
		total += n
	}
	return total
}

// Services groups the application services over one unit of work.
type Services struct {
	Fleet     *FleetService
	Customers *CustomerService
	Rentals   *RentalService
	Admin     *AdminService
}

// NewServices wires every application service to the same unit of work, calculator,
// publisher, and clock.
func NewServices(u uow.UnitOfWork, calc *rental.Calculator, logger *zap.Logger, opts ...Option) *Services {
	c := newCore(u, calc, logger, opts...)
	return &Services{
		Fleet:     &FleetService{core: c},
		Customers: &CustomerService{core: c},
		Rentals:   &RentalService{core: c},
		Admin:     &AdminService{core: c},
	}
}
