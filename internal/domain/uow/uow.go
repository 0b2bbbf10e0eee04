package uow

import (
	"context"

	"github.com/thuexe/service-rental/internal/domain/audit"
	"github.com/thuexe/service-rental/internal/domain/booking"
	"github.com/thuexe/service-rental/internal/domain/car"
	"github.com/thuexe/service-rental/internal/domain/contract"
	"github.com/thuexe/service-rental/internal/domain/customer"
	"github.com/thuexe/service-rental/internal/domain/invoice"
	"github.com/thuexe/service-rental/internal/domain/notification"
)

// Repositories groups every repository bound to the same transaction.
type Repositories interface {
	Cars() car.Repository
	Customers() customer.Repository
	Bookings() booking.BookingRepository
	Contracts() contract.Repository
	Invoices() invoice.Repository
	Notifications() notification.Repository
	AuditLog() audit.Repository
}

// UnitOfWork runs fn inside one transaction. Returning an error from fn rolls back every write.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	// Repositories returns non-transactional repositories for reads.
	Repositories() Repositories
}
