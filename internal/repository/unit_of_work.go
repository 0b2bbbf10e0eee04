package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/thuexe/service-rental/internal/domain/audit"
	"github.com/thuexe/service-rental/internal/domain/booking"
	"github.com/thuexe/service-rental/internal/domain/car"
	"github.com/thuexe/service-rental/internal/domain/contract"
	"github.com/thuexe/service-rental/internal/domain/customer"
	"github.com/thuexe/service-rental/internal/domain/invoice"
	"github.com/thuexe/service-rental/internal/domain/notification"
	"github.com/thuexe/service-rental/internal/domain/uow"
)

// GormUnitOfWork runs repository work inside a database transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a unit of work over db.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do commits when fn returns nil and rolls back otherwise.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, gormRepositories{db: tx})
	})
}

// Repositories returns non-transactional repositories for reads.
func (u *GormUnitOfWork) Repositories() uow.Repositories {
	return gormRepositories{db: u.db}
}

type gormRepositories struct {
	db *gorm.DB
}

func (r gormRepositories) Cars() car.Repository { return NewGormCarRepository(r.db) }
func (r gormRepositories) Customers() customer.Repository {
	return NewGormCustomerRepository(r.db)
}
func (r gormRepositories) Bookings() booking.BookingRepository {
	return NewGormBookingRepository(r.db)
}
func (r gormRepositories) Contracts() contract.Repository {
	return NewGormContractRepository(r.db)
}
func (r gormRepositories) Invoices() invoice.Repository { return NewGormInvoiceRepository(r.db) }
func (r gormRepositories) Notifications() notification.Repository {
	return NewGormNotificationRepository(r.db)
}
func (r gormRepositories) AuditLog() audit.Repository { return NewGormAuditRepository(r.db) }

// AllModels lists every GORM model for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&CarModel{}, &CustomerModel{}, &BookingModel{}, &ContractModel{},
		&InvoiceModel{}, &NotificationModel{}, &AuditLogModel{}, &CounterModel{},
	}
}
