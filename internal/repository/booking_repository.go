package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	bookingDomain "github.com/thuexe/service-rental/internal/domain/booking"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	CarID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	StartDate   datatypes.Date  `gorm:"type:date;not null"`
	EndDate     datatypes.Date  `gorm:"type:date;not null"`
	Channel     string          `gorm:"not null;size:20"`
	Status      string          `gorm:"not null;size:20;index"`
	RentalDays  int             `gorm:"not null"`
	PricePerDay decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Notes       string          `gorm:"size:500"`
	Version     int64           `gorm:"not null;default:1"`
	CreatedAt   time.Time       `gorm:"not null;index"`
	UpdatedAt   *time.Time      `gorm:""`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toBookingDomain(&model)
}

// List retrieves bookings matching the filter, newest first.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.Filter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.CarID != nil {
		query = query.Where("car_id = ?", *filter.CarID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := query.Order("created_at DESC").Scopes(paginate(page, limit)).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toBookingDomains(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindStalePending retrieves pending bookings starting before the given day, earliest first.
func (r *GormBookingRepository) FindStalePending(ctx context.Context, before time.Time, limit int) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND start_date < ?", string(bookingDomain.StatusPending), toDate(before)).
		Order("start_date ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stale bookings: %w", err)
	}
	return toBookingDomains(models)
}

// CountByStatus returns the number of bookings per status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(r.db.WithContext(ctx).Model(&BookingModel{}))
}

// Save persists a new booking to the database.
func (r *GormBookingRepository) Save(ctx context.Context, booking *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(booking)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking using optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, booking *bookingDomain.Booking) error {
	model := toBookingModel(booking)
	previousVersion := booking.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"notes":      model.Notes,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return staleVersion("booking")
	}
	return nil
}

// Delete removes a booking row.
func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", id.String())
	}
	return nil
}

type statusCount struct {
	Status string
	Count  int64
}

func countByStatus(query *gorm.DB) (map[string]int64, error) {
	var rows []statusCount
	if err := query.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:          b.ID(),
		CustomerID:  b.CustomerID(),
		CarID:       b.CarID(),
		StartDate:   toDate(b.Period().Start),
		EndDate:     toDate(b.Period().End),
		Channel:     string(b.Channel()),
		Status:      string(b.Status()),
		RentalDays:  b.RentalDays(),
		PricePerDay: b.PricePerDay(),
		TotalPrice:  b.TotalPrice(),
		Notes:       b.Notes(),
		Version:     b.Version(),
		CreatedAt:   b.CreatedAt(),
		UpdatedAt:   b.UpdatedAt(),
	}
}

func toBookingDomain(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	channel, err := bookingDomain.ParseChannel(m.Channel)
	if err != nil {
		return nil, err
	}
	return bookingDomain.ReconstructBooking(
		m.ID, m.CustomerID, m.CarID,
		rental.Period{Start: fromDate(m.StartDate), End: fromDate(m.EndDate)},
		channel, status,
		m.RentalDays, m.PricePerDay, m.TotalPrice,
		m.Notes, m.Version, m.CreatedAt, m.UpdatedAt,
	), nil
}

func toBookingDomains(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		b, err := toBookingDomain(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = b
	}
	return bookings, nil
}
