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

	contractDomain "github.com/thuexe/service-rental/internal/domain/contract"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

// ContractModel is the GORM model for the contracts table.
type ContractModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ContractNumber string          `gorm:"uniqueIndex;not null;size:20"`
	BookingID      *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	CarID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	StartDate      datatypes.Date  `gorm:"type:date;not null"`
	EndDate        datatypes.Date  `gorm:"type:date;not null"`
	RentalDays     int             `gorm:"not null"`
	PricePerDay    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Deposit        decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Terms          string          `gorm:"type:text"`
	Notes          string          `gorm:"type:text"`
	Status         string          `gorm:"not null;size:20;index"`
	Version        int64           `gorm:"not null;default:1"`
	CreatedAt      time.Time       `gorm:"not null"`
	SignedAt       *time.Time      `gorm:""`
	UpdatedAt      *time.Time      `gorm:""`
}

// TableName returns the table name for the GORM model.
func (ContractModel) TableName() string { return "contracts" }

// GormContractRepository is the GORM-based implementation of contract.Repository.
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository.
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID retrieves a contract by its unique identifier.
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contractDomain.Contract, error) {
	return r.findOne(ctx, "id = ?", id, id.String())
}

// FindByNumber retrieves a contract by its HD number.
func (r *GormContractRepository) FindByNumber(ctx context.Context, number string) (*contractDomain.Contract, error) {
	return r.findOne(ctx, "contract_number = ?", number, number)
}

func (r *GormContractRepository) findOne(ctx context.Context, cond string, arg interface{}, label string) (*contractDomain.Contract, error) {
	var model ContractModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Contract", label)
		}
		return nil, fmt.Errorf("failed to find contract: %w", err)
	}
	return toContractDomain(&model)
}

// FindActiveByBookingID returns the active contract created from the booking, or nil.
func (r *GormContractRepository) FindActiveByBookingID(ctx context.Context, bookingID uuid.UUID) (*contractDomain.Contract, error) {
	var models []ContractModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, string(contractDomain.StatusActive)).
		Limit(1).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find contract by booking: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	return toContractDomain(&models[0])
}

// List retrieves contracts matching the filter, highest number first.
func (r *GormContractRepository) List(ctx context.Context, filter contractDomain.Filter, page, limit int) ([]*contractDomain.Contract, int64, error) {
	query := r.db.WithContext(ctx).Model(&ContractModel{})
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
		return nil, 0, fmt.Errorf("failed to count contracts: %w", err)
	}

	var models []ContractModel
	if err := query.Order("contract_number DESC").Scopes(paginate(page, limit)).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}

	contracts := make([]*contractDomain.Contract, len(models))
	for i := range models {
		c, err := toContractDomain(&models[i])
		if err != nil {
			return nil, 0, err
		}
		contracts[i] = c
	}
	return contracts, total, nil
}

// HasActiveOverlap counts active contracts on the car whose dates touch or cross the period.
func (r *GormContractRepository) HasActiveOverlap(ctx context.Context, carID uuid.UUID, period rental.Period) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ContractModel{}).
		Where("car_id = ? AND status = ? AND start_date <= ? AND end_date >= ?",
			carID, string(contractDomain.StatusActive), toDate(period.End), toDate(period.Start)).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check contract overlap: %w", err)
	}
	return count > 0, nil
}

// NextNumberSequence advances the contract counter.
func (r *GormContractRepository) NextNumberSequence(ctx context.Context) (int64, error) {
	return nextSequence(ctx, r.db, counterContract)
}

// CountByStatus returns the number of contracts per status.
func (r *GormContractRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(r.db.WithContext(ctx).Model(&ContractModel{}))
}

// Save persists a new contract. A number collision is retryable.
func (r *GormContractRepository) Save(ctx context.Context, c *contractDomain.Contract) error {
	if err := r.db.WithContext(ctx).Create(toContractModel(c)).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.NewRetryableError("contract number "+c.ContractNumber()+" already taken", err)
		}
		return fmt.Errorf("failed to save contract: %w", err)
	}
	return nil
}

// Update persists status changes using optimistic locking.
func (r *GormContractRepository) Update(ctx context.Context, c *contractDomain.Contract) error {
	model := toContractModel(c)
	previousVersion := c.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&ContractModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"notes":      model.Notes,
			"signed_at":  model.SignedAt,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update contract: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return staleVersion("contract")
	}
	return nil
}

// Delete removes a contract row.
func (r *GormContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ContractModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete contract: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Contract", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toContractModel(c *contractDomain.Contract) *ContractModel {
	return &ContractModel{
		ID:             c.ID(),
		ContractNumber: c.ContractNumber(),
		BookingID:      c.BookingID(),
		CustomerID:     c.CustomerID(),
		CarID:          c.CarID(),
		StartDate:      toDate(c.Period().Start),
		EndDate:        toDate(c.Period().End),
		RentalDays:     c.RentalDays(),
		PricePerDay:    c.PricePerDay(),
		TotalPrice:     c.TotalPrice(),
		Deposit:        c.Deposit(),
		Terms:          c.Terms(),
		Notes:          c.Notes(),
		Status:         string(c.Status()),
		Version:        c.Version(),
		CreatedAt:      c.CreatedAt(),
		SignedAt:       c.SignedAt(),
		UpdatedAt:      c.UpdatedAt(),
	}
}

func toContractDomain(m *ContractModel) (*contractDomain.Contract, error) {
	status, err := contractDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return contractDomain.Reconstruct(
		m.ID, m.ContractNumber, m.BookingID, m.CustomerID, m.CarID,
		rental.Period{Start: fromDate(m.StartDate), End: fromDate(m.EndDate)},
		m.RentalDays, m.PricePerDay, m.TotalPrice, m.Deposit,
		m.Terms, m.Notes, status, m.Version,
		m.CreatedAt, m.SignedAt, m.UpdatedAt,
	), nil
}
