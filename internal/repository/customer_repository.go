package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	customerDomain "github.com/thuexe/service-rental/internal/domain/customer"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID         *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	FullName       string          `gorm:"type:varchar(100);not null"`
	Phone          string          `gorm:"type:varchar(20)"`
	Email          string          `gorm:"type:varchar(100)"`
	IdentityNumber string          `gorm:"type:varchar(20)"`
	Address        string          `gorm:"type:text"`
	Occupation     string          `gorm:"type:varchar(100)"`
	DateOfBirth    *datatypes.Date `gorm:"type:date"`
	Status         string          `gorm:"type:varchar(20);not null;default:'active'"`
	Version        int64           `gorm:"not null;default:1"`
	CreatedAt      time.Time       `gorm:"type:timestamptz;not null"`
	UpdatedAt      time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (CustomerModel) TableName() string { return "customers" }

// GormCustomerRepository implements customer.Repository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", id.String())
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}
	return toCustomerDomain(&model)
}

func (r *GormCustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", "user "+userID.String())
		}
		return nil, fmt.Errorf("failed to find customer by user ID: %w", err)
	}
	return toCustomerDomain(&model)
}

func (r *GormCustomerRepository) List(ctx context.Context, page, limit int) ([]*customerDomain.Customer, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&CustomerModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	var models []CustomerModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Scopes(paginate(page, limit)).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	customers := make([]*customerDomain.Customer, len(models))
	for i := range models {
		c, err := toCustomerDomain(&models[i])
		if err != nil {
			return nil, 0, err
		}
		customers[i] = c
	}
	return customers, total, nil
}

func (r *GormCustomerRepository) Save(ctx context.Context, c *customerDomain.Customer) error {
	if err := r.db.WithContext(ctx).Create(toCustomerModel(c)).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.NewConflictError("a customer profile already exists for this user")
		}
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

// Update writes the profile when the stored version is the one the aggregate was loaded at.
func (r *GormCustomerRepository) Update(ctx context.Context, c *customerDomain.Customer) error {
	model := toCustomerModel(c)
	previousVersion := c.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&CustomerModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(map[string]interface{}{
			"user_id":         model.UserID,
			"full_name":       model.FullName,
			"phone":           model.Phone,
			"email":           model.Email,
			"identity_number": model.IdentityNumber,
			"address":         model.Address,
			"occupation":      model.Occupation,
			"date_of_birth":   model.DateOfBirth,
			"status":          model.Status,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return domain.NewConflictError("a customer profile already exists for this user")
		}
		return fmt.Errorf("failed to update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return staleVersion("customer")
	}
	return nil
}

// --- Conversion Helpers ---

func toCustomerModel(c *customerDomain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:             c.ID(),
		UserID:         c.UserID(),
		FullName:       c.FullName(),
		Phone:          c.Phone(),
		Email:          c.Email(),
		IdentityNumber: c.IdentityNumber(),
		Address:        c.Address(),
		Occupation:     c.Occupation(),
		DateOfBirth:    toDatePtr(c.DateOfBirth()),
		Status:         string(c.Status()),
		Version:        c.Version(),
		CreatedAt:      c.CreatedAt(),
		UpdatedAt:      c.UpdatedAt(),
	}
}

func toCustomerDomain(m *CustomerModel) (*customerDomain.Customer, error) {
	status, err := customerDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return customerDomain.Reconstruct(
		m.ID, m.UserID,
		m.FullName, m.Phone, m.Email, m.IdentityNumber, m.Address, m.Occupation,
		fromDatePtr(m.DateOfBirth),
		status, m.Version, m.CreatedAt, m.UpdatedAt,
	), nil
}
