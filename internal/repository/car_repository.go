package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	carDomain "github.com/thuexe/service-rental/internal/domain/car"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

// CarModel is the GORM model for the cars table.
type CarModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name         string          `gorm:"type:varchar(100);not null"`
	LicensePlate string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	Brand        string          `gorm:"type:varchar(50)"`
	Model        string          `gorm:"type:varchar(50)"`
	Year         int             `gorm:"type:int"`
	Seats        int             `gorm:"type:int"`
	FuelType     string          `gorm:"type:varchar(20)"`
	PricePerDay  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	CreatedAt    time.Time       `gorm:"type:timestamptz;not null"`
	UpdatedAt    time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (CarModel) TableName() string { return "cars" }

// GormCarRepository is the GORM-based implementation of car.Repository.
type GormCarRepository struct {
	db *gorm.DB
}

// NewGormCarRepository creates a new GormCarRepository.
func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

// FindByID retrieves a car by its unique identifier.
func (r *GormCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*carDomain.Car, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a car and holds its row lock until the transaction ends.
func (r *GormCarRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*carDomain.Car, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormCarRepository) find(db *gorm.DB, id uuid.UUID) (*carDomain.Car, error) {
	var model CarModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Car", id.String())
		}
		return nil, fmt.Errorf("failed to find car by ID: %w", err)
	}
	return toDomainCar(&model)
}

// List retrieves cars matching the filter, ordered by name.
func (r *GormCarRepository) List(ctx context.Context, filter carDomain.Filter, page, limit int) ([]*carDomain.Car, int64, error) {
	query := r.db.WithContext(ctx).Model(&CarModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cars: %w", err)
	}

	var models []CarModel
	if err := query.Order("name ASC").Scopes(paginate(page, limit)).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list cars: %w", err)
	}

	cars := make([]*carDomain.Car, len(models))
	for i := range models {
		c, err := toDomainCar(&models[i])
		if err != nil {
			return nil, 0, err
		}
		cars[i] = c
	}
	return cars, total, nil
}

// Save persists a new car.
func (r *GormCarRepository) Save(ctx context.Context, c *carDomain.Car) error {
	if err := r.db.WithContext(ctx).Create(toCarModel(c)).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.NewConflictError("license plate " + c.LicensePlate() + " already exists")
		}
		return fmt.Errorf("failed to save car: %w", err)
	}
	return nil
}

// UpdateStatus writes the car's status. Callers hold the row lock.
func (r *GormCarRepository) UpdateStatus(ctx context.Context, c *carDomain.Car) error {
	result := r.db.WithContext(ctx).
		Model(&CarModel{}).
		Where("id = ?", c.ID()).
		Updates(map[string]interface{}{
			"status":     string(c.Status()),
			"updated_at": c.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update car status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Car", c.ID().String())
	}
	return nil
}

// --- Conversion Helpers ---

func toCarModel(c *carDomain.Car) *CarModel {
	return &CarModel{
		ID:           c.ID(),
		Name:         c.Name(),
		LicensePlate: c.LicensePlate(),
		Brand:        c.Brand(),
		Model:        c.Model(),
		Year:         c.Year(),
		Seats:        c.Seats(),
		FuelType:     c.FuelType(),
		PricePerDay:  c.PricePerDay(),
		Status:       string(c.Status()),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}
}

func toDomainCar(m *CarModel) (*carDomain.Car, error) {
	status, err := carDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return carDomain.Reconstruct(
		m.ID, m.Name, m.LicensePlate, m.Brand, m.Model,
		m.Year, m.Seats, m.FuelType, m.PricePerDay,
		status, m.CreatedAt, m.UpdatedAt,
	), nil
}
