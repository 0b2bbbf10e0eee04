package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	invoiceDomain "github.com/thuexe/service-rental/internal/domain/invoice"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

// InvoiceModel is the GORM model for the invoices table.
type InvoiceModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceNumber string          `gorm:"uniqueIndex;not null;size:20"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ContractID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	InvoiceType   string          `gorm:"not null;size:20"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Status        string          `gorm:"not null;size:20"`
	PaymentDate   *time.Time      `gorm:""`
	Notes         string          `gorm:"type:text"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     *time.Time      `gorm:""`
}

// TableName returns the table name for the GORM model.
func (InvoiceModel) TableName() string { return "invoices" }

// GormInvoiceRepository is the GORM-based implementation of invoice.Repository.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository.
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) FindByContractID(ctx context.Context, contractID uuid.UUID) ([]*invoiceDomain.Invoice, error) {
	var models []InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find invoices: %w", err)
	}
	invoices := make([]*invoiceDomain.Invoice, len(models))
	for i := range models {
		invoices[i] = toInvoiceDomain(&models[i])
	}
	return invoices, nil
}

func (r *GormInvoiceRepository) NextNumberSequence(ctx context.Context) (int64, error) {
	return nextSequence(ctx, r.db, counterInvoice)
}

func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoiceDomain.Invoice) error {
	if err := r.db.WithContext(ctx).Create(toInvoiceModel(inv)).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.NewRetryableError("invoice number "+inv.InvoiceNumber()+" already taken", err)
		}
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

func (r *GormInvoiceRepository) Update(ctx context.Context, inv *invoiceDomain.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(&InvoiceModel{}).
		Where("id = ?", inv.ID()).
		Updates(map[string]interface{}{
			"status":       string(inv.Status()),
			"payment_date": inv.PaymentDate(),
			"updated_at":   inv.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Invoice", inv.ID().String())
	}
	return nil
}

func (r *GormInvoiceRepository) DeleteByContractID(ctx context.Context, contractID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).Delete(&InvoiceModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete invoices: %w", err)
	}
	return nil
}

func toInvoiceModel(inv *invoiceDomain.Invoice) *InvoiceModel {
	return &InvoiceModel{
		ID:            inv.ID(),
		InvoiceNumber: inv.InvoiceNumber(),
		CustomerID:    inv.CustomerID(),
		ContractID:    inv.ContractID(),
		InvoiceType:   string(inv.Type()),
		Amount:        inv.Amount(),
		Status:        string(inv.Status()),
		PaymentDate:   inv.PaymentDate(),
		Notes:         inv.Notes(),
		CreatedBy:     inv.CreatedBy(),
		CreatedAt:     inv.CreatedAt(),
		UpdatedAt:     inv.UpdatedAt(),
	}
}

func toInvoiceDomain(m *InvoiceModel) *invoiceDomain.Invoice {
	return invoiceDomain.Reconstruct(
		m.ID, m.InvoiceNumber, m.CustomerID, m.ContractID,
		invoiceDomain.Type(m.InvoiceType), m.Amount,
		invoiceDomain.Status(m.Status), m.PaymentDate,
		m.Notes, m.CreatedBy, m.CreatedAt, m.UpdatedAt,
	)
}
