package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thuexe/service-rental/internal/domain/audit"
)

// AuditLogModel is the GORM model for the audit_logs table.
type AuditLogModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Action      string     `gorm:"type:varchar(50);not null;index"`
	Description string     `gorm:"type:text"`
	ActorID     *uuid.UUID `gorm:"type:uuid"`
	ActorRole   string     `gorm:"type:varchar(20)"`
	IPAddress   string     `gorm:"type:varchar(45)"`
	Timestamp   time.Time  `gorm:"type:timestamptz;not null;index"`
}

func (AuditLogModel) TableName() string { return "audit_logs" }

// GormAuditRepository appends to and pages through the audit log.
type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Save(ctx context.Context, e *audit.Entry) error {
	model := AuditLogModel(*e)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

func (r *GormAuditRepository) List(ctx context.Context, page, limit int) ([]*audit.Entry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&AuditLogModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	var models []AuditLogModel
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Scopes(paginate(page, limit)).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	entries := make([]*audit.Entry, len(models))
	for i := range models {
		e := audit.Entry(models[i])
		entries[i] = &e
	}
	return entries, total, nil
}
