package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	notificationDomain "github.com/thuexe/service-rental/internal/domain/notification"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

// NotificationModel is the GORM model for the notifications table.
type NotificationModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CarID      *uuid.UUID `gorm:"type:uuid"`
	Type       string     `gorm:"type:varchar(30);not null"`
	Title      string     `gorm:"type:varchar(200);not null"`
	Content    string     `gorm:"type:text;not null"`
	Status     string     `gorm:"type:varchar(20);not null;default:'unread'"`
	CreatedAt  time.Time  `gorm:"type:timestamptz;not null"`
	ReadAt     *time.Time `gorm:"type:timestamptz"`
}

func (NotificationModel) TableName() string { return "notifications" }

// GormNotificationRepository implements notification.Repository using GORM.
type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Save(ctx context.Context, n *notificationDomain.Notification) error {
	if err := r.db.WithContext(ctx).Create(toNotificationModel(n)).Error; err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notificationDomain.Notification, error) {
	var model NotificationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Notification", id.String())
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	return toNotificationDomain(&model), nil
}

func (r *GormNotificationRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*notificationDomain.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&NotificationModel{}).
		Where("customer_id = ? AND status <> ?", customerID, string(notificationDomain.StatusDeleted))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var models []NotificationModel
	if err := query.Order("created_at DESC").Scopes(paginate(page, limit)).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	out := make([]*notificationDomain.Notification, len(models))
	for i := range models {
		out[i] = toNotificationDomain(&models[i])
	}
	return out, total, nil
}

func (r *GormNotificationRepository) Update(ctx context.Context, n *notificationDomain.Notification) error {
	return r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ?", n.ID()).
		Updates(map[string]interface{}{
			"status":  string(n.Status()),
			"read_at": n.ReadAt(),
		}).Error
}

func toNotificationModel(n *notificationDomain.Notification) *NotificationModel {
	return &NotificationModel{
		ID:         n.ID(),
		CustomerID: n.CustomerID(),
		CarID:      n.CarID(),
		Type:       string(n.Type()),
		Title:      n.Title(),
		Content:    n.Content(),
		Status:     string(n.Status()),
		CreatedAt:  n.CreatedAt(),
		ReadAt:     n.ReadAt(),
	}
}

func toNotificationDomain(m *NotificationModel) *notificationDomain.Notification {
	return notificationDomain.Reconstruct(
		m.ID, m.CustomerID, m.CarID,
		notificationDomain.Type(m.Type),
		m.Title, m.Content,
		notificationDomain.Status(m.Status),
		m.CreatedAt, m.ReadAt,
	)
}
