package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Counter names stored in rental_counters.
const (
	counterContract = "contract"
	counterInvoice  = "invoice"
)

// CounterModel is the GORM model for the rental_counters table.
type CounterModel struct {
	Name  string `gorm:"type:varchar(30);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for the GORM model.
func (CounterModel) TableName() string { return "rental_counters" }

const nextSequenceSQL = `INSERT INTO rental_counters (name, value) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET value = rental_counters.value + 1
RETURNING value`

// nextSequence bumps the named counter in a single statement so concurrent
// callers never observe the same value.
func nextSequence(ctx context.Context, db *gorm.DB, name string) (int64, error) {
	var value int64
	if err := db.WithContext(ctx).Raw(nextSequenceSQL, name).Scan(&value).Error; err != nil {
		return 0, fmt.Errorf("failed to advance %s counter: %w", name, err)
	}
	return value, nil
}
