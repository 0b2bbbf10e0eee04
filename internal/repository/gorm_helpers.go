package repository

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func staleVersion(entity string) error {
	return domain.NewRetryableError(entity+" was modified by another transaction", nil)
}

func toDate(t time.Time) datatypes.Date {
	return datatypes.Date(rental.DateOf(t))
}

func fromDate(d datatypes.Date) time.Time {
	return rental.DateOf(time.Time(d))
}

func toDatePtr(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := toDate(*t)
	return &d
}

func fromDatePtr(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := fromDate(*d)
	return &t
}

func paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(domain.Offset(page, limit)).Limit(limit)
	}
}
