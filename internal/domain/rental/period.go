package rental

import (
	"time"

	"github.com/thuexe/service-rental/internal/platform/domain"
)

// DateLayout is the wire format of rental dates.
const DateLayout = "2006-01-02"

// Period is a rental date range. Both ends are calendar dates at UTC midnight.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod truncates start and end to calendar dates and requires end after start.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: DateOf(start), End: DateOf(end)}
	if !p.End.After(p.Start) {
		return Period{}, domain.NewValidationError("end date must be after start date")
	}
	return p, nil
}

// ParsePeriod parses two YYYY-MM-DD strings into a Period.
func ParsePeriod(start, end string) (Period, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Period{}, domain.NewValidationError("start_date must be YYYY-MM-DD")
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Period{}, domain.NewValidationError("end_date must be YYYY-MM-DD")
	}
	return NewPeriod(s, e)
}

// DateOf returns t's calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Days is the whole number of days between start and end.
func (p Period) Days() int {
	// Duration saturates near 292 years, Unix seconds do not.
	return int((p.End.Unix() - p.Start.Unix()) / 86400)
}

// Overlaps reports whether p and o share at least one date. Touching endpoints overlap.
func (p Period) Overlaps(o Period) bool {
	return !p.Start.After(o.End) && !o.Start.After(p.End)
}

// StartsBefore reports whether the period starts before the given day.
func (p Period) StartsBefore(day time.Time) bool {
	return p.Start.Before(DateOf(day))
}
