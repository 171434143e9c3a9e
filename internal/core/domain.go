package core

import (
	"fmt"
	"strings"
	"time"
)

type (
	// EmissionFactor converts a physical quantity into kg CO2e.
	EmissionFactor struct {
		Category string
		Subtype  string
		Factor   float64
		Unit     string // informational only
	}

	// Activity is a single logged real-world event.
	Activity struct {
		ID         int64 // 0 until persisted
		Category   string
		Subtype    string
		Quantity   float64
		Footprint  float64 // kg CO2e, fixed at creation
		OccurredAt time.Time
	}

	// Day is a civil calendar date with no time-of-day or zone.
	Day struct {
		Year  int
		Month time.Month
		Day   int
	}
)

// DayOf returns the calendar day t falls on in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// NewDay creates a Day from year, month, day
func NewDay(year int, month time.Month, day int) Day {
	return Day{Year: year, Month: month, Day: day}
}

// Start returns midnight of the day in loc.
func (d Day) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return DayOf(t, time.UTC)
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Validate checks the caller-supplied fields of a new or replaced activity.
// now bounds OccurredAt; the footprint is not checked since it is derived.
func (a Activity) Validate(now time.Time) error {
	if strings.TrimSpace(a.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if strings.TrimSpace(a.Subtype) == "" {
		return &ValidationError{Field: "subtype", Err: ErrEmptySubtype}
	}
	// NaN fails this comparison too
	if !(a.Quantity > 0) {
		return &ValidationError{Field: "quantity", Err: ErrInvalidQuantity}
	}
	if a.OccurredAt.IsZero() {
		return &ValidationError{Field: "occurred_at", Err: ErrZeroTime}
	}
	if a.OccurredAt.After(now) {
		return &ValidationError{Field: "occurred_at", Err: ErrFutureTime}
	}
	return nil
}
