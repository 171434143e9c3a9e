package storage

import (
	"context"
	"math"
	"time"

	"footprint/internal/core"
)

// ActivityStore is the durable collection of activities. Every list is
// ordered by OccurredAt descending (ties by id descending) and every range
// is inclusive at both ends. Failures of the engine surface as
// *core.StoreError; empty results are never errors.
type ActivityStore interface {
	Create(ctx context.Context, a core.Activity) (int64, error)
	// GetByID returns nil, nil when id does not exist.
	GetByID(ctx context.Context, id int64) (*core.Activity, error)
	ListAll(ctx context.Context) ([]core.Activity, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]core.Activity, error)
	ListByCategory(ctx context.Context, category string) ([]core.Activity, error)
	// Update replaces the whole record and returns 0 when id does not exist.
	Update(ctx context.Context, a core.Activity) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)

	SumFootprint(ctx context.Context, r Range) (float64, error)
	// SumFootprintByCategory omits categories with no records in r.
	SumFootprintByCategory(ctx context.Context, r Range) (map[string]float64, error)
	// DailyFootprint groups by civil day in the store's location. Days
	// whose footprint sums to zero are omitted.
	DailyFootprint(ctx context.Context, r Range) (map[core.Day]float64, error)

	Close() error
}

// Range bounds a query by OccurredAt. A zero Start or End is unbounded.
type Range struct {
	Start time.Time
	End   time.Time
}

// All is the unbounded range.
func All() Range { return Range{} }

// Between is the inclusive range [start, end].
func Between(start, end time.Time) Range { return Range{Start: start, End: end} }

// Contains reports whether t lies in the range at millisecond precision,
// matching what the stores persist.
func (r Range) Contains(t time.Time) bool {
	lo, hi := r.millis()
	ms := t.UnixMilli()
	return ms >= lo && ms <= hi
}

func (r Range) millis() (int64, int64) {
	lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
	if !r.Start.IsZero() {
		lo = r.Start.UnixMilli()
	}
	if !r.End.IsZero() {
		hi = r.End.UnixMilli()
	}
	return lo, hi
}

// Point is the footprint of one activity at one instant.
type Point struct {
	At        time.Time
	Footprint float64
}

// GroupByDay sums points per civil day in loc and drops days that sum to zero.
func GroupByDay(points []Point, loc *time.Location) map[core.Day]float64 {
	out := make(map[core.Day]float64)
	for _, p := range points {
		out[core.DayOf(p.At, loc)] += p.Footprint
	}
	for d, v := range out {
		if v == 0 {
			delete(out, d)
		}
	}
	return out
}

// Normalize truncates t to the millisecond precision the stores keep.
func Normalize(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(t.UnixMilli()).In(loc)
}
