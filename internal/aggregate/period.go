// Package aggregate turns store query results into dashboard shapes.
//
// Named periods (week, month) follow the local calendar: a week starts on
// the most recent Monday at midnight, a month on its first day at midnight.
// Chart windows are rolling day counts and are unrelated to periods.
package aggregate

import (
	"fmt"
	"time"

	"footprint/internal/core"
	"footprint/internal/storage"
)

// Period names a calendar window ending now.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts all, week and month; empty means all.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodAll, PeriodWeek, PeriodMonth:
		return p, nil
	case "":
		return PeriodAll, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// PeriodStart returns midnight of the period's first day in loc, or the
// zero time for PeriodAll.
func PeriodStart(p Period, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	y, m, d := local.Date()

	switch p {
	case PeriodWeek:
		// Monday is day 0 of the ISO week
		back := (int(local.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, loc)
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	default:
		return time.Time{}
	}
}

// PeriodRange is the inclusive store range [PeriodStart, now].
func PeriodRange(p Period, now time.Time, loc *time.Location) storage.Range {
	return storage.Between(PeriodStart(p, now, loc), now)
}

// ChartWindow is a rolling number of days ending today.
type ChartWindow int

const (
	Window7Days  ChartWindow = 7
	Window30Days ChartWindow = 30

	// BreakdownWindow is the fixed trailing window of the category breakdown.
	BreakdownWindow = Window30Days
)

func (w ChartWindow) Validate() error {
	switch w {
	case Window7Days, Window30Days:
		return nil
	default:
		return fmt.Errorf("unsupported chart window of %d days", int(w))
	}
}

// WindowStart returns local midnight of the first day of the window; today
// counts as one of its days.
func WindowStart(w ChartWindow, now time.Time, loc *time.Location) time.Time {
	today := core.DayOf(now, loc)
	return today.AddDays(-(int(w) - 1)).Start(loc)
}

// WindowRange is the inclusive store range [WindowStart, now].
func WindowRange(w ChartWindow, now time.Time, loc *time.Location) storage.Range {
	return storage.Between(WindowStart(w, now, loc), now)
}
