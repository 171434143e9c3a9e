package aggregate

import (
	"sort"
	"time"

	"footprint/internal/core"
)

// Series orders a sparse per-day mapping by day, oldest first. Missing
// days stay missing.
func Series(daily map[core.Day]float64) []core.DayTotal {
	out := make([]core.DayTotal, 0, len(daily))
	for d, v := range daily {
		out = append(out, core.DayTotal{Day: d, Footprint: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// FillGaps returns one entry per day in [from, to], taking values from
// series and zero elsewhere. Charts that draw continuous axes use it; the
// store contract itself stays sparse.
func FillGaps(series []core.DayTotal, from, to core.Day) []core.DayTotal {
	if to.Before(from) {
		return []core.DayTotal{}
	}
	values := make(map[core.Day]float64, len(series))
	for _, p := range series {
		values[p.Day] = p.Footprint
	}
	var out []core.DayTotal
	for d := from; !to.Before(d); d = d.AddDays(1) {
		out = append(out, core.DayTotal{Day: d, Footprint: values[d]})
	}
	return out
}

// Breakdown converts category totals into a name-ordered slice.
func Breakdown(byCategory map[string]float64) []core.CategoryFootprint {
	out := make([]core.CategoryFootprint, 0, len(byCategory))
	for name, v := range byCategory {
		out = append(out, core.CategoryFootprint{Name: name, Footprint: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FilterHistory keeps the activities strictly after the start of p, so an
// activity logged exactly at period-start midnight is excluded. This
// differs from the inclusive store ranges used for totals. Order is kept.
func FilterHistory(acts []core.Activity, p Period, now time.Time, loc *time.Location) []core.Activity {
	if p == PeriodAll || p == "" {
		return acts
	}
	start := PeriodStart(p, now, loc)
	out := make([]core.Activity, 0, len(acts))
	for _, a := range acts {
		if a.OccurredAt.After(start) {
			out = append(out, a)
		}
	}
	return out
}

// Sum adds up the footprints of acts.
func Sum(acts []core.Activity) float64 {
	var total float64
	for _, a := range acts {
		total += a.Footprint
	}
	return total
}
