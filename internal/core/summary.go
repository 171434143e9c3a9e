package core

// CategoryFootprint represents a footprint aggregated by category name.
type CategoryFootprint struct {
	Name      string
	Footprint float64
}

// DayTotal is one point of a per-day footprint series.
type DayTotal struct {
	Day       Day
	Footprint float64
}

// PeriodTotals holds the scalar dashboard figures.
type PeriodTotals struct {
	Total float64
	Week  float64 // since the most recent Monday
	Month float64 // since day 1 of the current month
}

// DashboardSummary is everything a dashboard renders in one read.
type DashboardSummary struct {
	Totals     PeriodTotals
	WindowDays int
	Daily      []DayTotal // sparse, ascending
	ByCategory []CategoryFootprint
}
