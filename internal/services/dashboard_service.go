package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"footprint/internal/aggregate"
	"footprint/internal/cache"
	"footprint/internal/core"
	"footprint/internal/log"
	"footprint/internal/storage"
	"footprint/internal/trace"
)

// DashboardService is the read path. It never consults the factor table:
// everything it reports comes from footprints stored at write time.
type DashboardService struct {
	store  storage.ActivityStore
	cache  cache.Cache[aggregate.ChartWindow, core.DashboardSummary]
	now    func() time.Time
	loc    *time.Location
	logger *log.Logger
}

// NewDashboardService builds the service; a nil summaries cache disables
// caching.
func NewDashboardService(store storage.ActivityStore, summaries cache.Cache[aggregate.ChartWindow, core.DashboardSummary], opts ...Option) *DashboardService {
	o := buildOptions(log.ComponentDashboard, opts)
	return &DashboardService{
		store:  store,
		cache:  summaries,
		now:    o.now,
		loc:    o.loc,
		logger: o.logger,
	}
}

// Invalidate drops cached summaries; ActivityService calls it on writes.
func (s *DashboardService) Invalidate() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Totals returns all-time, this-week and this-month sums. Week and month
// ranges include their start instant.
func (s *DashboardService) Totals(ctx context.Context) (core.PeriodTotals, error) {
	now := s.now()
	var totals core.PeriodTotals
	var err error

	if totals.Total, err = s.store.SumFootprint(ctx, storage.All()); err != nil {
		return core.PeriodTotals{}, s.failed(ctx, "total footprint", err)
	}
	if totals.Week, err = s.store.SumFootprint(ctx, aggregate.PeriodRange(aggregate.PeriodWeek, now, s.loc)); err != nil {
		return core.PeriodTotals{}, s.failed(ctx, "weekly footprint", err)
	}
	if totals.Month, err = s.store.SumFootprint(ctx, aggregate.PeriodRange(aggregate.PeriodMonth, now, s.loc)); err != nil {
		return core.PeriodTotals{}, s.failed(ctx, "monthly footprint", err)
	}
	return totals, nil
}

// DailySeries returns the sparse per-day series of the rolling window,
// oldest day first.
func (s *DashboardService) DailySeries(ctx context.Context, w aggregate.ChartWindow) ([]core.DayTotal, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	daily, err := s.store.DailyFootprint(ctx, aggregate.WindowRange(w, s.now(), s.loc))
	if err != nil {
		return nil, s.failed(ctx, "daily footprint", err)
	}
	return aggregate.Series(daily), nil
}

// CategoryBreakdown sums the trailing 30 days per category.
func (s *DashboardService) CategoryBreakdown(ctx context.Context) ([]core.CategoryFootprint, error) {
	byCat, err := s.store.SumFootprintByCategory(ctx, aggregate.WindowRange(aggregate.BreakdownWindow, s.now(), s.loc))
	if err != nil {
		return nil, s.failed(ctx, "category breakdown", err)
	}
	return aggregate.Breakdown(byCat), nil
}

// Summary combines totals, the daily series of w and the breakdown.
func (s *DashboardService) Summary(ctx context.Context, w aggregate.ChartWindow) (core.DashboardSummary, error) {
	if err := w.Validate(); err != nil {
		return core.DashboardSummary{}, err
	}
	ctx, _ = trace.Ensure(ctx)
	if s.cache != nil {
		if cached, ok := s.cache.Get(w); ok {
			s.logger.DebugContext(ctx, "Dashboard summary served", log.FieldWindowDays, int(w), log.FieldCacheHit, true)
			return cloneSummary(cached), nil
		}
	}

	totals, err := s.Totals(ctx)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	daily, err := s.DailySeries(ctx, w)
	if err != nil {
		return core.DashboardSummary{}, err
	}
	breakdown, err := s.CategoryBreakdown(ctx)
	if err != nil {
		return core.DashboardSummary{}, err
	}

	summary := core.DashboardSummary{
		Totals:     totals,
		WindowDays: int(w),
		Daily:      daily,
		ByCategory: breakdown,
	}
	if s.cache != nil {
		s.cache.Set(w, cloneSummary(summary))
	}
	s.logger.DebugContext(ctx, "Dashboard summary served", log.FieldWindowDays, int(w), log.FieldCacheHit, false)
	return summary, nil
}

// cloneSummary copies the slices so callers never share backing arrays
// with a cached summary.
func cloneSummary(s core.DashboardSummary) core.DashboardSummary {
	s.Daily = slices.Clone(s.Daily)
	s.ByCategory = slices.Clone(s.ByCategory)
	return s
}

func (s *DashboardService) failed(ctx context.Context, what string, err error) error {
	s.logger.ErrorContext(ctx, "Dashboard aggregation failed",
		log.NewFields().WithOperation(log.OpAggregate).WithErrorType(log.ErrorTypeDatabase).WithError(err).ToSlice()...)
	return fmt.Errorf("%s: %w", what, err)
}
