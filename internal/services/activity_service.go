package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"footprint/internal/aggregate"
	"footprint/internal/core"
	"footprint/internal/log"
	"footprint/internal/observability"
	"footprint/internal/storage"
	"footprint/internal/trace"
)

// FootprintCalculator converts an activity into kg CO2e. Resolve tells a
// missing factor apart from one that is legitimately zero.
type FootprintCalculator interface {
	Resolve(category, subtype string) (core.EmissionFactor, bool)
	ComputeFootprint(category, subtype string, quantity float64) float64
}

// Invalidator is told whenever stored activities change.
type Invalidator interface {
	Invalidate()
}

// NewActivity is what a caller supplies to log an activity.
type NewActivity struct {
	Category   string
	Subtype    string
	Quantity   float64
	OccurredAt time.Time
}

// HistoryFilter selects activities for the history view.
type HistoryFilter struct {
	Period   aggregate.Period
	Category string // empty means every category
}

// ActivityService is the write path: validate, compute the footprint once,
// persist.
type ActivityService struct {
	store   storage.ActivityStore
	calc    FootprintCalculator
	now     func() time.Time
	loc     *time.Location
	logger  *log.Logger
	metrics *observability.Metrics
	inval   Invalidator
}

func NewActivityService(store storage.ActivityStore, calc FootprintCalculator, opts ...Option) *ActivityService {
	o := buildOptions(log.ComponentActivity, opts)
	return &ActivityService{
		store:   store,
		calc:    calc,
		now:     o.now,
		loc:     o.loc,
		logger:  o.logger,
		metrics: o.metrics,
		inval:   o.invalidator,
	}
}

// Create validates in, stores it with its footprint and returns the stored
// record. The footprint is never recomputed afterwards.
func (s *ActivityService) Create(ctx context.Context, in NewActivity) (core.Activity, error) {
	ctx, _ = trace.Ensure(ctx)
	a := core.Activity{
		Category:   in.Category,
		Subtype:    in.Subtype,
		Quantity:   in.Quantity,
		OccurredAt: in.OccurredAt,
	}
	if err := a.Validate(s.now()); err != nil {
		s.logger.WarnContext(ctx, "Activity rejected",
			log.NewFields().WithOperation(log.OpCreate).WithErrorType(log.ErrorTypeValidation).WithError(err).ToSlice()...)
		return core.Activity{}, err
	}

	a.Footprint = s.calc.ComputeFootprint(a.Category, a.Subtype, a.Quantity)
	if _, ok := s.calc.Resolve(a.Category, a.Subtype); !ok {
		s.logger.WarnContext(ctx, "No emission factor matched, footprint recorded as zero",
			log.FieldCategory, a.Category, log.FieldSubtype, a.Subtype)
	}

	id, err := s.store.Create(ctx, a)
	if err != nil {
		s.storeFailed(ctx, log.OpCreate, err)
		return core.Activity{}, fmt.Errorf("create activity: %w", err)
	}
	a.ID = id
	a.OccurredAt = storage.Normalize(a.OccurredAt, s.loc)

	s.metrics.ActivityCreated(a.Category, a.Footprint)
	s.changed()
	s.logger.InfoContext(ctx, "Activity created",
		log.NewFields().WithOperation(log.OpCreate).
			WithActivity(a.ID, a.Category, a.Subtype, a.Quantity, a.Footprint).ToSlice()...)

	return a, nil
}

// Get returns nil, nil when id does not exist.
func (s *ActivityService) Get(ctx context.Context, id int64) (*core.Activity, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.storeFailed(ctx, log.OpRead, err)
		return nil, fmt.Errorf("get activity %d: %w", id, err)
	}
	return a, nil
}

// List returns every activity, most recent first.
func (s *ActivityService) List(ctx context.Context) ([]core.Activity, error) {
	acts, err := s.store.ListAll(ctx)
	if err != nil {
		s.storeFailed(ctx, log.OpList, err)
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return acts, nil
}

func (s *ActivityService) ListByCategory(ctx context.Context, category string) ([]core.Activity, error) {
	acts, err := s.store.ListByCategory(ctx, category)
	if err != nil {
		s.storeFailed(ctx, log.OpList, err)
		return nil, fmt.Errorf("list activities for %s: %w", category, err)
	}
	return acts, nil
}

func (s *ActivityService) ListByDateRange(ctx context.Context, start, end time.Time) ([]core.Activity, error) {
	acts, err := s.store.ListByDateRange(ctx, start, end)
	if err != nil {
		s.storeFailed(ctx, log.OpList, err)
		return nil, fmt.Errorf("list activities between %s and %s: %w",
			start.Format(time.RFC3339), end.Format(time.RFC3339), err)
	}
	return acts, nil
}

// History lists activities for the history screen. Period filtering is
// strictly after the period start; see aggregate.FilterHistory. An empty
// period means every activity.
func (s *ActivityService) History(ctx context.Context, f HistoryFilter) ([]core.Activity, error) {
	period, err := aggregate.ParsePeriod(string(f.Period))
	if err != nil {
		return nil, &core.ValidationError{Field: "period", Err: err}
	}
	s.logger.DebugContext(ctx, "History requested", log.FieldPeriod, string(period), log.FieldCategory, f.Category)

	var acts []core.Activity
	if f.Category != "" {
		acts, err = s.ListByCategory(ctx, f.Category)
	} else {
		acts, err = s.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	return aggregate.FilterHistory(acts, period, s.now(), s.loc), nil
}

// Update replaces the stored record with a as given, footprint included.
// It returns 0 affected, not an error, when a.ID does not exist.
func (s *ActivityService) Update(ctx context.Context, a core.Activity) (int64, error) {
	ctx, _ = trace.Ensure(ctx)
	if a.ID == 0 {
		return 0, &core.ValidationError{Field: "id", Err: core.ErrMissingID}
	}
	if err := a.Validate(s.now()); err != nil {
		return 0, err
	}
	if a.Footprint < 0 {
		return 0, &core.ValidationError{Field: "footprint", Err: errors.New("footprint cannot be negative")}
	}

	n, err := s.store.Update(ctx, a)
	if err != nil {
		s.storeFailed(ctx, log.OpUpdate, err)
		return 0, fmt.Errorf("update activity %d: %w", a.ID, err)
	}
	if n == 0 {
		s.logger.WarnContext(ctx, "Update matched no activity", log.FieldActivityID, a.ID)
		return 0, nil
	}
	s.changed()
	return n, nil
}

// Delete removes one activity and returns how many were removed (0 or 1).
func (s *ActivityService) Delete(ctx context.Context, id int64) (int64, error) {
	ctx, _ = trace.Ensure(ctx)
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		s.storeFailed(ctx, log.OpDelete, err)
		return 0, fmt.Errorf("delete activity %d: %w", id, err)
	}
	if n > 0 {
		s.metrics.ActivitiesDeleted(n)
		s.changed()
	}
	s.logger.InfoContext(ctx, "Activity delete", log.FieldActivityID, id, log.FieldAffected, n)
	return n, nil
}

func (s *ActivityService) DeleteAll(ctx context.Context) (int64, error) {
	ctx, _ = trace.Ensure(ctx)
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		s.storeFailed(ctx, log.OpDeleteAll, err)
		return 0, fmt.Errorf("delete all activities: %w", err)
	}
	s.metrics.ActivitiesDeleted(n)
	s.changed()
	s.logger.InfoContext(ctx, "All activities deleted", log.FieldAffected, n)
	return n, nil
}

func (s *ActivityService) changed() {
	if s.inval != nil {
		s.inval.Invalidate()
	}
}

func (s *ActivityService) storeFailed(ctx context.Context, op string, err error) {
	s.metrics.StoreError(op)
	s.logger.ErrorContext(ctx, "Activity store failure",
		log.NewFields().WithOperation(op).WithErrorType(log.ErrorTypeDatabase).WithError(err).ToSlice()...)
}
