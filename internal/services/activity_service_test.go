package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footprint/internal/aggregate"
	"footprint/internal/core"
	"footprint/internal/factors"
	"footprint/internal/log"
	"footprint/internal/observability"
	"footprint/internal/storage"
	"footprint/internal/storage/memory"
	"footprint/internal/trace"
)

var (
	loc = time.FixedZone("CET", 60*60)
	// Wednesday
	fixedNow = time.Date(2024, time.January, 10, 15, 0, 0, 0, loc)
)

func clock() time.Time { return fixedNow }

func factorTable(t *testing.T) *factors.Table {
	t.Helper()
	tbl := factors.New(factors.BytesSource("test", factors.FormatJSON, []byte(`[
		{"type": "Transport", "subtype": "Car-Petrol", "factor": 0.192, "unit": "kg/km"},
		{"type": "Food", "subtype": "Beef", "factor": 27, "unit": "kg/kg"},
		{"type": "Energy", "subtype": "Electricity", "factor": 0.233, "unit": "kg/kWh"}
	]`)), nil)
	require.NoError(t, tbl.Load())
	return tbl
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }

// failingStore fails every call with the same engine error.
type failingStore struct {
	storage.ActivityStore
	err error
}

func (f failingStore) Create(context.Context, core.Activity) (int64, error) {
	return 0, &core.StoreError{Op: "create", Err: f.err}
}

func (f failingStore) ListAll(context.Context) ([]core.Activity, error) {
	return nil, &core.StoreError{Op: "list", Err: f.err}
}

func (f failingStore) Delete(context.Context, int64) (int64, error) {
	return 0, &core.StoreError{Op: "delete", Err: f.err}
}

func (f failingStore) SumFootprint(context.Context, storage.Range) (float64, error) {
	return 0, &core.StoreError{Op: "sum", Err: f.err}
}

func newActivityService(t *testing.T, opts ...Option) (*ActivityService, *memory.Store) {
	t.Helper()
	store := memory.New(loc)
	opts = append([]Option{WithClock(clock), WithLocation(loc)}, opts...)
	return NewActivityService(store, factorTable(t), opts...), store
}

func TestCreateComputesFootprintAtWriteTime(t *testing.T) {
	svc, store := newActivityService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, NewActivity{
		Category:   "Transport",
		Subtype:    "Car-Petrol",
		Quantity:   50,
		OccurredAt: time.Date(2024, time.January, 10, 8, 0, 0, 0, loc),
	})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.InDelta(t, 9.6, a.Footprint, 1e-9)

	stored, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, a.Footprint, stored.Footprint)
	assert.True(t, a.OccurredAt.Equal(stored.OccurredAt))
}

func TestStoredFootprintIgnoresLaterFactorChanges(t *testing.T) {
	store := memory.New(loc)
	ctx := context.Background()
	in := NewActivity{Category: "Food", Subtype: "Beef", Quantity: 2, OccurredAt: fixedNow.Add(-time.Hour)}

	first := NewActivityService(store, factorTable(t), WithClock(clock))
	a, err := first.Create(ctx, in)
	require.NoError(t, err)

	revised := factors.New(factors.BytesSource("revised", factors.FormatJSON,
		[]byte(`[{"type": "Food", "subtype": "Beef", "factor": 60, "unit": "kg/kg"}]`)), nil)
	require.NoError(t, revised.Load())
	second := NewActivityService(store, revised, WithClock(clock))
	b, err := second.Create(ctx, in)
	require.NoError(t, err)

	got, err := second.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 54.0, got.Footprint)
	assert.Equal(t, 120.0, b.Footprint)
}

func TestCreateUnknownFactorStoresZero(t *testing.T) {
	svc, _ := newActivityService(t)
	a, err := svc.Create(context.Background(), NewActivity{
		Category: "Transport", Subtype: "Car-Petrl", Quantity: 10, OccurredAt: fixedNow,
	})
	require.NoError(t, err)
	assert.Zero(t, a.Footprint)
	assert.NotZero(t, a.ID)
}

func TestCreateWarnsOnlyOnFactorMiss(t *testing.T) {
	tbl := factors.New(factors.BytesSource("test", factors.FormatJSON, []byte(`[
		{"type": "Transport", "subtype": "Bicycle", "factor": 0, "unit": "kg/km"}
	]`)), nil)
	require.NoError(t, tbl.Load())

	tests := []struct {
		name     string
		subtype  string
		wantWarn bool
	}{
		{name: "zero factor is a match", subtype: "Bicycle", wantWarn: false},
		{name: "unknown subtype is a miss", subtype: "Unicycle", wantWarn: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			svc := NewActivityService(memory.New(loc), tbl, WithClock(clock),
				WithLogger(log.New(log.Config{Output: &buf})))

			a, err := svc.Create(context.Background(), NewActivity{
				Category: "Transport", Subtype: tt.subtype, Quantity: 12, OccurredAt: fixedNow,
			})
			require.NoError(t, err)
			assert.Zero(t, a.Footprint)
			assert.Equal(t, tt.wantWarn, strings.Contains(buf.String(), "No emission factor matched"))
		})
	}
}

func TestCreateValidation(t *testing.T) {
	svc, store := newActivityService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   NewActivity
		want error
	}{
		{"zero quantity", NewActivity{Category: "Food", Subtype: "Beef", Quantity: 0, OccurredAt: fixedNow}, core.ErrInvalidQuantity},
		{"negative quantity", NewActivity{Category: "Food", Subtype: "Beef", Quantity: -2, OccurredAt: fixedNow}, core.ErrInvalidQuantity},
		{"missing category", NewActivity{Subtype: "Beef", Quantity: 1, OccurredAt: fixedNow}, core.ErrEmptyCategory},
		{"missing subtype", NewActivity{Category: "Food", Quantity: 1, OccurredAt: fixedNow}, core.ErrEmptySubtype},
		{"future", NewActivity{Category: "Food", Subtype: "Beef", Quantity: 1, OccurredAt: fixedNow.Add(time.Second)}, core.ErrFutureTime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected activities are never stored")
}

func TestStoreErrorsPropagate(t *testing.T) {
	engine := errors.New("disk I/O error")
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	svc := NewActivityService(failingStore{err: engine}, factorTable(t), WithClock(clock), WithMetrics(metrics))
	ctx := context.Background()

	_, err := svc.Create(ctx, NewActivity{Category: "Food", Subtype: "Beef", Quantity: 1, OccurredAt: fixedNow})
	var serr *core.StoreError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, engine)

	_, err = svc.History(ctx, HistoryFilter{Period: aggregate.PeriodWeek})
	assert.ErrorIs(t, err, engine)

	_, err = svc.Delete(ctx, 1)
	assert.ErrorIs(t, err, engine)

	count, err := prometheusCount(reg, "footprint_store_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func prometheusCount(reg *prometheus.Registry, name string) (int, error) {
	families, err := reg.Gather()
	if err != nil {
		return 0, err
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return len(mf.GetMetric()), nil
		}
	}
	return 0, nil
}

func TestUpdateAndDelete(t *testing.T) {
	inval := &countingInvalidator{}
	svc, _ := newActivityService(t, WithInvalidator(inval))
	ctx := context.Background()

	a, err := svc.Create(ctx, NewActivity{Category: "Food", Subtype: "Beef", Quantity: 1, OccurredAt: fixedNow.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 1, inval.calls)

	a.Quantity = 2
	a.Footprint = 54
	n, err := svc.Update(ctx, a)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 2, inval.calls)

	missing := a
	missing.ID = a.ID + 100
	n, err = svc.Update(ctx, missing)
	require.NoError(t, err)
	assert.Zero(t, n, "update of a missing id is silent")
	assert.Equal(t, 2, inval.calls)

	_, err = svc.Update(ctx, core.Activity{Category: "Food", Subtype: "Beef", Quantity: 1, OccurredAt: fixedNow})
	assert.ErrorIs(t, err, core.ErrMissingID)

	n, err = svc.Delete(ctx, a.ID+100)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, inval.calls)

	n, err = svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 3, inval.calls)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteAll(t *testing.T) {
	svc, _ := newActivityService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, NewActivity{Category: "Food", Subtype: "Beef", Quantity: 1, OccurredAt: fixedNow})
		require.NoError(t, err)
	}
	n, err := svc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestHistory(t *testing.T) {
	svc, _ := newActivityService(t)
	ctx := context.Background()
	weekStart := time.Date(2024, time.January, 8, 0, 0, 0, 0, loc)

	create := func(cat, sub string, when time.Time) core.Activity {
		a, err := svc.Create(ctx, NewActivity{Category: cat, Subtype: sub, Quantity: 1, OccurredAt: when})
		require.NoError(t, err)
		return a
	}
	today := create("Food", "Beef", fixedNow.Add(-time.Hour))
	atWeekStart := create("Food", "Beef", weekStart)
	lastWeek := create("Energy", "Electricity", weekStart.Add(-time.Hour))
	monthStart := create("Transport", "Car-Petrol", time.Date(2024, time.January, 1, 0, 0, 0, 0, loc))
	december := create("Transport", "Car-Petrol", time.Date(2023, time.December, 31, 12, 0, 0, 0, loc))

	week, err := svc.History(ctx, HistoryFilter{Period: aggregate.PeriodWeek})
	require.NoError(t, err)
	assert.Equal(t, []int64{today.ID}, idsOf(week), "week-start midnight is excluded")

	month, err := svc.History(ctx, HistoryFilter{Period: aggregate.PeriodMonth})
	require.NoError(t, err)
	assert.Equal(t, []int64{today.ID, atWeekStart.ID, lastWeek.ID}, idsOf(month))

	all, err := svc.History(ctx, HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{today.ID, atWeekStart.ID, lastWeek.ID, monthStart.ID, december.ID}, idsOf(all))

	transport, err := svc.History(ctx, HistoryFilter{Period: aggregate.PeriodAll, Category: "Transport"})
	require.NoError(t, err)
	assert.Equal(t, []int64{monthStart.ID, december.ID}, idsOf(transport))

	_, err = svc.History(ctx, HistoryFilter{Period: "year"})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "period", verr.Field)

	ranged, err := svc.ListByDateRange(ctx, weekStart, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, []int64{today.ID, atWeekStart.ID}, idsOf(ranged), "store ranges stay inclusive")
}

func idsOf(acts []core.Activity) []int64 {
	out := make([]int64, len(acts))
	for i, a := range acts {
		out[i] = a.ID
	}
	return out
}

func TestWritesAreLoggedWithOperationID(t *testing.T) {
	var buf bytes.Buffer
	svc, _ := newActivityService(t, WithLogger(log.New(log.Config{Output: &buf})))
	ctx := trace.WithOperationID(context.Background(), "op_feed")

	_, err := svc.Create(ctx, NewActivity{Category: "Food", Subtype: "Beef", Quantity: 1, OccurredAt: fixedNow})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "component=activity")
	assert.Contains(t, out, "operation_id=op_feed")
	assert.Contains(t, out, "footprint_kg=27")
}
