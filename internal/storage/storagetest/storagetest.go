// Package storagetest holds the behaviour every storage.ActivityStore must
// show. Implementations call Run from their own tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footprint/internal/core"
	"footprint/internal/storage"
)

// Opener returns a fresh, empty store whose days are computed in loc.
type Opener func(t *testing.T, loc *time.Location) storage.ActivityStore

// Loc is east of UTC so that late-evening UTC instants fall on the next
// local day.
var Loc = time.FixedZone("UTC+2", 2*60*60)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, Loc)
}

func activity(cat, sub string, qty, kg float64, when time.Time) core.Activity {
	return core.Activity{Category: cat, Subtype: sub, Quantity: qty, Footprint: kg, OccurredAt: when}
}

// Run executes the whole suite against stores produced by open.
func Run(t *testing.T, open Opener) {
	tests := map[string]func(t *testing.T, s storage.ActivityStore){
		"EmptyStore":             testEmptyStore,
		"CreateAndGet":           testCreateAndGet,
		"IDsAreMonotonic":        testIDsAreMonotonic,
		"ListOrdering":           testListOrdering,
		"DateRangeInclusive":     testDateRangeInclusive,
		"ListByCategory":         testListByCategory,
		"Update":                 testUpdate,
		"Delete":                 testDelete,
		"SumsAgree":              testSumsAgree,
		"RangedSums":             testRangedSums,
		"DailyFootprint":         testDailyFootprint,
		"DailyUsesLocalCalendar": testDailyUsesLocalCalendar,
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			fn(t, open(t, Loc))
		})
	}
}

func mustCreate(t *testing.T, s storage.ActivityStore, a core.Activity) int64 {
	t.Helper()
	id, err := s.Create(context.Background(), a)
	require.NoError(t, err)
	require.NotZero(t, id)
	return id
}

func ids(acts []core.Activity) []int64 {
	out := make([]int64, len(acts))
	for i, a := range acts {
		out[i] = a.ID
	}
	return out
}

func testEmptyStore(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()

	total, err := s.SumFootprint(ctx, storage.All())
	require.NoError(t, err)
	assert.Zero(t, total)

	byCat, err := s.SumFootprintByCategory(ctx, storage.All())
	require.NoError(t, err)
	assert.Empty(t, byCat)

	daily, err := s.DailyFootprint(ctx, storage.All())
	require.NoError(t, err)
	assert.NotNil(t, daily)
	assert.Empty(t, daily)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	got, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testCreateAndGet(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	in := activity("Transport", "Car-Petrol", 50, 9.6, at(2024, time.January, 10, 8, 15))

	id := mustCreate(t, s, in)

	got, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, in.Category, got.Category)
	assert.Equal(t, in.Subtype, got.Subtype)
	assert.Equal(t, in.Quantity, got.Quantity)
	assert.Equal(t, in.Footprint, got.Footprint)
	assert.True(t, in.OccurredAt.Equal(got.OccurredAt), "occurred at %v, want %v", got.OccurredAt, in.OccurredAt)
}

func testIDsAreMonotonic(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	when := at(2024, time.January, 10, 9, 0)

	first := mustCreate(t, s, activity("Food", "Beef", 1, 27, when))
	second := mustCreate(t, s, activity("Food", "Beef", 1, 27, when))
	assert.Greater(t, second, first)

	n, err := s.Delete(ctx, second)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	third := mustCreate(t, s, activity("Food", "Beef", 1, 27, when))
	assert.Greater(t, third, second, "ids are not reused after delete")
}

func testListOrdering(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	old := mustCreate(t, s, activity("Food", "Beef", 1, 27, at(2024, time.January, 1, 12, 0)))
	recent := mustCreate(t, s, activity("Food", "Pork", 1, 12, at(2024, time.January, 20, 12, 0)))
	middle := mustCreate(t, s, activity("Energy", "Electricity", 10, 2.3, at(2024, time.January, 10, 12, 0)))
	sameAsMiddle := mustCreate(t, s, activity("Energy", "Electricity", 5, 1.1, at(2024, time.January, 10, 12, 0)))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{recent, sameAsMiddle, middle, old}, ids(all))
}

func testDateRangeInclusive(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	start := at(2024, time.January, 10, 0, 0)
	end := at(2024, time.January, 12, 0, 0)

	mustCreate(t, s, activity("Food", "Beef", 1, 1, start.Add(-time.Millisecond)))
	atStart := mustCreate(t, s, activity("Food", "Beef", 1, 1, start))
	inside := mustCreate(t, s, activity("Food", "Beef", 1, 1, at(2024, time.January, 11, 9, 30)))
	atEnd := mustCreate(t, s, activity("Food", "Beef", 1, 1, end))
	mustCreate(t, s, activity("Food", "Beef", 1, 1, end.Add(time.Millisecond)))

	got, err := s.ListByDateRange(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, []int64{atEnd, inside, atStart}, ids(got))

	got, err = s.ListByDateRange(ctx, end, start)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testListByCategory(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	a := mustCreate(t, s, activity("Transport", "Bus", 10, 1.05, at(2024, time.February, 1, 8, 0)))
	mustCreate(t, s, activity("Food", "Beef", 1, 27, at(2024, time.February, 2, 8, 0)))
	b := mustCreate(t, s, activity("Transport", "Train", 100, 4.1, at(2024, time.February, 3, 8, 0)))

	got, err := s.ListByCategory(ctx, "Transport")
	require.NoError(t, err)
	assert.Equal(t, []int64{b, a}, ids(got))

	got, err = s.ListByCategory(ctx, "Shopping")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testUpdate(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	id := mustCreate(t, s, activity("Transport", "Bus", 10, 1.05, at(2024, time.March, 1, 8, 0)))

	replacement := activity("Transport", "Train", 20, 0.82, at(2024, time.March, 2, 18, 45))
	replacement.ID = id
	n, err := s.Update(ctx, replacement)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Train", got.Subtype)
	assert.Equal(t, 20.0, got.Quantity)
	assert.Equal(t, 0.82, got.Footprint)
	assert.True(t, replacement.OccurredAt.Equal(got.OccurredAt))

	missing := replacement
	missing.ID = id + 1000
	n, err = s.Update(ctx, missing)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testDelete(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	a := mustCreate(t, s, activity("Food", "Fish", 1, 6.1, at(2024, time.April, 1, 12, 0)))
	mustCreate(t, s, activity("Food", "Fish", 2, 12.2, at(2024, time.April, 2, 12, 0)))
	mustCreate(t, s, activity("Food", "Fish", 3, 18.3, at(2024, time.April, 3, 12, 0)))

	n, err := s.Delete(ctx, a+1000)
	require.NoError(t, err)
	assert.Zero(t, n)
	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3, "deleting a missing id leaves the store unchanged")

	n, err = s.Delete(ctx, a)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	got, err := s.GetByID(ctx, a)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err = s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testSumsAgree(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	mustCreate(t, s, activity("Transport", "Car-Petrol", 50, 9.6, at(2024, time.May, 1, 8, 0)))
	mustCreate(t, s, activity("Transport", "Bus", 10, 1.05, at(2024, time.May, 2, 8, 0)))
	mustCreate(t, s, activity("Food", "Beef", 0.5, 13.5, at(2024, time.May, 2, 19, 0)))
	mustCreate(t, s, activity("Energy", "Electricity", 100, 23.3, at(2024, time.May, 5, 10, 0)))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	var listed float64
	for _, a := range all {
		listed += a.Footprint
	}

	total, err := s.SumFootprint(ctx, storage.All())
	require.NoError(t, err)
	assert.InDelta(t, listed, total, 1e-9)

	byCat, err := s.SumFootprintByCategory(ctx, storage.All())
	require.NoError(t, err)
	assert.Len(t, byCat, 3)
	assert.InDelta(t, 10.65, byCat["Transport"], 1e-9)
	var catSum float64
	for _, v := range byCat {
		catSum += v
	}
	assert.InDelta(t, total, catSum, 1e-9)

	daily, err := s.DailyFootprint(ctx, storage.All())
	require.NoError(t, err)
	var daySum float64
	for _, v := range daily {
		daySum += v
	}
	assert.InDelta(t, total, daySum, 1e-9)
}

func testRangedSums(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	mustCreate(t, s, activity("Transport", "Bus", 10, 1.0, at(2024, time.June, 1, 8, 0)))
	mustCreate(t, s, activity("Food", "Beef", 1, 27.0, at(2024, time.June, 10, 8, 0)))
	mustCreate(t, s, activity("Transport", "Bus", 10, 2.0, at(2024, time.June, 20, 8, 0)))

	rng := storage.Between(at(2024, time.June, 10, 8, 0), at(2024, time.June, 20, 8, 0))
	total, err := s.SumFootprint(ctx, rng)
	require.NoError(t, err)
	assert.InDelta(t, 29.0, total, 1e-9)

	byCat, err := s.SumFootprintByCategory(ctx, storage.Between(at(2024, time.June, 2, 0, 0), at(2024, time.June, 15, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Food": 27.0}, byCat, "categories without records in range are absent")

	open := storage.Range{Start: at(2024, time.June, 15, 0, 0)}
	total, err = s.SumFootprint(ctx, open)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, total, 1e-9)

	empty := storage.Between(at(2030, time.January, 1, 0, 0), at(2030, time.February, 1, 0, 0))
	total, err = s.SumFootprint(ctx, empty)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func testDailyFootprint(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	mustCreate(t, s, activity("Food", "Dairy", 1, 2.0, at(2024, time.July, 3, 8, 0)))
	mustCreate(t, s, activity("Food", "Chicken", 1, 3.5, at(2024, time.July, 3, 20, 0)))
	mustCreate(t, s, activity("Transport", "Unknown", 3, 0, at(2024, time.July, 4, 9, 0)))
	mustCreate(t, s, activity("Transport", "Bus", 10, 1.05, at(2024, time.July, 6, 9, 0)))

	daily, err := s.DailyFootprint(ctx, storage.All())
	require.NoError(t, err)
	assert.Len(t, daily, 2, "sparse: no zero-valued or empty days")
	assert.InDelta(t, 5.5, daily[core.NewDay(2024, time.July, 3)], 1e-9)
	assert.InDelta(t, 1.05, daily[core.NewDay(2024, time.July, 6)], 1e-9)
	_, present := daily[core.NewDay(2024, time.July, 4)]
	assert.False(t, present)
	_, present = daily[core.NewDay(2024, time.July, 5)]
	assert.False(t, present)

	daily, err = s.DailyFootprint(ctx, storage.Between(at(2024, time.July, 3, 12, 0), at(2024, time.July, 5, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, map[core.Day]float64{core.NewDay(2024, time.July, 3): 3.5}, daily)
}

func testDailyUsesLocalCalendar(t *testing.T, s storage.ActivityStore) {
	ctx := context.Background()
	// 23:30 UTC on Aug 1 is 01:30 on Aug 2 in Loc
	mustCreate(t, s, activity("Food", "Beef", 1, 4.0, time.Date(2024, time.August, 1, 23, 30, 0, 0, time.UTC)))

	daily, err := s.DailyFootprint(ctx, storage.All())
	require.NoError(t, err)
	assert.Equal(t, map[core.Day]float64{core.NewDay(2024, time.August, 2): 4.0}, daily)
}
