// Package memory is an in-process ActivityStore with the same ordering,
// range and grouping semantics as the SQLite repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"footprint/internal/core"
	"footprint/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	loc    *time.Location
	nextID int64
	items  map[int64]core.Activity
}

var _ storage.ActivityStore = (*Store)(nil)

func New(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{loc: loc, nextID: 1, items: make(map[int64]core.Activity)}
}

// Create stores a copy of a under a fresh id. Ids are never reused.
func (s *Store) Create(_ context.Context, a core.Activity) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID
	s.nextID++
	a.OccurredAt = storage.Normalize(a.OccurredAt, s.loc)
	s.items[a.ID] = a
	return a.ID, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*core.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) ListAll(_ context.Context) ([]core.Activity, error) {
	return s.filter(func(core.Activity) bool { return true }), nil
}

func (s *Store) ListByDateRange(_ context.Context, start, end time.Time) ([]core.Activity, error) {
	// both bounds are taken literally, a zero time is not "unbounded" here
	lo, hi := start.UnixMilli(), end.UnixMilli()
	return s.filter(func(a core.Activity) bool {
		ms := a.OccurredAt.UnixMilli()
		return ms >= lo && ms <= hi
	}), nil
}

func (s *Store) ListByCategory(_ context.Context, category string) ([]core.Activity, error) {
	return s.filter(func(a core.Activity) bool { return a.Category == category }), nil
}

func (s *Store) Update(_ context.Context, a core.Activity) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[a.ID]; !ok {
		return 0, nil
	}
	a.OccurredAt = storage.Normalize(a.OccurredAt, s.loc)
	s.items[a.ID] = a
	return 1, nil
}

func (s *Store) Delete(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return 0, nil
	}
	delete(s.items, id)
	return 1, nil
}

func (s *Store) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.items))
	s.items = make(map[int64]core.Activity)
	return n, nil
}

func (s *Store) SumFootprint(_ context.Context, r storage.Range) (float64, error) {
	var total float64
	for _, a := range s.filter(func(a core.Activity) bool { return r.Contains(a.OccurredAt) }) {
		total += a.Footprint
	}
	return total, nil
}

func (s *Store) SumFootprintByCategory(_ context.Context, r storage.Range) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, a := range s.filter(func(a core.Activity) bool { return r.Contains(a.OccurredAt) }) {
		out[a.Category] += a.Footprint
	}
	return out, nil
}

func (s *Store) DailyFootprint(_ context.Context, r storage.Range) (map[core.Day]float64, error) {
	matched := s.filter(func(a core.Activity) bool { return r.Contains(a.OccurredAt) })
	points := make([]storage.Point, len(matched))
	for i, a := range matched {
		points[i] = storage.Point{At: a.OccurredAt, Footprint: a.Footprint}
	}
	return storage.GroupByDay(points, s.loc), nil
}

func (s *Store) Close() error { return nil }

// filter returns matching activities, most recent first.
func (s *Store) filter(keep func(core.Activity) bool) []core.Activity {
	s.mu.Lock()
	out := make([]core.Activity, 0, len(s.items))
	for _, a := range s.items {
		if keep(a) {
			out = append(out, a)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
