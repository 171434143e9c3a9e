package memory

import (
	"context"
	"testing"
	"time"

	"footprint/internal/core"
	"footprint/internal/storage"
	"footprint/internal/storage/storagetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, loc *time.Location) storage.ActivityStore {
		return New(loc)
	})
}

func TestCreateTruncatesToMilliseconds(t *testing.T) {
	s := New(time.UTC)
	when := time.Date(2024, 1, 10, 8, 0, 0, 123456789, time.UTC)
	id, err := s.Create(context.Background(), core.Activity{
		Category: "Food", Subtype: "Beef", Quantity: 1, Footprint: 27, OccurredAt: when,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _ := s.GetByID(context.Background(), id)
	if got == nil || got.OccurredAt.Nanosecond() != 123000000 {
		t.Fatalf("expected millisecond precision, got %+v", got)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New(time.UTC)
	ctx := context.Background()
	id, _ := s.Create(ctx, core.Activity{
		Category: "Food", Subtype: "Beef", Quantity: 1, Footprint: 27, OccurredAt: time.Now(),
	})
	got, _ := s.GetByID(ctx, id)
	got.Footprint = 0

	again, _ := s.GetByID(ctx, id)
	if again.Footprint != 27 {
		t.Fatalf("store mutated through returned pointer: %v", again.Footprint)
	}
}
