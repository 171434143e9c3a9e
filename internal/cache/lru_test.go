package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int, string](2, time.Hour)
	c.Set(7, "week")
	c.Set(30, "month")

	if _, ok := c.Get(7); !ok {
		t.Fatal("expected hit for 7")
	}
	c.Set(90, "quarter") // evicts 30, the least recently used

	if _, ok := c.Get(30); ok {
		t.Fatal("expected 30 to be evicted")
	}
	if v, ok := c.Get(7); !ok || v != "week" {
		t.Fatalf("unexpected value for 7: %q %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", c.Len())
	}
}

func TestLRUExpires(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	c := NewLRU[string, int](4, time.Minute).WithClock(func() time.Time { return now })

	c.Set("a", 1)
	now = now.Add(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit before ttl")
	}
	now = now.Add(2 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be removed, len=%d", c.Len())
	}
}

func TestLRUZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	c := NewLRU[string, int](1, 0).WithClock(func() time.Time { return now })
	c.Set("a", 1)
	now = now.Add(24 * time.Hour)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit with ttl disabled")
	}
}

func TestLRUOverwriteDeleteClear(t *testing.T) {
	c := NewLRU[string, int](3, time.Hour)
	c.Set("a", 1)
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 || c.Len() != 1 {
		t.Fatalf("overwrite failed: v=%d len=%d", v, c.Len())
	}

	c.Set("b", 3)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be deleted")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
	c.Set("c", 4)
	if v, ok := c.Get("c"); !ok || v != 4 {
		t.Fatal("cache unusable after Clear")
	}
}
