package cache

import (
	"testing"
	"time"
)

func TestCacheExpiresEntries(t *testing.T) {
	c := New[string](10, time.Hour, EvictOldest)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Put("k", "v")
	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Fatalf("expected hit, got %q ok=%v", got, ok)
	}

	current = current.Add(time.Hour)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected entry to expire after ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry removed, len=%d", c.Len())
	}
}

func TestCacheEvictsOldestOverCapacity(t *testing.T) {
	c := New[int](2, time.Hour, EvictOldest)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Put("a", 1)
	current = current.Add(time.Second)
	c.Put("b", 2)
	current = current.Add(time.Second)
	c.Put("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected oldest entry evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("expected newer entry kept")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("expected newest entry kept")
	}
}

func TestCacheEvictAnyKeepsCapacityBound(t *testing.T) {
	c := New[int](3, time.Hour, EvictAny)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		c.Put(k, 1)
	}
	if c.Len() != 3 {
		t.Fatalf("expected capacity bound of 3, len=%d", c.Len())
	}
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := New[int](0, 0, EvictAny)
	if c.capacity != 100 {
		t.Fatalf("expected default capacity 100, got %d", c.capacity)
	}
	c.Put("k", 1)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("zero ttl must mean no expiry")
	}
}
