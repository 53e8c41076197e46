package cache

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	applog "spendingtracker/internal/log"
)

func newTestCache(maxSize int, ttl time.Duration) (*LRUCache[string], *time.Time) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](maxSize, ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestLRUCacheGetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	// "b" is now least recently used.
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c, now := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	*now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCachePurgeAndDisabled(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("Size() after Purge = %d", c.Size())
	}
	c.Set("a", "again")
	if v, _ := c.Get("a"); v != "again" {
		t.Fatalf("cache unusable after Purge, got %q", v)
	}

	off, _ := newTestCache(10, 0)
	off.Set("a", "1")
	if _, ok := off.Get("a"); ok {
		t.Fatal("disabled cache should never hit")
	}
}

func TestGroupSweepAndInvalidate(t *testing.T) {
	a, now := newTestCache(10, time.Minute)
	b, _ := newTestCache(10, time.Hour)
	b.now = a.now

	var buf bytes.Buffer
	g := NewGroup(applog.NewText(&buf, slog.LevelDebug, applog.ComponentHTTP))
	g.Add(a)
	g.Add(b)

	a.Set("x", "1")
	b.Set("y", "2")
	*now = now.Add(2 * time.Minute)
	if n := g.sweep(); n != 1 {
		t.Errorf("sweep() = %d, want 1", n)
	}
	if b.Size() != 1 {
		t.Fatalf("b.Size() = %d, want 1", b.Size())
	}
	if out := buf.String(); !strings.Contains(out, "component=cache") || !strings.Contains(out, "count=1") {
		t.Errorf("sweep log = %q", out)
	}

	g.Invalidate()
	if b.Size() != 0 {
		t.Errorf("b.Size() = %d after Invalidate, want 0", b.Size())
	}

	stop := g.StartSweeper(time.Millisecond)
	stop()
	stop()
}

func TestLoad(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	g := NewGroup(nil)
	g.Add(c)

	calls := 0
	fetch := func() (string, error) {
		calls++
		return "v", nil
	}

	v, hit, err := Load(g, c, "k", fetch)
	if err != nil || hit || v != "v" {
		t.Fatalf("first Load = %q, %v, %v", v, hit, err)
	}
	v, hit, err = Load(g, c, "k", fetch)
	if err != nil || !hit || v != "v" || calls != 1 {
		t.Fatalf("second Load = %q, %v, %v (calls %d)", v, hit, err, calls)
	}

	if _, _, err := Load(g, c, "bad", func() (string, error) { return "", errors.New("boom") }); err == nil {
		t.Fatal("expected fetch error")
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed fetch must not be cached")
	}
}

func TestLoadRacingInvalidate(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	g := NewGroup(nil)
	g.Add(c)

	v, hit, err := Load(g, c, "k", func() (string, error) {
		g.Invalidate()
		return "stale", nil
	})
	if err != nil || hit || v != "stale" {
		t.Fatalf("Load = %q, %v, %v", v, hit, err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("value fetched across an invalidation must not be stored")
	}
}
