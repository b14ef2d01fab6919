// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache[V any](t *testing.T, ttl time.Duration) (*Cache[V], *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := New[V](ttl)
	c.now = clk.Now
	t.Cleanup(c.Close)
	return c, clk
}

func TestCache_SetGet(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache[string](t, time.Minute)

	c.Set("k1", "v1")
	if v, ok := c.Get("k1"); !ok || v != "v1" {
		t.Errorf("Get(k1) = %q, %v", v, ok)
	}
	if v, ok := c.Get("missing"); ok || v != "" {
		t.Errorf("Get(missing) = %q, %v", v, ok)
	}

	s := c.GetStats()
	if s.Hits != 1 || s.Misses != 1 || s.TotalKeys != 1 {
		t.Errorf("stats = %+v", s)
	}
	if c.HitRate() != 50 {
		t.Errorf("HitRate() = %v, want 50", c.HitRate())
	}
}

func TestCache_Expiration(t *testing.T) {
	t.Parallel()
	c, clk := newTestCache[int](t, time.Minute)

	c.Set("short", 1)
	c.SetWithTTL("long", 2, time.Hour)
	clk.Advance(2 * time.Minute)

	if _, ok := c.Get("short"); ok {
		t.Error("short entry survived its TTL")
	}
	if v, ok := c.Get("long"); !ok || v != 2 {
		t.Errorf("Get(long) = %v, %v", v, ok)
	}
	if c.GetStats().Evictions != 1 {
		t.Errorf("evictions = %d, want 1", c.GetStats().Evictions)
	}
}

func TestCache_Cleanup(t *testing.T) {
	t.Parallel()
	c, clk := newTestCache[int](t, time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprint(i), i)
	}
	c.SetWithTTL("keep", 9, time.Hour)
	clk.Advance(time.Minute + time.Second)

	c.cleanup()
	if c.Len() != 1 {
		t.Errorf("Len() = %d after cleanup, want 1", c.Len())
	}
	s := c.GetStats()
	if s.Evictions != 5 || s.TotalKeys != 1 || !s.LastCleanup.Equal(clk.Now()) {
		t.Errorf("stats = %+v", s)
	}
}

func TestCache_DeleteClear(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache[[]string](t, time.Minute)
	c.Set("a", []string{"x"})
	c.Set("b", nil)
	c.Set("c", []string{"y", "z"})

	c.Delete("a")
	c.Delete("nope")
	if _, ok := c.Get("a"); ok {
		t.Error("a not deleted")
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("evictions after delete = %d, want 1", got)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
	if got := c.GetStats().Evictions; got != 3 {
		t.Errorf("evictions after clear = %d, want 3", got)
	}
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache[int](t, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("%d-%d", g, i%10)
				c.Set(key, i)
				c.Get(key)
				if i%25 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 80 {
		t.Errorf("Len() = %d, want <= 80", c.Len())
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()
	type filter struct {
		Kind     string `json:"kind"`
		Category string `json:"category"`
	}
	a := GenerateKey("items", filter{Kind: "design", Category: "branding"})
	b := GenerateKey("items", filter{Kind: "design", Category: "branding"})
	c := GenerateKey("items", filter{Kind: "design", Category: "web"})
	if a != b {
		t.Errorf("same params produced %q and %q", a, b)
	}
	if a == c {
		t.Error("different params collided")
	}
	if got := GenerateKey("x", func() {}); got == "" {
		t.Error("unencodable params produced empty key")
	}
}
