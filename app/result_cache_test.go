package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"datalens/domain/core"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration, max int) (*ResultCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewResultCache(ttl, max)
	c.now = clock.now
	return c, clock
}

func TestCacheKey_ParamOrderIndependent(t *testing.T) {
	a := CacheKey("ds", "outliers", map[string]string{"method": "iqr", "threshold": "1.5"})
	b := CacheKey("ds", "outliers", map[string]string{"threshold": "1.5", "method": "iqr"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, CacheKey("ds", "outliers", map[string]string{"method": "zscore", "threshold": "1.5"}))
	assert.NotEqual(t, a, CacheKey("other", "outliers", map[string]string{"method": "iqr", "threshold": "1.5"}))
}

func TestResultCache_TTL(t *testing.T) {
	c, clock := newTestCache(time.Minute, 10)
	c.Put("k", "ds", 42)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	clock.advance(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestResultCache_EvictsOldest(t *testing.T) {
	c, clock := newTestCache(0, 2)
	c.Put("a", "ds", 1)
	clock.advance(time.Second)
	c.Put("b", "ds", 2)
	clock.advance(time.Second)
	c.Put("c", "ds", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestResultCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(0, 10)
	c.Put("a", "one", 1)
	c.Put("b", "one", 2)
	c.Put("c", "two", 3)

	assert.Equal(t, 2, c.Invalidate(core.ID("one")))
	assert.Equal(t, 1, c.Len())
}

func TestResultCache_Disabled(t *testing.T) {
	c := NewResultCache(time.Minute, 0)
	c.Put("a", "ds", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)

	var nilCache *ResultCache
	nilCache.Put("a", "ds", 1)
	_, ok = nilCache.Get("a")
	assert.False(t, ok)
}
