package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestCache_PutGet(t *testing.T) {
	t.Parallel()

	c := cache.New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Put("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	var evicted []string
	c := cache.New(2, cache.WithEvictCallback(func(key string, _ int) {
		evicted = append(evicted, key)
	}))

	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []string{"b"}, evicted)
}

func TestCache_TTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := cache.New(4,
		cache.WithTTL[string, string](time.Minute),
		cache.WithClock[string, string](clock.Now),
	)

	c.Put("products", "list")
	clock.Advance(59 * time.Second)
	v, ok := c.Get("products")
	require.True(t, ok)
	assert.Equal(t, "list", v)

	clock.Advance(time.Second)
	_, ok = c.Get("products")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	c.Put("categories", "cats")
	clock.Advance(30 * time.Second)
	c.Put("categories", "cats-v2")
	clock.Advance(45 * time.Second)
	v, ok = c.Get("categories")
	require.True(t, ok, "put refreshes expiry")
	assert.Equal(t, "cats-v2", v)
}

func TestCache_RemoveAndClear(t *testing.T) {
	t.Parallel()

	count := 0
	c := cache.New(3, cache.WithEvictCallback(func(string, int) { count++ }))
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 3, count)
}

func TestCache_PanicsOnInvalidCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.New[string, int](0) })
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.New[string, int](16)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d", (i+j)%32)
				c.Put(key, j)
				_, _ = c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}
