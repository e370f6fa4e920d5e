package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
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

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestCacheSetGet(t *testing.T) {
	c := New[string, int](time.Minute)

	c.Set("key1", 42)
	val, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, 42, val)

	_, ok = c.Get("nonexistent")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	clock := newClock()
	c := New[string, string](time.Minute, WithClock(clock.Now))

	c.Set("key", "value")
	_, ok := c.Get("key")
	require.True(t, ok)

	clock.Advance(2 * time.Minute)

	_, ok = c.Get("key")
	assert.False(t, ok, "expected key to be expired after time advance")
}

func TestCacheDelete(t *testing.T) {
	c := New[string, int](time.Minute)

	c.Set("key", 100)
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)

	// Deleting a missing key is a no-op.
	c.Delete("nonexistent")
}

func TestCacheCleanup(t *testing.T) {
	clock := newClock()
	c := New[string, string](time.Minute, WithClock(clock.Now))

	c.Set("key1", "val1")
	c.Set("key2", "val2")
	clock.Advance(2 * time.Minute)
	c.Set("key3", "val3")

	c.Cleanup()

	assert.Equal(t, 1, c.Len())
	val, ok := c.Get("key3")
	require.True(t, ok)
	assert.Equal(t, "val3", val)
}

func TestCacheGetOrLoad(t *testing.T) {
	clock := newClock()
	c := New[string, int](time.Minute, WithClock(clock.Now))

	var calls int
	load := func() (int, error) {
		calls++
		return calls * 10, nil
	}

	v, err := c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 10, v, "second call should be served from cache")
	assert.Equal(t, 1, calls)

	clock.Advance(2 * time.Minute)
	v, err = c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 20, v, "expired entry should be reloaded")
}

func TestCacheGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c := New[string, int](time.Minute)
	boom := errors.New("boom")

	_, err := c.GetOrLoad("k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.GetOrLoad("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCacheGetOrLoadCollapsesConcurrentMisses(t *testing.T) {
	c := New[string, int](time.Minute)
	var calls atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad("shared", func() (int, error) {
				calls.Add(1)
				time.Sleep(5 * time.Millisecond)
				return 99, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 99, v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestCacheObserver(t *testing.T) {
	var mu sync.Mutex
	results := map[string]int{}
	c := New[string, int](time.Minute, WithObserver(func(op, result string) {
		mu.Lock()
		defer mu.Unlock()
		results[op+":"+result]++
	}))

	c.Get("missing")
	c.Set("k", 1)
	c.Get("k")
	c.Get("k")

	assert.Equal(t, 1, results["get:miss"])
	assert.Equal(t, 2, results["get:hit"])
}

func TestCacheConcurrency(t *testing.T) {
	c := New[int, int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set(i, i*2)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			val, ok := c.Get(i)
			if assert.True(t, ok, "key %d", i) {
				assert.Equal(t, i*2, val)
			}
		}(i)
	}
	wg.Wait()
}

func TestCacheWithStructKey(t *testing.T) {
	type listingKey struct {
		Category string
		Search   string
	}

	c := New[listingKey, []string](time.Minute)
	c.Set(listingKey{Category: "Cardigan", Search: "wool"}, []string{"a", "b"})

	val, ok := c.Get(listingKey{Category: "Cardigan", Search: "wool"})
	require.True(t, ok)
	assert.Len(t, val, 2)

	_, ok = c.Get(listingKey{Category: "Cardigan", Search: "cotton"})
	assert.False(t, ok)
}
