package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimpleCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := NewInMemory(ctx, WithExpiryCheck(time.Second))
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestSetGetCache(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewInMemory(ctx, WithExpiryCheck(time.Minute), WithClock(clock.Now))
	defer c.Close()

	found, val, err := c.Get(ctx, "test")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)

	assert.NoError(t, c.Set(ctx, "test", "value", 10*time.Second))
	found, val, err = c.Get(ctx, "test")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value", val)

	ok, hits := c.Hits(ctx, "test")
	assert.True(t, ok)
	assert.Equal(t, 1, hits)

	clock.Advance(11 * time.Second)
	found, val, err = c.Get(ctx, "test")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)
	ok, hits = c.Hits(ctx, "test")
	assert.False(t, ok)
	assert.Equal(t, 0, hits)
}

func TestCacheDefaultExpires(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewInMemory(ctx, WithExpires(time.Minute), WithClock(clock.Now))
	defer c.Close()

	assert.NoError(t, c.Set(ctx, "k", 42, 0))
	clock.Advance(59 * time.Second)
	found, _, _ := c.Get(ctx, "k")
	assert.True(t, found)
	clock.Advance(2 * time.Second)
	found, _, _ = c.Get(ctx, "k")
	assert.False(t, found)
}

func TestCacheSweep(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewInMemory(ctx, WithClock(clock.Now)).(*inMemoryCache)
	defer c.Close()

	assert.NoError(t, c.Set(ctx, "a", "1", time.Second))
	assert.NoError(t, c.Set(ctx, "b", "2", time.Hour))
	clock.Advance(2 * time.Second)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeExpired()
	assert.Len(t, c.entries, 1)
	assert.Contains(t, c.entries, "b")
}

func TestCacheExpire(t *testing.T) {
	ctx := context.Background()
	c := NewInMemory(ctx)
	defer c.Close()

	assert.NoError(t, c.Set(ctx, "test", "value", time.Minute))
	found, err := c.Expire(ctx, "test")
	assert.NoError(t, err)
	assert.True(t, found)
	found, err = c.Expire(ctx, "test")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestGenericGetInMemory(t *testing.T) {
	ctx := context.Background()
	c := NewInMemory(ctx)
	defer c.Close()

	want := page{Records: []string{"a", "b"}, Total: 2}
	assert.NoError(t, c.Set(ctx, "p", want, time.Minute))
	ok, got, err := Get[page](ctx, c, "p")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	_, _, err = Get[int](ctx, c, "p")
	assert.Error(t, err)
}

func TestInMemoryMaxEntries(t *testing.T) {
	ctx := context.Background()
	c := NewInMemory(ctx, WithMaxEntries(2))
	defer c.Close()

	assert.NoError(t, c.Set(ctx, "short", 1, time.Minute))
	assert.NoError(t, c.Set(ctx, "long", 2, time.Hour))
	assert.NoError(t, c.Set(ctx, "short", 3, time.Minute))
	found, val, _ := c.Get(ctx, "short")
	assert.True(t, found)
	assert.Equal(t, 3, val)

	assert.NoError(t, c.Set(ctx, "new", 4, 30*time.Minute))
	found, _, _ = c.Get(ctx, "short")
	assert.False(t, found)
	for _, k := range []string{"long", "new"} {
		found, _, _ = c.Get(ctx, k)
		assert.True(t, found, k)
	}
}
