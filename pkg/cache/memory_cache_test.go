package cache

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = log.New(io.Discard, "", 0)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	mc := NewMemoryCache(discardLogger)
	t.Cleanup(func() { _ = mc.Close() })
	return mc
}

func TestMemoryCache_SetGet(t *testing.T) {
	mc := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "query:1", []byte(`{"rows":[]}`), time.Minute))

	value, err := mc.Get(ctx, "query:1")
	require.NoError(t, err)
	assert.Equal(t, `{"rows":[]}`, string(value))

	_, err = mc.Get(ctx, "query:2")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_TTL(t *testing.T) {
	mc := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	require.NoError(t, mc.Set(ctx, "forever", []byte("y"), 0))

	time.Sleep(30 * time.Millisecond)

	_, err := mc.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	value, err := mc.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "y", string(value))
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	mc := newTestMemoryCache(t)
	ctx := context.Background()

	original := []byte("abc")
	require.NoError(t, mc.Set(ctx, "k", original, 0))
	original[0] = 'z'

	value, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(value))

	value[1] = 'z'
	again, _ := mc.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryCache_DeleteFlush(t *testing.T) {
	mc := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, mc.Delete(ctx, "a"))
	require.NoError(t, mc.Delete(ctx, "missing"))
	assert.Equal(t, 1, mc.Len())

	require.NoError(t, mc.Flush(ctx))
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCache_EvictExpired(t *testing.T) {
	mc := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "old", []byte("1"), time.Second))
	require.NoError(t, mc.Set(ctx, "fresh", []byte("2"), time.Hour))
	require.NoError(t, mc.Set(ctx, "forever", []byte("3"), 0))

	evicted := mc.evictExpired(time.Now().Add(2 * time.Second))
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 2, mc.Len())
}

func TestMemoryCache_BackgroundCollection(t *testing.T) {
	mc := NewMemoryCacheWithInterval(discardLogger, 10*time.Millisecond)
	defer mc.Close()

	require.NoError(t, mc.Set(context.Background(), "k", []byte("v"), time.Millisecond))

	assert.Eventually(t, func() bool { return mc.Len() == 0 }, time.Second, 10*time.Millisecond)
}
