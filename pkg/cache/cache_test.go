package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCache, her işlemde hata dönen driver.
type failingCache struct {
	err error
}

func (f failingCache) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return f.err
}
func (f failingCache) Delete(context.Context, string) error { return f.err }
func (f failingCache) Flush(context.Context) error          { return f.err }
func (f failingCache) Close() error                         { return nil }

func TestRemember(t *testing.T) {
	mc := newTestMemoryCache(t)
	ctx := context.Background()

	calls := 0
	callback := func() ([]byte, error) {
		calls++
		return []byte("result"), nil
	}

	for i := 0; i < 3; i++ {
		value, err := Remember(ctx, mc, discardLogger, "query:1", time.Minute, callback)
		require.NoError(t, err)
		assert.Equal(t, "result", string(value))
	}
	assert.Equal(t, 1, calls)
}

func TestRemember_CallbackError(t *testing.T) {
	mc := newTestMemoryCache(t)
	boom := errors.New("query failed")

	_, err := Remember(context.Background(), mc, discardLogger, "k", time.Minute, func() ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, mc.Len())
}

func TestRemember_CacheErrorsAreNotFatal(t *testing.T) {
	c := failingCache{err: errors.New("redis down")}

	value, err := Remember(context.Background(), c, discardLogger, "k", time.Minute, func() ([]byte, error) {
		return []byte("fresh"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(value))
}

func TestOpen(t *testing.T) {
	for _, driver := range []string{"", "memory", " MEMORY "} {
		c, err := Open(Options{Driver: driver}, discardLogger)
		require.NoError(t, err)
		assert.IsType(t, &MemoryCache{}, c)
		require.NoError(t, c.Close())
	}

	dir := t.TempDir()
	c, err := Open(Options{Driver: "file", Dir: dir}, discardLogger)
	require.NoError(t, err)
	require.IsType(t, &FileCache{}, c)
	assert.Equal(t, dir, c.(*FileCache).Dir())

	_, err = Open(Options{Driver: "file"}, discardLogger)
	assert.Error(t, err)

	_, err = Open(Options{Driver: "disk"}, discardLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geçersiz cache driver")
}

func TestOpen_RedisUnreachable(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Port = 1
	cfg.DialTimeout = 100 * time.Millisecond

	_, err := Open(Options{Driver: "redis", Redis: cfg}, discardLogger)
	assert.Error(t, err)
}

func TestRedisCache_KeyAndErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	rc := NewRedisCache(client, discardLogger, "composer:")
	defer rc.Close()

	assert.Equal(t, "composer:query:1", rc.Key("query:1"))

	_, err := rc.Get(context.Background(), "query:1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Contains(t, err.Error(), "redis get failed")

	err = rc.Set(context.Background(), "query:1", []byte("x"), time.Minute)
	assert.Contains(t, err.Error(), "redis set failed")

	assert.Contains(t, rc.Stats(), "total_conns")
}
