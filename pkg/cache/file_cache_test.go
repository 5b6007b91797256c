package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileCache(t *testing.T) *FileCache {
	t.Helper()
	fc, err := NewFileCache(t.TempDir(), discardLogger)
	require.NoError(t, err)
	return fc
}

func TestFileCache_SetGet(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	payload := []byte(`{"columns":["id"],"rows":[[1]]}`)
	require.NoError(t, fc.Set(ctx, "query:1", payload, time.Minute))

	value, err := fc.Get(ctx, "query:1")
	require.NoError(t, err)
	assert.Equal(t, payload, value)

	_, err = fc.Get(ctx, "query:2")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestFileCache_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileCache(dir, discardLogger)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "query:abc", []byte("rows"), time.Hour))
	require.NoError(t, first.Close())

	second, err := NewFileCache(dir, discardLogger)
	require.NoError(t, err)

	value, err := second.Get(ctx, "query:abc")
	require.NoError(t, err)
	assert.Equal(t, "rows", string(value))
}

func TestFileCache_TTL(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	require.NoError(t, fc.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	require.NoError(t, fc.Set(ctx, "forever", []byte("y"), 0))

	time.Sleep(30 * time.Millisecond)

	_, err := fc.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, statErr := os.Stat(fc.path("short"))
	assert.True(t, os.IsNotExist(statErr), "expired entry must be removed on read")

	value, err := fc.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "y", string(value))
}

func TestFileCache_CorruptFileIsMiss(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	path := fc.path("query:broken")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := fc.Get(ctx, "query:broken")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileCache_DeleteFlush(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	require.NoError(t, fc.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, fc.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, fc.Delete(ctx, "a"))
	require.NoError(t, fc.Delete(ctx, "missing"))

	_, err := fc.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, fc.Flush(ctx))
	_, err = fc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)

	entries, err := os.ReadDir(fc.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileCache_Sweep(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	require.NoError(t, fc.Set(ctx, "old", []byte("1"), time.Second))
	require.NoError(t, fc.Set(ctx, "fresh", []byte("2"), time.Hour))
	require.NoError(t, fc.Set(ctx, "forever", []byte("3"), 0))

	cleaned, err := fc.Sweep(time.Now().Add(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, cleaned)

	_, err = fc.Get(ctx, "fresh")
	assert.NoError(t, err)
	_, err = fc.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestFileCache_Remember(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	calls := 0
	callback := func() ([]byte, error) {
		calls++
		return []byte("result"), nil
	}

	for i := 0; i < 2; i++ {
		fc, err := NewFileCache(dir, discardLogger)
		require.NoError(t, err)
		value, err := Remember(ctx, fc, discardLogger, "query:1", time.Minute, callback)
		require.NoError(t, err)
		assert.Equal(t, "result", string(value))
	}
	assert.Equal(t, 1, calls)
}
