package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/fretmastery/internal/diagram"
	"github.com/desertthunder/fretmastery/internal/shared"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "exercise-3-E2-E4.svg", FileName(3, "E2-E4"))
	assert.Equal(t, "exercise-12-Fs2-As3.svg", FileName(12, "F#2-A#3"))
	assert.Equal(t, "exercise-1-___x.svg", FileName(1, "../x"))
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "diagrams")
	store := NewFileStore(dir, "/static/diagrams/")

	t.Run("Save writes the file and returns its public path", func(t *testing.T) {
		path, err := store.Save("exercise-1-E2-E4.svg", []byte("<svg/>"))
		require.NoError(t, err)
		assert.Equal(t, "/static/diagrams/exercise-1-E2-E4.svg", path)

		data, err := os.ReadFile(filepath.Join(dir, "exercise-1-E2-E4.svg"))
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", string(data))

		read, err := store.Read("exercise-1-E2-E4.svg")
		require.NoError(t, err)
		assert.Equal(t, data, read)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		_, err := store.Save("a.svg", []byte("one"))
		require.NoError(t, err)
		_, err = store.Save("a.svg", []byte("two"))
		require.NoError(t, err)

		data, err := store.Read("a.svg")
		require.NoError(t, err)
		assert.Equal(t, "two", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".a.svg.", "temp files should be cleaned up")
		}
	})

	t.Run("rejects names that escape the directory", func(t *testing.T) {
		for _, name := range []string{"", "../evil.svg", "sub/x.svg", ".hidden"} {
			_, err := store.Save(name, []byte("x"))
			assert.Error(t, err, name)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		path, err := store.Save("gone.svg", []byte("x"))
		require.NoError(t, err)

		require.NoError(t, store.Remove(path))
		_, err = os.Stat(filepath.Join(dir, "gone.svg"))
		assert.True(t, os.IsNotExist(err))

		assert.NoError(t, store.Remove(path), "removing twice is fine")
		assert.NoError(t, store.Remove("/elsewhere/file.svg"))
		assert.NoError(t, store.Remove(""))
	})

	t.Run("NameOf", func(t *testing.T) {
		name, ok := store.NameOf("/static/diagrams/x.svg")
		assert.True(t, ok)
		assert.Equal(t, "x.svg", name)

		_, ok = store.NameOf("/static/diagrams/../x.svg")
		assert.False(t, ok)
	})
}

func TestCacheKey(t *testing.T) {
	base := CacheKey("E2-E4", diagram.Options{})

	assert.Equal(t, base, CacheKey("E2-E4", diagram.Options{}))
	assert.NotEqual(t, base, CacheKey("E2-E5", diagram.Options{}))
	assert.NotEqual(t, base, CacheKey("E2-E4", diagram.Options{ShowOctave: true}))
	assert.NotEqual(t, base, CacheKey("E2-E4", diagram.Options{Width: 800}))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, cache.Set(ctx, "forever", []byte("f"), 0))

	v, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(2 * time.Minute)

	_, ok, _ = cache.Get(ctx, "k")
	assert.False(t, ok, "entry should expire")

	_, ok, _ = cache.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, cache.Len())
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	c, err := NewCache(ctx, shared.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, NopCache{}, c)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)

	c, err = NewCache(ctx, shared.CacheConfig{Enabled: true})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	_, err = NewCache(ctx, shared.CacheConfig{Enabled: true, RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}
