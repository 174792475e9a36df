package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRepository(t *testing.T) {
	repo := NewMemoryCacheRepository()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "menus", []byte(`{"data":[]}`), time.Minute))

		got, ok, err := repo.Get(ctx, "menus")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"data":[]}`, string(got))
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "short", []byte("x"), time.Second))
		now = now.Add(2 * time.Second)

		_, ok, err := repo.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "a", []byte("1"), 0))
		require.NoError(t, repo.Set(ctx, "b", []byte("2"), 0))
		require.NoError(t, repo.Delete(ctx, "a", "b"))

		_, ok, _ := repo.Get(ctx, "a")
		assert.False(t, ok)
		_, ok, _ = repo.Get(ctx, "b")
		assert.False(t, ok)
	})

	t.Run("ReturnedSliceIsCopy", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "c", []byte("abc"), 0))
		got, _, _ := repo.Get(ctx, "c")
		got[0] = 'z'

		again, _, _ := repo.Get(ctx, "c")
		assert.Equal(t, "abc", string(again))
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "login:manager"
		allowed, _ := repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.False(t, allowed)

		now = now.Add(time.Second + 10*time.Millisecond)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
	})
}
