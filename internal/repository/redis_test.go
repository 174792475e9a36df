package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisCacheRepository(client, "bistro")
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		err := repo.Set(ctx, "cms:menus", []byte(`{"data":[{"id":1}]}`), time.Minute)
		require.NoError(t, err)

		got, ok, err := repo.Get(ctx, "cms:menus")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"data":[{"id":1}]}`, string(got))
		assert.True(t, s.Exists("bistro:cms:menus"))
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, ok, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("TTL", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "ttl", []byte("v"), time.Second))
		s.FastForward(2 * time.Second)

		_, ok, err := repo.Get(ctx, "ttl")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "x", []byte("1"), time.Minute))
		require.NoError(t, repo.Delete(ctx, "x"))
		require.NoError(t, repo.Delete(ctx))

		_, ok, _ := repo.Get(ctx, "x")
		assert.False(t, ok)
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "login:admin"
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisCacheRepository(nil, "")
		_, _, err := repo.Get(ctx, "k")
		assert.ErrorIs(t, err, errNilClient)
		assert.Error(t, Ping(ctx, nil))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("Close", func(t *testing.T) {
		assert.NoError(t, Close(client))
	})
}
