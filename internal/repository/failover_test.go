package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *mockRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *mockRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverCacheRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverCacheRepository(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Get", ctx, "k1").Return([]byte("v1"), true, nil).Once()

		got, ok, err := repo.Get(ctx, "k1")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v1"), got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("Get", ctx, "k2").Return(nil, false, errors.New("fail")).Once()
		fallback.On("Get", ctx, "k2").Return([]byte("v2"), true, nil).Once()

		got, ok, err := repo.Get(ctx, "k2")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v2"), got)
		assert.True(t, repo.IsDown())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now()
		fallback.On("Set", ctx, "k", []byte("v"), time.Minute).Return(nil).Once()

		assert.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))
		primary.AssertNotCalled(t, "Set", ctx, "k", []byte("v"), time.Minute)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)
		primary.On("Get", ctx, "k3").Return([]byte("v3"), true, nil).Once()

		got, _, err := repo.Get(ctx, "k3")
		assert.NoError(t, err)
		assert.Equal(t, []byte("v3"), got)
		assert.False(t, repo.IsDown())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)
		primary.On("Get", ctx, "k33").Return(nil, false, errors.New("still fail")).Once()
		fallback.On("Get", ctx, "k33").Return(nil, false, nil).Once()

		_, ok, err := repo.Get(ctx, "k33")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, repo.IsDown())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("DeleteClearsBoth", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("Delete", ctx, []string{"a", "b"}).Return(nil).Once()
		fallback.On("Delete", ctx, []string{"a", "b"}).Return(nil).Once()

		assert.NoError(t, repo.Delete(ctx, "a", "b"))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("CheckRateLimitSuccess", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("CheckRateLimit", ctx, "login:a", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "login:a", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		primary.AssertExpectations(t)
	})

	t.Run("CheckRateLimitFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("CheckRateLimit", ctx, "login:b", 10, time.Minute).Return(false, errors.New("fail")).Once()
		fallback.On("CheckRateLimit", ctx, "login:b", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "login:b", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.IsDown())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("Set", ctx, "s", []byte("1"), time.Second).Return(errors.New("fail")).Once()
		fallback.On("Set", ctx, "s", []byte("1"), time.Second).Return(nil).Once()

		assert.NoError(t, repo.Set(ctx, "s", []byte("1"), time.Second))
		assert.True(t, repo.IsDown())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}
