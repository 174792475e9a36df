package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bistro/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverCacheRepository переключается на резервное хранилище, пока основное недоступно.
type FailoverCacheRepository struct {
	primary   domain.CacheRepository
	fallback  domain.CacheRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverCacheRepository(primary, fallback domain.CacheRepository, logger *zerolog.Logger) *FailoverCacheRepository {
	return &FailoverCacheRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// usePrimary сообщает, стоит ли обращаться к основному хранилищу.
// Раз в минуту после сбоя пропускает пробный запрос.
func (r *FailoverCacheRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) > recoveryInterval {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverCacheRepository) markResult(op string, err error) {
	if err == nil {
		if r.isDown.Swap(false) {
			r.logger.Info().Str("op", op).Msg("Primary cache repository recovered")
		}
		return
	}
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Str("op", op).Msg("Primary cache repository failed, falling back to memory")
	}
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverCacheRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.usePrimary() {
		val, ok, err := r.primary.Get(ctx, key)
		r.markResult("get", err)
		if err == nil {
			return val, ok, nil
		}
	}
	return r.fallback.Get(ctx, key)
}

func (r *FailoverCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.Set(ctx, key, value, ttl)
		r.markResult("set", err)
		if err == nil {
			return nil
		}
	}
	return r.fallback.Set(ctx, key, value, ttl)
}

// Delete всегда чистит и резервное хранилище.
func (r *FailoverCacheRepository) Delete(ctx context.Context, keys ...string) error {
	if r.usePrimary() {
		err := r.primary.Delete(ctx, keys...)
		r.markResult("delete", err)
	}
	return r.fallback.Delete(ctx, keys...)
}

func (r *FailoverCacheRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		r.markResult("rate_limit", err)
		if err == nil {
			return allowed, nil
		}
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}

// IsDown сообщает, работает ли репозиторий на резервном хранилище.
func (r *FailoverCacheRepository) IsDown() bool {
	return r.isDown.Load()
}
