package worker

import (
	"context"
	"time"

	"bistro/internal/domain"

	"github.com/rs/zerolog"
)

// MenuRefresher reloads the catalog on a fixed interval and backs off after
// failed attempts.
type MenuRefresher struct {
	target   domain.MenuRefresher
	interval time.Duration
	retry    RetryPolicy
	logger   *zerolog.Logger

	failures int
}

func NewMenuRefresher(target domain.MenuRefresher, interval time.Duration, retry RetryPolicy, logger *zerolog.Logger) *MenuRefresher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	retry = retry.WithDefaults()
	if retry.MaxDelay > interval {
		retry.MaxDelay = interval
	}
	return &MenuRefresher{
		target:   target,
		interval: interval,
		retry:    retry,
		logger:   logger,
	}
}

// RunOnce refreshes and returns how long to wait before the next attempt.
func (w *MenuRefresher) RunOnce(ctx context.Context) time.Duration {
	err := w.target.Refresh(ctx)
	if err == nil {
		if w.failures > 0 {
			w.logger.Info().Int("failures", w.failures).Msg("menu refresh recovered")
		}
		w.failures = 0
		return w.interval
	}

	w.failures++
	if w.retry.Exhausted(w.failures) {
		w.logger.Error().Err(err).Int("attempt", w.failures).Msg("menu refresh keeps failing, back to regular interval")
		w.failures = 0
		return w.interval
	}
	delay := w.retry.NextDelay(w.failures)
	w.logger.Warn().Err(err).Int("attempt", w.failures).Dur("retry_in", delay).Msg("menu refresh failed")
	return delay
}

// Start refreshes immediately and then keeps going until ctx is done.
func (w *MenuRefresher) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("menu refresher started")
	defer w.logger.Info().Msg("menu refresher stopped")

	for {
		delay := w.RunOnce(ctx)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
