package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweepLockKey serializes sweeps across replicas.
const SweepLockKey = "referral:timeout-sweep:lock"

// Sweeper times out stale pending referral requests.
type Sweeper interface {
	SweepTimeouts(ctx context.Context) (int64, error)
}

// Locker grants a short-lived exclusive lock.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// TimeoutSweeper runs the referral timeout sweep on an interval.
type TimeoutSweeper struct {
	sweeper  Sweeper
	locker   Locker
	interval time.Duration
	lockTTL  time.Duration
	logger   *zap.Logger
}

// NewTimeoutSweeper builds the worker. A nil locker runs every sweep locally.
func NewTimeoutSweeper(sweeper Sweeper, locker Locker, interval, lockTTL time.Duration, logger *zap.Logger) *TimeoutSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &TimeoutSweeper{
		sweeper:  sweeper,
		locker:   locker,
		interval: interval,
		lockTTL:  lockTTL,
		logger:   logger,
	}
}

// RunOnce performs a single sweep unless another replica holds the lock. An unreachable lock
// backend does not block the sweep; the conditional update keeps concurrent sweeps safe.
func (w *TimeoutSweeper) RunOnce(ctx context.Context) (int64, bool, error) {
	if w.locker != nil {
		acquired, err := w.locker.AcquireLock(ctx, SweepLockKey, w.lockTTL)
		switch {
		case err != nil:
			w.logger.Warn("sweep lock unavailable, sweeping anyway", zap.Error(err))
		case !acquired:
			w.logger.Debug("sweep lock held elsewhere, skipping")
			return 0, false, nil
		}
	}
	count, err := w.sweeper.SweepTimeouts(ctx)
	return count, true, err
}

// Start runs sweeps until ctx is cancelled. A non-positive interval disables the loop.
func (w *TimeoutSweeper) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("timeout sweeper disabled")
		return
	}
	w.logger.Info("timeout sweeper started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if _, _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("timeout sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			w.logger.Info("timeout sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}
