// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// StatusSweeper advances time-driven statuses.
type StatusSweeper interface {
	SweepStatuses(ctx context.Context) (SweepResult, error)
}

// Sweeper runs a [StatusSweeper] on a fixed interval.
//
// # Concurrency
//
// At most one sweep is in flight. A tick that fires while the previous sweep
// is still running is skipped, not queued.
type Sweeper struct {
	target   StatusSweeper
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewSweeper constructs a [Sweeper]. Each sweep is bounded by timeout.
func NewSweeper(target StatusSweeper, interval, timeout time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		target:   target,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
// It returns after any in-flight sweep has finished.
func (sweeper *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sweeper.interval)
	defer ticker.Stop()

	sweeper.logger.Info("event_sweeper_started", slog.Duration("interval", sweeper.interval))
	sweeper.trigger(ctx)

	for {
		select {
		case <-ctx.Done():
			sweeper.wg.Wait()
			sweeper.logger.Info("event_sweeper_stopped")
			return
		case <-ticker.C:
			sweeper.trigger(ctx)
		}
	}
}

// trigger starts a sweep unless one is already running. It reports whether
// a sweep was started.
func (sweeper *Sweeper) trigger(ctx context.Context) bool {
	if !sweeper.running.CompareAndSwap(false, true) {
		sweeper.logger.Debug("event_sweep_skipped")
		return false
	}

	sweeper.wg.Add(1)
	go func() {
		defer sweeper.wg.Done()
		defer sweeper.running.Store(false)
		sweeper.sweep(ctx)
	}()
	return true
}

func (sweeper *Sweeper) sweep(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, sweeper.timeout)
	defer cancel()

	result, err := sweeper.target.SweepStatuses(ctx)
	if err != nil {
		sweeper.logger.Error("event_sweep_failed", slog.String("error", err.Error()))
		return
	}

	if result.ToOngoing > 0 || result.ToCompleted > 0 {
		sweeper.logger.Info("event_sweep_finished",
			slog.Int64("to_ongoing", result.ToOngoing),
			slog.Int64("to_completed", result.ToCompleted),
		)
	}
}
