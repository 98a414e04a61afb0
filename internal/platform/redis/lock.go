// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	stdctx "context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when the key stays held by another caller
// for longer than the wait budget.
var ErrLockNotAcquired = errors.New("redis: lock not acquired")

// Lock defaults.
const (
	defaultLockTTL   = 10 * time.Second
	defaultLockWait  = 3 * time.Second
	defaultLockRetry = 50 * time.Millisecond
)

// releaseLua deletes the key only when it still holds the caller's token.
var releaseLua = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serializes work per key across every API instance.
//
// # Failure Mode
//
// When Redis itself is unreachable the locker fails OPEN: the work runs
// unserialized and a warning is logged. Contention is never treated as failure.
type Locker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	logger *slog.Logger
}

// LockOption customises a [Locker].
type LockOption func(*Locker)

// WithLockTTL bounds how long a crashed holder can keep the key.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(locker *Locker) { locker.ttl = ttl }
}

// WithLockWait sets how long [Locker.WithLock] waits for a held key.
func WithLockWait(wait time.Duration) LockOption {
	return func(locker *Locker) { locker.wait = wait }
}

// WithLockLogger sets the logger used for fail-open warnings.
func WithLockLogger(logger *slog.Logger) LockOption {
	return func(locker *Locker) { locker.logger = logger }
}

// NewLocker creates a keyed locker whose keys live under prefix.
func NewLocker(client *redis.Client, prefix string, options ...LockOption) *Locker {
	locker := &Locker{
		client: client,
		prefix: prefix,
		ttl:    defaultLockTTL,
		wait:   defaultLockWait,
		retry:  defaultLockRetry,
		logger: slog.Default(),
	}
	for _, option := range options {
		option(locker)
	}
	return locker
}

/*
WithLock runs work while holding the lock for key.

Parameters:
  - context: Caller context; cancellation aborts the wait.
  - key: Lock identity, appended to the locker prefix.
  - work: The critical section.

Returns:
  - error: [ErrLockNotAcquired] on contention, otherwise whatever work returns
*/
func (locker *Locker) WithLock(context stdctx.Context, key string, work func(stdctx.Context) error) error {
	fullKey := locker.prefix + key
	token := uuid.NewString()

	acquired, err := locker.acquire(context, fullKey, token)
	if err != nil {
		if context.Err() != nil {
			return context.Err()
		}

		// Fail open
		locker.logger.WarnContext(context, "redis_lock_unavailable",
			slog.String("key", fullKey),
			slog.String("error", err.Error()),
		)
		return work(context)
	}

	if !acquired {
		return ErrLockNotAcquired
	}

	defer func() {
		// Release on a fresh context so a cancelled request still frees the key.
		releaseCtx, cancel := stdctx.WithTimeout(stdctx.WithoutCancel(context), writeTimeout)
		defer cancel()

		if err := releaseLua.Run(releaseCtx, locker.client, []string{fullKey}, token).Err(); err != nil {
			locker.logger.WarnContext(context, "redis_lock_release_failed",
				slog.String("key", fullKey),
				slog.String("error", err.Error()),
			)
		}
	}()

	return work(context)
}

// acquire polls SET NX PX until it wins, the wait budget runs out, or Redis errors.
func (locker *Locker) acquire(context stdctx.Context, key, token string) (bool, error) {
	deadline := time.Now().Add(locker.wait)

	for {
		ok, err := locker.client.SetNX(context, key, token, locker.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("redis_lock_acquire_failed: %w", err)
		}
		if ok {
			return true, nil
		}

		if time.Now().Add(locker.retry).After(deadline) {
			return false, nil
		}

		timer := time.NewTimer(locker.retry)
		select {
		case <-context.Done():
			timer.Stop()
			return false, context.Err()
		case <-timer.C:
		}
	}
}
