// Package ratelimit implements fixed-window request counting backed by a
// shared Redis counter store.
//
// One counter exists per (scope, window) pair. Windows are aligned to
// multiples of the window length since the epoch and identified by their end
// timestamp, so a scope's key changes exactly once per window. Counters
// self-expire shortly after their window ends; no cleanup pass is needed.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pulsemetrics/analytics-api/pkg/constants"
	"github.com/pulsemetrics/analytics-api/pkg/errors"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// Result is the outcome of one admission check. Immutable once produced.
type Result struct {
	// Limit is the configured request limit for the window.
	Limit int

	// Per is the window length in seconds.
	Per int

	// WindowEnd is the end of the current window as epoch seconds. The counter
	// resets (by key change) at this instant.
	WindowEnd int64

	// Current is the scope's usage in the current window, capped at Limit for
	// exposure. The raw store counter may run past Limit under concurrent
	// bursts; that slack is inherent to the fixed-window algorithm.
	Current int64
}

// Remaining returns the quota left in the current window. Never negative.
func (r *Result) Remaining() int64 {
	remaining := int64(r.Limit) - r.Current
	if remaining < 0 {
		return 0
	}
	return remaining
}

// OverLimit reports whether the scope's usage reached the limit.
func (r *Result) OverLimit() bool {
	return r.Current >= int64(r.Limit)
}

// FixedWindowLimiter tracks per-scope usage in aligned fixed windows using a
// single atomic increment-and-expire round trip per check.
type FixedWindowLimiter struct {
	client  redis.UniversalClient
	logger  logger.Logger
	grace   time.Duration
	timeout time.Duration
	now     func() time.Time
}

// Option configures a FixedWindowLimiter.
type Option func(*FixedWindowLimiter)

// WithExpirationWindow sets the grace period past a window's end before its
// counter key expires.
func WithExpirationWindow(grace time.Duration) Option {
	return func(l *FixedWindowLimiter) { l.grace = grace }
}

// WithCheckTimeout bounds the store round trip of a single check.
func WithCheckTimeout(timeout time.Duration) Option {
	return func(l *FixedWindowLimiter) { l.timeout = timeout }
}

// WithClock overrides the wall clock. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindowLimiter) { l.now = now }
}

// NewFixedWindowLimiter creates a limiter on top of an injected Redis client.
// The client owns its connection lifecycle; the limiter never reconnects or
// retries on its own.
func NewFixedWindowLimiter(client redis.UniversalClient, log logger.Logger, opts ...Option) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		client:  client,
		logger:  log,
		grace:   constants.DefaultExpirationWindow,
		timeout: constants.DefaultCheckTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Hit records one request against the scope identified by keyPrefix and
// returns the scope's usage in the current window.
//
// The increment and the expiry refresh are submitted as one pipelined round
// trip, so no other process can observe the incremented counter without its
// expiry already scheduled. A store failure is surfaced as a
// CodeStoreUnavailable error; callers decide the fail-open policy.
func (l *FixedWindowLimiter) Hit(ctx context.Context, keyPrefix string, limit, per int) (*Result, error) {
	if limit <= 0 || per <= 0 {
		return nil, errors.ErrInvalidConfig("rate limit and window length must be positive")
	}

	windowEnd := (l.now().Unix()/int64(per))*int64(per) + int64(per)
	key := keyPrefix + strconv.FormatInt(windowEnd, 10)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var incr *redis.IntCmd
	_, err := l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireAt(ctx, key, time.Unix(windowEnd, 0).Add(l.grace))
		return nil
	})
	if err != nil {
		l.logger.Warn(ctx, "rate limit counter store round trip failed",
			logger.String("key", key),
			logger.String("error", err.Error()),
		)
		return nil, errors.ErrStoreUnavailable(err)
	}

	current := incr.Val()
	if current > int64(limit) {
		current = int64(limit)
	}

	return &Result{
		Limit:     limit,
		Per:       per,
		WindowEnd: windowEnd,
		Current:   current,
	}, nil
}
