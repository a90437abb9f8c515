package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsemetrics/analytics-api/pkg/errors"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

func newTestLimiter(t *testing.T, opts ...Option) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewFixedWindowLimiter(client, logger.NewNoopLogger(), opts...), mr
}

func fixedClock(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0) }
}

func TestHit_WindowMath(t *testing.T) {
	// now = 970 with a 60s window puts the window at [960, 1020).
	limiter, mr := newTestLimiter(t, WithClock(fixedClock(970)))

	res, err := limiter.Hit(context.Background(), "rate-limit/test/1.2.3.4/", 100, 60)
	require.NoError(t, err)

	assert.Equal(t, int64(1020), res.WindowEnd)
	assert.Equal(t, int64(1), res.Current)
	assert.Equal(t, int64(99), res.Remaining())
	assert.False(t, res.OverLimit())

	// The counter key embeds the window end, so it changes exactly once per window.
	val, err := mr.Get("rate-limit/test/1.2.3.4/1020")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestHit_CountsMonotonicallyAndCapsExposure(t *testing.T) {
	limiter, mr := newTestLimiter(t, WithClock(fixedClock(970)))

	wantCurrent := []int64{1, 2, 3, 3, 3}
	wantOver := []bool{false, false, true, true, true}
	wantRemaining := []int64{2, 1, 0, 0, 0}

	for i := 0; i < 5; i++ {
		res, err := limiter.Hit(context.Background(), "rate-limit/burst/", 3, 60)
		require.NoError(t, err)
		assert.Equal(t, wantCurrent[i], res.Current, "hit %d", i+1)
		assert.Equal(t, wantOver[i], res.OverLimit(), "hit %d", i+1)
		assert.Equal(t, wantRemaining[i], res.Remaining(), "hit %d", i+1)
	}

	// The raw store counter keeps running past the limit; only the exposed
	// count is capped. That slack is the accepted fixed-window behavior.
	val, err := mr.Get("rate-limit/burst/1020")
	require.NoError(t, err)
	assert.Equal(t, "5", val)
}

func TestHit_SetsExpiryPastWindowEnd(t *testing.T) {
	limiter, mr := newTestLimiter(t,
		WithClock(fixedClock(960)),
		WithExpirationWindow(10*time.Second),
	)
	mr.SetTime(time.Unix(960, 0))

	_, err := limiter.Hit(context.Background(), "rate-limit/ttl/", 10, 60)
	require.NoError(t, err)

	// Window is [960, 1020); the key must outlive the window end by exactly
	// the grace period: 60s of window plus 10s of grace.
	assert.Equal(t, 70*time.Second, mr.TTL("rate-limit/ttl/1020"))
}

func TestHit_WindowBoundaryUsesDistinctKeys(t *testing.T) {
	now := int64(1019)
	limiter, mr := newTestLimiter(t, WithClock(func() time.Time { return time.Unix(now, 0) }))

	first, err := limiter.Hit(context.Background(), "rate-limit/boundary/", 5, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1020), first.WindowEnd)
	assert.Equal(t, int64(1), first.Current)

	// One second later the request lands in the next window and must not see
	// the previous window's usage.
	now = 1020
	second, err := limiter.Hit(context.Background(), "rate-limit/boundary/", 5, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1080), second.WindowEnd)
	assert.Equal(t, int64(1), second.Current)

	assert.True(t, mr.Exists("rate-limit/boundary/1020"))
	assert.True(t, mr.Exists("rate-limit/boundary/1080"))
}

func TestHit_StoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewFixedWindowLimiter(client, logger.NewNoopLogger())

	// Take the store down before the check.
	mr.Close()

	res, err := limiter.Hit(context.Background(), "rate-limit/down/", 10, 60)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.IsStoreUnavailable(err))
}

func TestHit_RejectsInvalidParameters(t *testing.T) {
	limiter, _ := newTestLimiter(t)

	for _, tc := range []struct {
		name       string
		limit, per int
	}{
		{"zero limit", 0, 60},
		{"negative limit", -1, 60},
		{"zero per", 10, 0},
		{"negative per", 10, -60},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := limiter.Hit(context.Background(), "rate-limit/bad/", tc.limit, tc.per)
			assert.Nil(t, res)
			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, errors.CodeInvalidConfig, appErr.Code())
		})
	}
}

func TestResult_RemainingNeverNegative(t *testing.T) {
	res := &Result{Limit: 10, Per: 60, WindowEnd: 1020, Current: 10}
	assert.Equal(t, int64(0), res.Remaining())
	assert.True(t, res.OverLimit())
}
