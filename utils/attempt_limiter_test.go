package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiterForTest(t *testing.T, max int, window time.Duration) (*miniredis.Miniredis, AttemptLimiter) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, NewAttemptLimiter(client, max, window)
}

func TestRedisAttemptLimiter_BlocksAfterMaxAndResets(t *testing.T) {
	m, l := newLimiterForTest(t, 2, time.Hour)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "9876543210"))
	require.NoError(t, l.Allow(ctx, "9876543210"))
	err := l.Allow(ctx, "9876543210")
	assert.True(t, IsKind(err, KindRateLimited))

	// other mobiles are counted separately
	assert.NoError(t, l.Allow(ctx, "1111111111"))

	assert.Equal(t, time.Hour, m.TTL("otp_attempts:9876543210"))
	m.FastForward(time.Hour)
	assert.NoError(t, l.Allow(ctx, "9876543210"))
}

func TestRedisAttemptLimiter_RepairsCounterWithoutTTL(t *testing.T) {
	m, l := newLimiterForTest(t, 5, time.Hour)
	// left behind when the first Expire failed
	require.NoError(t, m.Set("otp_attempts:9876543210", "9"))

	err := l.Allow(context.Background(), "9876543210")
	assert.True(t, IsKind(err, KindRateLimited))
	assert.Equal(t, time.Hour, m.TTL("otp_attempts:9876543210"))

	m.FastForward(time.Hour)
	assert.NoError(t, l.Allow(context.Background(), "9876543210"))
}

func TestRedisAttemptLimiter_BackendError(t *testing.T) {
	m, l := newLimiterForTest(t, 5, time.Hour)
	m.Close()

	err := l.Allow(context.Background(), "9876543210")
	require.Error(t, err)
	assert.False(t, IsKind(err, KindRateLimited))
}
