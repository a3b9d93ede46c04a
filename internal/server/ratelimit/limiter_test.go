package ratelimit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiter_BlocksAfterMaxFailures(t *testing.T) {
	_, client := newTestRedis(t)
	l := NewRedisLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Check(ctx, "test@example.com"), "attempt %d", i+1)
		require.NoError(t, l.RecordFailure(ctx, "test@example.com"))
	}

	require.ErrorIs(t, l.Check(ctx, "test@example.com"), common.ErrRateLimited)
	require.ErrorIs(t, l.Check(ctx, " TEST@example.com "), common.ErrRateLimited, "key is case and space insensitive")
	require.NoError(t, l.Check(ctx, "other@example.com"))
}

func TestRedisLimiter_ZeroLimitDisablesThrottling(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, 0, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.RecordFailure(ctx, "test@example.com"))
		require.NoError(t, l.Check(ctx, "test@example.com"), "attempt %d", i+1)
	}
	assert.Empty(t, mr.Keys())
}

func TestRedisLimiter_WindowExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "a@example.com"))
	require.ErrorIs(t, l.Check(ctx, "a@example.com"), common.ErrRateLimited)

	mr.FastForward(time.Minute + time.Second)
	require.NoError(t, l.Check(ctx, "a@example.com"))
}

func TestRedisLimiter_TTLSetOnFirstHitOnly(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "a@example.com"))
	mr.FastForward(30 * time.Second)
	require.NoError(t, l.RecordFailure(ctx, "a@example.com"))

	assert.Equal(t, 30*time.Second, mr.TTL(key("a@example.com")))
}

func TestRedisLimiter_Reset(t *testing.T) {
	_, client := newTestRedis(t)
	l := NewRedisLimiter(client, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "a@example.com"))
	require.NoError(t, l.Reset(ctx, "a@example.com"))
	require.NoError(t, l.Check(ctx, "a@example.com"))
}

func TestRedisLimiter_NoPlainEmailInKeys(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, 5, time.Minute)

	require.NoError(t, l.RecordFailure(context.Background(), "secret.person@example.com"))

	for _, k := range mr.Keys() {
		assert.False(t, strings.Contains(k, "example.com"), "key %q leaks the email", k)
	}
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, 5, time.Minute)
	mr.Close()

	ctx := context.Background()
	assert.ErrorIs(t, l.Check(ctx, "a@example.com"), ErrUnavailable)
	assert.ErrorIs(t, l.RecordFailure(ctx, "a@example.com"), ErrUnavailable)
	assert.ErrorIs(t, l.Reset(ctx, "a@example.com"), ErrUnavailable)
}

func TestNopLimiter(t *testing.T) {
	var l Limiter = NopLimiter{}
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.RecordFailure(ctx, "a@example.com"))
	}
	require.NoError(t, l.Check(ctx, "a@example.com"))
	require.NoError(t, l.Reset(ctx, "a@example.com"))
}
