// Package ratelimit throttles failed logins per account identifier.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps backend failures. Callers fail open on it.
var ErrUnavailable = errors.New("rate limiter unavailable")

type Limiter interface {
	// Check returns common.ErrRateLimited when email has used up its budget.
	Check(ctx context.Context, email string) error
	// RecordFailure counts one failed login for email.
	RecordFailure(ctx context.Context, email string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, email string) error
}

// RedisLimiter is a fixed-window counter in Redis. The window starts with
// the first failure and lasts Cooldown; MaxAttempts failures inside it block
// further attempts until it expires.
type RedisLimiter struct {
	client      redis.UniversalClient
	maxAttempts int
	cooldown    time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, maxAttempts int, cooldown time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, maxAttempts: maxAttempts, cooldown: cooldown}
}

// Check reports common.ErrRateLimited once the window holds MaxAttempts
// failures. A limit of zero or less disables throttling.
func (l *RedisLimiter) Check(ctx context.Context, email string) error {
	if l.disabled() {
		return nil
	}
	count, err := l.client.Get(ctx, key(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count >= int64(l.maxAttempts) {
		return common.ErrRateLimited
	}
	return nil
}

func (l *RedisLimiter) RecordFailure(ctx context.Context, email string) error {
	if l.disabled() {
		return nil
	}
	k := key(email)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

func (l *RedisLimiter) disabled() bool {
	return l.maxAttempts <= 0
}

func (l *RedisLimiter) Reset(ctx context.Context, email string) error {
	if err := l.client.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// key hashes the normalized email so no address is stored in Redis.
func key(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "gophauth:login:" + hex.EncodeToString(sum[:])
}

// NopLimiter never throttles.
type NopLimiter struct{}

func (NopLimiter) Check(context.Context, string) error         { return nil }
func (NopLimiter) RecordFailure(context.Context, string) error { return nil }
func (NopLimiter) Reset(context.Context, string) error         { return nil }
