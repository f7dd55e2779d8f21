package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// SignInLimiter counts failed sign-ins per email in a fixed window.
// Key format: signin:<lowercased email>
type SignInLimiter struct {
	client      redis.UniversalClient
	maxAttempts int64
	window      time.Duration
}

// NewSignInLimiter creates a limiter allowing maxAttempts failures per window.
// Non-positive values fall back to 5 attempts per 15 minutes.
func NewSignInLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *SignInLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &SignInLimiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Allow reports whether another sign-in attempt may be made for email.
func (l *SignInLimiter) Allow(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("signin limiter check: %w", err)
	}
	return n < l.maxAttempts, nil
}

// RecordFailure counts a failed attempt. The window starts with the first failure.
func (l *SignInLimiter) RecordFailure(ctx context.Context, email string) error {
	key := l.key(email)
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("signin limiter record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful sign-in.
func (l *SignInLimiter) Reset(ctx context.Context, email string) error {
	return l.client.Del(ctx, l.key(email)).Err()
}

func (l *SignInLimiter) key(email string) string {
	return "signin:" + strings.ToLower(strings.TrimSpace(email))
}
