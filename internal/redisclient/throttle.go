package redisclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed login attempts per email in a fixed window.
// Key format: login:attempts:<email>
type LoginThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewLoginThrottle(client *redis.Client, limit int, window time.Duration) *LoginThrottle {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}

	return &LoginThrottle{
		client: client,
		limit:  int64(limit),
		window: window,
	}
}

// Allow reports whether this email may attempt a login right now.
// A nil throttle (redis not configured) always allows.
func (t *LoginThrottle) Allow(ctx context.Context, email string) (bool, time.Duration, error) {
	if t == nil {
		return true, 0, nil
	}

	key := t.key(email)

	n, err := t.client.Get(ctx, key).Int64()

	if err != nil {
		if err == redis.Nil {
			return true, 0, nil
		}
		return false, 0, fmt.Errorf("login throttle get: %w", err)
	}

	if n < t.limit {
		return true, 0, nil
	}

	ttl, err := t.client.TTL(ctx, key).Result()

	if err != nil {
		ttl = t.window
	}

	return false, ttl, nil
}

// RecordFailure bumps the failure counter, starting the window on first miss.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	if t == nil {
		return nil
	}

	key := t.key(email)

	n, err := t.client.Incr(ctx, key).Result()

	if err != nil {
		return fmt.Errorf("login throttle incr: %w", err)
	}

	if n == 1 {
		// first failure opens the window
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return fmt.Errorf("login throttle expire: %w", err)
		}
	}

	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	if t == nil {
		return nil
	}

	return t.client.Del(ctx, t.key(email)).Err()
}

func (t *LoginThrottle) key(email string) string {
	return "login:attempts:" + strings.ToLower(email)
}
