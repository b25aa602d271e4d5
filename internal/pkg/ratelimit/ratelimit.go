// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetIn   time.Duration
}

// RateLimiter counts requests per key in fixed windows stored in Redis.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:reports",
	}
}

// Allow counts one request for identifier and reports whether it fits the window.
func (r *RateLimiter) Allow(ctx context.Context, identifier string) (Decision, error) {
	key := fmt.Sprintf("%s:%s", r.prefix, identifier)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Set expiration on first request of the window
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = r.window
	}

	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= r.limit,
		Limit:     r.limit,
		Remaining: remaining,
		ResetIn:   ttl,
	}, nil
}

// Reset clears the counter for identifier.
func (r *RateLimiter) Reset(ctx context.Context, identifier string) error {
	return r.client.Del(ctx, fmt.Sprintf("%s:%s", r.prefix, identifier)).Err()
}
