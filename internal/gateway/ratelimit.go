package gateway

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per key in Redis over a fixed window. A Redis
// failure denies the request; the gateway would rather shed load than admit
// unbounded traffic while its limiter is blind.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	fullKey := "rl:" + key

	pipe := rl.client.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, period)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false
	}

	return incr.Val() <= int64(rate)
}
