// Package security holds request-level protections for the payment routes.
package security

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
	}
}

// PaymentRateLimit is a fixed-window limiter keyed by the authenticated
// user, falling back to the client IP. Bind it to the payment route group.
func (r *RateLimiter) PaymentRateLimit() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := fmt.Sprintf("ratelimit:payment:ip:%s", e.RealIP())
		if e.Auth != nil {
			key = fmt.Sprintf("ratelimit:payment:user:%s", e.Auth.Id)
		}

		ctx := e.Request.Context()
		count, err := r.redis.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down must not take the payment flow with it.
			return e.Next()
		}
		if count == 1 {
			r.redis.Expire(ctx, key, r.window)
		}
		if count > int64(r.limit) {
			return apis.NewApiError(429, "Rate limit exceeded. Please try again later.", nil)
		}
		return e.Next()
	}
}
