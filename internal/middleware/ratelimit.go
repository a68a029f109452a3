package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles requests per key within a fixed window, counting in
// Redis so limits hold across replicas.
type RateLimiter struct {
	redis  *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRateLimiter(r *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: r, prefix: prefix, limit: limit, window: window}
}

// ByKey limits requests sharing the key derived from the request, typically
// the client IP.
func (r *RateLimiter) ByKey(keyFunc func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r.redis == nil {
			return c.Next()
		}
		key := fmt.Sprintf("%s:%s:%s", r.prefix, c.Path(), keyFunc(c))
		count, err := r.redis.Incr(c.Context(), key).Result()
		if err != nil {
			// Redis being down should not take auth down with it.
			return c.Next()
		}
		if count == 1 {
			r.redis.Expire(c.Context(), key, r.window)
		}
		if count > int64(r.limit) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests, please try again later")
		}
		return c.Next()
	}
}

// ByIP is the common case of limiting per client address.
func (r *RateLimiter) ByIP() fiber.Handler {
	return r.ByKey(func(c *fiber.Ctx) string { return c.IP() })
}
