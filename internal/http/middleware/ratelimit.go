package middleware

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests beyond rps per second (burst of rps) with 429.
// A non-positive rps disables limiting.
func RateLimit(rps int) fiber.Handler {
	if rps <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), rps)
	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			return fiber.ErrTooManyRequests
		}
		return c.Next()
	}
}
