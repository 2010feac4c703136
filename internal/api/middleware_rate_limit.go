package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/metrics"
)

// RateLimited throttles /api per client IP. It is a no-op when no limiter
// was configured.
func (handler *Handler) RateLimited(c *fiber.Ctx) error {
	if handler.apiLimiter == nil {
		return c.Next()
	}
	if handler.apiLimiter.Allow(requestLimiterKey(c)) {
		return c.Next()
	}
	metrics.RateLimitDenialsTotal.WithLabelValues("api").Inc()
	return tooManyRequests(c, "too many requests", time.Second)
}
