package api

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// tooManyRequests answers 429 with the wait in whole seconds, both in the
// Retry-After header and the body.
func tooManyRequests(c *fiber.Ctx, message string, retryAfter time.Duration) error {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       message,
		"retry_after": seconds,
	})
}

func parseJSONBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return fiber.ErrBadRequest
	}
	return c.BodyParser(out)
}

func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Params(name))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}

func formatDay(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format("2006-01-02")
}

func formatOptionalDay(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := formatDay(*value)
	return &formatted
}

// ErrorHandler answers errors that escaped a handler in the same JSON shape
// the handlers use.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = strings.ToLower(fiberErr.Message)
	}
	return apiError(c, status, message)
}
