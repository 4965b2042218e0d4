package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lay2al/movie-and--series-managment-system/pkg/logger"
)

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger.Info("http_request", map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      c.Response().StatusCode(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.IP(),
		})
		return err
	}
}

// SecurityLogger records rejected requests so repeated probing shows up in
// one place regardless of which handler rejected it.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if status == fiber.StatusUnauthorized || status == fiber.StatusForbidden {
			logger.Warn("request_rejected", map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"status": status,
				"ip":     c.IP(),
			})
		}
		return err
	}
}
