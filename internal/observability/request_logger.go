package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UnmatchedRoute labels requests that did not reach a registered route.
const UnmatchedRoute = "unmatched"

// RouteLabel returns the registered route pattern for metric labels. Raw
// paths are never used.
func RouteLabel(c *fiber.Ctx) string {
	route := c.Route().Path
	if route == "" || route == "/" {
		return UnmatchedRoute
	}
	return route
}

// RequestLogger logs each request and feeds the request metrics.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		metrics.RecordRequest(RouteLabel(c), c.Method(), status, latency)
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		)
		return err
	}
}
