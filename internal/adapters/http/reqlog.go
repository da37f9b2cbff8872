package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/camslew/internal/pkg/logging"
)

// RequestIDLogMiddleware moves the request ID set by the requestid middleware
// into the user context, where handlers, use cases and the camera backend
// client pick it up for logging and propagation.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			return c.Next()
		}
		c.SetUserContext(logging.WithRequest(c.UserContext(), rid))
		return c.Next()
	}
}

// LoggerFromCtx returns the per-request logger, or the default logger.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
