package http

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version,
		})
	}
}

// ReadyHandler pings every configured probe (camera backend, database,
// NATS, cache) and reports 503 when any of them fails.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		names := make([]string, 0, len(deps.Probes))
		for name := range deps.Probes {
			names = append(names, name)
		}
		sort.Strings(names)

		checks := make(map[string]string, len(names))
		allOK := true
		for _, name := range names {
			if err := deps.Probes[name].Ping(ctx); err != nil {
				checks[name] = "error: " + err.Error()
				allOK = false
				continue
			}
			checks[name] = "ok"
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
