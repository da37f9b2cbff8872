package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/camslew/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// LegacyCameraRoutes are the backend-compatible camera paths kept for old
// clients, with their /v1 successors.
var LegacyCameraRoutes = []DeprecatedRoute{
	{Path: "/camera/get-all", SunsetDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/cameras"},
	{Path: "/camera/get-by-id/:id", SunsetDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/cameras/{id}"},
	{Path: "/camera/save", SunsetDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/cameras"},
	{Path: "/camera/update", SunsetDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/cameras/{id}"},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	rate := deps.RateLimit
	if rate <= 0 {
		rate = 120
	}
	app.Use(limiter.New(limiter.Config{
		Max:        rate,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1, 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/cameras", timeout.NewWithContext(ListCamerasHandler(deps), requestTimeout))
	v1.Post("/cameras", timeout.NewWithContext(CreateCameraHandler(deps), requestTimeout))
	v1.Get("/cameras/:id", timeout.NewWithContext(GetCameraHandler(deps), requestTimeout))
	v1.Put("/cameras/:id", timeout.NewWithContext(ReplaceCameraHandler(deps), requestTimeout))
	v1.Patch("/cameras/:id", timeout.NewWithContext(PatchCameraHandler(deps), requestTimeout))
	v1.Get("/cameras/:id/slews", timeout.NewWithContext(CameraSlewsHandler(deps), requestTimeout))

	// Slew-to-nearest sessions
	slew := v1.Group("/slew/sessions")
	slew.Post("/", timeout.NewWithContext(CreateSessionHandler(deps), requestTimeout))
	slew.Get("/:id", timeout.NewWithContext(GetSessionHandler(deps), requestTimeout))
	slew.Delete("/:id", timeout.NewWithContext(DeleteSessionHandler(deps), requestTimeout))
	slew.Put("/:id/camera", timeout.NewWithContext(SelectCameraHandler(deps), requestTimeout))
	slew.Post("/:id/candidates", timeout.NewWithContext(AddCandidateHandler(deps), requestTimeout))
	slew.Delete("/:id/candidates/:index", timeout.NewWithContext(RemoveCandidateHandler(deps), requestTimeout))
	slew.Post("/:id/reset", timeout.NewWithContext(ResetSessionHandler(deps), requestTimeout))
	slew.Post("/:id/compute", timeout.NewWithContext(ComputeHandler(deps), requestTimeout))
	slew.Post("/:id/commit", timeout.NewWithContext(CommitHandler(deps), requestTimeout))
	slew.Get("/:id/geojson", timeout.NewWithContext(SessionGeoJSONHandler(deps), requestTimeout))

	v1.Post("/nearest", timeout.NewWithContext(NearestHandler(deps), requestTimeout))

	// Backend-compatible camera routes
	legacy := app.Group("/camera", DeprecationMiddleware(LegacyCameraRoutes))
	legacy.Get("/get-all", timeout.NewWithContext(legacyListCamerasHandler(deps), requestTimeout))
	legacy.Get("/get-by-id/:id", timeout.NewWithContext(GetCameraHandler(deps), requestTimeout))
	legacy.Post("/save", timeout.NewWithContext(legacySaveCameraHandler(deps), requestTimeout))
	legacy.Put("/update", timeout.NewWithContext(legacyUpdateCameraHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.OpenAPIPath)

	// WebSocket relay of committed slews
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
