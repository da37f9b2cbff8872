package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/camslew/internal/core/usecases"
)

// Probe is a dependency the readiness check can ping.
type Probe interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Cameras *usecases.CameraService
	Slew    *usecases.SlewService
	// NATS feeds the /ws relay; the route is not mounted when nil.
	NATS *nats.Conn
	// Probes are checked by /v1/ready, keyed by component name.
	Probes map[string]Probe
	// RateLimit is requests per minute per client IP. Zero means 120.
	RateLimit int
	Version   string
	// OpenAPIPath locates the document served under /docs. Empty means
	// DefaultOpenAPIPath.
	OpenAPIPath string
}
