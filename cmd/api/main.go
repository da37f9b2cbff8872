package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/camslew/internal/adapters/backend"
	"github.com/samirrijal/camslew/internal/adapters/http"
	"github.com/samirrijal/camslew/internal/adapters/memory"
	natsadapter "github.com/samirrijal/camslew/internal/adapters/nats"
	"github.com/samirrijal/camslew/internal/adapters/postgres"
	"github.com/samirrijal/camslew/internal/adapters/valkey"
	"github.com/samirrijal/camslew/internal/core/ports"
	"github.com/samirrijal/camslew/internal/core/usecases"
	"github.com/samirrijal/camslew/internal/pkg/config"
	"github.com/samirrijal/camslew/internal/pkg/logging"
	"github.com/samirrijal/camslew/internal/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("camslew-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	probes := make(map[string]http.Probe)

	// Camera backend
	cameraBackend := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, slog.Default())
	probes["backend"] = cameraBackend

	// Database (slew history)
	var history ports.SlewHistoryRepository
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)
		probes["database"] = db
		if cfg.Slew.HistoryEnabled {
			history = postgres.NewSlewHistoryRepo(db)
		}
	}

	// Cache
	var cameraCache ports.CacheService
	var cache *valkey.Cache
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr, "camslew:")
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cache.Close()
			cameraCache = cache
			probes["cache"] = cache
		}
	}

	// NATS
	var publisher ports.EventPublisher
	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			probes["nats"] = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer natsConn.Close()
		}
	}

	// Session store
	var sessions ports.SessionStore
	switch {
	case cfg.Slew.SessionStore == "valkey" && cache != nil:
		store := valkey.NewSessionStore(cache, cfg.Slew.SessionTTL)
		go store.Run(ctx, time.Minute)
		sessions = store
	default:
		if cfg.Slew.SessionStore == "valkey" {
			slog.Warn("valkey session store unavailable, using memory")
		}
		mem := memory.NewSessionStore(cfg.Slew.SessionTTL, clockwork.NewRealClock())
		go mem.Run(ctx, time.Minute)
		sessions = mem
	}

	// Use cases
	cameraSvc := usecases.NewCameraService(cameraBackend, cameraCache, cfg.Slew.CameraCacheTTL, cfg.Slew.EnforceRange)
	slewSvc := usecases.NewSlewService(cameraSvc, sessions, usecases.SlewOptions{
		History:      history,
		Publisher:    publisher,
		Logger:       slog.Default(),
		EnforceRange: cfg.Slew.EnforceRange,
	})

	deps := &http.Dependencies{
		Cameras:     cameraSvc,
		Slew:        slewSvc,
		NATS:        natsConn,
		Probes:      probes,
		RateLimit:   cfg.Server.RateLimit,
		Version:     version,
		OpenAPIPath: cfg.Server.OpenAPIPath,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Camslew API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.CORSOrigins, ", "),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "session_store", cfg.Slew.SessionStore)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
