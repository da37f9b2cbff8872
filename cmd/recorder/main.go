package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/camslew/internal/adapters/nats"
	"github.com/samirrijal/camslew/internal/adapters/postgres"
	"github.com/samirrijal/camslew/internal/adapters/valkey"
	"github.com/samirrijal/camslew/internal/core/ports"
	"github.com/samirrijal/camslew/internal/core/usecases"
	"github.com/samirrijal/camslew/internal/pkg/config"
	"github.com/samirrijal/camslew/internal/pkg/logging"
	"github.com/samirrijal/camslew/internal/pkg/telemetry"
)

// The recorder consumes committed-slew events from JetStream and writes them
// to slew_history, so commits made while the API had no database still end
// up in the audit trail.
func main() {
	cfg, err := config.Load("camslew-recorder")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.Database.Enabled || !cfg.NATS.Enabled {
		log.Fatal("recorder needs database.enabled and nats.enabled")
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	// Cache, for dropping stale camera entries
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr, "camslew:")
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer c.Close()
			cache = c
		}
	}

	// NATS
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "camslew-recorder")
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	recorder := usecases.NewRecorderService(postgres.NewSlewHistoryRepo(db), cache, slog.Default())
	if err := sub.SubscribeSlewCommitted(ctx, recorder.ProcessSlewCommitted); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("slew recorder started", "subject", natsadapter.SlewSubjectPattern)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down slew recorder", "signal", sig.String())
	case <-ctx.Done():
	}
	cancel()
}
