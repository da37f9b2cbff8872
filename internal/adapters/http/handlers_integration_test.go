//go:build integration
// +build integration

package http_test

import (
	"context"
	"testing"
	"time"

	handler "github.com/samirrijal/camslew/internal/adapters/http"
	"github.com/samirrijal/camslew/internal/adapters/postgres"
	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/core/usecases"
	"github.com/samirrijal/camslew/internal/pkg/config"
)

// setupTestDB connects to the test database and applies migrations.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("camslew-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if _, err := db.MigrateUp(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// TestCommitRecordsHistory_Integration commits a slew through the API and
// reads it back from the slew_history table.
func TestCommitRecordsHistory_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	camID := domain.CameraID("it-" + time.Now().Format("20060102150405"))
	b := &mockBackend{
		getFn: func(ctx context.Context, id domain.CameraID) (*domain.Camera, error) {
			return &domain.Camera{ID: id, CameraName: "Integration", Latitude: "43.263", Longitude: "-2.935", Azimuth: "0"}, nil
		},
	}
	deps := makeDeps(b, func(o *usecases.SlewOptions) {
		o.History = postgres.NewSlewHistoryRepo(db)
		o.NewID = nil // real UUIDs; the table keys on them
	})
	deps.Probes = map[string]handler.Probe{"database": db}
	app := setupApp(deps)

	sess := createSession(t, app, `{"camera_id":"`+string(camID)+`"}`)
	base := "/v1/slew/sessions/" + sess.ID
	do(t, app, "POST", base+"/candidates", `{"latitude":"43.27","longitude":"-2.935"}`)
	do(t, app, "POST", base+"/compute", "")
	if resp := do(t, app, "POST", base+"/commit", ""); resp.StatusCode != 200 {
		t.Fatalf("commit: expected 200, got %d", resp.StatusCode)
	}

	resp := do(t, app, "GET", "/v1/cameras/"+string(camID)+"/slews", "")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var recs []domain.SlewRecord
	decode(t, resp, &recs)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Azimuth != "0.00" {
		t.Errorf("expected due-north azimuth 0.00, got %q", recs[0].Azimuth)
	}

	if resp := do(t, app, "GET", "/v1/ready", ""); resp.StatusCode != 200 {
		t.Errorf("ready: expected 200, got %d", resp.StatusCode)
	}
}
