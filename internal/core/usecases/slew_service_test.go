package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/core/usecases"
)

type slewFixture struct {
	svc       *usecases.SlewService
	backend   *mockBackend
	sessions  *mockSessions
	history   *mockHistory
	publisher *mockPublisher
	clock     *clockwork.FakeClock
}

func newSlewFixture(t *testing.T) *slewFixture {
	t.Helper()
	f := &slewFixture{
		backend: &mockBackend{
			getByIDFn: func(ctx context.Context, id domain.CameraID) (*domain.Camera, error) {
				switch id {
				case "1":
					return &domain.Camera{ID: "1", CameraName: "Origin", CameraType: domain.CameraEO,
						Latitude: "0", Longitude: "0", Azimuth: "15.00"}, nil
				case "bad":
					return &domain.Camera{ID: "bad", CameraName: "Broken", Latitude: "n/a", Longitude: "0", Azimuth: "0"}, nil
				}
				return nil, domain.ErrCameraNotFound
			},
		},
		sessions:  newMockSessions(),
		history:   &mockHistory{},
		publisher: &mockPublisher{},
		clock:     clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)),
	}
	n := 0
	f.svc = usecases.NewSlewService(
		usecases.NewCameraService(f.backend, nil, 60, true),
		f.sessions,
		usecases.SlewOptions{
			History:      f.history,
			Publisher:    f.publisher,
			Clock:        f.clock,
			EnforceRange: true,
			NewID: func() string {
				n++
				return fmt.Sprintf("id-%d", n)
			},
		},
	)
	return f
}

func (f *slewFixture) session(t *testing.T) string {
	t.Helper()
	sess, err := f.svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess.ID
}

func TestSlewService_FullWorkflow(t *testing.T) {
	f := newSlewFixture(t)
	ctx := context.Background()
	id := f.session(t)

	sess, err := f.svc.SelectCamera(ctx, id, "1")
	if err != nil {
		t.Fatalf("select camera: %v", err)
	}
	if sess.Reference == nil || *sess.Reference != (domain.GeoPoint{}) {
		t.Fatalf("expected reference (0,0), got %v", sess.Reference)
	}

	if _, err := f.svc.AddCandidatePoint(ctx, id, "10", "10"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.svc.AddCandidatePoint(ctx, id, "1", "1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	res, err := f.svc.ComputeNearestAndAzimuth(ctx, id)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res == nil || res.Index != 1 || res.Point != (domain.GeoPoint{Lat: 1, Lon: 1}) {
		t.Fatalf("expected nearest (1,1) at index 1, got %+v", res)
	}
	if res.Azimuth < 44.9 || res.Azimuth > 45.1 {
		t.Errorf("expected azimuth ~45, got %v", res.Azimuth)
	}

	rec, err := f.svc.CommitAzimuth(ctx, id)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(f.backend.updates) != 1 {
		t.Fatalf("expected one backend update, got %d", len(f.backend.updates))
	}
	patch := f.backend.updates[0]
	if patch.ID != "1" || patch.Azimuth != fmt.Sprintf("%.2f", res.Azimuth) {
		t.Errorf("unexpected patch %+v", patch)
	}
	if rec.PreviousAzimuth != "15.00" || rec.Azimuth != patch.Azimuth || rec.Candidates != 2 {
		t.Errorf("unexpected record %+v", rec)
	}
	if len(f.history.records) != 1 || len(f.publisher.published) != 1 {
		t.Errorf("expected history and event, got %d/%d", len(f.history.records), len(f.publisher.published))
	}

	after, _ := f.svc.GetSession(ctx, id)
	if after.Camera.Azimuth != patch.Azimuth {
		t.Errorf("expected session camera azimuth %s, got %s", patch.Azimuth, after.Camera.Azimuth)
	}
}

func TestSlewService_ComputeIsIdempotent(t *testing.T) {
	f := newSlewFixture(t)
	ctx := context.Background()
	id := f.session(t)
	_, _ = f.svc.SelectCamera(ctx, id, "1")
	_, _ = f.svc.AddCandidatePoint(ctx, id, "0", "1")
	_, _ = f.svc.AddCandidatePoint(ctx, id, "0", "-1")

	first, err := f.svc.ComputeNearestAndAzimuth(ctx, id)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	f.clock.Advance(time.Minute)
	second, err := f.svc.ComputeNearestAndAzimuth(ctx, id)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if *first != *second {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
	if first.Index != 0 || first.Azimuth != 90 {
		t.Errorf("expected first-inserted equidistant point east (90.00), got %+v", first)
	}
}

func TestSlewService_ComputeEmpty(t *testing.T) {
	f := newSlewFixture(t)
	ctx := context.Background()
	id := f.session(t)
	_, _ = f.svc.SelectCamera(ctx, id, "1")

	res, err := f.svc.ComputeNearestAndAzimuth(ctx, id)
	if err != nil || res != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", res, err)
	}
}

func TestSlewService_ComputeRequiresCamera(t *testing.T) {
	f := newSlewFixture(t)
	id := f.session(t)
	_, _ = f.svc.AddCandidatePoint(context.Background(), id, "1", "1")

	_, err := f.svc.ComputeNearestAndAzimuth(context.Background(), id)
	if !errors.Is(err, domain.ErrNoCameraSelected) {
		t.Errorf("expected ErrNoCameraSelected, got %v", err)
	}
}

func TestSlewService_AddCandidate_Validation(t *testing.T) {
	f := newSlewFixture(t)
	id := f.session(t)

	_, err := f.svc.AddCandidatePoint(context.Background(), id, "", "abc")
	verrs, ok := domain.AsValidationErrors(err)
	if !ok || len(verrs) != 2 {
		t.Fatalf("expected 2 validation errors, got %v", err)
	}

	_, err = f.svc.AddCandidatePoint(context.Background(), id, "91", "0")
	verrs, ok = domain.AsValidationErrors(err)
	if !ok || verrs[0].Reason != domain.ReasonOutOfRange {
		t.Errorf("expected out_of_range, got %v", err)
	}

	sess, _ := f.svc.GetSession(context.Background(), id)
	if !sess.Candidates.IsEmpty() {
		t.Error("rejected points must not be added")
	}
}

func TestSlewService_ChangesClearResult(t *testing.T) {
	f := newSlewFixture(t)
	ctx := context.Background()
	id := f.session(t)
	_, _ = f.svc.SelectCamera(ctx, id, "1")
	_, _ = f.svc.AddCandidatePoint(ctx, id, "1", "1")
	_, _ = f.svc.ComputeNearestAndAzimuth(ctx, id)

	sess, _ := f.svc.AddCandidatePoint(ctx, id, "2", "2")
	if sess.Result != nil {
		t.Error("adding a point must clear the result")
	}

	_, _ = f.svc.ComputeNearestAndAzimuth(ctx, id)
	sess, err := f.svc.RemoveCandidatePoint(ctx, id, 0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if sess.Result != nil || sess.Candidates.Len() != 1 {
		t.Errorf("remove must clear the result, got %+v", sess)
	}

	_, _ = f.svc.ComputeNearestAndAzimuth(ctx, id)
	sess, _ = f.svc.SelectCamera(ctx, id, "1")
	if sess.Result != nil || !sess.Candidates.IsEmpty() {
		t.Error("selecting a camera must reset candidates and result")
	}
}

func TestSlewService_RemoveOutOfRange(t *testing.T) {
	f := newSlewFixture(t)
	id := f.session(t)
	_, _ = f.svc.AddCandidatePoint(context.Background(), id, "1", "1")

	_, err := f.svc.RemoveCandidatePoint(context.Background(), id, 1)
	var ierr *domain.IndexError
	if !errors.As(err, &ierr) {
		t.Errorf("expected IndexError, got %v", err)
	}
}

func TestSlewService_SelectCamera_Errors(t *testing.T) {
	f := newSlewFixture(t)
	id := f.session(t)

	if _, err := f.svc.SelectCamera(context.Background(), id, "nope"); !errors.Is(err, domain.ErrCameraNotFound) {
		t.Errorf("expected ErrCameraNotFound, got %v", err)
	}
	if _, err := f.svc.SelectCamera(context.Background(), id, "bad"); err == nil {
		t.Error("expected error for malformed camera location")
	} else if _, ok := domain.AsValidationErrors(err); !ok {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := f.svc.SelectCamera(context.Background(), "missing", "1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSlewService_CommitRequiresResult(t *testing.T) {
	f := newSlewFixture(t)
	ctx := context.Background()
	id := f.session(t)

	if _, err := f.svc.CommitAzimuth(ctx, id); !errors.Is(err, domain.ErrNoCameraSelected) {
		t.Errorf("expected ErrNoCameraSelected, got %v", err)
	}
	_, _ = f.svc.SelectCamera(ctx, id, "1")
	if _, err := f.svc.CommitAzimuth(ctx, id); !errors.Is(err, domain.ErrNoResult) {
		t.Errorf("expected ErrNoResult, got %v", err)
	}
	if len(f.backend.updates) != 0 {
		t.Error("backend must not be called without a result")
	}
}

func TestSlewService_CommitBackendFailure(t *testing.T) {
	f := newSlewFixture(t)
	ctx := context.Background()
	backendErr := errors.New("connection refused")
	f.backend.updateFn = func(ctx context.Context, p domain.CameraPatch) error { return backendErr }

	id := f.session(t)
	_, _ = f.svc.SelectCamera(ctx, id, "1")
	_, _ = f.svc.AddCandidatePoint(ctx, id, "1", "1")
	_, _ = f.svc.ComputeNearestAndAzimuth(ctx, id)
	before, _ := f.svc.GetSession(ctx, id)

	_, err := f.svc.CommitAzimuth(ctx, id)
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error to surface, got %v", err)
	}
	if len(f.backend.updates) != 1 {
		t.Errorf("expected exactly one attempt, got %d", len(f.backend.updates))
	}
	after, _ := f.svc.GetSession(ctx, id)
	if after.Camera.Azimuth != before.Camera.Azimuth || after.Result == nil {
		t.Error("session must be unchanged after a failed commit")
	}
	if len(f.history.records) != 0 || len(f.publisher.published) != 0 {
		t.Error("failed commits must not be recorded")
	}
}

func TestSlewService_CommitSideEffectsBestEffort(t *testing.T) {
	f := newSlewFixture(t)
	ctx := context.Background()
	f.history.insertFn = func(*domain.SlewRecord) error { return errors.New("db down") }
	f.publisher.publishFn = func(*domain.SlewRecord) error { return errors.New("nats down") }

	id := f.session(t)
	_, _ = f.svc.SelectCamera(ctx, id, "1")
	_, _ = f.svc.AddCandidatePoint(ctx, id, "-1", "0")
	_, _ = f.svc.ComputeNearestAndAzimuth(ctx, id)

	rec, err := f.svc.CommitAzimuth(ctx, id)
	if err != nil {
		t.Fatalf("expected commit to succeed, got %v", err)
	}
	if rec.Azimuth != "180.00" {
		t.Errorf("expected due south 180.00, got %s", rec.Azimuth)
	}
}

func TestSlewService_ResetKeepsCamera(t *testing.T) {
	f := newSlewFixture(t)
	ctx := context.Background()
	id := f.session(t)
	_, _ = f.svc.SelectCamera(ctx, id, "1")
	_, _ = f.svc.AddCandidatePoint(ctx, id, "1", "1")

	sess, err := f.svc.ResetSession(ctx, id)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if sess.Camera == nil || !sess.Candidates.IsEmpty() || sess.Result != nil {
		t.Errorf("unexpected state after reset: %+v", sess)
	}
}

func TestSlewService_Compute_Stateless(t *testing.T) {
	f := newSlewFixture(t)

	res, err := f.svc.Compute(
		usecases.PointText{Lat: "0", Lon: "0"},
		[]usecases.PointText{{Lat: "0", Lon: "-10"}, {Lat: "0", Lon: "10"}},
	)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.Index != 0 || res.Azimuth != 270 {
		t.Errorf("expected west at index 0 (270.00), got %+v", res)
	}

	res, err = f.svc.Compute(usecases.PointText{Lat: "0", Lon: "0"}, nil)
	if err != nil || res != nil {
		t.Errorf("expected (nil, nil) for no candidates, got (%v, %v)", res, err)
	}

	_, err = f.svc.Compute(usecases.PointText{Lat: "0", Lon: "0"}, []usecases.PointText{{Lat: "1", Lon: "1"}, {Lat: "x", Lon: "1"}})
	var cerr *usecases.CandidateError
	if !errors.As(err, &cerr) || cerr.Index != 1 {
		t.Errorf("expected CandidateError at 1, got %v", err)
	}
}

func TestSlewService_History(t *testing.T) {
	f := newSlewFixture(t)
	f.history.records = []domain.SlewRecord{{ID: "a", CameraID: "1"}, {ID: "b", CameraID: "2"}}

	recs, err := f.svc.History(context.Background(), "1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "a" {
		t.Errorf("unexpected records %+v", recs)
	}

	noHistory := usecases.NewSlewService(usecases.NewCameraService(&mockBackend{}, nil, 60, true), newMockSessions(), usecases.SlewOptions{})
	if _, err := noHistory.History(context.Background(), "1", 10); !errors.Is(err, usecases.ErrHistoryDisabled) {
		t.Errorf("expected ErrHistoryDisabled, got %v", err)
	}
}
