package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/core/ports"
	"github.com/samirrijal/camslew/internal/pkg/geospatial"
	"github.com/samirrijal/camslew/internal/pkg/logging"
	"github.com/samirrijal/camslew/internal/pkg/metrics"
	"github.com/samirrijal/camslew/internal/pkg/telemetry"
)

// SlewOptions configures a SlewService. Zero values are usable.
type SlewOptions struct {
	// History and Publisher are optional; commits still succeed without them.
	History   ports.SlewHistoryRepository
	Publisher ports.EventPublisher
	Clock     clockwork.Clock
	Logger    *slog.Logger
	// EnforceRange rejects candidate and camera coordinates outside
	// [-90,90] / [-180,180].
	EnforceRange bool
	// NewID generates session and record IDs. Defaults to random UUIDs.
	NewID func() string
}

// SlewService runs the slew-to-nearest workflow: select a camera, collect
// candidate points, compute the nearest one and the azimuth towards it, and
// commit that azimuth to the camera record.
type SlewService struct {
	cameras      *CameraService
	sessions     ports.SessionStore
	history      ports.SlewHistoryRepository
	publisher    ports.EventPublisher
	clock        clockwork.Clock
	logger       *slog.Logger
	tracer       trace.Tracer
	enforceRange bool
	newID        func() string
}

// NewSlewService creates a new SlewService.
func NewSlewService(cameras *CameraService, sessions ports.SessionStore, opts SlewOptions) *SlewService {
	s := &SlewService{
		cameras:      cameras,
		sessions:     sessions,
		history:      opts.History,
		publisher:    opts.Publisher,
		clock:        opts.Clock,
		logger:       opts.Logger,
		tracer:       telemetry.Tracer("camslew/slew"),
		enforceRange: opts.EnforceRange,
		newID:        opts.NewID,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	return s
}

// CreateSession starts an empty session.
func (s *SlewService) CreateSession(ctx context.Context) (*domain.SlewSession, error) {
	now := s.clock.Now().UTC()
	sess := &domain.SlewSession{ID: s.newID(), CreatedAt: now, UpdatedAt: now}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// GetSession returns the current state of a session.
func (s *SlewService) GetSession(ctx context.Context, id string) (*domain.SlewSession, error) {
	return s.sessions.Get(ctx, id)
}

// DeleteSession discards a session.
func (s *SlewService) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// SelectCamera makes cameraID the session's camera. Its stored coordinates
// become the reference point; candidates and any result are discarded.
func (s *SlewService) SelectCamera(ctx context.Context, sessionID string, cameraID domain.CameraID) (*domain.SlewSession, error) {
	ctx, span := s.tracer.Start(ctx, "slew.SelectCamera", trace.WithAttributes(
		telemetry.AttrSessionID.String(sessionID),
		telemetry.AttrCameraID.String(string(cameraID)),
	))
	defer span.End()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, spanErr(span, err)
	}

	cam, err := s.cameras.GetByID(ctx, cameraID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	ref, err := s.parse(cam.Latitude, cam.Longitude)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("camera %s location: %w", cameraID, err))
	}

	sess.Camera = cam
	sess.Reference = &ref
	sess.Candidates = domain.CandidateSet{}
	sess.Result = nil
	return s.save(ctx, sess)
}

// AddCandidatePoint validates the text pair and appends it to the session's
// candidates. Any previous result is cleared.
func (s *SlewService) AddCandidatePoint(ctx context.Context, sessionID, latText, lonText string) (*domain.SlewSession, error) {
	p, err := s.parse(latText, lonText)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Candidates = sess.Candidates.Add(p)
	sess.Result = nil
	return s.save(ctx, sess)
}

// RemoveCandidatePoint drops the candidate at index. Any previous result is
// cleared.
func (s *SlewService) RemoveCandidatePoint(ctx context.Context, sessionID string, index int) (*domain.SlewSession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, err := sess.Candidates.RemoveAt(index)
	if err != nil {
		return nil, err
	}
	sess.Candidates = next
	sess.Result = nil
	return s.save(ctx, sess)
}

// ResetSession clears candidates and result; the selected camera is kept.
func (s *SlewService) ResetSession(ctx context.Context, sessionID string) (*domain.SlewSession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Candidates = domain.CandidateSet{}
	sess.Result = nil
	return s.save(ctx, sess)
}

// ComputeNearestAndAzimuth finds the candidate nearest the camera and the
// azimuth towards it, and stores the result on the session. With no
// candidates it returns (nil, nil). Repeating the call on an unchanged
// session returns an identical result.
func (s *SlewService) ComputeNearestAndAzimuth(ctx context.Context, sessionID string) (*domain.NearestResult, error) {
	ctx, span := s.tracer.Start(ctx, "slew.ComputeNearestAndAzimuth",
		trace.WithAttributes(telemetry.AttrSessionID.String(sessionID)))
	defer span.End()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	if sess.Reference == nil {
		return nil, spanErr(span, domain.ErrNoCameraSelected)
	}
	span.SetAttributes(telemetry.AttrCandidates.Int(sess.Candidates.Len()))

	res, ok := NearestAndAzimuth(*sess.Reference, sess.Candidates)
	if !ok {
		metrics.SlewComputations.WithLabelValues("empty").Inc()
		if sess.Result != nil {
			sess.Result = nil
			if _, err := s.save(ctx, sess); err != nil {
				return nil, spanErr(span, err)
			}
		}
		return nil, nil
	}
	metrics.SlewComputations.WithLabelValues("ok").Inc()
	metrics.CandidateSetSize.Observe(float64(sess.Candidates.Len()))
	span.SetAttributes(
		telemetry.AttrAzimuth.Float64(res.Azimuth),
		telemetry.AttrDistance.Float64(res.DistanceMeters),
	)

	if prev := sess.Result; prev != nil && sameOutcome(*prev, res) {
		return prev, nil
	}

	res.ComputedAt = s.clock.Now().UTC()
	sess.Result = &res
	if _, err := s.save(ctx, sess); err != nil {
		return nil, spanErr(span, err)
	}
	return &res, nil
}

// CommitAzimuth writes the session's computed azimuth to its camera. Backend
// failures are returned unchanged and leave the session as it was. History
// and event publication are best-effort.
func (s *SlewService) CommitAzimuth(ctx context.Context, sessionID string) (*domain.SlewRecord, error) {
	ctx, span := s.tracer.Start(ctx, "slew.CommitAzimuth",
		trace.WithAttributes(telemetry.AttrSessionID.String(sessionID)))
	defer span.End()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	if sess.Camera == nil || sess.Reference == nil {
		return nil, spanErr(span, domain.ErrNoCameraSelected)
	}
	if sess.Result == nil {
		return nil, spanErr(span, domain.ErrNoResult)
	}

	log := s.log(ctx)
	cam := *sess.Camera
	azimuth := geospatial.FormatAzimuth(sess.Result.Azimuth)
	span.SetAttributes(telemetry.AttrCameraID.String(string(cam.ID)))

	if err := s.cameras.UpdateAzimuth(ctx, cam.ID, azimuth); err != nil {
		metrics.SlewCommits.WithLabelValues("error").Inc()
		return nil, spanErr(span, err)
	}
	metrics.SlewCommits.WithLabelValues("ok").Inc()

	rec := &domain.SlewRecord{
		ID:              s.newID(),
		SessionID:       sess.ID,
		CameraID:        cam.ID,
		CameraName:      cam.CameraName,
		Reference:       *sess.Reference,
		Target:          sess.Result.Point,
		PreviousAzimuth: cam.Azimuth,
		Azimuth:         azimuth,
		Candidates:      sess.Candidates.Len(),
		DistanceMeters:  sess.Result.DistanceMeters,
		CommittedAt:     s.clock.Now().UTC(),
	}

	if s.history != nil {
		if err := s.history.Insert(ctx, rec); err != nil {
			log.WarnContext(ctx, "record slew history", "slew_id", rec.ID, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSlewCommitted(ctx, rec); err != nil {
			log.WarnContext(ctx, "publish slew event", "slew_id", rec.ID, "error", err)
		}
	}

	cam.Azimuth = azimuth
	sess.Camera = &cam
	if _, err := s.save(ctx, sess); err != nil {
		// The camera is already updated; report success with a warning.
		log.WarnContext(ctx, "store session after commit", "session_id", sess.ID, "error", err)
	}

	log.InfoContext(ctx, "azimuth committed",
		"camera_id", string(cam.ID), "azimuth", azimuth, "previous", rec.PreviousAzimuth)
	return rec, nil
}

// History returns recent committed slews for a camera.
func (s *SlewService) History(ctx context.Context, cameraID domain.CameraID, limit int) ([]domain.SlewRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.history.ListByCamera(ctx, cameraID, limit)
}

// Compute is the one-shot form of the workflow: it parses a reference and
// candidate texts and returns the nearest result without any session.
// ComputedAt is left zero.
func (s *SlewService) Compute(reference PointText, candidates []PointText) (*domain.NearestResult, error) {
	ref, err := s.parse(reference.Lat, reference.Lon)
	if err != nil {
		return nil, err
	}
	set := domain.CandidateSet{}
	for i, c := range candidates {
		p, err := s.parse(c.Lat, c.Lon)
		if err != nil {
			return nil, &CandidateError{Index: i, Err: err}
		}
		set = set.Add(p)
	}
	res, ok := NearestAndAzimuth(ref, set)
	if !ok {
		return nil, nil
	}
	return &res, nil
}

// NearestAndAzimuth is the pure core of a computation. It reports false
// when candidates is empty.
func NearestAndAzimuth(reference domain.GeoPoint, candidates domain.CandidateSet) (domain.NearestResult, bool) {
	n, ok := geospatial.FindNearest(reference, candidates)
	if !ok {
		return domain.NearestResult{}, false
	}
	return domain.NearestResult{
		Point:          n.Point,
		Index:          n.Index,
		DistanceMeters: n.DistanceMeters,
		Azimuth:        geospatial.ComputeAzimuth(reference, n.Point),
	}, true
}

func sameOutcome(a, b domain.NearestResult) bool {
	return a.Point == b.Point && a.Index == b.Index &&
		a.Azimuth == b.Azimuth && a.DistanceMeters == b.DistanceMeters
}

func (s *SlewService) parse(latText, lonText string) (domain.GeoPoint, error) {
	p, err := domain.ParsePoint(latText, lonText)
	if err != nil {
		return p, err
	}
	if s.enforceRange {
		if err := p.Validate(); err != nil {
			return domain.GeoPoint{}, err
		}
	}
	return p, nil
}

func (s *SlewService) save(ctx context.Context, sess *domain.SlewSession) (*domain.SlewSession, error) {
	sess.UpdatedAt = s.clock.Now().UTC()
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session %s: %w", sess.ID, err)
	}
	return sess, nil
}

// log tags the service logger with the request ID carried by ctx, if any.
func (s *SlewService) log(ctx context.Context) *slog.Logger {
	if rid := logging.RequestID(ctx); rid != "" {
		return s.logger.With("request_id", rid)
	}
	return s.logger
}

func spanErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// PointText is a latitude/longitude pair as entered by a user.
type PointText struct {
	Lat string `json:"latitude" yaml:"latitude"`
	Lon string `json:"longitude" yaml:"longitude"`
}

// ErrHistoryDisabled is returned by History when no history store is wired.
var ErrHistoryDisabled = errors.New("slew history is disabled")

// CandidateError reports which candidate of a one-shot computation failed
// validation.
type CandidateError struct {
	Index int
	Err   error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate %d: %v", e.Index, e.Err)
}

func (e *CandidateError) Unwrap() error { return e.Err }
