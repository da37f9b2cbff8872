package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/core/ports"
)

// RecorderService processes committed-slew events coming off the broker.
type RecorderService struct {
	history ports.SlewHistoryRepository
	cache   ports.CacheService
	logger  *slog.Logger
}

// NewRecorderService creates a new RecorderService. cache may be nil.
func NewRecorderService(history ports.SlewHistoryRepository, cache ports.CacheService, logger *slog.Logger) *RecorderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecorderService{history: history, cache: cache, logger: logger}
}

// ProcessSlewCommitted stores the record and drops the camera's cached copy
// so the next read sees the new azimuth. Records without an ID or camera are
// logged and skipped; a storage error is returned so the event is redelivered.
func (s *RecorderService) ProcessSlewCommitted(ctx context.Context, rec *domain.SlewRecord) error {
	if rec.ID == "" || rec.CameraID == "" {
		s.logger.WarnContext(ctx, "skipping incomplete slew event", "slew_id", rec.ID, "camera_id", string(rec.CameraID))
		return nil
	}

	if err := s.history.Insert(ctx, rec); err != nil {
		return fmt.Errorf("record slew: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, cameraCachePrefix+string(rec.CameraID))
	}

	s.logger.DebugContext(ctx, "slew recorded", "slew_id", rec.ID, "camera_id", string(rec.CameraID), "azimuth", rec.Azimuth)
	return nil
}
