package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/core/ports"
)

const cameraCachePrefix = "cameras:id:"

// CameraService handles camera-record business logic on top of the
// external camera backend.
type CameraService struct {
	backend      ports.CameraBackend
	cache        ports.CacheService
	cacheTTL     int
	enforceRange bool
}

// NewCameraService creates a new CameraService. cache may be nil.
// cacheTTL is in seconds; enforceRange also rejects out-of-range coordinates.
func NewCameraService(backend ports.CameraBackend, cache ports.CacheService, cacheTTL int, enforceRange bool) *CameraService {
	if cacheTTL <= 0 {
		cacheTTL = 60
	}
	return &CameraService{backend: backend, cache: cache, cacheTTL: cacheTTL, enforceRange: enforceRange}
}

// List returns every camera known to the backend.
func (s *CameraService) List(ctx context.Context) ([]domain.Camera, error) {
	return s.backend.List(ctx)
}

// GetByID returns a single camera, served from cache when possible.
func (s *CameraService) GetByID(ctx context.Context, id domain.CameraID) (*domain.Camera, error) {
	if id == "" {
		return nil, domain.ValidationErrors{{Field: domain.FieldCameraID, Reason: domain.ReasonRequired}}
	}

	cacheKey := cameraCachePrefix + string(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cam domain.Camera
			if err := json.Unmarshal(data, &cam); err == nil {
				return &cam, nil
			}
		}
	}

	cam, err := s.backend.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(cam); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return cam, nil
}

// Create validates cam and saves it as a new record. Any ID is ignored.
func (s *CameraService) Create(ctx context.Context, cam *domain.Camera) error {
	if err := cam.Validate(s.enforceRange); err != nil {
		return err
	}
	rec := *cam
	rec.ID = ""
	if err := s.backend.Save(ctx, &rec); err != nil {
		return fmt.Errorf("save camera: %w", err)
	}
	return nil
}

// Replace validates a full camera record and sends every field.
func (s *CameraService) Replace(ctx context.Context, cam *domain.Camera) error {
	if cam.ID == "" {
		return domain.ValidationErrors{{Field: domain.FieldCameraID, Reason: domain.ReasonRequired}}
	}
	if err := cam.Validate(s.enforceRange); err != nil {
		return err
	}
	return s.Update(ctx, domain.PatchFrom(*cam))
}

// Update sends a partial update. Fields left empty are not changed.
func (s *CameraService) Update(ctx context.Context, patch domain.CameraPatch) error {
	if err := patch.Validate(s.enforceRange); err != nil {
		return err
	}
	if err := s.backend.Update(ctx, patch); err != nil {
		return fmt.Errorf("update camera %s: %w", patch.ID, err)
	}
	s.invalidate(ctx, patch.ID)
	return nil
}

// UpdateAzimuth stores a new azimuth on a camera, leaving other fields alone.
func (s *CameraService) UpdateAzimuth(ctx context.Context, id domain.CameraID, azimuth string) error {
	return s.Update(ctx, domain.CameraPatch{ID: id, Azimuth: azimuth})
}

func (s *CameraService) invalidate(ctx context.Context, id domain.CameraID) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cameraCachePrefix+string(id))
	}
}
