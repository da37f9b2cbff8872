package ports

import (
	"context"

	"github.com/samirrijal/camslew/internal/core/domain"
)

// CameraBackend is the external camera-storage service. Implementations
// return domain.ErrCameraNotFound when a camera does not exist.
type CameraBackend interface {
	List(ctx context.Context) ([]domain.Camera, error)
	GetByID(ctx context.Context, id domain.CameraID) (*domain.Camera, error)
	Save(ctx context.Context, camera *domain.Camera) error
	Update(ctx context.Context, patch domain.CameraPatch) error
}

// SessionStore keeps slew sessions between requests. Get returns
// domain.ErrSessionNotFound for unknown or expired sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.SlewSession, error)
	Put(ctx context.Context, session *domain.SlewSession) error
	Delete(ctx context.Context, id string) error
}

// SlewHistoryRepository persists committed slews. Insert is idempotent on
// the record ID.
type SlewHistoryRepository interface {
	Insert(ctx context.Context, rec *domain.SlewRecord) error
	ListByCamera(ctx context.Context, cameraID domain.CameraID, limit int) ([]domain.SlewRecord, error)
}
