package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/camslew/internal/core/domain"
)

// --- Mock CameraBackend ---

type mockBackend struct {
	listFn    func(ctx context.Context) ([]domain.Camera, error)
	getByIDFn func(ctx context.Context, id domain.CameraID) (*domain.Camera, error)
	saveFn    func(ctx context.Context, c *domain.Camera) error
	updateFn  func(ctx context.Context, p domain.CameraPatch) error

	getCalls int
	updates  []domain.CameraPatch
}

func (m *mockBackend) List(ctx context.Context) ([]domain.Camera, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) GetByID(ctx context.Context, id domain.CameraID) (*domain.Camera, error) {
	m.getCalls++
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrCameraNotFound
}

func (m *mockBackend) Save(ctx context.Context, c *domain.Camera) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, c)
	}
	return nil
}

func (m *mockBackend) Update(ctx context.Context, p domain.CameraPatch) error {
	m.updates = append(m.updates, p)
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errMiss
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type missError struct{}

func (missError) Error() string { return "miss" }

var errMiss = missError{}

// --- Mock SessionStore ---

type mockSessions struct {
	data  map[string]domain.SlewSession
	putFn func(s *domain.SlewSession) error
}

func newMockSessions() *mockSessions { return &mockSessions{data: map[string]domain.SlewSession{}} }

func (m *mockSessions) Get(_ context.Context, id string) (*domain.SlewSession, error) {
	s, ok := m.data[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *mockSessions) Put(_ context.Context, s *domain.SlewSession) error {
	if m.putFn != nil {
		if err := m.putFn(s); err != nil {
			return err
		}
	}
	m.data[s.ID] = *s
	return nil
}

func (m *mockSessions) Delete(_ context.Context, id string) error {
	delete(m.data, id)
	return nil
}

// --- Mock SlewHistoryRepository ---

type mockHistory struct {
	insertFn func(rec *domain.SlewRecord) error
	records  []domain.SlewRecord
}

func (m *mockHistory) Insert(_ context.Context, rec *domain.SlewRecord) error {
	if m.insertFn != nil {
		if err := m.insertFn(rec); err != nil {
			return err
		}
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockHistory) ListByCamera(_ context.Context, id domain.CameraID, limit int) ([]domain.SlewRecord, error) {
	var out []domain.SlewRecord
	for _, r := range m.records {
		if r.CameraID == id && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	publishFn func(rec *domain.SlewRecord) error
	published []domain.SlewRecord
}

func (m *mockPublisher) PublishSlewCommitted(_ context.Context, rec *domain.SlewRecord) error {
	if m.publishFn != nil {
		if err := m.publishFn(rec); err != nil {
			return err
		}
	}
	m.published = append(m.published, *rec)
	return nil
}
