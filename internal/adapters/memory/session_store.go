// Package memory holds in-process adapter implementations.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/pkg/metrics"
)

type entry struct {
	session   domain.SlewSession
	expiresAt time.Time
}

// SessionStore implements ports.SessionStore in memory. Sessions expire ttl
// after their last write; expired entries are dropped lazily and by Sweep.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]entry
	ttl      time.Duration
	clock    clockwork.Clock
}

// NewSessionStore creates an empty store. A nil clock uses the real clock.
func NewSessionStore(ttl time.Duration, clock clockwork.Clock) *SessionStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionStore{
		sessions: make(map[string]entry),
		ttl:      ttl,
		clock:    clock,
	}
}

// Get returns a copy of the stored session.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.SlewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.expired(e) {
		delete(s.sessions, id)
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
		return nil, domain.ErrSessionNotFound
	}
	sess := e.session
	return &sess, nil
}

// Put stores a copy of session, replacing any previous value.
func (s *SessionStore) Put(_ context.Context, session *domain.SlewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = entry{session: *session, expiresAt: s.clock.Now().Add(s.ttl)}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return nil
}

// Sweep drops every expired session and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			n++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return n
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Sweep()
		}
	}
}

func (s *SessionStore) expired(e entry) bool {
	return s.ttl > 0 && !s.clock.Now().Before(e.expiresAt)
}
