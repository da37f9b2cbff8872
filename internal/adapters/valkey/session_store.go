package valkey

import (
	"context"
	"log/slog"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/pkg/metrics"
)

const sessionKeyPrefix = "slew:session:"

// SessionStore implements ports.SessionStore on top of a Cache connection,
// so sessions survive API restarts and are shared between replicas.
// Each write refreshes the TTL.
type SessionStore struct {
	cache *Cache
	ttl   time.Duration
}

// NewSessionStore stores sessions through cache with the given TTL.
func NewSessionStore(cache *Cache, ttl time.Duration) *SessionStore {
	return &SessionStore{cache: cache, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.SlewSession, error) {
	c := s.cache
	data, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(sessionKeyPrefix+id)).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var sess domain.SlewSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *SessionStore) Put(ctx context.Context, session *domain.SlewSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	c := s.cache
	cmd := c.client.B().Set().Key(c.key(sessionKeyPrefix + session.ID)).Value(valkey.BinaryString(data)).Px(s.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("store session %s: %w", session.ID, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+id)
}

// Count returns the number of live sessions. Valkey expires them, so this
// scans the session keyspace.
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	c := s.cache
	pattern := c.key(sessionKeyPrefix) + "*"
	var cursor uint64
	n := 0
	for {
		entry, err := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(pattern).Count(500).Build()).AsScanEntry()
		if err != nil {
			return 0, fmt.Errorf("scan sessions: %w", err)
		}
		n += len(entry.Elements)
		cursor = entry.Cursor
		if cursor == 0 {
			return n, nil
		}
	}
}

// Run refreshes the active-sessions gauge every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		s.reportActive(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *SessionStore) reportActive(ctx context.Context) {
	n, err := s.Count(ctx)
	if err != nil {
		slog.WarnContext(ctx, "count slew sessions", "error", err)
		return
	}
	metrics.ActiveSessions.Set(float64(n))
}
