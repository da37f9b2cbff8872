package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/camslew/internal/core/domain"
)

func TestSessionStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute, clockwork.NewFakeClock())

	_, err := store.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))

	sess := &domain.SlewSession{ID: "s1", Candidates: domain.NewCandidateSet(domain.GeoPoint{Lat: 1, Lon: 2})}
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Candidates.Len())

	// Mutating the returned copy must not leak into the store.
	got.Candidates = got.Candidates.Add(domain.GeoPoint{})
	again, _ := store.Get(ctx, "s1")
	assert.Equal(t, 1, again.Candidates.Len())

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewSessionStore(10*time.Minute, clock)

	require.NoError(t, store.Put(ctx, &domain.SlewSession{ID: "a"}))
	clock.Advance(9 * time.Minute)
	_, err := store.Get(ctx, "a")
	require.NoError(t, err)

	// Put refreshes the deadline.
	require.NoError(t, store.Put(ctx, &domain.SlewSession{ID: "a"}))
	require.NoError(t, store.Put(ctx, &domain.SlewSession{ID: "b"}))
	clock.Advance(10 * time.Minute)

	assert.Equal(t, 2, store.Sweep())
	_, err = store.Get(ctx, "a")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestSessionStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "s"
			if i%2 == 0 {
				id = "t"
			}
			_ = store.Put(ctx, &domain.SlewSession{ID: id})
			_, _ = store.Get(ctx, id)
		}(i)
	}
	wg.Wait()

	_, err := store.Get(ctx, "s")
	assert.NoError(t, err)
}
