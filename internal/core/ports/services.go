package ports

import (
	"context"

	"github.com/samirrijal/camslew/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSlewCommitted(ctx context.Context, rec *domain.SlewRecord) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeSlewCommitted(ctx context.Context, handler func(ctx context.Context, rec *domain.SlewRecord) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
