package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "ruble-store-event:"

// IdempotencyStore remembers processed event IDs in Redis so duplicates are
// skipped across restarts and replicas.
type IdempotencyStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewIdempotencyStore creates a store whose entries expire after ttl.
func NewIdempotencyStore(client redis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Contains reports whether eventID was already processed.
func (s *IdempotencyStore) Contains(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, idempotencyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists event %s: %w", eventID, err)
	}
	return n > 0, nil
}

// Add marks eventID as processed.
func (s *IdempotencyStore) Add(ctx context.Context, eventID string) error {
	if err := s.client.Set(ctx, idempotencyPrefix+eventID, 1, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set event %s: %w", eventID, err)
	}
	return nil
}
