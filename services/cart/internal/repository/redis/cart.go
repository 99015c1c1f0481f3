package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/domain"
)

// KeyPrefix namespaces cart payloads, one key per session.
const KeyPrefix = "ruble-store-cart:"

// CartRepository implements repository.CartRepository using Redis.
type CartRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository. Every save
// refreshes the key's TTL.
func NewCartRepository(client redis.UniversalClient, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Persister returns the persister for session.
func (r *CartRepository) Persister(session string) domain.Persister {
	return &persister{client: r.client, key: KeyPrefix + session, ttl: r.ttl}
}

// Delete removes a session's cart.
func (r *CartRepository) Delete(ctx context.Context, session string) error {
	if err := r.client.Del(ctx, KeyPrefix+session).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

type persister struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

func (p *persister) Load(ctx context.Context) ([]byte, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoState
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return data, nil
}

func (p *persister) Save(ctx context.Context, data []byte) error {
	if err := p.client.Set(ctx, p.key, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}
