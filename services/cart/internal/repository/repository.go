package repository

import (
	"context"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/domain"
)

// CartRepository hands out the persisted state of cart sessions.
type CartRepository interface {
	// Persister returns the persister backing one session's cart.
	Persister(session string) domain.Persister

	// Delete drops a session's cart entirely.
	Delete(ctx context.Context, session string) error
}
