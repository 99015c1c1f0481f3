// Package memory keeps carts in process memory. It backs tests and
// single-instance development runs without Redis.
package memory

import (
	"context"
	"sync"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/domain"
)

// CartRepository implements repository.CartRepository in memory.
type CartRepository struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

// NewCartRepository creates an empty repository.
func NewCartRepository() *CartRepository {
	return &CartRepository{sessions: make(map[string][]byte)}
}

// Persister returns the persister for session.
func (r *CartRepository) Persister(session string) domain.Persister {
	return &persister{repo: r, session: session}
}

// Delete removes a session's cart.
func (r *CartRepository) Delete(_ context.Context, session string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, session)
	return nil
}

// Raw returns the stored payload of session.
func (r *CartRepository) Raw(session string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.sessions[session]
	return data, ok
}

// Put stores a raw payload for session.
func (r *CartRepository) Put(session string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session] = data
}

type persister struct {
	repo    *CartRepository
	session string
}

func (p *persister) Load(context.Context) ([]byte, error) {
	data, ok := p.repo.Raw(p.session)
	if !ok {
		return nil, domain.ErrNoState
	}
	return data, nil
}

func (p *persister) Save(_ context.Context, data []byte) error {
	p.repo.Put(p.session, append([]byte(nil), data...))
	return nil
}
