package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
)

// ErrNoState is returned by a Persister when nothing has been saved yet.
var ErrNoState = errors.New("no persisted cart state")

// Persister loads and saves the serialized cart of one session.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// CartItem is one line of the cart. Price is the unit price in rubles at the
// time the item was first added.
type CartItem struct {
	ID        string       `json:"id"`
	ProductID string       `json:"productId"`
	Title     string       `json:"title"`
	Color     string       `json:"color,omitempty"`
	Storage   string       `json:"storage,omitempty"`
	SimType   string       `json:"simType,omitempty"`
	Price     money.Amount `json:"price"`
	Quantity  int          `json:"quantity"`
}

// ItemID builds the composite line key productId|color|storage|simType.
// Absent parts are empty strings.
func ItemID(productID, color, storage, simType string) string {
	return strings.Join([]string{productID, color, storage, simType}, "|")
}

// Store is the cart of one session. It is not safe for concurrent use; each
// request builds its own.
type Store struct {
	items     []CartItem
	hydrated  bool
	persister Persister
	logger    *slog.Logger
}

// NewStore creates an empty, unhydrated store.
func NewStore(persister Persister, logger *slog.Logger) *Store {
	return &Store{persister: persister, logger: logger}
}

// Hydrate loads the persisted state the first time it is called. A corrupt
// payload is logged and leaves the cart empty.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.hydrated {
		return nil
	}

	data, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, ErrNoState):
	case err != nil:
		return fmt.Errorf("load cart: %w", err)
	default:
		var items []CartItem
		if err := json.Unmarshal(data, &items); err != nil {
			s.logger.ErrorContext(ctx, "failed to parse persisted cart, starting empty",
				slog.String("error", err.Error()),
			)
		} else {
			s.items = items
		}
	}

	s.hydrated = true
	return nil
}

// Hydrated reports whether Hydrate has completed.
func (s *Store) Hydrated() bool { return s.hydrated }

// Add puts quantity units of item in the cart. Quantities below 1 count as
// 1. An existing line with the same key keeps its price and has its quantity
// increased.
func (s *Store) Add(ctx context.Context, item CartItem, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	item.ID = ItemID(item.ProductID, item.Color, item.Storage, item.SimType)

	if i := s.index(item.ID); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		item.Quantity = quantity
		s.items = append(s.items, item)
	}
	return s.persist(ctx)
}

// Remove deletes the line with the given id.
func (s *Store) Remove(ctx context.Context, id string) error {
	if i := s.index(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	return s.persist(ctx)
}

// SetQuantity overwrites the quantity of a line. n <= 0 removes it and an
// unknown id is ignored.
func (s *Store) SetQuantity(ctx context.Context, id string, n int) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	if n <= 0 {
		return s.Remove(ctx, id)
	}
	s.items[i].Quantity = n
	return s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.items = nil
	return s.persist(ctx)
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []CartItem {
	out := make([]CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns the line with the given id.
func (s *Store) Item(id string) (CartItem, bool) {
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	return CartItem{}, false
}

// TotalItems is the sum of quantities.
func (s *Store) TotalItems() int {
	var n int
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is the sum of quantity times unit price.
func (s *Store) TotalPrice() money.Amount {
	total := money.Zero
	for _, it := range s.items {
		total = total.Add(it.Price.Mul(it.Quantity))
	}
	return total
}

func (s *Store) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.persister.Save(ctx, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// MemoryPersister keeps the serialized cart in memory.
type MemoryPersister struct {
	data  []byte
	saves int
}

// NewMemoryPersister returns a persister holding data. Nil data means no
// state has been saved.
func NewMemoryPersister(data []byte) *MemoryPersister {
	return &MemoryPersister{data: data}
}

// Load implements Persister.
func (m *MemoryPersister) Load(context.Context) ([]byte, error) {
	if m.data == nil {
		return nil, ErrNoState
	}
	return m.data, nil
}

// Save implements Persister.
func (m *MemoryPersister) Save(_ context.Context, data []byte) error {
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Data returns the last saved payload.
func (m *MemoryPersister) Data() []byte { return m.data }

// Saves counts the Save calls.
func (m *MemoryPersister) Saves() int { return m.saves }
