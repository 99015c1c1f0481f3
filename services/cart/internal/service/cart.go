package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/event"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/repository"
)

// Reasons recorded on cleared events.
const (
	ClearReasonUser  = "user"
	ClearReasonOrder = "order_requested"
)

// PriceLookup prices a variant from the catalog and returns its title.
type PriceLookup interface {
	Price(ctx context.Context, productID, color, storage, simType string) (money.Amount, string, error)
}

// AddItemInput holds the parameters for adding an item to the cart. A nil
// Price is looked up in the catalog when a PriceLookup is configured.
type AddItemInput struct {
	ProductID string        `json:"productId" validate:"required,max=64"`
	Title     string        `json:"title" validate:"max=500"`
	Color     string        `json:"color" validate:"max=255"`
	Storage   string        `json:"storage" validate:"max=255"`
	SimType   string        `json:"simType" validate:"max=255"`
	Price     *money.Amount `json:"price" validate:"omitempty,gte=0"`
	Quantity  int           `json:"quantity" validate:"gte=0,lte=100"`
}

// UpdateQuantityInput holds the new quantity of a line. Zero removes it.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"lte=100"`
}

// CartView is the cart as returned to clients.
type CartView struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice money.Amount      `json:"totalPrice"`
}

func newCartView(s *domain.Store) *CartView {
	return &CartView{
		Items:      s.Items(),
		TotalItems: s.TotalItems(),
		TotalPrice: s.TotalPrice(),
	}
}

// CartService implements the business logic for cart operations. Every call
// builds and hydrates a fresh Store for the session.
type CartService struct {
	repo     repository.CartRepository
	prices   PriceLookup
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service. prices may be nil, in which
// case every add must carry a price.
func NewCartService(repo repository.CartRepository, prices PriceLookup, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		prices:   prices,
		producer: producer,
		logger:   logger,
	}
}

func (s *CartService) open(ctx context.Context, session string) (*domain.Store, error) {
	if session == "" {
		return nil, apperrors.InvalidInput("cart session is required")
	}
	store := domain.NewStore(s.repo.Persister(session), s.logger)
	if err := store.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate cart: %w", err)
	}
	return store, nil
}

// GetCart returns the session's cart. A session without state has an empty
// cart.
func (s *CartService) GetCart(ctx context.Context, session string) (*CartView, error) {
	store, err := s.open(ctx, session)
	if err != nil {
		return nil, err
	}
	return newCartView(store), nil
}

// AddItem adds input.Quantity units of a variant, merging with an existing
// line for the same variant.
func (s *CartService) AddItem(ctx context.Context, session string, input AddItemInput) (*CartView, error) {
	item := domain.CartItem{
		ProductID: input.ProductID,
		Title:     input.Title,
		Color:     input.Color,
		Storage:   input.Storage,
		SimType:   input.SimType,
	}
	if err := s.price(ctx, input, &item); err != nil {
		return nil, err
	}

	store, err := s.open(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := store.Add(ctx, item, input.Quantity); err != nil {
		return nil, err
	}

	added, _ := store.Item(domain.ItemID(item.ProductID, item.Color, item.Storage, item.SimType))
	quantity := max(input.Quantity, 1)
	if err := s.producer.PublishItemAdded(ctx, session, added, quantity, store); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.item_added event",
			slog.String("session_id", session),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", session),
		slog.String("item_id", added.ID),
		slog.Int("quantity", quantity),
	)
	return newCartView(store), nil
}

// price fills in the item price and, when missing, the title.
func (s *CartService) price(ctx context.Context, input AddItemInput, item *domain.CartItem) error {
	if input.Price != nil {
		item.Price = *input.Price
		if item.Title == "" {
			return apperrors.InvalidInput("title is required when price is given")
		}
		return nil
	}
	if s.prices == nil {
		return apperrors.InvalidInput("price is required")
	}

	price, title, err := s.prices.Price(ctx, input.ProductID, input.Color, input.Storage, input.SimType)
	if err != nil {
		return fmt.Errorf("price item: %w", err)
	}
	item.Price = price
	if item.Title == "" {
		item.Title = title
	}
	return nil
}

// UpdateItemQuantity overwrites a line's quantity. A quantity of zero or
// less removes the line; an unknown item id leaves the cart unchanged.
func (s *CartService) UpdateItemQuantity(ctx context.Context, session, itemID string, quantity int) (*CartView, error) {
	store, err := s.open(ctx, session)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		return s.remove(ctx, session, store, itemID)
	}
	if err := store.SetQuantity(ctx, itemID, quantity); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", session),
		slog.String("item_id", itemID),
		slog.Int("quantity", quantity),
	)
	return newCartView(store), nil
}

// RemoveItem removes a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, session, itemID string) (*CartView, error) {
	store, err := s.open(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.remove(ctx, session, store, itemID)
}

func (s *CartService) remove(ctx context.Context, session string, store *domain.Store, itemID string) (*CartView, error) {
	item, found := store.Item(itemID)
	if err := store.Remove(ctx, itemID); err != nil {
		return nil, err
	}
	if !found {
		return newCartView(store), nil
	}

	if err := s.producer.PublishItemRemoved(ctx, session, item, store); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.item_removed event",
			slog.String("session_id", session),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", session),
		slog.String("item_id", itemID),
	)
	return newCartView(store), nil
}

// ClearCart empties the session's cart.
func (s *CartService) ClearCart(ctx context.Context, session string) (*CartView, error) {
	return s.clear(ctx, session, ClearReasonUser)
}

// ClearForOrder empties the cart an order was requested from.
func (s *CartService) ClearForOrder(ctx context.Context, session, orderRequestID string) error {
	if _, err := s.clear(ctx, session, ClearReasonOrder); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "cart cleared after order request",
		slog.String("session_id", session),
		slog.String("order_request_id", orderRequestID),
	)
	return nil
}

func (s *CartService) clear(ctx context.Context, session, reason string) (*CartView, error) {
	store, err := s.open(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := store.Clear(ctx); err != nil {
		return nil, err
	}

	if err := s.producer.PublishCleared(ctx, session, reason); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", session),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", session),
		slog.String("reason", reason),
	)
	return newCartView(store), nil
}
