package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/cart"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/event"
)

// CartReader fetches the cart a checkout is placed from.
type CartReader interface {
	GetCart(ctx context.Context, session string) (*cart.Cart, error)
}

// PlaceOrderInput is the submitted checkout form.
type PlaceOrderInput struct {
	Name          string `json:"name" validate:"required,max=255"`
	Phone         string `json:"phone" validate:"required,ru_phone"`
	Address       string `json:"address" validate:"required,max=1000"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=split card cash"`
}

// OrderAccepted is returned once an order request has been emitted.
type OrderAccepted struct {
	OrderRequestID string       `json:"orderRequestId"`
	Phone          string       `json:"phone"`
	TotalItems     int          `json:"totalItems"`
	TotalPrice     money.Amount `json:"totalPrice"`
	PaymentMethod  string       `json:"paymentMethod"`
}

// PhoneFormat is the masked form of a partially typed phone number.
type PhoneFormat struct {
	Value    string `json:"value"`
	Complete bool   `json:"complete"`
}

// CheckoutService implements the business logic for checkout operations.
type CheckoutService struct {
	carts    CartReader
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(carts CartReader, producer *event.Producer, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder snapshots the session cart and emits an order request. Nothing
// is stored; the cart service empties the cart when it sees the event.
func (s *CheckoutService) PlaceOrder(ctx context.Context, session string, input *PlaceOrderInput) (*OrderAccepted, error) {
	if session == "" {
		return nil, apperrors.InvalidInput("cart session is required")
	}
	if input == nil {
		return nil, apperrors.InvalidInput("checkout form is required")
	}
	if !domain.IsValidPaymentMethod(input.PaymentMethod) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if !domain.IsCompletePhone(input.Phone) {
		return nil, apperrors.InvalidInput("phone must contain 11 digits")
	}

	c, err := s.carts.GetCart(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, apperrors.Unprocessable("EMPTY_CART", "cart is empty")
	}

	order := &domain.OrderRequest{
		ID:            uuid.NewString(),
		SessionID:     session,
		Name:          strings.TrimSpace(input.Name),
		Phone:         domain.FormatPhone(input.Phone),
		Address:       strings.TrimSpace(input.Address),
		PaymentMethod: input.PaymentMethod,
		Items:         c.Snapshot(),
		CreatedAt:     s.now(),
	}
	order.CalculateTotals()

	// The event is the only record of the order.
	if err := s.producer.PublishOrderRequested(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.order_requested event",
			slog.String("order_request_id", order.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("submit order request: %w: %w", apperrors.ErrServiceUnavail, err)
	}

	s.logger.InfoContext(ctx, "order requested",
		slog.String("order_request_id", order.ID),
		slog.String("payment_method", order.PaymentMethod),
		slog.Int("total_items", order.TotalItems),
		slog.String("total_price", order.TotalPrice.String()),
	)

	return &OrderAccepted{
		OrderRequestID: order.ID,
		Phone:          order.Phone,
		TotalItems:     order.TotalItems,
		TotalPrice:     order.TotalPrice,
		PaymentMethod:  order.PaymentMethod,
	}, nil
}

// FormatPhone masks a partially typed phone number.
func (s *CheckoutService) FormatPhone(value string) PhoneFormat {
	return PhoneFormat{
		Value:    domain.FormatPhone(value),
		Complete: domain.IsCompletePhone(value),
	}
}
