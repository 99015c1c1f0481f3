package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/cart"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/event"
)

// ============================================================================
// Test doubles
// ============================================================================

type mockCartReader struct {
	mock.Mock
}

func (m *mockCartReader) GetCart(ctx context.Context, session string) (*cart.Cart, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

type recordingPublisher struct {
	topics []string
	events []*pkgkafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, e *pkgkafka.Event) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, e)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func newTestService(carts CartReader) (*CheckoutService, *recordingPublisher) {
	pub := &recordingPublisher{}
	svc := NewCheckoutService(carts, event.NewProducer(pub, testLogger()), testLogger())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, pub
}

func sampleCart() *cart.Cart {
	return &cart.Cart{
		Items: []cart.Line{
			{ID: "p1|Black|256GB|esim", ProductID: "p1", Title: "iPhone 16", Price: money.New(99990), Quantity: 2},
			{ID: "p2|||", ProductID: "p2", Title: "AirPods Pro 2", Price: money.New(24990), Quantity: 1},
		},
		TotalItems: 3,
		TotalPrice: money.New(224970),
	}
}

func validInput() *PlaceOrderInput {
	return &PlaceOrderInput{
		Name:          "  Ivan Petrov ",
		Phone:         "89991234567",
		Address:       "Moscow, Tverskaya 1",
		PaymentMethod: "split",
	}
}

// ============================================================================
// PlaceOrder Tests
// ============================================================================

func TestPlaceOrder_Success(t *testing.T) {
	carts := new(mockCartReader)
	carts.On("GetCart", mock.Anything, "sess-1").Return(sampleCart(), nil)
	svc, pub := newTestService(carts)

	accepted, err := svc.PlaceOrder(context.Background(), "sess-1", validInput())

	require.NoError(t, err)
	assert.NotEmpty(t, accepted.OrderRequestID)
	assert.Equal(t, "+7 (999) 123-45-67", accepted.Phone)
	assert.Equal(t, 3, accepted.TotalItems)
	assert.Equal(t, "224970", accepted.TotalPrice.String())
	assert.Equal(t, "split", accepted.PaymentMethod)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.TopicOrderRequested, pub.topics[0])
	e := pub.events[0]
	assert.Equal(t, accepted.OrderRequestID, e.AggregateID)
	assert.Equal(t, "sess-1", e.Metadata["session_id"])

	var data event.OrderRequestedData
	require.NoError(t, e.UnmarshalData(&data))
	assert.Equal(t, "sess-1", data.SessionID)
	assert.Equal(t, "Ivan Petrov", data.Name)
	assert.Equal(t, "+7 (999) 123-45-67", data.Phone)
	require.Len(t, data.Items, 2)
	assert.Equal(t, "p1|Black|256GB|esim", data.Items[0].ID)
	assert.Equal(t, "224970", data.TotalPrice.String())
	carts.AssertExpectations(t)
}

func TestPlaceOrder_TotalsRecomputedFromLines(t *testing.T) {
	c := sampleCart()
	c.TotalPrice = money.New(1)
	carts := new(mockCartReader)
	carts.On("GetCart", mock.Anything, "sess-1").Return(c, nil)
	svc, _ := newTestService(carts)

	accepted, err := svc.PlaceOrder(context.Background(), "sess-1", validInput())

	require.NoError(t, err)
	assert.Equal(t, "224970", accepted.TotalPrice.String())
}

func TestPlaceOrder_FractionalPrices(t *testing.T) {
	c := &cart.Cart{
		Items: []cart.Line{
			{ID: "p3|||", ProductID: "p3", Title: "USB-C cable", Price: money.MustParse("1999.90"), Quantity: 3},
			{ID: "p4|||", ProductID: "p4", Title: "Screen film", Price: money.MustParse("0.15"), Quantity: 1},
		},
		TotalItems: 4,
	}
	carts := new(mockCartReader)
	carts.On("GetCart", mock.Anything, "sess-1").Return(c, nil)
	svc, pub := newTestService(carts)

	accepted, err := svc.PlaceOrder(context.Background(), "sess-1", validInput())

	require.NoError(t, err)
	assert.Equal(t, "5999.85", accepted.TotalPrice.String())

	require.Len(t, pub.events, 1)
	var data event.OrderRequestedData
	require.NoError(t, pub.events[0].UnmarshalData(&data))
	assert.Equal(t, "5999.85", data.TotalPrice.String())
	require.Len(t, data.Items, 2)
	assert.Equal(t, "1999.9", data.Items[0].Price.String())
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	carts := new(mockCartReader)
	carts.On("GetCart", mock.Anything, "sess-1").Return(&cart.Cart{Items: []cart.Line{}}, nil)
	svc, pub := newTestService(carts)

	_, err := svc.PlaceOrder(context.Background(), "sess-1", validInput())

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 422, appErr.Status)
	assert.Equal(t, "EMPTY_CART", appErr.Code)
	assert.Empty(t, pub.events)
}

func TestPlaceOrder_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		session string
		mutate  func(*PlaceOrderInput)
	}{
		{name: "no session", session: "", mutate: func(*PlaceOrderInput) {}},
		{name: "short phone", session: "s", mutate: func(in *PlaceOrderInput) { in.Phone = "+7 (999) 123" }},
		{name: "unknown payment", session: "s", mutate: func(in *PlaceOrderInput) { in.PaymentMethod = "crypto" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := new(mockCartReader)
			svc, _ := newTestService(carts)
			input := validInput()
			tt.mutate(input)

			_, err := svc.PlaceOrder(context.Background(), tt.session, input)

			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			carts.AssertNotCalled(t, "GetCart", mock.Anything, mock.Anything)
		})
	}
}

func TestPlaceOrder_CartUnavailable(t *testing.T) {
	carts := new(mockCartReader)
	carts.On("GetCart", mock.Anything, "sess-1").Return(nil, &apperrors.AppError{
		Code:    "UPSTREAM_UNAVAILABLE",
		Message: "cart is unavailable",
		Status:  503,
		Err:     apperrors.ErrServiceUnavail,
	})
	svc, _ := newTestService(carts)

	_, err := svc.PlaceOrder(context.Background(), "sess-1", validInput())

	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestPlaceOrder_PublishFailure(t *testing.T) {
	carts := new(mockCartReader)
	carts.On("GetCart", mock.Anything, "sess-1").Return(sampleCart(), nil)
	svc, pub := newTestService(carts)
	pub.err = errors.New("broker down")

	_, err := svc.PlaceOrder(context.Background(), "sess-1", validInput())

	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))
}

// ============================================================================
// FormatPhone Tests
// ============================================================================

func TestFormatPhone(t *testing.T) {
	svc, _ := newTestService(nil)

	assert.Equal(t, PhoneFormat{Value: "+7 (999) 12", Complete: false}, svc.FormatPhone("799912"))
	assert.Equal(t, PhoneFormat{Value: "+7 (999) 123-45-67", Complete: true}, svc.FormatPhone("+79991234567"))
}
