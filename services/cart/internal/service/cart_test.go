package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/event"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/repository/memory"
)

// ============================================================================
// Test doubles
// ============================================================================

type mockPriceLookup struct {
	mock.Mock
}

func (m *mockPriceLookup) Price(ctx context.Context, productID, color, storage, simType string) (money.Amount, string, error) {
	args := m.Called(ctx, productID, color, storage, simType)
	return args.Get(0).(money.Amount), args.String(1), args.Error(2)
}

type recordingPublisher struct {
	events []*pkgkafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, e *pkgkafka.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func newTestService(prices PriceLookup) (*CartService, *memory.CartRepository, *recordingPublisher) {
	repo := memory.NewCartRepository()
	pub := &recordingPublisher{}
	producer := event.NewProducer(pub, testLogger())
	return NewCartService(repo, prices, producer, testLogger()), repo, pub
}

func amountPtr(s string) *money.Amount {
	a := money.MustParse(s)
	return &a
}

func iphoneInput(qty int) AddItemInput {
	return AddItemInput{
		ProductID: "p1",
		Title:     "iPhone 16",
		Color:     "Black",
		Storage:   "256GB",
		SimType:   "esim",
		Price:     amountPtr("1000"),
		Quantity:  qty,
	}
}

const iphoneID = "p1|Black|256GB|esim"

// ============================================================================
// Tests
// ============================================================================

func TestCartService_GetCart_Empty(t *testing.T) {
	svc, _, _ := newTestService(nil)

	view, err := svc.GetCart(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalItems)
	assert.True(t, view.TotalPrice.IsZero())
}

func TestCartService_MissingSession(t *testing.T) {
	svc, _, _ := newTestService(nil)

	_, err := svc.GetCart(context.Background(), "")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartService_AddItem_Twice(t *testing.T) {
	svc, _, pub := newTestService(nil)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "sess-1", iphoneInput(1))
	require.NoError(t, err)
	assert.Equal(t, 1, view.TotalItems)
	assert.Equal(t, "1000", view.TotalPrice.String())

	view, err = svc.AddItem(ctx, "sess-1", iphoneInput(1))
	require.NoError(t, err)
	assert.Equal(t, 2, view.TotalItems)
	assert.Equal(t, "2000", view.TotalPrice.String())
	require.Len(t, view.Items, 1)
	assert.Equal(t, iphoneID, view.Items[0].ID)

	assert.Equal(t, []string{event.TopicItemAdded, event.TopicItemAdded}, pub.types())
	var data event.ItemData
	require.NoError(t, pub.events[1].UnmarshalData(&data))
	assert.Equal(t, 1, data.Quantity)
	assert.Equal(t, 2, data.TotalItems)
	assert.Equal(t, "sess-1", pub.events[1].AggregateID)
}

func TestCartService_AddItem_SessionsAreIsolated(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "a", iphoneInput(3))
	require.NoError(t, err)

	view, err := svc.GetCart(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartService_AddItem_PricedFromCatalog(t *testing.T) {
	prices := new(mockPriceLookup)
	prices.On("Price", mock.Anything, "p1", "Black", "256GB", "esim").Return(money.New(99990), "iPhone 16", nil)
	svc, _, _ := newTestService(prices)

	input := iphoneInput(2)
	input.Price = nil
	input.Title = ""
	view, err := svc.AddItem(context.Background(), "sess-1", input)

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "iPhone 16", view.Items[0].Title)
	assert.Equal(t, "199980", view.TotalPrice.String())
	prices.AssertExpectations(t)
}

func TestCartService_AddItem_PriceErrors(t *testing.T) {
	tests := []struct {
		name    string
		prices  PriceLookup
		mutate  func(*AddItemInput)
		wantErr error
	}{
		{
			name:    "no price and no catalog",
			mutate:  func(in *AddItemInput) { in.Price = nil },
			wantErr: apperrors.ErrInvalidInput,
		},
		{
			name:    "price without title",
			mutate:  func(in *AddItemInput) { in.Title = "" },
			wantErr: apperrors.ErrInvalidInput,
		},
		{
			name: "variant not in catalog",
			prices: func() PriceLookup {
				m := new(mockPriceLookup)
				m.On("Price", mock.Anything, "p1", "Black", "256GB", "esim").
					Return(money.Zero, "", apperrors.NotFoundMessage("variant not found"))
				return m
			}(),
			mutate:  func(in *AddItemInput) { in.Price = nil },
			wantErr: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, pub := newTestService(tt.prices)
			input := iphoneInput(1)
			tt.mutate(&input)

			_, err := svc.AddItem(context.Background(), "sess-1", input)

			assert.ErrorIs(t, err, tt.wantErr)
			_, stored := repo.Raw("sess-1")
			assert.False(t, stored)
			assert.Empty(t, pub.events)
		})
	}
}

func TestCartService_UpdateItemQuantity(t *testing.T) {
	svc, _, pub := newTestService(nil)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", iphoneInput(1))
	require.NoError(t, err)

	view, err := svc.UpdateItemQuantity(ctx, "sess-1", iphoneID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.TotalItems)
	assert.Equal(t, "4000", view.TotalPrice.String())

	view, err = svc.UpdateItemQuantity(ctx, "sess-1", "unknown|||", 9)
	require.NoError(t, err)
	assert.Equal(t, 4, view.TotalItems)

	view, err = svc.UpdateItemQuantity(ctx, "sess-1", iphoneID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, []string{event.TopicItemAdded, event.TopicItemRemoved}, pub.types())
}

func TestCartService_RemoveItem(t *testing.T) {
	svc, _, pub := newTestService(nil)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", iphoneInput(2))
	require.NoError(t, err)
	airpods := AddItemInput{ProductID: "p2", Title: "AirPods", Price: amountPtr("200")}
	_, err = svc.AddItem(ctx, "sess-1", airpods)
	require.NoError(t, err)

	view, err := svc.RemoveItem(ctx, "sess-1", iphoneID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "p2|||", view.Items[0].ID)
	assert.Equal(t, "200", view.TotalPrice.String())

	var data event.ItemData
	require.NoError(t, pub.events[2].UnmarshalData(&data))
	assert.Equal(t, 2, data.Quantity)

	// Removing a missing line is not an event.
	_, err = svc.RemoveItem(ctx, "sess-1", iphoneID)
	require.NoError(t, err)
	assert.Len(t, pub.events, 3)
}

func TestCartService_ClearCart(t *testing.T) {
	svc, repo, pub := newTestService(nil)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", iphoneInput(2))
	require.NoError(t, err)

	view, err := svc.ClearCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	raw, ok := repo.Raw("sess-1")
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(raw))

	var data event.ClearedData
	require.NoError(t, pub.events[1].UnmarshalData(&data))
	assert.Equal(t, ClearReasonUser, data.Reason)
}

func TestCartService_ClearForOrder(t *testing.T) {
	svc, _, pub := newTestService(nil)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", iphoneInput(2))
	require.NoError(t, err)

	require.NoError(t, svc.ClearForOrder(ctx, "sess-1", "order-1"))

	view, err := svc.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	var data event.ClearedData
	require.NoError(t, pub.events[1].UnmarshalData(&data))
	assert.Equal(t, ClearReasonOrder, data.Reason)
}

func TestCartService_CorruptStateResetsToEmpty(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	repo.Put("sess-1", []byte(`{"broken"`))

	view, err := svc.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	view, err = svc.AddItem(context.Background(), "sess-1", iphoneInput(1))
	require.NoError(t, err)
	assert.Equal(t, 1, view.TotalItems)
}

func TestCartService_PublishFailureIsNotReturned(t *testing.T) {
	svc, _, pub := newTestService(nil)
	pub.err = errors.New("broker down")

	view, err := svc.AddItem(context.Background(), "sess-1", iphoneInput(1))

	require.NoError(t, err)
	assert.Equal(t, 1, view.TotalItems)
}

func TestCartView_ItemsNeverNil(t *testing.T) {
	view := newCartView(domain.NewStore(domain.NewMemoryPersister(nil), testLogger()))
	assert.NotNil(t, view.Items)
}
