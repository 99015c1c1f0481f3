package event

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
)

type mockCartClearer struct {
	mock.Mock
}

func (m *mockCartClearer) ClearForOrder(ctx context.Context, session, orderRequestID string) error {
	args := m.Called(ctx, session, orderRequestID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func orderRequestedEvent(t *testing.T, data any) *pkgkafka.Event {
	t.Helper()
	e, err := pkgkafka.NewEvent(TopicOrderRequested, "order-1", "order_request", "checkout-service", data)
	require.NoError(t, err)
	return e
}

func TestConsumer_HandleOrderRequested(t *testing.T) {
	clearer := new(mockCartClearer)
	clearer.On("ClearForOrder", mock.Anything, "sess-1", "order-1").Return(nil)
	c := NewConsumer(clearer, testLogger())

	err := c.HandleOrderRequested(context.Background(), orderRequestedEvent(t, OrderRequestedData{
		OrderRequestID: "order-1",
		SessionID:      "sess-1",
	}))

	require.NoError(t, err)
	clearer.AssertExpectations(t)
}

func TestConsumer_HandleOrderRequested_Errors(t *testing.T) {
	t.Run("missing session", func(t *testing.T) {
		clearer := new(mockCartClearer)
		c := NewConsumer(clearer, testLogger())

		err := c.HandleOrderRequested(context.Background(), orderRequestedEvent(t, OrderRequestedData{OrderRequestID: "order-1"}))

		require.Error(t, err)
		clearer.AssertNotCalled(t, "ClearForOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed payload", func(t *testing.T) {
		c := NewConsumer(new(mockCartClearer), testLogger())

		err := c.HandleOrderRequested(context.Background(), orderRequestedEvent(t, []int{1, 2}))

		require.Error(t, err)
	})

	t.Run("service failure is returned for retry", func(t *testing.T) {
		clearer := new(mockCartClearer)
		clearer.On("ClearForOrder", mock.Anything, "sess-1", "order-1").Return(errors.New("redis down"))
		c := NewConsumer(clearer, testLogger())

		err := c.HandleOrderRequested(context.Background(), orderRequestedEvent(t, OrderRequestedData{
			OrderRequestID: "order-1",
			SessionID:      "sess-1",
		}))

		assert.ErrorContains(t, err, "redis down")
	})
}
