package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartPayload struct {
	SessionID string `json:"session_id"`
	Total     int64  `json:"total"`
}

func TestNewEvent(t *testing.T) {
	event, err := NewEvent("cart.cleared", "sess-1", "cart", "cart-service", cartPayload{SessionID: "sess-1", Total: 129990})
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "cart.cleared", event.EventType)
	assert.Equal(t, "sess-1", event.AggregateID)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got cartPayload
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, int64(129990), got.Total)
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent("x", "1", "x", "svc", make(chan int))
	assert.Error(t, err)
}

func TestEvent_ChainingAndDecode(t *testing.T) {
	event, err := NewEvent("catalog.product_updated", "42", "product", "catalog-service", map[string]string{"slug": "mac-mini"})
	require.NoError(t, err)
	assert.Same(t, event, event.WithCorrelationID("corr-1").WithMetadata("user_id", "7"))

	raw, err := event.Marshal()
	require.NoError(t, err)
	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-1", decoded.CorrelationID)
	assert.Equal(t, "7", decoded.Metadata["user_id"])
}

func TestUnmarshalEvent_Garbage(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{not json"))
	assert.Error(t, err)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "rublestore.cart.events", Topic("cart", "events"))
	assert.Equal(t, "rublestore.dlq.rublestore.checkout.orders", DLQTopic(Topic("checkout", "orders")))
}
