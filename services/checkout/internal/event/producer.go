package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/logger"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/domain"
)

// TopicOrderRequested carries submitted checkout forms. The cart service
// consumes it to empty the session cart.
var TopicOrderRequested = pkgkafka.Topic("checkout", "order_requested")

// Aggregate type constant.
const AggregateTypeOrderRequest = "order_request"

// Source identifier for events originating from the checkout service.
const SourceCheckoutService = "checkout-service"

// OrderRequestedData is the payload for a checkout.order_requested event.
type OrderRequestedData struct {
	OrderRequestID string        `json:"order_request_id"`
	SessionID      string        `json:"session_id"`
	Name           string        `json:"name"`
	Phone          string        `json:"phone"`
	Address        string        `json:"address"`
	PaymentMethod  string        `json:"payment_method"`
	Items          []domain.Item `json:"items"`
	TotalItems     int           `json:"total_items"`
	TotalPrice     money.Amount  `json:"total_price"`
}

// Producer publishes checkout domain events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the checkout service.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderRequested publishes a checkout.order_requested event keyed by
// the order request id.
func (p *Producer) PublishOrderRequested(ctx context.Context, order *domain.OrderRequest) error {
	data := OrderRequestedData{
		OrderRequestID: order.ID,
		SessionID:      order.SessionID,
		Name:           order.Name,
		Phone:          order.Phone,
		Address:        order.Address,
		PaymentMethod:  order.PaymentMethod,
		Items:          order.Items,
		TotalItems:     order.TotalItems,
		TotalPrice:     order.TotalPrice,
	}

	event, err := pkgkafka.NewEvent(TopicOrderRequested, order.ID, AggregateTypeOrderRequest, SourceCheckoutService, data)
	if err != nil {
		return fmt.Errorf("create checkout.order_requested event: %w", err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}
	event.WithMetadata("session_id", order.SessionID)

	if err := p.kafka.Publish(ctx, TopicOrderRequested, event); err != nil {
		return fmt.Errorf("publish checkout.order_requested event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.order_requested event",
		slog.String("order_request_id", order.ID),
		slog.String("session_id", order.SessionID),
	)
	return nil
}
