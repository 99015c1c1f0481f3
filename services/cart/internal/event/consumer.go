package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
)

// TopicOrderRequested is published by checkout when an order is placed.
var TopicOrderRequested = pkgkafka.Topic("checkout", "order_requested")

// OrderRequestedData is the part of the checkout.order_requested payload the
// cart needs.
type OrderRequestedData struct {
	OrderRequestID string `json:"order_request_id"`
	SessionID      string `json:"session_id"`
}

// CartClearer defines what the consumer needs from the cart service.
type CartClearer interface {
	ClearForOrder(ctx context.Context, session, orderRequestID string) error
}

// Consumer processes incoming Kafka events for the cart service.
type Consumer struct {
	service CartClearer
	logger  *slog.Logger
}

// NewConsumer creates a new event consumer for the cart service.
func NewConsumer(service CartClearer, logger *slog.Logger) *Consumer {
	return &Consumer{
		service: service,
		logger:  logger,
	}
}

// HandleOrderRequested empties the cart the order was placed from.
func (c *Consumer) HandleOrderRequested(ctx context.Context, event *pkgkafka.Event) error {
	var data OrderRequestedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal order_requested data: %w", err)
	}
	if data.SessionID == "" {
		return fmt.Errorf("order_requested event %s has no session_id", event.EventID)
	}

	c.logger.InfoContext(ctx, "processing order_requested event",
		slog.String("order_request_id", data.OrderRequestID),
		slog.String("session_id", data.SessionID),
	)

	if err := c.service.ClearForOrder(ctx, data.SessionID, data.OrderRequestID); err != nil {
		return fmt.Errorf("clear cart for order %s: %w", data.OrderRequestID, err)
	}
	return nil
}
