package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/logger"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/domain"
)

// Kafka topics for cart domain events.
var (
	TopicItemAdded   = pkgkafka.Topic("cart", "item_added")
	TopicItemRemoved = pkgkafka.Topic("cart", "item_removed")
	TopicCleared     = pkgkafka.Topic("cart", "cleared")
)

// AggregateTypeCart is the aggregate type of cart events; the aggregate id
// is the session.
const AggregateTypeCart = "cart"

// SourceCartService identifies events originating from the cart service.
const SourceCartService = "cart-service"

// ItemData is the payload of item_added and item_removed.
type ItemData struct {
	SessionID  string       `json:"session_id"`
	ItemID     string       `json:"item_id"`
	ProductID  string       `json:"product_id"`
	Title      string       `json:"title,omitempty"`
	Price      money.Amount `json:"price"`
	Quantity   int          `json:"quantity"`
	TotalItems int          `json:"total_items"`
	TotalPrice money.Amount `json:"total_price"`
}

// ClearedData is the payload of cleared.
type ClearedData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the cart service.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishItemAdded publishes an item_added event. quantity is the number of
// units added, not the resulting line quantity.
func (p *Producer) PublishItemAdded(ctx context.Context, session string, item domain.CartItem, quantity int, store *domain.Store) error {
	return p.publish(ctx, TopicItemAdded, session, itemData(session, item, quantity, store))
}

// PublishItemRemoved publishes an item_removed event.
func (p *Producer) PublishItemRemoved(ctx context.Context, session string, item domain.CartItem, store *domain.Store) error {
	return p.publish(ctx, TopicItemRemoved, session, itemData(session, item, item.Quantity, store))
}

// PublishCleared publishes a cleared event.
func (p *Producer) PublishCleared(ctx context.Context, session, reason string) error {
	return p.publish(ctx, TopicCleared, session, ClearedData{SessionID: session, Reason: reason})
}

func (p *Producer) publish(ctx context.Context, topic, session string, data any) error {
	event, err := pkgkafka.NewEvent(topic, session, AggregateTypeCart, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("session_id", session),
	)
	return nil
}

func itemData(session string, item domain.CartItem, quantity int, store *domain.Store) ItemData {
	return ItemData{
		SessionID:  session,
		ItemID:     item.ID,
		ProductID:  item.ProductID,
		Title:      item.Title,
		Price:      item.Price,
		Quantity:   quantity,
		TotalItems: store.TotalItems(),
		TotalPrice: store.TotalPrice(),
	}
}
