package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/logger"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

// Kafka topics for catalog domain events.
var (
	TopicCategoryCreated = pkgkafka.Topic("catalog", "category.created")
	TopicCategoryUpdated = pkgkafka.Topic("catalog", "category.updated")
	TopicCategoryDeleted = pkgkafka.Topic("catalog", "category.deleted")
	TopicProductCreated  = pkgkafka.Topic("catalog", "product.created")
	TopicProductUpdated  = pkgkafka.Topic("catalog", "product.updated")
	TopicProductDeleted  = pkgkafka.Topic("catalog", "product.deleted")
	TopicMediaUploaded   = pkgkafka.Topic("catalog", "media.uploaded")
	TopicMediaDeleted    = pkgkafka.Topic("catalog", "media.deleted")
)

// Aggregate types.
const (
	AggregateCategory = "category"
	AggregateProduct  = "product"
	AggregateMedia    = "media"
)

// SourceCatalogService identifies events originating from the catalog service.
const SourceCatalogService = "catalog-service"

// ProductData is the payload of product.created and product.updated.
type ProductData struct {
	ID         int64        `json:"id"`
	Title      string       `json:"title"`
	Slug       string       `json:"slug"`
	Status     string       `json:"status"`
	CategoryID int64        `json:"category_id,omitempty"`
	MinPrice   money.Amount `json:"min_price"`
	HasPrice   bool         `json:"has_price"`
	Variants   int          `json:"variants"`
}

// CategoryData is the payload of category.created and category.updated.
type CategoryData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// MediaData is the payload of media.uploaded.
type MediaData struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Filesize int64  `json:"filesize"`
	URL      string `json:"url"`
}

// DeletedData is the payload of every *.deleted event.
type DeletedData struct {
	ID int64 `json:"id"`
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, AggregateProduct, product.ID, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, AggregateProduct, product.ID, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id int64) error {
	return p.publish(ctx, TopicProductDeleted, AggregateProduct, id, DeletedData{ID: id})
}

// PublishCategoryCreated publishes a category.created event.
func (p *Producer) PublishCategoryCreated(ctx context.Context, c *domain.Category) error {
	return p.publish(ctx, TopicCategoryCreated, AggregateCategory, c.ID, CategoryData{ID: c.ID, Name: c.Name, Slug: c.Slug})
}

// PublishCategoryUpdated publishes a category.updated event.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, c *domain.Category) error {
	return p.publish(ctx, TopicCategoryUpdated, AggregateCategory, c.ID, CategoryData{ID: c.ID, Name: c.Name, Slug: c.Slug})
}

// PublishCategoryDeleted publishes a category.deleted event.
func (p *Producer) PublishCategoryDeleted(ctx context.Context, id int64) error {
	return p.publish(ctx, TopicCategoryDeleted, AggregateCategory, id, DeletedData{ID: id})
}

// PublishMediaUploaded publishes a media.uploaded event.
func (p *Producer) PublishMediaUploaded(ctx context.Context, m *domain.Media) error {
	return p.publish(ctx, TopicMediaUploaded, AggregateMedia, m.ID, MediaData{
		ID:       m.ID,
		Filename: m.Filename,
		MimeType: m.MimeType,
		Filesize: m.Filesize,
		URL:      m.URL,
	})
}

// PublishMediaDeleted publishes a media.deleted event.
func (p *Producer) PublishMediaDeleted(ctx context.Context, id int64) error {
	return p.publish(ctx, TopicMediaDeleted, AggregateMedia, id, DeletedData{ID: id})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateType string, id int64, data any) error {
	aggregateID := strconv.FormatInt(id, 10)

	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceCatalogService, data)
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
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Status:     p.Status,
		CategoryID: p.Category.ID(),
		MinPrice:   domain.MinPrice(p),
		HasPrice:   domain.HasPrice(p),
		Variants:   len(domain.Variants(p)),
	}
}
