// Package cart reads the shopper's cart from the cart service.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httpclient"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/domain"
)

// Cart is the cart view returned by the cart service.
type Cart struct {
	Items      []Line       `json:"items"`
	TotalItems int          `json:"totalItems"`
	TotalPrice money.Amount `json:"totalPrice"`
}

// Line is one cart line.
type Line struct {
	ID        string       `json:"id"`
	ProductID string       `json:"productId"`
	Title     string       `json:"title"`
	Color     string       `json:"color"`
	Storage   string       `json:"storage"`
	SimType   string       `json:"simType"`
	Price     money.Amount `json:"price"`
	Quantity  int          `json:"quantity"`
}

// IsEmpty reports whether the cart has no units.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0 || c.TotalItems == 0
}

// Snapshot converts the cart lines into order request items.
func (c *Cart) Snapshot() []domain.Item {
	items := make([]domain.Item, 0, len(c.Items))
	for _, l := range c.Items {
		if l.Quantity < 1 {
			continue
		}
		items = append(items, domain.Item{
			ID:        l.ID,
			ProductID: l.ProductID,
			Title:     l.Title,
			Color:     l.Color,
			Storage:   l.Storage,
			SimType:   l.SimType,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return items
}

type cartEnvelope struct {
	Data Cart `json:"data"`
}

// Client calls the cart service HTTP API.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewClient creates a cart client for baseURL, e.g. http://cart:8002.
func NewClient(baseURL string, http *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http,
		logger:  logger,
	}
}

// GetCart fetches the cart of session.
func (c *Client) GetCart(ctx context.Context, session string) (*Cart, error) {
	header := http.Header{}
	header.Set(middleware.SessionHeader, session)

	var env cartEnvelope
	if err := c.http.GetJSON(ctx, c.baseURL+"/api/v1/cart", header, &env); err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	c.logger.DebugContext(ctx, "fetched cart",
		slog.Int("total_items", env.Data.TotalItems),
		slog.String("total_price", env.Data.TotalPrice.String()),
	)
	return &env.Data, nil
}
