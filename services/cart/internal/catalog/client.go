// Package catalog prices cart lines by asking the catalog service.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httpclient"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
)

// Variant is a priced leaf of a catalog product. Country carries the
// storage value.
type Variant struct {
	Color   string       `json:"color"`
	Country string       `json:"country"`
	SimType string       `json:"simType"`
	Price   money.Amount `json:"price"`
}

// Product is the part of the catalog product page the cart reads.
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Variants []Variant `json:"-"`
}

type productPage struct {
	Data struct {
		Product  Product   `json:"product"`
		Variants []Variant `json:"variants"`
	} `json:"data"`
}

// FindVariant returns the leaf matching color, storage and SIM type.
func FindVariant(p *Product, color, storage, simType string) (Variant, error) {
	for _, v := range p.Variants {
		if v.Color == color && v.Country == storage && v.SimType == simType {
			return v, nil
		}
	}
	return Variant{}, apperrors.NotFoundMessage(fmt.Sprintf(
		"variant %s/%s/%s not found for product %s", color, storage, simType, p.Slug,
	))
}

// Client reads products from the catalog storefront API.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewClient creates a catalog client for baseURL, e.g. http://catalog:8001.
func NewClient(baseURL string, http *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http,
		logger:  logger,
	}
}

// GetProduct fetches a published product by id or slug with its variants.
func (c *Client) GetProduct(ctx context.Context, idOrSlug string) (*Product, error) {
	endpoint := c.baseURL + "/api/v1/products/" + url.PathEscape(idOrSlug)

	var page productPage
	if err := c.http.GetJSON(ctx, endpoint, nil, &page); err != nil {
		return nil, fmt.Errorf("get catalog product %s: %w", idOrSlug, err)
	}

	p := page.Data.Product
	p.Variants = page.Data.Variants
	return &p, nil
}

// Price looks up the unit price and title of one product variant.
func (c *Client) Price(ctx context.Context, productID, color, storage, simType string) (money.Amount, string, error) {
	p, err := c.GetProduct(ctx, productID)
	if err != nil {
		return money.Zero, "", err
	}
	v, err := FindVariant(p, color, storage, simType)
	if err != nil {
		return money.Zero, "", err
	}

	c.logger.DebugContext(ctx, "priced cart item from catalog",
		slog.String("product_id", productID),
		slog.String("price", v.Price.String()),
	)
	return v.Price, p.Title, nil
}
