// Package cms reads the catalog from a remote CMS REST API that serves
// categories, products and media as paginated document collections.
package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httpclient"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

// Collection names as they appear in the API path.
const (
	CollectionCategories = "categories"
	CollectionProducts   = "products"
	CollectionMedia      = "media"
)

// pageSize is the page size used when walking a whole collection.
const pageSize = 100

// maxPages bounds a collection walk.
const maxPages = 50

// Client implements the storefront read side over the CMS REST API.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewClient creates a CMS client. baseURL is the server root, without the
// /api suffix.
func NewClient(baseURL string, http *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http,
		logger:  logger,
	}
}

func (c *Client) endpoint(collection string, id string, q url.Values) string {
	u := c.baseURL + "/api/" + collection
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) fetch(ctx context.Context, collection, id string, q url.Values, dst any) error {
	var raw json.RawMessage
	if err := c.http.GetJSON(ctx, c.endpoint(collection, id, q), nil, &raw); err != nil {
		return err
	}
	if err := decode(collection, raw, dst); err != nil {
		c.logger.ErrorContext(ctx, "cms document does not match schema",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// ListCategories returns the first page of categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	q := url.Values{}
	q.Set("depth", "0")
	q.Set("limit", strconv.Itoa(pageSize))

	var p categoryPage
	if err := c.fetch(ctx, CollectionCategories, "", q, &p); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	out := make([]domain.Category, 0, len(p.Docs))
	for i := range p.Docs {
		out = append(out, p.Docs[i].category())
	}
	return out, nil
}

// ListPublishedProducts returns published products, optionally limited to
// categoryIDs. A limit of 0 walks every page.
func (c *Client) ListPublishedProducts(ctx context.Context, categoryIDs []int64, limit int) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("depth", "1")
	q.Set("where[status][equals]", domain.StatusPublished)
	if len(categoryIDs) > 0 {
		ids := make([]string, 0, len(categoryIDs))
		for _, id := range categoryIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		q.Set("where[category][in]", strings.Join(ids, ","))
	}

	size := limit
	if size <= 0 || size > pageSize {
		size = pageSize
	}
	q.Set("limit", strconv.Itoa(size))

	var out []domain.Product
	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		q.Set("page", strconv.Itoa(pageNum))

		var p productPage
		if err := c.fetch(ctx, CollectionProducts, "", q, &p); err != nil {
			return nil, fmt.Errorf("fetch products: %w", err)
		}
		for i := range p.Docs {
			out = append(out, p.Docs[i].product())
		}

		if limit > 0 && len(out) >= limit {
			return out[:limit], nil
		}
		if !p.HasNextPage {
			break
		}
	}
	return out, nil
}

// GetProduct returns a product by id with relations populated.
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	q := url.Values{}
	q.Set("depth", "1")

	var dto productDTO
	if err := c.fetch(ctx, CollectionProducts, strconv.FormatInt(id, 10), q, &dto); err != nil {
		return nil, fmt.Errorf("fetch product %d: %w", id, err)
	}
	p := dto.product()
	return &p, nil
}

// GetProductBySlug returns the product with the given slug.
func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	q := url.Values{}
	q.Set("depth", "1")
	q.Set("limit", "1")
	q.Set("where[slug][equals]", slug)

	var p productPage
	if err := c.fetch(ctx, CollectionProducts, "", q, &p); err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", slug, err)
	}
	if len(p.Docs) == 0 {
		return nil, apperrors.NotFound("product", slug)
	}
	product := p.Docs[0].product()
	return &product, nil
}

// GetMedia returns a media record by id.
func (c *Client) GetMedia(ctx context.Context, id int64) (*domain.Media, error) {
	var dto mediaDTO
	if err := c.fetch(ctx, CollectionMedia, strconv.FormatInt(id, 10), nil, &dto); err != nil {
		return nil, fmt.Errorf("fetch media %d: %w", id, err)
	}
	return dto.media(), nil
}
