package cms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httpclient"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := newTestLogger()
	return NewClient(srv.URL+"/", httpclient.NewDefault("cms-"+t.Name(), 2*time.Second, logger), logger)
}

const productDoc = `{
	"id": %d,
	"title": "iPhone 16 Pro",
	"slug": "iphone-16-pro-%d",
	"description": null,
	"status": "published",
	"storage": null,
	"category": {"id": 1, "name": "iPhone", "slug": "iphone"},
	"colors": [{
		"color": "Black Titanium",
		"manufacturerCountries": [{"country": "256GB", "simTypes": [{"simType": "esim", "price": 129990}]}],
		"images": [{"image": {"id": 4, "url": "/media/a.png", "alt": "front"}, "imageUrl": null, "alt": "front"}]
	}]
}`

func pageOf(docs []string, page int, hasNext bool) string {
	return fmt.Sprintf(`{"docs":[%s],"totalDocs":%d,"page":%d,"totalPages":2,"hasNextPage":%t}`,
		strings.Join(docs, ","), len(docs), page, hasNext)
}

func TestClient_ListCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/categories", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("depth"))
		_, _ = w.Write([]byte(`{"docs":[{"id":1,"name":"iPhone","slug":"iphone"},{"id":2,"name":"Mac","slug":"mac"}],"hasNextPage":false}`))
	})

	categories, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "mac", categories[1].Slug)
}

func TestClient_ListPublishedProducts_WalksPages(t *testing.T) {
	var pages []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "published", q.Get("where[status][equals]"))
		assert.Equal(t, "1,2", q.Get("where[category][in]"))
		assert.Equal(t, "1", q.Get("depth"))
		pages = append(pages, q.Get("page"))

		switch q.Get("page") {
		case "1":
			_, _ = w.Write([]byte(pageOf([]string{fmt.Sprintf(productDoc, 1, 1)}, 1, true)))
		default:
			_, _ = w.Write([]byte(pageOf([]string{fmt.Sprintf(productDoc, 2, 2)}, 2, false)))
		}
	})

	products, err := c.ListPublishedProducts(context.Background(), []int64{1, 2}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, pages)
	require.Len(t, products, 2)

	p := products[0]
	cat, ok := p.Category.Category()
	require.True(t, ok)
	assert.Equal(t, "iPhone", cat.Name)
	assert.Equal(t, "129990", domain.MinPrice(&p).String())
	m, ok := p.Colors[0].Images[0].Image.Media()
	require.True(t, ok)
	assert.Equal(t, "/media/a.png", m.URL)
}

func TestClient_ListPublishedProducts_Limit(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(pageOf([]string{fmt.Sprintf(productDoc, 1, 1)}, 1, true)))
	})

	products, err := c.ListPublishedProducts(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, calls)
}

func TestClient_SchemaMismatch(t *testing.T) {
	bad := strings.Replace(fmt.Sprintf(productDoc, 9, 9), `"simType": "esim"`, `"simType": "nano"`, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageOf([]string{fmt.Sprintf(productDoc, 1, 1), bad}, 1, false)))
	})

	_, err := c.ListPublishedProducts(context.Background(), nil, 0)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "products", schemaErr.Collection)
	assert.Equal(t, "docs.1.colors.0.manufacturerCountries.0.simTypes.0.simType", schemaErr.Path)
	assert.Contains(t, schemaErr.Error(), "[DTO] products: schema mismatch. Field: docs.1.colors.0.manufacturerCountries.0.simTypes.0.simType.")
	assert.ErrorIs(t, err, apperrors.ErrBadGateway)
	assert.Equal(t, http.StatusBadGateway, apperrors.HTTPStatus(err))
}

func TestClient_TypeMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"docs":[{"id":1,"name":"iPhone","slug":"iphone"},{"id":2,"name":42,"slug":"x"}]}`))
	})

	_, err := c.ListCategories(context.Background())
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "categories", schemaErr.Collection)
	assert.Equal(t, "docs.1.name", schemaErr.Path)
	assert.Equal(t, "expected string, received number", schemaErr.Message)
}

func TestClient_TypeMismatchPathHasIndices(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		wantPath string
		wantMsg  string
	}{
		{
			name:     "string price",
			old:      `"price": 129990`,
			new:      `"price": "129990"`,
			wantPath: "docs.2.colors.0.manufacturerCountries.0.simTypes.0.price",
			wantMsg:  "expected number, received string",
		},
		{
			name:     "numeric sim type",
			old:      `"simType": "esim"`,
			new:      `"simType": 3`,
			wantPath: "docs.2.colors.0.manufacturerCountries.0.simTypes.0.simType",
			wantMsg:  "expected string, received number",
		},
		{
			name:     "numeric country",
			old:      `"country": "256GB"`,
			new:      `"country": 256`,
			wantPath: "docs.2.colors.0.manufacturerCountries.0.country",
			wantMsg:  "expected string, received number",
		},
		{
			name:     "colors not an array",
			old:      `"colors": [{`,
			new:      `"colors": "none", "unused": [{`,
			wantPath: "docs.2.colors",
			wantMsg:  "expected array, received string",
		},
		{
			name:     "category name",
			old:      `"name": "iPhone"`,
			new:      `"name": false`,
			wantPath: "docs.2.category.name",
			wantMsg:  "expected string, received bool",
		},
		{
			name:     "image url",
			old:      `"url": "/media/a.png"`,
			new:      `"url": 1`,
			wantPath: "docs.2.colors.0.images.0.image.url",
			wantMsg:  "expected string, received number",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bad := strings.Replace(fmt.Sprintf(productDoc, 3, 3), tc.old, tc.new, 1)
			require.NotEqual(t, fmt.Sprintf(productDoc, 3, 3), bad)
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				docs := []string{fmt.Sprintf(productDoc, 1, 1), fmt.Sprintf(productDoc, 2, 2), bad}
				_, _ = w.Write([]byte(pageOf(docs, 1, false)))
			})

			_, err := c.ListPublishedProducts(context.Background(), nil, 0)
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, tc.wantPath, schemaErr.Path)
			assert.Equal(t, tc.wantMsg, schemaErr.Message)
			assert.Equal(t, http.StatusBadGateway, apperrors.HTTPStatus(err))
		})
	}
}

func TestClient_GetProductTypeMismatchPath(t *testing.T) {
	bad := strings.Replace(fmt.Sprintf(productDoc, 5, 5), `"price": 129990`, `"price": "129990"`, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bad))
	})

	_, err := c.GetProduct(context.Background(), 5)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "colors.0.manufacturerCountries.0.simTypes.0.price", schemaErr.Path)
}

func TestClient_FractionalPrice(t *testing.T) {
	doc := strings.Replace(fmt.Sprintf(productDoc, 1, 1), `"price": 129990`, `"price": 129990.5`, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageOf([]string{doc}, 1, false)))
	})

	products, err := c.ListPublishedProducts(context.Background(), nil, 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "129990.5", domain.MinPrice(&products[0]).String())
	assert.Equal(t, "129\u00a0990,5 ₽", domain.PriceLabel(&products[0]))
}

func TestClient_GetProductBySlug(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("where[slug][equals]") == "iphone-16-pro-1" {
			_, _ = w.Write([]byte(pageOf([]string{fmt.Sprintf(productDoc, 1, 1)}, 1, false)))
			return
		}
		_, _ = w.Write([]byte(`{"docs":[],"hasNextPage":false}`))
	})
	ctx := context.Background()

	p, err := c.GetProductBySlug(ctx, "iphone-16-pro-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	_, err = c.GetProductBySlug(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClient_GetProductAndMedia(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/5":
			_, _ = w.Write([]byte(fmt.Sprintf(productDoc, 5, 5)))
		case "/api/media/4":
			_, _ = w.Write([]byte(`{"id":4,"filename":"a.png","mimeType":"image/png","filesize":10,"url":"/media/a.png"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[{"message":"Not Found"}]}`))
		}
	})
	ctx := context.Background()

	p, err := c.GetProduct(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "iphone-16-pro-5", p.Slug)

	m, err := c.GetMedia(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "image/png", m.MimeType)

	_, err = c.GetMedia(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
