package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/pagination"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository"
)

func TestCollectionService_Products_Depth(t *testing.T) {
	tests := []struct {
		name          string
		depth         int
		wantResolved  bool
		wantPopulated bool
	}{
		{name: "depth 0 flattens relations", depth: 0},
		{name: "depth 1 populates relations", depth: 1, wantResolved: true, wantPopulated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories := new(mockCategoryRepository)
			products := new(mockProductRepository)
			media := new(mockMediaRepository)
			svc := NewCollectionService(categories, products, media, newTestLogger())
			ctx := context.Background()

			q := CollectionQuery{
				Depth:    tt.depth,
				Page:     pagination.New(2, 1),
				Statuses: []string{domain.StatusPublished},
			}
			products.On("List", ctx, repository.ProductFilter{
				Statuses: []string{domain.StatusPublished},
				Limit:    1,
				Offset:   1,
			}).Return([]domain.Product{
				withImage(pricedProduct(2, "iPhone 16", domain.StatusPublished, iphoneCategory, 1), 4),
			}, 3, nil)
			media.On("GetByID", ctx, int64(4)).Return(&domain.Media{ID: 4, URL: "/media/4.png"}, nil)

			docs, err := svc.Products(ctx, q)
			require.NoError(t, err)

			assert.Equal(t, 3, docs.TotalDocs)
			assert.Equal(t, 3, docs.TotalPages)
			assert.Equal(t, 2, docs.Page)
			assert.True(t, docs.HasPrevPage)
			assert.True(t, docs.HasNextPage)

			p := docs.Docs[0]
			assert.Equal(t, iphoneCategory.ID, p.Category.ID())
			_, resolved := p.Category.Category()
			assert.Equal(t, tt.wantResolved, resolved)

			img := p.Colors[0].Images[0]
			require.NotNil(t, img.ImageURL)
			assert.Equal(t, "/media/4.png", *img.ImageURL)
			_, populated := img.Image.Media()
			assert.Equal(t, tt.wantPopulated, populated)
		})
	}
}

func TestCollectionService_Categories(t *testing.T) {
	categories := new(mockCategoryRepository)
	svc := NewCollectionService(categories, new(mockProductRepository), new(mockMediaRepository), newTestLogger())
	ctx := context.Background()

	categories.On("List", ctx, repository.CategoryFilter{Slugs: []string{"mac"}, Limit: 10}).
		Return([]domain.Category{macCategory}, 1, nil)

	docs, err := svc.Categories(ctx, CollectionQuery{Page: pagination.DefaultParams(), Slugs: []string{"mac"}})
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{macCategory}, docs.Docs)
	assert.Equal(t, 1, docs.TotalPages)
	assert.Nil(t, docs.NextPage)
}
