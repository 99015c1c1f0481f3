package service

import (
	"context"
	"fmt"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository"
)

// CategoryListLimit caps the categories loaded for the storefront.
const CategoryListLimit = 100

// CatalogReader is the read side the storefront is built from. It is
// implemented by RepositoryReader over PostgreSQL and by the CMS client over
// a remote REST API.
type CatalogReader interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	// ListPublishedProducts returns published products, optionally limited
	// to categoryIDs. A limit of 0 returns all of them.
	ListPublishedProducts(ctx context.Context, categoryIDs []int64, limit int) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetMedia(ctx context.Context, id int64) (*domain.Media, error)
}

// RepositoryReader implements CatalogReader over the local repositories.
type RepositoryReader struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	media      repository.MediaRepository
}

// NewRepositoryReader creates a reader over the given repositories.
func NewRepositoryReader(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	media repository.MediaRepository,
) *RepositoryReader {
	return &RepositoryReader{categories: categories, products: products, media: media}
}

func (r *RepositoryReader) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, _, err := r.categories.List(ctx, repository.CategoryFilter{Limit: CategoryListLimit})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *RepositoryReader) ListPublishedProducts(ctx context.Context, categoryIDs []int64, limit int) ([]domain.Product, error) {
	products, _, err := r.products.List(ctx, repository.ProductFilter{
		Statuses:    []string{domain.StatusPublished},
		CategoryIDs: categoryIDs,
		Limit:       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list published products: %w", err)
	}
	return products, nil
}

func (r *RepositoryReader) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return r.products.GetByID(ctx, id)
}

func (r *RepositoryReader) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.products.GetBySlug(ctx, slug)
}

func (r *RepositoryReader) GetMedia(ctx context.Context, id int64) (*domain.Media, error) {
	return r.media.GetByID(ctx, id)
}
