package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository"
)

// DefaultSeedSecret is used when no seed secret is configured.
const DefaultSeedSecret = "ruble-store-seed-dev-do-not-use-in-production"

// ErrInvalidSeedKey is returned when the seed key does not match.
var ErrInvalidSeedKey = apperrors.Unauthorized("Invalid or missing key. Set ?key=SEED_SECRET.")

type seedCategory struct {
	slug string
	name string
}

type seedProduct struct {
	title        string
	slug         string
	categorySlug string
}

var seedCategories = []seedCategory{
	{slug: "mac", name: "Mac"},
	{slug: "accessories", name: "Аксессуары"},
	{slug: "airpods", name: "AirPods"},
	{slug: "iphone", name: "iPhone"},
	{slug: "watch", name: "Watch"},
}

var seedProducts = []seedProduct{
	{title: "MacBook Pro", slug: "macbook-pro", categorySlug: "mac"},
	{title: "Mac mini", slug: "mac-mini", categorySlug: "mac"},
	{title: "Чехол для iPhone", slug: "iphone-case", categorySlug: "accessories"},
	{title: "Зарядка USB-C", slug: "usb-c-charger", categorySlug: "accessories"},
	{title: "AirPods Pro 2", slug: "airpods-pro-2", categorySlug: "airpods"},
	{title: "AirPods 3", slug: "airpods-3", categorySlug: "airpods"},
	{title: "iPhone 16 Pro", slug: "iphone-16-pro", categorySlug: "iphone"},
	{title: "iPhone 16", slug: "iphone-16", categorySlug: "iphone"},
	{title: "Apple Watch Ultra 2", slug: "apple-watch-ultra-2", categorySlug: "watch"},
	{title: "Apple Watch Series 10", slug: "apple-watch-series-10", categorySlug: "watch"},
}

// SeedResult reports what a seed run created. Skipped is either false or
// the reason products were not created.
type SeedResult struct {
	OK         bool                 `json:"ok"`
	Categories SeedCategoriesResult `json:"categories"`
	Products   SeedProductsResult   `json:"products"`
}

type SeedCategoriesResult struct {
	Created []string `json:"created"`
	Total   int      `json:"total"`
}

type SeedProductsResult struct {
	Created []string `json:"created"`
	Skipped any      `json:"skipped"`
}

// SeedService fills an empty catalog with demo content.
type SeedService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	admin      *AdminService
	secret     string
	logger     *slog.Logger
}

// NewSeedService creates a seed service. An empty secret falls back to
// DefaultSeedSecret.
func NewSeedService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	admin *AdminService,
	secret string,
	logger *slog.Logger,
) *SeedService {
	if secret == "" {
		secret = DefaultSeedSecret
	}
	return &SeedService{
		categories: categories,
		products:   products,
		admin:      admin,
		secret:     secret,
		logger:     logger,
	}
}

// Authorize checks a seed key.
func (s *SeedService) Authorize(key string) error {
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.secret)) != 1 {
		return ErrInvalidSeedKey
	}
	return nil
}

// Seed finds or creates the demo categories and creates the demo products
// when the catalog has none. Running it twice creates nothing new.
func (s *SeedService) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{
		OK: true,
		Categories: SeedCategoriesResult{
			Created: []string{},
			Total:   len(seedCategories),
		},
		Products: SeedProductsResult{
			Created: []string{},
			Skipped: false,
		},
	}

	categoryIDs := make(map[string]int64, len(seedCategories))
	for _, sc := range seedCategories {
		existing, err := s.categories.GetBySlug(ctx, sc.slug)
		if err == nil {
			categoryIDs[sc.slug] = existing.ID
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("find category %s: %w", sc.slug, err)
		}

		created, err := s.admin.CreateCategory(ctx, &domain.CreateCategoryInput{Name: sc.name, Slug: sc.slug})
		if err != nil {
			return nil, fmt.Errorf("seed category %s: %w", sc.slug, err)
		}
		categoryIDs[sc.slug] = created.ID
		result.Categories.Created = append(result.Categories.Created, sc.slug)
	}

	count, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		result.Products.Skipped = "already have products"
	} else {
		for _, sp := range seedProducts {
			categoryID, ok := categoryIDs[sp.categorySlug]
			if !ok {
				continue
			}
			_, err := s.admin.CreateProduct(ctx, &domain.CreateProductInput{
				Title:      sp.title,
				Slug:       sp.slug,
				Status:     domain.StatusPublished,
				CategoryID: categoryID,
			})
			if err != nil {
				return nil, fmt.Errorf("seed product %s: %w", sp.slug, err)
			}
			result.Products.Created = append(result.Products.Created, sp.slug)
		}
	}

	s.logger.InfoContext(ctx, "catalog seeded",
		slog.Int("categories_created", len(result.Categories.Created)),
		slog.Int("products_created", len(result.Products.Created)),
	)
	return result, nil
}
