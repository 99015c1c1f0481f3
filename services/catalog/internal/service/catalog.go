package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

// similarFetchLimit is how many same-category products are loaded before
// the current one is excluded and the list is cut to domain.SimilarLimit.
const similarFetchLimit = 50

// ProductCard is the listing view of a product.
type ProductCard struct {
	ID         int64            `json:"id"`
	Title      string           `json:"title"`
	Slug       string           `json:"slug"`
	MinPrice   money.Amount     `json:"minPrice"`
	HasPrice   bool             `json:"hasPrice"`
	PriceLabel string           `json:"priceLabel"`
	ImageURL   *string          `json:"imageUrl"`
	Category   *domain.Category `json:"category"`
}

// NewProductCard builds the card for p.
func NewProductCard(p *domain.Product) ProductCard {
	card := ProductCard{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		MinPrice:   domain.MinPrice(p),
		HasPrice:   domain.HasPrice(p),
		PriceLabel: domain.PriceLabel(p),
		ImageURL:   domain.ImageURL(p),
	}
	if c, ok := p.Category.Category(); ok {
		card.Category = &c
	}
	return card
}

// SectionView is a category block of the catalog page.
type SectionView struct {
	Category domain.Category `json:"category"`
	Products []ProductCard   `json:"products"`
}

// CatalogView is the result of browsing the catalog.
type CatalogView struct {
	Sections []SectionView `json:"sections"`
	Storages []string      `json:"storages"`
	Selected SelectedView  `json:"selected"`
	Query    string        `json:"query"`
	ReturnTo string        `json:"returnTo"`
}

// SelectedView echoes the filters that were applied.
type SelectedView struct {
	Categories []string `json:"categories"`
	Storages   []string `json:"storages"`
}

// Suggestion is a search-as-you-type entry.
type Suggestion struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// VariantView is a flattened variant with its display labels.
type VariantView struct {
	domain.Variant
	SimTypeLabel string `json:"simTypeLabel"`
	PriceLabel   string `json:"priceLabel"`
}

// ProductPage is the product detail view.
type ProductPage struct {
	Product  *domain.Product `json:"product"`
	MinPrice money.Amount    `json:"minPrice"`
	HasPrice bool            `json:"hasPrice"`
	Variants []VariantView   `json:"variants"`
	Similar  []ProductCard   `json:"similar"`
	ReturnTo string          `json:"returnTo"`
}

// CatalogService serves the storefront: browsing, search and product pages.
type CatalogService struct {
	reader        CatalogReader
	productsLimit int
	logger        *slog.Logger
}

// NewCatalogService creates a storefront service. productsLimit caps the
// published products loaded per catalog request; 0 loads all of them.
func NewCatalogService(reader CatalogReader, productsLimit int, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		reader:        reader,
		productsLimit: productsLimit,
		logger:        logger,
	}
}

// Categories returns every category in list order.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.reader.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Catalog filters, searches and groups the published products.
func (s *CatalogService) Catalog(ctx context.Context, filter domain.Filter, q string) (*CatalogView, error) {
	categories, err := s.reader.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	products, err := s.reader.ListPublishedProducts(ctx, nil, s.productsLimit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	catalog := domain.BuildCatalog(categories, products, filter, q)

	resolver := newMediaResolver(s.reader.GetMedia, s.logger)
	view := &CatalogView{
		Sections: make([]SectionView, 0, len(catalog.Sections)),
		Storages: nonNil(catalog.Storages),
		Selected: SelectedView{
			Categories: nonNil(filter.CategorySlugs),
			Storages:   nonNil(filter.Storages),
		},
		Query:    catalog.Query,
		ReturnTo: filter.ReturnTo(),
	}
	for _, section := range catalog.Sections {
		resolver.resolveAll(ctx, section.Products, false)
		cards := make([]ProductCard, 0, len(section.Products))
		for i := range section.Products {
			cards = append(cards, NewProductCard(&section.Products[i]))
		}
		view.Sections = append(view.Sections, SectionView{Category: section.Category, Products: cards})
	}

	s.logger.DebugContext(ctx, "catalog built",
		slog.Int("sections", len(view.Sections)),
		slog.String("query", catalog.Query),
	)
	return view, nil
}

// Suggestions returns search suggestions for q.
func (s *CatalogService) Suggestions(ctx context.Context, q string) ([]Suggestion, error) {
	out := []Suggestion{}
	if strings.TrimSpace(q) == "" {
		return out, nil
	}

	products, err := s.reader.ListPublishedProducts(ctx, nil, s.productsLimit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for _, p := range domain.Suggest(products, q, domain.SuggestionLimit) {
		out = append(out, Suggestion{ID: p.ID, Title: p.Title, Slug: p.Slug})
	}
	return out, nil
}

// Product returns the detail page for a published product. idOrSlug is
// treated as an id when it is numeric. returnTo is kept only when it points
// back into the catalog.
func (s *CatalogService) Product(ctx context.Context, idOrSlug, returnTo string) (*ProductPage, error) {
	var (
		product *domain.Product
		err     error
	)
	if id, convErr := strconv.ParseInt(idOrSlug, 10, 64); convErr == nil && id > 0 {
		product, err = s.reader.GetProduct(ctx, id)
	} else {
		product, err = s.reader.GetProductBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", idOrSlug, err)
	}
	if !product.IsPublished() {
		return nil, apperrors.NotFoundMessage(fmt.Sprintf("product %s not found", idOrSlug))
	}

	resolver := newMediaResolver(s.reader.GetMedia, s.logger)
	resolver.resolve(ctx, product, true)

	page := &ProductPage{
		Product:  product,
		MinPrice: domain.MinPrice(product),
		HasPrice: domain.HasPrice(product),
		Variants: []VariantView{},
		Similar:  []ProductCard{},
		ReturnTo: "/catalog",
	}
	if domain.IsValidReturnTo(returnTo) {
		page.ReturnTo = returnTo
	}
	for _, v := range domain.Variants(product) {
		page.Variants = append(page.Variants, VariantView{
			Variant:      v,
			SimTypeLabel: domain.SimTypeLabel(v.SimType),
			PriceLabel:   domain.FormatRubles(v.Price),
		})
	}

	if !product.Category.IsZero() {
		candidates, err := s.reader.ListPublishedProducts(ctx, []int64{product.Category.ID()}, similarFetchLimit)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to load similar products",
				slog.Int64("product_id", product.ID),
				slog.String("error", err.Error()),
			)
		} else {
			similar := domain.Similar(product, candidates, domain.SimilarLimit)
			resolver.resolveAll(ctx, similar, false)
			for i := range similar {
				page.Similar = append(page.Similar, NewProductCard(&similar[i]))
			}
		}
	}

	return page, nil
}

// Media returns a media record.
func (s *CatalogService) Media(ctx context.Context, id int64) (*domain.Media, error) {
	m, err := s.reader.GetMedia(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get media %d: %w", id, err)
	}
	return m, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
