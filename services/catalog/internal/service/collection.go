package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/pagination"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository"
)

// DefaultDepth is the relation depth used when a request does not set one.
const DefaultDepth = 2

// CollectionQuery selects documents from a collection. Empty slices do not
// filter.
type CollectionQuery struct {
	Depth       int
	Page        pagination.Params
	IDs         []int64
	Slugs       []string
	Statuses    []string
	CategoryIDs []int64
}

// CollectionService serves the document-style collection API that the CMS
// client reads from.
type CollectionService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	media      repository.MediaRepository
	logger     *slog.Logger
}

// NewCollectionService creates a new collection service.
func NewCollectionService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	media repository.MediaRepository,
	logger *slog.Logger,
) *CollectionService {
	return &CollectionService{
		categories: categories,
		products:   products,
		media:      media,
		logger:     logger,
	}
}

// Categories returns a page of categories.
func (s *CollectionService) Categories(ctx context.Context, q CollectionQuery) (pagination.Docs[domain.Category], error) {
	categories, total, err := s.categories.List(ctx, repository.CategoryFilter{
		IDs:    q.IDs,
		Slugs:  q.Slugs,
		Limit:  q.Page.Limit,
		Offset: q.Page.Offset,
	})
	if err != nil {
		return pagination.Docs[domain.Category]{}, fmt.Errorf("list categories: %w", err)
	}
	return pagination.NewDocs(categories, total, q.Page), nil
}

// Category returns one category.
func (s *CollectionService) Category(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Products returns a page of products shaped for the requested depth.
func (s *CollectionService) Products(ctx context.Context, q CollectionQuery) (pagination.Docs[domain.Product], error) {
	products, total, err := s.products.List(ctx, repository.ProductFilter{
		IDs:         q.IDs,
		Slugs:       q.Slugs,
		Statuses:    q.Statuses,
		CategoryIDs: q.CategoryIDs,
		Limit:       q.Page.Limit,
		Offset:      q.Page.Offset,
	})
	if err != nil {
		return pagination.Docs[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}

	resolver := newMediaResolver(s.media.GetByID, s.logger)
	for i := range products {
		s.shape(ctx, resolver, &products[i], q.Depth)
	}
	return pagination.NewDocs(products, total, q.Page), nil
}

// Product returns one product shaped for depth.
func (s *CollectionService) Product(ctx context.Context, id int64, depth int) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	s.shape(ctx, newMediaResolver(s.media.GetByID, s.logger), p, depth)
	return p, nil
}

// shape fills image URLs and, at depth 0, flattens relations to ids.
func (s *CollectionService) shape(ctx context.Context, resolver *mediaResolver, p *domain.Product, depth int) {
	resolver.resolve(ctx, p, depth > 0)
	if depth > 0 {
		return
	}
	if !p.Category.IsZero() {
		p.Category = domain.UnresolvedCategory(p.Category.ID())
	}
	for i := range p.Colors {
		for j := range p.Colors[i].Images {
			img := &p.Colors[i].Images[j]
			if !img.Image.IsZero() {
				img.Image = domain.UnresolvedMedia(img.Image.ID())
			}
		}
	}
}

// MediaDocs returns a page of media, newest first.
func (s *CollectionService) MediaDocs(ctx context.Context, q CollectionQuery) (pagination.Docs[domain.Media], error) {
	media, total, err := s.media.List(ctx, q.Page.Limit, q.Page.Offset)
	if err != nil {
		return pagination.Docs[domain.Media]{}, fmt.Errorf("list media: %w", err)
	}
	return pagination.NewDocs(media, total, q.Page), nil
}

// Media returns one media record.
func (s *CollectionService) Media(ctx context.Context, id int64) (*domain.Media, error) {
	m, err := s.media.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return m, nil
}
