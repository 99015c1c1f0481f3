package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/slug"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/event"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository"
)

// AdminService implements content management for categories and products.
type AdminService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	producer   *event.Producer
	logger     *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		categories: categories,
		products:   products,
		producer:   producer,
		logger:     logger,
	}
}

// resolveSlug returns explicit when set, otherwise a slug generated from
// name. The result must be a valid slug.
func resolveSlug(explicit, name string) (string, error) {
	s := explicit
	if s == "" {
		s = slug.Generate(name)
	}
	if !slug.IsValid(s) {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid slug %q", s))
	}
	return s, nil
}

// CreateCategory creates a category.
func (s *AdminService) CreateCategory(ctx context.Context, input *domain.CreateCategoryInput) (*domain.Category, error) {
	catSlug, err := resolveSlug(input.Slug, input.Name)
	if err != nil {
		return nil, err
	}

	category := &domain.Category{Name: input.Name, Slug: catSlug}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := s.producer.PublishCategoryCreated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.created event",
			slog.Int64("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.Int64("category_id", category.ID),
		slog.String("slug", category.Slug),
	)
	return category, nil
}

// UpdateCategory applies a partial update to a category.
func (s *AdminService) UpdateCategory(ctx context.Context, id int64, input *domain.UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.Slug != nil {
		if !slug.IsValid(*input.Slug) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid slug %q", *input.Slug))
		}
		category.Slug = *input.Slug
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	if err := s.producer.PublishCategoryUpdated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.updated event",
			slog.Int64("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category updated", slog.Int64("category_id", category.ID))
	return category, nil
}

// DeleteCategory deletes a category. Categories that still have products
// cannot be deleted.
func (s *AdminService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := s.producer.PublishCategoryDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.Int64("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category deleted", slog.Int64("category_id", id))
	return nil
}

// category loads the category a product points at. A missing category is
// the caller's fault.
func (s *AdminService) category(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("category %d does not exist", id))
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// CreateProduct creates a product. Products are drafts unless a status is
// given.
func (s *AdminService) CreateProduct(ctx context.Context, input *domain.CreateProductInput) (*domain.Product, error) {
	productSlug, err := resolveSlug(input.Slug, input.Title)
	if err != nil {
		return nil, err
	}
	category, err := s.category(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.StatusDraft
	}
	colors := input.Colors
	if colors == nil {
		colors = []domain.Color{}
	}

	product := &domain.Product{
		Title:       input.Title,
		Slug:        productSlug,
		Description: input.Description,
		Status:      status,
		Category:    domain.ResolvedCategory(*category),
		Storage:     input.Storage,
		Colors:      colors,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("slug", product.Slug),
		slog.String("status", product.Status),
	)
	return product, nil
}

// UpdateProduct applies a partial update to a product.
func (s *AdminService) UpdateProduct(ctx context.Context, id int64, input *domain.UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.Slug != nil {
		if !slug.IsValid(*input.Slug) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid slug %q", *input.Slug))
		}
		product.Slug = *input.Slug
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Status != nil {
		if !domain.IsValidStatus(*input.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *input.Status))
		}
		product.Status = *input.Status
	}
	if input.CategoryID != nil && *input.CategoryID != product.Category.ID() {
		category, err := s.category(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		product.Category = domain.ResolvedCategory(*category)
	}
	if input.Storage != nil {
		product.Storage = input.Storage
	}
	if input.Colors != nil {
		product.Colors = input.Colors
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated", slog.Int64("product_id", product.ID))
	return product, nil
}

// DeleteProduct deletes a product.
func (s *AdminService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))
	return nil
}
