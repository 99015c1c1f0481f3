package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/productapi/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/productapi/internal/repository"
)

// ProductService implements the read side of the products API.
type ProductService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProducts returns products newest first. An empty status lists every
// product; any other value must be a known status.
func (s *ProductService) ListProducts(ctx context.Context, status string) ([]domain.Product, error) {
	var filter repository.ProductFilter
	if status != "" {
		if !domain.IsValidStatus(status) {
			return nil, apperrors.InvalidInput("status must be one of: " + strings.Join(domain.ValidStatuses(), ", "))
		}
		filter.Status = &status
	}

	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "products listed",
		slog.String("status", status),
		slog.Int("count", len(products)),
	)
	return products, nil
}
