package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/productapi/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Status *string
}

// ProductRepository defines read access to API products.
type ProductRepository interface {
	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// List returns products matching the filter, newest first.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
}
