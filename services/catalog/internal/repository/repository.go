package repository

import (
	"context"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

// CategoryFilter defines filter criteria for listing categories. Empty
// slices do not filter.
type CategoryFilter struct {
	IDs    []int64
	Slugs  []string
	Limit  int
	Offset int
}

// ProductFilter defines filter criteria for listing products. Empty slices
// do not filter.
type ProductFilter struct {
	IDs         []int64
	Slugs       []string
	Statuses    []string
	CategoryIDs []int64
	Limit       int
	Offset      int
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	// Delete fails with a conflict while products still reference the category.
	Delete(ctx context.Context, id int64) error
	// List returns categories in id order along with the total match count.
	List(ctx context.Context, filter CategoryFilter) ([]domain.Category, int, error)
}

// ProductRepository defines the interface for product persistence operations.
// Products are returned with their category reference resolved.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	// List returns products in id order along with the total match count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// MediaRepository defines the interface for media metadata persistence.
type MediaRepository interface {
	Create(ctx context.Context, m *domain.Media) error
	GetByID(ctx context.Context, id int64) (*domain.Media, error)
	List(ctx context.Context, limit, offset int) ([]domain.Media, int, error)
	Delete(ctx context.Context, id int64) error
}

// UserRepository defines the interface for admin account persistence.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
