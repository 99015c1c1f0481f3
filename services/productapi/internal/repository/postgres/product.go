package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/productapi/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/productapi/internal/repository"
)

// price is read as text so no precision is lost on the way to decimal.
const productColumns = `id, title, slug, description, price::text, currency, status, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *domain.Product, err error) {
	query := `SELECT ` + productColumns + ` FROM api_products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetAPIProductByID", query)
	defer func() { end(err) }()

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundMessage(fmt.Sprintf("Product %s not found", id))
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List returns products newest first, optionally restricted to one status.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (_ []domain.Product, err error) {
	var (
		whereClause string
		args        []any
	)
	if filter.Status != nil {
		whereClause = "WHERE status = $1"
		args = append(args, *filter.Status)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM api_products
		%s
		ORDER BY created_at DESC`, productColumns, whereClause)

	ctx, end := database.TraceQuery(ctx, "ListAPIProducts", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&price,
		&p.Currency,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if p.Price, err = domain.NewPrice(price); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	return &p, nil
}
