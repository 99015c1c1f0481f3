package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository"
)

// productSelect joins the category so every product leaves the repository
// with a resolved category reference.
const productSelect = `
		SELECT p.id, p.title, p.slug, p.description, p.status, p.category_id,
		       c.name, c.slug, c.created_at, c.updated_at,
		       p.storage, p.colors, p.created_at, p.updated_at`

const productFrom = `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
// The variant tree is stored as JSONB in the colors column.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product and fills in its id and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	colorsJSON, err := marshalColors(p.Colors)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (title, slug, description, status, category_id, storage, colors)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "CreateProduct", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		p.Title,
		p.Slug,
		p.Description,
		p.Status,
		categoryID(p.Category),
		p.Storage,
		colorsJSON,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return productWriteError(err, p)
	}
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := productSelect + productFrom + `
		WHERE p.id = $1`
	p, err := r.scanOne(ctx, "GetProductByID", query, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}
	return p, err
}

// GetBySlug retrieves a product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := productSelect + productFrom + `
		WHERE p.slug = $1`
	p, err := r.scanOne(ctx, "GetProductBySlug", query, slug)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFoundMessage(fmt.Sprintf("product %q not found", slug))
	}
	return p, err
}

// List returns products matching the filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (_ []domain.Product, _ int, err error) {
	var w where
	if len(filter.IDs) > 0 {
		w.add("p.id = ANY($%d)", filter.IDs)
	}
	if len(filter.Slugs) > 0 {
		w.add("p.slug = ANY($%d)", filter.Slugs)
	}
	if len(filter.Statuses) > 0 {
		w.add("p.status = ANY($%d)", filter.Statuses)
	}
	if len(filter.CategoryIDs) > 0 {
		w.add("p.category_id = ANY($%d)", filter.CategoryIDs)
	}
	limit, args := w.page(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`%s, count(*) OVER() AS total_count %s
		%s
		ORDER BY p.id
		%s`, productSelect, productFrom, w.String(), limit)

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	total := 0
	for rows.Next() {
		var row productRow
		if err := rows.Scan(append(row.dest(), &total)...); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		p, err := row.product()
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	rows.Close()

	if len(products) == 0 && filter.Offset > 0 {
		if total, err = countRows(ctx, r.db, "CountProducts", productFrom, &w); err != nil {
			return nil, 0, err
		}
	}
	return products, total, nil
}

// Update replaces the mutable fields of an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	colorsJSON, err := marshalColors(p.Colors)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET title = $1, slug = $2, description = $3, status = $4, category_id = $5,
		    storage = $6, colors = $7, updated_at = $8
		WHERE id = $9`

	ctx, end := database.TraceQuery(ctx, "UpdateProduct", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query,
		p.Title,
		p.Slug,
		p.Description,
		p.Status,
		categoryID(p.Category),
		p.Storage,
		colorsJSON,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return productWriteError(err, p)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", strconv.FormatInt(p.ID, 10))
	}
	return nil
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (err error) {
	query := `DELETE FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteProduct", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}
	return nil
}

// Count returns the number of products regardless of status.
func (r *ProductRepository) Count(ctx context.Context) (n int, err error) {
	query := `SELECT count(*) FROM products`

	ctx, end := database.TraceQuery(ctx, "CountProducts", query)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *ProductRepository) scanOne(ctx context.Context, op, query string, args ...any) (_ *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var row productRow
	if err = r.db.QueryRow(ctx, query, args...).Scan(row.dest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return row.product()
}

// productRow mirrors the columns of productSelect.
type productRow struct {
	p                 domain.Product
	categoryID        *int64
	categoryName      *string
	categorySlug      *string
	categoryCreatedAt *time.Time
	categoryUpdatedAt *time.Time
	colorsJSON        []byte
}

func (row *productRow) dest() []any {
	return []any{
		&row.p.ID,
		&row.p.Title,
		&row.p.Slug,
		&row.p.Description,
		&row.p.Status,
		&row.categoryID,
		&row.categoryName,
		&row.categorySlug,
		&row.categoryCreatedAt,
		&row.categoryUpdatedAt,
		&row.p.Storage,
		&row.colorsJSON,
		&row.p.CreatedAt,
		&row.p.UpdatedAt,
	}
}

func (row *productRow) product() (*domain.Product, error) {
	p := row.p
	switch {
	case row.categoryID == nil:
	case row.categoryName != nil && row.categorySlug != nil:
		c := domain.Category{ID: *row.categoryID, Name: *row.categoryName, Slug: *row.categorySlug}
		if row.categoryCreatedAt != nil {
			c.CreatedAt = *row.categoryCreatedAt
		}
		if row.categoryUpdatedAt != nil {
			c.UpdatedAt = *row.categoryUpdatedAt
		}
		p.Category = domain.ResolvedCategory(c)
	default:
		p.Category = domain.UnresolvedCategory(*row.categoryID)
	}

	if len(row.colorsJSON) > 0 {
		if err := json.Unmarshal(row.colorsJSON, &p.Colors); err != nil {
			return nil, fmt.Errorf("unmarshal colors of product %d: %w", p.ID, err)
		}
	}
	if p.Colors == nil {
		p.Colors = []domain.Color{}
	}
	return &p, nil
}

// marshalColors stores media references by id only. Resolved media records
// are rebuilt on read.
func marshalColors(colors []domain.Color) ([]byte, error) {
	stored := make([]domain.Color, len(colors))
	for i, c := range colors {
		stored[i] = c
		if len(c.Images) == 0 {
			continue
		}
		stored[i].Images = make([]domain.ColorImage, len(c.Images))
		for j, img := range c.Images {
			img.Image = domain.UnresolvedMedia(img.Image.ID())
			stored[i].Images[j] = img
		}
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal colors: %w", err)
	}
	return b, nil
}

func categoryID(ref domain.CategoryRef) *int64 {
	if ref.IsZero() {
		return nil
	}
	id := ref.ID()
	return &id
}

func productWriteError(err error, p *domain.Product) error {
	switch {
	case database.IsUniqueViolation(err):
		return apperrors.AlreadyExists("product", "slug", p.Slug)
	case database.IsForeignKeyViolation(err):
		return apperrors.InvalidInput(fmt.Sprintf("category %d does not exist", p.Category.ID()))
	default:
		return fmt.Errorf("write product: %w", err)
	}
}
