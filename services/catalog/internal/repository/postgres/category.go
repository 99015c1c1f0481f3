package postgres

import (
	"context"
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

const categoryColumns = `id, name, slug, created_at, updated_at`

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	db database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(db database.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category and fills in its generated id and timestamps.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "CreateCategory", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query, c.Name, c.Slug).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "slug", c.Slug)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	c, err := r.scanOne(ctx, "GetCategoryByID", query, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound("category", strconv.FormatInt(id, 10))
	}
	return c, err
}

// GetBySlug retrieves a category by its slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	c, err := r.scanOne(ctx, "GetCategoryBySlug", query, slug)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFoundMessage(fmt.Sprintf("category %q not found", slug))
	}
	return c, err
}

// Update modifies name and slug of an existing category.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) (err error) {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE categories
		SET name = $1, slug = $2, updated_at = $3
		WHERE id = $4`

	ctx, end := database.TraceQuery(ctx, "UpdateCategory", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, c.Name, c.Slug, c.UpdatedAt, c.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "slug", c.Slug)
		}
		return fmt.Errorf("update category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", strconv.FormatInt(c.ID, 10))
	}
	return nil
}

// Delete removes a category. Categories still referenced by products are
// kept and a conflict is returned.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) (err error) {
	query := `DELETE FROM categories WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteCategory", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Conflict("category is still used by products")
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", strconv.FormatInt(id, 10))
	}
	return nil
}

// List returns categories matching the filter with the total count.
func (r *CategoryRepository) List(ctx context.Context, filter repository.CategoryFilter) (_ []domain.Category, _ int, err error) {
	var w where
	if len(filter.IDs) > 0 {
		w.add("id = ANY($%d)", filter.IDs)
	}
	if len(filter.Slugs) > 0 {
		w.add("slug = ANY($%d)", filter.Slugs)
	}
	limit, args := w.page(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM categories
		%s
		ORDER BY id
		%s`, categoryColumns, w.String(), limit)

	ctx, end := database.TraceQuery(ctx, "ListCategories", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	total := 0
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate category rows: %w", err)
	}
	rows.Close()

	if len(categories) == 0 && filter.Offset > 0 {
		if total, err = countRows(ctx, r.db, "CountCategories", "FROM categories", &w); err != nil {
			return nil, 0, err
		}
	}
	return categories, total, nil
}

func (r *CategoryRepository) scanOne(ctx context.Context, op, query string, args ...any) (_ *domain.Category, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var c domain.Category
	err = r.db.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &c, nil
}
