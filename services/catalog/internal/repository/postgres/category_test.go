package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository"
)

var categoryCols = []string{"id", "name", "slug", "created_at", "updated_at"}

func TestCategoryRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery("INSERT INTO categories").
		WithArgs("iPhone", "iphone").
		WillReturnRows(pgxmock.NewRows(returningColumns).AddRow(int64(4), now, now))

	c := &domain.Category{Name: "iPhone", Slug: "iphone"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, int64(4), c.ID)
	assert.Equal(t, now, c.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Create_UniqueViolation(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery("INSERT INTO categories").
		WithArgs("Mac", "mac").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Category{Name: "Mac", Slug: "mac"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_GetBySlug(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM categories WHERE slug").
		WithArgs("watch").
		WillReturnRows(pgxmock.NewRows(categoryCols).AddRow(int64(5), "Watch", "watch", now, now))

	c, err := repo.GetBySlug(context.Background(), "watch")
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.ID)
	assert.Equal(t, "Watch", c.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM categories WHERE id").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	c, err := repo.GetByID(context.Background(), 404)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectExec("UPDATE categories").
		WithArgs("Mac", "mac", pgxmock.AnyArg(), int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &domain.Category{ID: 9, Name: "Mac", Slug: "mac"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Delete_InUse(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_List_WithSlugs(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	cols := append(append([]string{}, categoryCols...), "total_count")
	mock.ExpectQuery(`SELECT .+ FROM categories\s+WHERE slug = ANY\(\$1\)\s+ORDER BY id\s+LIMIT \$2 OFFSET \$3`).
		WithArgs([]string{"mac", "iphone"}, 10, 0).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(1), "Mac", "mac", now, now, 2).
			AddRow(int64(4), "iPhone", "iphone", now, now, 2))

	got, total, err := repo.List(context.Background(), repository.CategoryFilter{
		Slugs: []string{"mac", "iphone"},
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, "iphone", got[1].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_List_Empty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	cols := append(append([]string{}, categoryCols...), "total_count")
	mock.ExpectQuery("SELECT .+ FROM categories").
		WillReturnRows(pgxmock.NewRows(cols))

	got, total, err := repo.List(context.Background(), repository.CategoryFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_List_PastLastPageKeepsTotal(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	cols := append(append([]string{}, categoryCols...), "total_count")
	mock.ExpectQuery(`SELECT .+ FROM categories\s+ORDER BY id\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 30).
		WillReturnRows(pgxmock.NewRows(cols))
	mock.ExpectQuery(`SELECT count\(\*\) FROM categories\s*$`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	got, total, err := repo.List(context.Background(), repository.CategoryFilter{Limit: 10, Offset: 30})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 4, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
