package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/productapi/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/productapi/internal/repository"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*domain.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if ps, ok := args.Get(0).([]domain.Product); ok {
		return ps, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(repo repository.ProductRepository) *ProductService {
	return NewProductService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListProducts_NoStatus(t *testing.T) {
	repo := new(mockProductRepo)
	repo.On("List", mock.Anything, repository.ProductFilter{}).
		Return([]domain.Product{{Title: "Case"}}, nil)

	products, err := newTestService(repo).ListProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, products, 1)
	repo.AssertExpectations(t)
}

func TestListProducts_ByStatus(t *testing.T) {
	repo := new(mockProductRepo)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Status != nil && *f.Status == domain.StatusDraft
	})).Return([]domain.Product{}, nil)

	products, err := newTestService(repo).ListProducts(context.Background(), domain.StatusDraft)
	require.NoError(t, err)
	assert.Empty(t, products)
	repo.AssertExpectations(t)
}

func TestListProducts_InvalidStatus(t *testing.T) {
	repo := new(mockProductRepo)

	_, err := newTestService(repo).ListProducts(context.Background(), "archived")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListProducts_RepoError(t *testing.T) {
	repo := new(mockProductRepo)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := newTestService(repo).ListProducts(context.Background(), "")
	assert.EqualError(t, err, "db down")
}

func TestGetProduct(t *testing.T) {
	id := uuid.New()
	repo := new(mockProductRepo)
	repo.On("GetByID", mock.Anything, id).Return(&domain.Product{ID: id, Title: "Case"}, nil)

	p, err := newTestService(repo).GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	repo.AssertExpectations(t)
}

func TestGetProduct_NotFound(t *testing.T) {
	id := uuid.New()
	repo := new(mockProductRepo)
	repo.On("GetByID", mock.Anything, id).Return(nil, apperrors.NotFoundMessage("Product "+id.String()+" not found"))

	p, err := newTestService(repo).GetProduct(context.Background(), id)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
