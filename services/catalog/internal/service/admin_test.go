package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/event"
)

type adminFixture struct {
	categories *mockCategoryRepository
	products   *mockProductRepository
	publisher  *recordingPublisher
	svc        *AdminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		categories: new(mockCategoryRepository),
		products:   new(mockProductRepository),
		publisher:  &recordingPublisher{},
	}
	f.svc = NewAdminService(f.categories, f.products, newTestProducer(f.publisher), newTestLogger())
	return f
}

func TestAdminService_CreateCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    domain.CreateCategoryInput
		wantSlug string
		wantErr  error
	}{
		{
			name:     "slug from cyrillic name",
			input:    domain.CreateCategoryInput{Name: "Аксессуары"},
			wantSlug: "aksessuary",
		},
		{
			name:     "explicit slug",
			input:    domain.CreateCategoryInput{Name: "iPhone", Slug: "iphone"},
			wantSlug: "iphone",
		},
		{
			name:    "invalid explicit slug",
			input:   domain.CreateCategoryInput{Name: "iPhone", Slug: "Not A Slug"},
			wantErr: apperrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture()
			ctx := context.Background()
			f.categories.On("Create", ctx, mock.AnythingOfType("*domain.Category")).
				Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Category).ID = 10
				}).
				Return(nil)

			c, err := f.svc.CreateCategory(ctx, &tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(10), c.ID)
			assert.Equal(t, tt.wantSlug, c.Slug)
			assert.Equal(t, []string{event.TopicCategoryCreated}, f.publisher.topics)
		})
	}
}

func TestAdminService_CreateCategory_PublishFailureIsNotFatal(t *testing.T) {
	f := newAdminFixture()
	f.publisher.err = errors.New("broker down")
	ctx := context.Background()
	f.categories.On("Create", ctx, mock.Anything).Return(nil)

	c, err := f.svc.CreateCategory(ctx, &domain.CreateCategoryInput{Name: "Watch"})
	require.NoError(t, err)
	assert.Equal(t, "watch", c.Slug)
}

func TestAdminService_UpdateCategory(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	existing := macCategory
	f.categories.On("GetByID", ctx, int64(2)).Return(&existing, nil)
	f.categories.On("Update", ctx, mock.Anything).Return(nil)

	c, err := f.svc.UpdateCategory(ctx, 2, &domain.UpdateCategoryInput{Name: strPtr("Mac & Mac mini")})
	require.NoError(t, err)
	assert.Equal(t, "Mac & Mac mini", c.Name)
	assert.Equal(t, "mac", c.Slug)
	assert.Equal(t, []string{event.TopicCategoryUpdated}, f.publisher.topics)
}

func TestAdminService_DeleteCategory_InUse(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	f.categories.On("Delete", ctx, int64(1)).Return(apperrors.Conflict("category still has products"))

	err := f.svc.DeleteCategory(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Empty(t, f.publisher.topics)
}

func TestAdminService_CreateProduct(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	category := iphoneCategory
	f.categories.On("GetByID", ctx, int64(1)).Return(&category, nil)
	f.products.On("Create", ctx, mock.AnythingOfType("*domain.Product")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Product).ID = 42
		}).
		Return(nil)

	p, err := f.svc.CreateProduct(ctx, &domain.CreateProductInput{
		Title:      "iPhone 16 Pro",
		CategoryID: 1,
		Colors: []domain.Color{{
			Color: "Desert Titanium",
			ManufacturerCountries: []domain.Country{{
				Country:  "256GB",
				SimTypes: []domain.SimVariant{{SimType: domain.SimTypeESim, Price: money.New(129990)}},
			}},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "iphone-16-pro", p.Slug)
	assert.Equal(t, domain.StatusDraft, p.Status)
	resolved, ok := p.Category.Category()
	require.True(t, ok)
	assert.Equal(t, "iPhone", resolved.Name)
	assert.Equal(t, []string{event.TopicProductCreated}, f.publisher.topics)
}

func TestAdminService_CreateProduct_UnknownCategory(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	f.categories.On("GetByID", ctx, int64(99)).Return(nil, apperrors.NotFound("category", "99"))

	_, err := f.svc.CreateProduct(ctx, &domain.CreateProductInput{Title: "Ghost", CategoryID: 99})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminService_UpdateProduct(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	existing := pricedProduct(7, "iPhone 16", domain.StatusDraft, iphoneCategory, 89990)
	f.products.On("GetByID", ctx, int64(7)).Return(&existing, nil)
	f.products.On("Update", ctx, mock.Anything).Return(nil)
	category := macCategory
	f.categories.On("GetByID", ctx, int64(2)).Return(&category, nil)

	p, err := f.svc.UpdateProduct(ctx, 7, &domain.UpdateProductInput{
		Status:     strPtr(domain.StatusPublished),
		CategoryID: int64Ptr(2),
		Colors:     []domain.Color{},
	})
	require.NoError(t, err)

	assert.Equal(t, "iPhone 16", p.Title)
	assert.Equal(t, domain.StatusPublished, p.Status)
	assert.Equal(t, int64(2), p.Category.ID())
	assert.Empty(t, p.Colors)
	assert.Equal(t, []string{event.TopicProductUpdated}, f.publisher.topics)
}

func TestAdminService_UpdateProduct_NilColorsKeepsTree(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	existing := pricedProduct(7, "iPhone 16", domain.StatusDraft, iphoneCategory, 89990)
	f.products.On("GetByID", ctx, int64(7)).Return(&existing, nil)
	f.products.On("Update", ctx, mock.Anything).Return(nil)

	p, err := f.svc.UpdateProduct(ctx, 7, &domain.UpdateProductInput{Title: strPtr("iPhone 16e")})
	require.NoError(t, err)
	assert.Equal(t, "iPhone 16e", p.Title)
	assert.Len(t, p.Colors, 1)
	f.categories.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAdminService_DeleteProduct(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	f.products.On("Delete", ctx, int64(3)).Return(nil)

	require.NoError(t, f.svc.DeleteProduct(ctx, 3))
	assert.Equal(t, []string{event.TopicProductDeleted}, f.publisher.topics)
}
