package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/auth"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

func newTestUserService(repo *mockUserRepository) (*UserService, *auth.JWTManager, *auth.Hasher) {
	hasher := auth.NewHasher(bcrypt.MinCost)
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	return NewUserService(repo, hasher, tokens, newTestLogger()), tokens, hasher
}

func TestUserService_Login(t *testing.T) {
	repo := new(mockUserRepository)
	svc, tokens, hasher := newTestUserService(repo)
	ctx := context.Background()

	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	user := &domain.User{ID: 3, Email: "admin@rublestore.ru", PasswordHash: hash, Role: domain.RoleAdmin}
	repo.On("GetByEmail", ctx, "admin@rublestore.ru").Return(user, nil)
	repo.On("GetByEmail", ctx, "nobody@rublestore.ru").Return(nil, apperrors.NotFoundMessage("user not found"))

	t.Run("valid credentials", func(t *testing.T) {
		res, err := svc.Login(ctx, &domain.LoginInput{Email: " Admin@RubleStore.ru ", Password: "correct horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.True(t, res.ExpiresAt.After(time.Now()))

		claims, err := tokens.Validate(res.Token)
		require.NoError(t, err)
		assert.Equal(t, "3", claims.UserID)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginInput{Email: "admin@rublestore.ru", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginInput{Email: "nobody@rublestore.ru", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestUserService_CreateAdmin(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _, hasher := newTestUserService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 1
		}).
		Return(nil)

	u, err := svc.CreateAdmin(ctx, &domain.CreateUserInput{Email: "Root@RubleStore.ru", Name: "Root", Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "root@rublestore.ru", u.Email)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.NoError(t, hasher.Compare(u.PasswordHash, "s3cret-pass"))
}

func TestUserService_CreateAdmin_Duplicate(t *testing.T) {
	repo := new(mockUserRepository)
	svc, _, _ := newTestUserService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(apperrors.AlreadyExists("user", "email", "root@rublestore.ru"))

	_, err := svc.CreateAdmin(ctx, &domain.CreateUserInput{Email: "root@rublestore.ru", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}
