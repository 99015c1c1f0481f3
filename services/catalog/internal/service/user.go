package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/auth"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository"
)

// errBadCredentials hides whether the email or the password was wrong.
var errBadCredentials = apperrors.Unauthorized("invalid email or password")

// LoginResult is returned on a successful sign-in.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"exp"`
	User      *domain.User `json:"user"`
}

// UserService authenticates admin accounts.
type UserService struct {
	repo   repository.UserRepository
	hasher *auth.Hasher
	tokens *auth.JWTManager
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, hasher *auth.Hasher, tokens *auth.JWTManager, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Login checks the credentials and issues a token.
func (s *UserService) Login(ctx context.Context, input *domain.LoginInput) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, auth.ErrMismatch) {
			s.logger.WarnContext(ctx, "failed login attempt", slog.Int64("user_id", user.ID))
			return nil, errBadCredentials
		}
		return nil, err
	}

	token, exp, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.Int64("user_id", user.ID))
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// CreateAdmin creates an admin account.
func (s *UserService) CreateAdmin(ctx context.Context, input *domain.CreateUserInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         input.Name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "admin user created",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// Me returns the account behind an authenticated request.
func (s *UserService) Me(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
