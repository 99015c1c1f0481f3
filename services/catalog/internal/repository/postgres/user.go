package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

const userColumns = `id, email, name, password_hash, role, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts an account. Emails are stored lower-cased.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	query := `
		INSERT INTO users (email, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "CreateUser", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query, u.Email, u.Name, u.PasswordHash, u.Role).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := r.scanOne(ctx, "GetUserByID", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound("user", strconv.FormatInt(id, 10))
	}
	return u, err
}

// GetByEmail retrieves an account by email, ignoring case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := r.scanOne(ctx, "GetUserByEmail", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFoundMessage("user not found")
	}
	return u, err
}

func (r *UserRepository) scanOne(ctx context.Context, op, query string, args ...any) (_ *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var u domain.User
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
