package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

const mediaColumns = `id, filename, storage_key, alt, mime_type, filesize, url, width, height, sizes, created_at, updated_at`

// MediaRepository implements repository.MediaRepository using PostgreSQL.
type MediaRepository struct {
	db database.DBTX
}

// NewMediaRepository creates a new PostgreSQL-backed media repository.
func NewMediaRepository(db database.DBTX) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a media record and fills in its id and timestamps.
func (r *MediaRepository) Create(ctx context.Context, m *domain.Media) (err error) {
	sizesJSON, err := json.Marshal(m.Sizes)
	if err != nil {
		return fmt.Errorf("marshal sizes: %w", err)
	}

	query := `
		INSERT INTO media (filename, storage_key, alt, mime_type, filesize, url, width, height, sizes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "CreateMedia", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		m.Filename,
		m.StorageKey,
		m.Alt,
		m.MimeType,
		m.Filesize,
		m.URL,
		m.Width,
		m.Height,
		sizesJSON,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

// GetByID retrieves a media record by its ID.
func (r *MediaRepository) GetByID(ctx context.Context, id int64) (_ *domain.Media, err error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetMediaByID", query)
	defer func() { end(err) }()

	var (
		m         domain.Media
		sizesJSON []byte
	)
	err = r.db.QueryRow(ctx, query, id).Scan(mediaDest(&m, &sizesJSON)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("media", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("scan media: %w", err)
	}
	if err := unmarshalSizes(&m, sizesJSON); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns media records newest first with the total count.
func (r *MediaRepository) List(ctx context.Context, limit, offset int) (_ []domain.Media, _ int, err error) {
	query := `
		SELECT ` + mediaColumns + `, count(*) OVER() AS total_count
		FROM media
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	ctx, end := database.TraceQuery(ctx, "ListMedia", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	items := []domain.Media{}
	total := 0
	for rows.Next() {
		var (
			m         domain.Media
			sizesJSON []byte
		)
		if err := rows.Scan(append(mediaDest(&m, &sizesJSON), &total)...); err != nil {
			return nil, 0, fmt.Errorf("scan media row: %w", err)
		}
		if err := unmarshalSizes(&m, sizesJSON); err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate media rows: %w", err)
	}
	rows.Close()

	if len(items) == 0 && offset > 0 {
		if total, err = countRows(ctx, r.db, "CountMedia", "FROM media", &where{}); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// Delete removes a media record by its ID.
func (r *MediaRepository) Delete(ctx context.Context, id int64) (err error) {
	query := `DELETE FROM media WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteMedia", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("media", strconv.FormatInt(id, 10))
	}
	return nil
}

func mediaDest(m *domain.Media, sizesJSON *[]byte) []any {
	return []any{
		&m.ID,
		&m.Filename,
		&m.StorageKey,
		&m.Alt,
		&m.MimeType,
		&m.Filesize,
		&m.URL,
		&m.Width,
		&m.Height,
		sizesJSON,
		&m.CreatedAt,
		&m.UpdatedAt,
	}
}

func unmarshalSizes(m *domain.Media, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &m.Sizes); err != nil {
		return fmt.Errorf("unmarshal sizes of media %d: %w", m.ID, err)
	}
	return nil
}
