package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/event"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/storage"
)

// UploadMediaInput holds an uploaded file.
type UploadMediaInput struct {
	Filename    string
	ContentType string
	Alt         string
	Size        int64
	Data        io.Reader
}

// MediaService stores uploaded images and their metadata.
type MediaService struct {
	repo     repository.MediaRepository
	storage  storage.Storage
	producer *event.Producer
	logger   *slog.Logger
}

// NewMediaService creates a new media service.
func NewMediaService(
	repo repository.MediaRepository,
	store storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
) *MediaService {
	return &MediaService{
		repo:     repo,
		storage:  store,
		producer: producer,
		logger:   logger,
	}
}

// Upload validates and stores an image, then records its metadata.
func (s *MediaService) Upload(ctx context.Context, input *UploadMediaInput) (*domain.Media, error) {
	if !domain.IsAllowedContentType(input.ContentType) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported content type %q: only images are accepted", input.ContentType))
	}
	if input.Size > domain.MaxFileSize {
		return nil, apperrors.InvalidInput(fmt.Sprintf("file exceeds %d bytes", domain.MaxFileSize))
	}

	data, err := io.ReadAll(io.LimitReader(input.Data, domain.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > domain.MaxFileSize {
		return nil, apperrors.InvalidInput(fmt.Sprintf("file exceeds %d bytes", domain.MaxFileSize))
	}

	filename := path.Base(strings.ReplaceAll(input.Filename, "\\", "/"))
	if filename == "." || filename == "/" {
		filename = "upload"
	}
	key := uuid.NewString() + strings.ToLower(path.Ext(filename))

	result, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: input.ContentType,
		Size:        int64(len(data)),
		Data:        bytes.NewReader(data),
	})
	if err != nil {
		return nil, fmt.Errorf("store media: %w", err)
	}

	media := &domain.Media{
		Filename:   filename,
		StorageKey: result.Key,
		Alt:        input.Alt,
		MimeType:   input.ContentType,
		Filesize:   int64(len(data)),
		URL:        result.URL,
		Sizes:      domain.ImageSizes,
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		media.Width = &cfg.Width
		media.Height = &cfg.Height
	}

	if err := s.repo.Create(ctx, media); err != nil {
		if delErr := s.storage.Delete(ctx, result.Key); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned media file",
				slog.String("key", result.Key),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("create media: %w", err)
	}

	if err := s.producer.PublishMediaUploaded(ctx, media); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish media.uploaded event",
			slog.Int64("media_id", media.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "media uploaded",
		slog.Int64("media_id", media.ID),
		slog.String("filename", media.Filename),
		slog.Int64("filesize", media.Filesize),
	)
	return media, nil
}

// Get returns a media record.
func (s *MediaService) Get(ctx context.Context, id int64) (*domain.Media, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return m, nil
}

// List returns a page of media, newest first.
func (s *MediaService) List(ctx context.Context, limit, offset int) ([]domain.Media, int, error) {
	media, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}
	return media, total, nil
}

// Delete removes the metadata and then the stored file. A file that is
// already gone is not an error.
func (s *MediaService) Delete(ctx context.Context, id int64) error {
	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get media: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if err := s.storage.Delete(ctx, media.StorageKey); err != nil {
		s.logger.WarnContext(ctx, "failed to delete media file",
			slog.Int64("media_id", id),
			slog.String("key", media.StorageKey),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishMediaDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish media.deleted event",
			slog.Int64("media_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "media deleted", slog.Int64("media_id", id))
	return nil
}
