package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/service"
)

// multipartOverhead is allowed on top of the file size for form fields and
// boundaries.
const multipartOverhead = 1 << 20

// MediaHandler handles media uploads and deletions.
type MediaHandler struct {
	service *service.MediaService
	logger  *slog.Logger
}

// NewMediaHandler creates a new media HTTP handler.
func NewMediaHandler(svc *service.MediaService, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		service: svc,
		logger:  logger,
	}
}

// Upload handles POST /api/v1/media as multipart/form-data with a "file"
// part and an optional "alt" field.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteErrorCode(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the 10MB limit")
			return
		}
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	media, err := h.service.Upload(r.Context(), &service.UploadMediaInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Alt:         r.FormValue("alt"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, media)
}

// Delete handles DELETE /api/v1/media/{id}
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
