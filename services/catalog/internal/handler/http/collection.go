package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/pagination"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/cms"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/service"
)

// whereFields lists the fields each collection can be filtered on.
var whereFields = map[string][]string{
	cms.CollectionCategories: {"id", "slug"},
	cms.CollectionProducts:   {"id", "slug", "status", "category"},
	cms.CollectionMedia:      {},
}

var wherePattern = regexp.MustCompile(`^where\[([A-Za-z]+)\]\[([A-Za-z]+)\]$`)

// CollectionHandler serves the document collection API.
type CollectionHandler struct {
	service *service.CollectionService
	logger  *slog.Logger
}

// NewCollectionHandler creates a new collection HTTP handler.
func NewCollectionHandler(svc *service.CollectionService, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{
		service: svc,
		logger:  logger,
	}
}

// parseCollectionQuery reads depth, pagination and where[field][op] filters.
// Supported operators are equals and in; in takes a comma-separated list.
func parseCollectionQuery(r *http.Request, collection string) (service.CollectionQuery, error) {
	values := r.URL.Query()
	q := service.CollectionQuery{
		Depth: service.DefaultDepth,
		Page:  pagination.FromRequest(r),
	}

	if v := values.Get("depth"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil || depth < 0 {
			return q, apperrors.InvalidInput("depth must be a non-negative integer")
		}
		q.Depth = depth
	}

	for key, vals := range values {
		if !strings.HasPrefix(key, "where") {
			continue
		}
		m := wherePattern.FindStringSubmatch(key)
		if m == nil {
			return q, apperrors.InvalidInput(fmt.Sprintf("malformed filter %q", key))
		}
		field, op := m[1], m[2]
		if !slices.Contains(whereFields[collection], field) {
			return q, apperrors.InvalidInput(fmt.Sprintf("the following path cannot be queried: %s", field))
		}

		var terms []string
		switch op {
		case "equals":
			terms = []string{vals[0]}
		case "in":
			for _, v := range vals {
				terms = append(terms, splitList(v)...)
			}
		default:
			return q, apperrors.InvalidInput(fmt.Sprintf("unsupported operator %q", op))
		}

		if err := applyWhere(&q, field, terms); err != nil {
			return q, err
		}
	}
	return q, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func applyWhere(q *service.CollectionQuery, field string, terms []string) error {
	switch field {
	case "slug":
		q.Slugs = append(q.Slugs, terms...)
	case "status":
		for _, s := range terms {
			if !domain.IsValidStatus(s) {
				return apperrors.InvalidInput(fmt.Sprintf("invalid status %q", s))
			}
		}
		q.Statuses = append(q.Statuses, terms...)
	case "id", "category":
		ids, err := parseIDs(terms)
		if err != nil {
			return err
		}
		if field == "id" {
			q.IDs = append(q.IDs, ids...)
		} else {
			q.CategoryIDs = append(q.CategoryIDs, ids...)
		}
	}
	return nil
}

func parseIDs(terms []string) ([]int64, error) {
	ids := make([]int64, 0, len(terms))
	for _, t := range terms {
		id, err := strconv.ParseInt(t, 10, 64)
		if err != nil || id < 1 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid id %q", t))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// List handles GET /api/{collection}
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if _, ok := whereFields[collection]; !ok {
		httputil.WriteErrorCode(w, http.StatusNotFound, "NOT_FOUND", "collection not found: "+url.PathEscape(collection))
		return
	}

	q, err := parseCollectionQuery(r, collection)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var docs any
	switch collection {
	case cms.CollectionCategories:
		docs, err = h.service.Categories(r.Context(), q)
	case cms.CollectionProducts:
		docs, err = h.service.Products(r.Context(), q)
	case cms.CollectionMedia:
		docs, err = h.service.MediaDocs(r.Context(), q)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, docs)
}

// Get handles GET /api/{collection}/{id}
func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if _, ok := whereFields[collection]; !ok {
		httputil.WriteErrorCode(w, http.StatusNotFound, "NOT_FOUND", "collection not found: "+url.PathEscape(collection))
		return
	}
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	depth := service.DefaultDepth
	if v := r.URL.Query().Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 {
			httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_PARAMETER", "depth must be a non-negative integer")
			return
		}
		depth = d
	}

	var (
		doc any
		err error
	)
	switch collection {
	case cms.CollectionCategories:
		doc, err = h.service.Category(r.Context(), id)
	case cms.CollectionProducts:
		doc, err = h.service.Product(r.Context(), id, depth)
	case cms.CollectionMedia:
		doc, err = h.service.Media(r.Context(), id)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}
