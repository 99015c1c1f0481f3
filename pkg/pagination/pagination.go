package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit matches the CMS default page size.
	DefaultLimit = 10
	// MaxLimit caps the page size a client can request.
	MaxLimit = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns the first page with the default limit.
func DefaultParams() Params {
	return Params{Page: 1, Limit: DefaultLimit}
}

// New builds Params, clamping page to >= 1 and limit to [1, MaxLimit].
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// FromRequest extracts `page` and `limit` query parameters. Invalid values
// fall back to defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 {
			p.Limit = v
		}
	}

	return New(p.Page, p.Limit)
}

// Docs is a paginated document list in the shape the CMS REST API returns.
type Docs[T any] struct {
	Docs          []T  `json:"docs"`
	TotalDocs     int  `json:"totalDocs"`
	Limit         int  `json:"limit"`
	TotalPages    int  `json:"totalPages"`
	Page          int  `json:"page"`
	PagingCounter int  `json:"pagingCounter"`
	HasPrevPage   bool `json:"hasPrevPage"`
	HasNextPage   bool `json:"hasNextPage"`
	PrevPage      *int `json:"prevPage"`
	NextPage      *int `json:"nextPage"`
}

// NewDocs creates a paginated result.
func NewDocs[T any](docs []T, totalDocs int, params Params) Docs[T] {
	if docs == nil {
		docs = []T{}
	}
	limit := params.Limit
	if limit < 1 {
		limit = DefaultLimit
	}

	totalPages := totalDocs / limit
	if totalDocs%limit > 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	d := Docs[T]{
		Docs:          docs,
		TotalDocs:     totalDocs,
		Limit:         limit,
		TotalPages:    totalPages,
		Page:          params.Page,
		PagingCounter: (params.Page-1)*limit + 1,
		HasPrevPage:   params.Page > 1,
		HasNextPage:   params.Page < totalPages,
	}
	if d.HasPrevPage {
		prev := params.Page - 1
		d.PrevPage = &prev
	}
	if d.HasNextPage {
		next := params.Page + 1
		d.NextPage = &next
	}
	return d
}
