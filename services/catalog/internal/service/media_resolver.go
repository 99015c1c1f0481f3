package service

import (
	"context"
	"log/slog"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

// mediaLookup loads a media record by id.
type mediaLookup func(ctx context.Context, id int64) (*domain.Media, error)

// mediaResolver fills ColorImage.ImageURL from the referenced media. It
// lives for one request: each media id is looked up at most once and a
// failed lookup is remembered as missing.
type mediaResolver struct {
	lookup mediaLookup
	logger *slog.Logger
	cache  map[int64]*domain.Media
}

func newMediaResolver(lookup mediaLookup, logger *slog.Logger) *mediaResolver {
	return &mediaResolver{
		lookup: lookup,
		logger: logger,
		cache:  make(map[int64]*domain.Media),
	}
}

func (r *mediaResolver) get(ctx context.Context, id int64) *domain.Media {
	if m, ok := r.cache[id]; ok {
		return m
	}
	m, err := r.lookup(ctx, id)
	if err != nil {
		r.logger.DebugContext(ctx, "media lookup failed",
			slog.Int64("media_id", id),
			slog.String("error", err.Error()),
		)
		m = nil
	}
	r.cache[id] = m
	return m
}

// resolve sets ImageURL on every image that lacks one. With populate set,
// image references are also replaced by the resolved media records.
func (r *mediaResolver) resolve(ctx context.Context, p *domain.Product, populate bool) {
	for i := range p.Colors {
		images := p.Colors[i].Images
		for j := range images {
			img := &images[j]
			id := img.Image.ID()
			if id == 0 {
				continue
			}
			needURL := img.ImageURL == nil || *img.ImageURL == ""
			_, resolved := img.Image.Media()
			if !needURL && (!populate || resolved) {
				continue
			}

			m := r.get(ctx, id)
			if m == nil {
				continue
			}
			if needURL && m.URL != "" {
				url := m.URL
				img.ImageURL = &url
			}
			if populate && !resolved {
				img.Image = domain.ResolvedMedia(*m)
			}
		}
	}
}

func (r *mediaResolver) resolveAll(ctx context.Context, products []domain.Product, populate bool) {
	for i := range products {
		r.resolve(ctx, &products[i], populate)
	}
}
