package cms

import (
	"time"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

// pageInfo is the pagination part of a CMS list response.
type pageInfo struct {
	TotalDocs   int  `json:"totalDocs"`
	Page        int  `json:"page"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
}

// The list envelopes are concrete types so validation paths start at "docs".
type categoryPage struct {
	Docs []categoryDTO `json:"docs" validate:"dive"`
	pageInfo
}

type productPage struct {
	Docs []productDTO `json:"docs" validate:"dive"`
	pageInfo
}

type categoryDTO struct {
	ID        int64     `json:"id" validate:"gt=0"`
	Name      string    `json:"name" validate:"required"`
	Slug      string    `json:"slug" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *categoryDTO) category() domain.Category {
	return domain.Category{
		ID:        d.ID,
		Name:      d.Name,
		Slug:      d.Slug,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type productDTO struct {
	ID          int64              `json:"id" validate:"gt=0"`
	Title       string             `json:"title" validate:"required"`
	Slug        string             `json:"slug" validate:"required"`
	Description *string            `json:"description"`
	Status      string             `json:"status" validate:"oneof=draft published"`
	Storage     *string            `json:"storage" validate:"omitempty,oneof=256GB 512GB 1024GB 2048GB"`
	Category    domain.CategoryRef `json:"category"`
	Colors      []domain.Color     `json:"colors" validate:"dive"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (d *productDTO) product() domain.Product {
	colors := d.Colors
	if colors == nil {
		colors = []domain.Color{}
	}
	return domain.Product{
		ID:          d.ID,
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		Status:      d.Status,
		Category:    d.Category,
		Storage:     d.Storage,
		Colors:      colors,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type mediaDTO struct {
	ID        int64              `json:"id" validate:"gt=0"`
	Filename  string             `json:"filename"`
	Alt       string             `json:"alt"`
	MimeType  string             `json:"mimeType"`
	Filesize  int64              `json:"filesize"`
	URL       string             `json:"url" validate:"required"`
	Width     *int               `json:"width"`
	Height    *int               `json:"height"`
	Sizes     []domain.ImageSize `json:"sizes"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func (d *mediaDTO) media() *domain.Media {
	return &domain.Media{
		ID:        d.ID,
		Filename:  d.Filename,
		Alt:       d.Alt,
		MimeType:  d.MimeType,
		Filesize:  d.Filesize,
		URL:       d.URL,
		Width:     d.Width,
		Height:    d.Height,
		Sizes:     d.Sizes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
