package domain

import (
	"slices"
	"time"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
)

// Product status constants.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// SIM configurations a variant can be sold with.
const (
	SimTypeSimESim = "sim-esim"
	SimTypeESim    = "esim"
	SimTypeDualSim = "dual-sim"
)

// Storage values accepted by the catalog storage filter and the legacy
// product storage field.
const (
	Storage256GB  = "256GB"
	Storage512GB  = "512GB"
	Storage1024GB = "1024GB"
	Storage2048GB = "2048GB"
)

// ValidStatuses returns the set of valid product statuses.
func ValidStatuses() []string {
	return []string{StatusDraft, StatusPublished}
}

// IsValidStatus checks whether the given status string is a valid product status.
func IsValidStatus(status string) bool {
	return slices.Contains(ValidStatuses(), status)
}

// ValidSimTypes returns the SIM configurations in display order.
func ValidSimTypes() []string {
	return []string{SimTypeSimESim, SimTypeESim, SimTypeDualSim}
}

// ValidStorages returns the storage filter values in display order.
func ValidStorages() []string {
	return []string{Storage256GB, Storage512GB, Storage1024GB, Storage2048GB}
}

// IsValidStorage reports whether s is a known storage value.
func IsValidStorage(s string) bool {
	return slices.Contains(ValidStorages(), s)
}

// SimVariant is a priced leaf of the variant tree. Price is in rubles and
// may carry kopecks.
type SimVariant struct {
	SimType string       `json:"simType" validate:"required,oneof=sim-esim esim dual-sim"`
	Price   money.Amount `json:"price" validate:"gte=0"`
}

// Country is a manufacturing origin offered for a color.
type Country struct {
	Country  string       `json:"country" validate:"required,max=255"`
	SimTypes []SimVariant `json:"simTypes" validate:"dive"`
}

// ColorImage is an image shown for a color. ImageURL caches the URL of the
// referenced media once resolved.
type ColorImage struct {
	Image    MediaRef `json:"image"`
	ImageURL *string  `json:"imageUrl"`
	Alt      string   `json:"alt"`
}

// Color is a color option of a product.
type Color struct {
	Color                 string       `json:"color" validate:"required,max=255"`
	ManufacturerCountries []Country    `json:"manufacturerCountries" validate:"dive"`
	Images                []ColorImage `json:"images"`
}

// Product is a catalog entry. Prices live only in the SimVariant leaves of
// Colors.
type Product struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description *string     `json:"description"`
	Status      string      `json:"status"`
	Category    CategoryRef `json:"category"`
	Storage     *string     `json:"storage"`
	Colors      []Color     `json:"colors"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// IsPublished reports whether the product is visible on the storefront.
func (p *Product) IsPublished() bool {
	return p.Status == StatusPublished
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Slug        string  `json:"slug" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=draft published"`
	CategoryID  int64   `json:"category" validate:"required,gt=0"`
	Storage     *string `json:"storage" validate:"omitempty,oneof=256GB 512GB 1024GB 2048GB"`
	Colors      []Color `json:"colors" validate:"dive"`
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged; a non-nil Colors replaces the whole variant tree, so
// an empty JSON array clears it.
type UpdateProductInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=draft published"`
	CategoryID  *int64  `json:"category" validate:"omitempty,gt=0"`
	Storage     *string `json:"storage" validate:"omitempty,oneof=256GB 512GB 1024GB 2048GB"`
	Colors      []Color `json:"colors" validate:"dive"`
}
