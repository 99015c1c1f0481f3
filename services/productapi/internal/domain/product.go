package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product status constants.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// DefaultCurrency is stored when a product has no explicit currency.
const DefaultCurrency = "RUB"

// ValidStatuses returns the set of valid product statuses.
func ValidStatuses() []string {
	return []string{StatusDraft, StatusPublished}
}

// IsValidStatus checks whether the given status string is a valid product status.
func IsValidStatus(status string) bool {
	return slices.Contains(ValidStatuses(), status)
}

// Price is a two-decimal monetary amount. It is encoded as a JSON string
// with exactly two fraction digits, e.g. "1999.00".
type Price struct {
	decimal.Decimal
}

// NewPrice parses a decimal string such as "1999.00".
func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}
	return Price{Decimal: d}, nil
}

// String returns the amount with two fraction digits.
func (p Price) String() string {
	return p.StringFixed(2)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	return p.Decimal.UnmarshalJSON(data)
}

// Product is an entry of the secondary products API.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Price       Price     `json:"price"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsPublished reports whether the product is visible to clients.
func (p *Product) IsPublished() bool {
	return p.Status == StatusPublished
}
