package domain

import (
	"strings"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
)

// Variant is one purchasable combination of a product's variant tree.
type Variant struct {
	Color   string `json:"color"`
	Country string `json:"country"`
	SimType string       `json:"simType"`
	Price   money.Amount `json:"price"`
}

// Variants flattens the color, country and SIM tree in tree order.
func Variants(p *Product) []Variant {
	var out []Variant
	for _, c := range p.Colors {
		for _, country := range c.ManufacturerCountries {
			for _, sim := range country.SimTypes {
				out = append(out, Variant{
					Color:   c.Color,
					Country: country.Country,
					SimType: sim.SimType,
					Price:   sim.Price,
				})
			}
		}
	}
	return out
}

// MinPrice returns the lowest leaf price, or 0 when the product has no
// priced leaves.
func MinPrice(p *Product) money.Amount {
	lowest := money.Zero
	found := false
	for _, c := range p.Colors {
		for _, country := range c.ManufacturerCountries {
			for _, sim := range country.SimTypes {
				if !found || sim.Price.LessThan(lowest) {
					lowest = sim.Price
					found = true
				}
			}
		}
	}
	return lowest
}

// HasPrice reports whether the product has at least one priced leaf, which
// tells a zero-priced variant apart from a product with no variants.
func HasPrice(p *Product) bool {
	for _, c := range p.Colors {
		for _, country := range c.ManufacturerCountries {
			if len(country.SimTypes) > 0 {
				return true
			}
		}
	}
	return false
}

// FindVariant returns the leaf for the given color, country and SIM type.
func FindVariant(p *Product, color, country, simType string) (Variant, error) {
	for _, v := range Variants(p) {
		if v.Color == color && v.Country == country && v.SimType == simType {
			return v, nil
		}
	}
	return Variant{}, apperrors.NotFoundMessage(
		"variant " + color + "/" + country + "/" + simType + " not found for product " + p.Slug,
	)
}

var simTypeLabels = map[string]string{
	SimTypeSimESim: "SIM+eSIM",
	SimTypeESim:    "eSIM",
	SimTypeDualSim: "Dual SIM",
}

// SimTypeLabel returns the display label for a SIM type. Unknown values are
// returned unchanged.
func SimTypeLabel(simType string) string {
	if label, ok := simTypeLabels[simType]; ok {
		return label
	}
	return simType
}

// groupSeparator is the no-break space ru-RU uses between digit groups.
const groupSeparator = "\u00a0"

// FormatRubles renders a price the way ru-RU locale formatting does, e.g.
// "129 990 ₽" or "1990,5 ₽". Four-digit integer parts are not grouped and
// at most three fraction digits are kept.
func FormatRubles(a money.Amount) string {
	d := a.Round(3)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	digits := whole.String()
	fraction := strings.TrimPrefix(d.Sub(whole).String(), "0.")
	if fraction == "0" {
		fraction = ""
	} else {
		fraction = "," + fraction
	}

	var b strings.Builder
	b.WriteString(sign)
	if len(digits) <= 4 {
		b.WriteString(digits)
	} else {
		head := len(digits) % 3
		if head > 0 {
			b.WriteString(digits[:head])
		}
		for i := head; i < len(digits); i += 3 {
			if i > 0 {
				b.WriteString(groupSeparator)
			}
			b.WriteString(digits[i : i+3])
		}
	}
	b.WriteString(fraction)
	b.WriteString(" ₽")
	return b.String()
}

// PriceLabel is the card price text: empty when the product has no price.
func PriceLabel(p *Product) string {
	if !HasPrice(p) {
		return ""
	}
	return FormatRubles(MinPrice(p))
}

// ImageURL returns the URL of the product's first image, preferring the
// cached imageUrl over a resolved media record.
func ImageURL(p *Product) *string {
	if len(p.Colors) == 0 || len(p.Colors[0].Images) == 0 {
		return nil
	}
	img := p.Colors[0].Images[0]
	if img.ImageURL != nil && *img.ImageURL != "" {
		return img.ImageURL
	}
	if m, ok := img.Image.Media(); ok && m.URL != "" {
		return &m.URL
	}
	return nil
}
