package domain

import (
	"net/url"
	"slices"
	"strings"
)

const (
	// SuggestionLimit caps the number of search suggestions.
	SuggestionLimit = 10
	// SimilarLimit caps the number of similar products on a product page.
	SimilarLimit = 16
)

// Filter holds the catalog filters selected by the shopper. Empty slices
// match everything.
type Filter struct {
	CategorySlugs []string
	Storages      []string
}

// NewFilter builds a Filter from raw query values, dropping empty category
// slugs and unknown storage values.
func NewFilter(categorySlugs, storages []string) Filter {
	var f Filter
	for _, s := range categorySlugs {
		if s = strings.TrimSpace(s); s != "" {
			f.CategorySlugs = append(f.CategorySlugs, s)
		}
	}
	for _, s := range storages {
		if IsValidStorage(s) {
			f.Storages = append(f.Storages, s)
		}
	}
	return f
}

// Query encodes the active filters as a query string such as
// "category=iphone&storage=256GB".
func (f Filter) Query() string {
	v := url.Values{}
	for _, s := range f.CategorySlugs {
		v.Add("category", s)
	}
	for _, s := range f.Storages {
		v.Add("storage", s)
	}
	return v.Encode()
}

// ReturnTo is the catalog link that restores the filters.
func (f Filter) ReturnTo() string {
	if q := f.Query(); q != "" {
		return "/catalog?" + q
	}
	return "/catalog"
}

// IsValidReturnTo accepts only links back into the catalog.
func IsValidReturnTo(s string) bool {
	return s == "/catalog" || strings.HasPrefix(s, "/catalog?")
}

// FilterProducts returns the published products that match every active
// filter. Category slugs are resolved to ids through categories; slugs that
// resolve to nothing are ignored.
func FilterProducts(products []Product, categories []Category, f Filter) []Product {
	categoryIDs := make(map[int64]struct{})
	for _, c := range categories {
		if slices.Contains(f.CategorySlugs, c.Slug) {
			categoryIDs[c.ID] = struct{}{}
		}
	}

	out := make([]Product, 0, len(products))
	for i := range products {
		p := &products[i]
		if !p.IsPublished() {
			continue
		}
		if len(categoryIDs) > 0 {
			if _, ok := categoryIDs[p.Category.ID()]; !ok {
				continue
			}
		}
		if len(f.Storages) > 0 && !hasCountryIn(p, f.Storages) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// hasCountryIn reports whether some (color, country) pair carries one of
// values. Storage filter values are matched against the country field of
// the variant tree.
func hasCountryIn(p *Product, values []string) bool {
	for _, c := range p.Colors {
		for _, country := range c.ManufacturerCountries {
			if slices.Contains(values, country.Country) {
				return true
			}
		}
	}
	return false
}

// MatchesSearch reports whether the title contains q, ignoring case. A blank
// query matches every product.
func MatchesSearch(p *Product, q string) bool {
	q = strings.TrimSpace(q)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), strings.ToLower(q))
}

// Search keeps the products matching q.
func Search(products []Product, q string) []Product {
	out := make([]Product, 0, len(products))
	for i := range products {
		if MatchesSearch(&products[i], q) {
			out = append(out, products[i])
		}
	}
	return out
}

// Section is one category block of the catalog page.
type Section struct {
	Category Category  `json:"category"`
	Products []Product `json:"products"`
}

// GroupByCategory groups products by category in category list order.
// Categories without products are omitted.
func GroupByCategory(categories []Category, products []Product) []Section {
	byCategory := make(map[int64][]Product)
	for _, p := range products {
		id := p.Category.ID()
		byCategory[id] = append(byCategory[id], p)
	}

	sections := make([]Section, 0, len(categories))
	for _, c := range categories {
		if ps := byCategory[c.ID]; len(ps) > 0 {
			sections = append(sections, Section{Category: c, Products: ps})
		}
	}
	return sections
}

// Catalog is the browse result for one set of filters and search query.
type Catalog struct {
	Sections []Section
	Storages []string
	Filter   Filter
	Query    string
}

// BuildCatalog filters, searches and groups products. Storages lists the
// storage facet values available across all published products.
func BuildCatalog(categories []Category, products []Product, f Filter, q string) Catalog {
	filtered := Search(FilterProducts(products, categories, f), q)
	return Catalog{
		Sections: GroupByCategory(categories, filtered),
		Storages: AvailableStorages(FilterProducts(products, categories, Filter{})),
		Filter:   f,
		Query:    strings.TrimSpace(q),
	}
}

// Suggest returns up to limit published products whose title contains q, in
// product order. A blank query suggests nothing. limit is capped at
// SuggestionLimit.
func Suggest(products []Product, q string, limit int) []Product {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	if limit <= 0 || limit > SuggestionLimit {
		limit = SuggestionLimit
	}

	var out []Product
	for i := range products {
		if len(out) == limit {
			break
		}
		p := &products[i]
		if p.IsPublished() && MatchesSearch(p, q) {
			out = append(out, *p)
		}
	}
	return out
}

// AvailableStorages returns the distinct storage values present in the
// variant trees, in first-seen order.
func AvailableStorages(products []Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		for _, c := range p.Colors {
			for _, country := range c.ManufacturerCountries {
				if _, ok := seen[country.Country]; ok || country.Country == "" {
					continue
				}
				seen[country.Country] = struct{}{}
				out = append(out, country.Country)
			}
		}
	}
	return out
}

// Similar returns published products from the same category as current,
// excluding current itself, capped at limit.
func Similar(current *Product, candidates []Product, limit int) []Product {
	if current.Category.IsZero() {
		return nil
	}
	if limit <= 0 || limit > SimilarLimit {
		limit = SimilarLimit
	}

	var out []Product
	for _, p := range candidates {
		if len(out) == limit {
			break
		}
		if p.ID == current.ID || !p.IsPublished() || p.Category.ID() != current.Category.ID() {
			continue
		}
		out = append(out, p)
	}
	return out
}
