package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Category groups products on the storefront.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateCategoryInput holds the parameters for creating a category.
// An empty slug is generated from the name.
type CreateCategoryInput struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	Slug string `json:"slug" validate:"omitempty,max=255"`
}

// UpdateCategoryInput holds the parameters for updating a category.
type UpdateCategoryInput struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
	Slug *string `json:"slug" validate:"omitempty,min=1,max=255"`
}

// CategoryRef points at a category either by id or by the joined record.
// It is resolved once where products enter the system and read only
// through ID and Category afterwards.
type CategoryRef struct {
	id       int64
	resolved *Category
}

// UnresolvedCategory returns a reference that only carries the id.
func UnresolvedCategory(id int64) CategoryRef {
	return CategoryRef{id: id}
}

// ResolvedCategory returns a reference carrying the full category.
func ResolvedCategory(c Category) CategoryRef {
	return CategoryRef{id: c.ID, resolved: &c}
}

// ID returns the referenced category id, or 0 for an empty reference.
func (r CategoryRef) ID() int64 { return r.id }

// Category returns the joined category when the reference is resolved.
func (r CategoryRef) Category() (Category, bool) {
	if r.resolved == nil {
		return Category{}, false
	}
	return *r.resolved, true
}

// IsZero reports whether the reference points at nothing.
func (r CategoryRef) IsZero() bool { return r.id == 0 && r.resolved == nil }

// MarshalJSON encodes a resolved reference as an object and an unresolved
// one as its numeric id.
func (r CategoryRef) MarshalJSON() ([]byte, error) {
	switch {
	case r.resolved != nil:
		return json.Marshal(r.resolved)
	case r.id == 0:
		return []byte("null"), nil
	default:
		return json.Marshal(r.id)
	}
}

// UnmarshalJSON accepts a number, an object with an id, or null.
func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = CategoryRef{}
		return nil
	case len(data) > 0 && data[0] == '{':
		var c Category
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		if c.ID == 0 {
			return fmt.Errorf("category reference: object without id")
		}
		*r = ResolvedCategory(c)
		return nil
	default:
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("category reference: expected number or object: %w", err)
		}
		*r = UnresolvedCategory(id)
		return nil
	}
}
