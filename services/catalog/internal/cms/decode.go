package cms

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

// Documents are decoded one array element at a time so that a type error
// can be reported with its full indexed path; encoding/json only reports
// field names.

// rawDecoder is implemented by DTOs that decode their nested arrays
// element by element.
type rawDecoder interface {
	decodeRaw(path string, raw json.RawMessage) error
}

// fieldError is a decoding failure at a document path.
type fieldError struct {
	path string
	err  error
}

func (e *fieldError) Error() string { return e.path + ": " + e.err.Error() }

func (e *fieldError) Unwrap() error { return e.err }

func joinPath(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "." + name
	}
}

// decodeAt unmarshals raw into dst. A failure is reported under path,
// extended by the field name encoding/json attaches to type errors.
func decodeAt(path string, raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			path = joinPath(path, typeErr.Field)
		}
		return &fieldError{path: path, err: err}
	}
	return nil
}

// decodeEach decodes every element of raws with fn, numbering the path of
// each element. A nil input stays nil.
func decodeEach[T any](path string, raws []json.RawMessage, fn func(path string, raw json.RawMessage, dst *T) error) ([]T, error) {
	if raws == nil {
		return nil, nil
	}
	out := make([]T, len(raws))
	for i, raw := range raws {
		if err := fn(joinPath(path, strconv.Itoa(i)), raw, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeLeaf[T any](path string, raw json.RawMessage, dst *T) error {
	return decodeAt(path, raw, dst)
}

func (p *categoryPage) decodeRaw(path string, raw json.RawMessage) error {
	var doc struct {
		Docs []json.RawMessage `json:"docs"`
		pageInfo
	}
	if err := decodeAt(path, raw, &doc); err != nil {
		return err
	}
	docs, err := decodeEach(joinPath(path, "docs"), doc.Docs, decodeLeaf[categoryDTO])
	if err != nil {
		return err
	}
	p.Docs = docs
	p.pageInfo = doc.pageInfo
	return nil
}

func (p *productPage) decodeRaw(path string, raw json.RawMessage) error {
	var doc struct {
		Docs []json.RawMessage `json:"docs"`
		pageInfo
	}
	if err := decodeAt(path, raw, &doc); err != nil {
		return err
	}
	docs, err := decodeEach(joinPath(path, "docs"), doc.Docs, decodeProduct)
	if err != nil {
		return err
	}
	p.Docs = docs
	p.pageInfo = doc.pageInfo
	return nil
}

func (d *productDTO) decodeRaw(path string, raw json.RawMessage) error {
	return decodeProduct(path, raw, d)
}

func decodeProduct(path string, raw json.RawMessage, dst *productDTO) error {
	var doc struct {
		productDTO
		Category json.RawMessage   `json:"category"`
		Colors   []json.RawMessage `json:"colors"`
	}
	if err := decodeAt(path, raw, &doc); err != nil {
		return err
	}
	*dst = doc.productDTO
	if len(doc.Category) > 0 {
		if err := decodeAt(joinPath(path, "category"), doc.Category, &dst.Category); err != nil {
			return err
		}
	}
	colors, err := decodeEach(joinPath(path, "colors"), doc.Colors, decodeColor)
	if err != nil {
		return err
	}
	dst.Colors = colors
	return nil
}

func decodeColor(path string, raw json.RawMessage, dst *domain.Color) error {
	var doc struct {
		domain.Color
		ManufacturerCountries []json.RawMessage `json:"manufacturerCountries"`
		Images                []json.RawMessage `json:"images"`
	}
	if err := decodeAt(path, raw, &doc); err != nil {
		return err
	}
	*dst = doc.Color
	countries, err := decodeEach(joinPath(path, "manufacturerCountries"), doc.ManufacturerCountries, decodeCountry)
	if err != nil {
		return err
	}
	images, err := decodeEach(joinPath(path, "images"), doc.Images, decodeImage)
	if err != nil {
		return err
	}
	dst.ManufacturerCountries = countries
	dst.Images = images
	return nil
}

func decodeCountry(path string, raw json.RawMessage, dst *domain.Country) error {
	var doc struct {
		domain.Country
		SimTypes []json.RawMessage `json:"simTypes"`
	}
	if err := decodeAt(path, raw, &doc); err != nil {
		return err
	}
	*dst = doc.Country
	sims, err := decodeEach(joinPath(path, "simTypes"), doc.SimTypes, decodeLeaf[domain.SimVariant])
	if err != nil {
		return err
	}
	dst.SimTypes = sims
	return nil
}

func decodeImage(path string, raw json.RawMessage, dst *domain.ColorImage) error {
	var doc struct {
		domain.ColorImage
		Image json.RawMessage `json:"image"`
	}
	if err := decodeAt(path, raw, &doc); err != nil {
		return err
	}
	*dst = doc.ColorImage
	if len(doc.Image) > 0 {
		return decodeAt(joinPath(path, "image"), doc.Image, &dst.Image)
	}
	return nil
}
