package cms

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/validator"
)

// SchemaError reports a CMS document that does not match the expected
// shape. Path is dotted with array indices, e.g. "docs.3.colors.0.color".
type SchemaError struct {
	Collection string
	Path       string
	Message    string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("[DTO] %s: schema mismatch. Field: %s. %s", e.Collection, e.Path, e.Message)
}

// Unwrap exposes the error as a 502 so HTTP handlers report it as an
// upstream fault.
func (e *SchemaError) Unwrap() error {
	return apperrors.BadGateway("UPSTREAM_SCHEMA_MISMATCH", e.Error(), nil)
}

// decode unmarshals raw into dst and validates it. Any mismatch is returned
// as a *SchemaError.
func decode(collection string, raw []byte, dst any) error {
	var err error
	if d, ok := dst.(rawDecoder); ok {
		err = d.decodeRaw("", raw)
	} else {
		err = decodeAt("", raw, dst)
	}
	if err != nil {
		return schemaErrorFromJSON(collection, err)
	}
	if err := validator.Validate(dst); err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			path, msg := valErr.First()
			return &SchemaError{Collection: collection, Path: path, Message: msg}
		}
		return &SchemaError{Collection: collection, Path: "root", Message: err.Error()}
	}
	return nil
}

func schemaErrorFromJSON(collection string, err error) *SchemaError {
	path := "root"
	var fe *fieldError
	if errors.As(err, &fe) && fe.path != "" {
		path = fe.path
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &SchemaError{
			Collection: collection,
			Path:       path,
			Message:    fmt.Sprintf("expected %s, received %s", jsonKind(typeErr.Type), typeErr.Value),
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &SchemaError{Collection: collection, Path: path, Message: "malformed JSON"}
	}
	if fe != nil {
		err = fe.err
	}
	return &SchemaError{Collection: collection, Path: path, Message: err.Error()}
}

var amountType = reflect.TypeFor[money.Amount]()

// jsonKind names the JSON type a Go type decodes from.
func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	if t == amountType {
		return "number"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.String()
	}
}
