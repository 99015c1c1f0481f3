// Package money holds the ruble amount used for variant, cart and order prices.
package money

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/shopspring/decimal"
)

// Amount is a ruble amount that may carry kopecks. It encodes as a bare
// JSON number and only accepts JSON numbers when decoding.
type Amount struct {
	decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{decimal.Zero}

// New returns an amount of whole rubles.
func New(rubles int64) Amount {
	return Amount{decimal.NewFromInt(rubles)}
}

// Parse parses a decimal string such as "129990.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{d}, nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) Amount {
	return Amount{decimal.RequireFromString(s)}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{a.Decimal.Add(b.Decimal)}
}

// Mul returns a multiplied by a quantity.
func (a Amount) Mul(qty int) Amount {
	return Amount{a.Decimal.Mul(decimal.NewFromInt(int64(qty)))}
}

// Equal reports whether a and b are numerically equal.
func (a Amount) Equal(b Amount) bool {
	return a.Decimal.Equal(b.Decimal)
}

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.Decimal.LessThan(b.Decimal)
}

// Float64 returns the nearest float, used by validation tags.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal.Float64()
	return f
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number. null leaves the amount unchanged,
// as it would for a plain numeric field.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) == 0 || !isNumberStart(data[0]) {
		return &json.UnmarshalTypeError{Value: literalKind(data), Type: reflect.TypeFor[Amount]()}
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return &json.UnmarshalTypeError{Value: "number " + string(data), Type: reflect.TypeFor[Amount]()}
	}
	a.Decimal = d
	return nil
}

func isNumberStart(c byte) bool {
	return c == '-' || (c >= '0' && c <= '9')
}

func literalKind(data []byte) string {
	if len(data) == 0 {
		return "empty"
	}
	switch data[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	default:
		return "literal"
	}
}
