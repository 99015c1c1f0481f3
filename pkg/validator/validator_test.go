package validator

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/money"
)

type simVariant struct {
	SimType string       `json:"simType" validate:"required,oneof=sim-esim esim dual-sim"`
	Price   money.Amount `json:"price" validate:"gte=0"`
}

type country struct {
	Country  string       `json:"country" validate:"required"`
	SimTypes []simVariant `json:"simTypes" validate:"dive"`
}

type color struct {
	Color     string    `json:"color" validate:"required"`
	Countries []country `json:"manufacturerCountries" validate:"dive"`
}

type page struct {
	Docs []struct {
		Title  string  `json:"title" validate:"required"`
		Colors []color `json:"colors" validate:"dive"`
	} `json:"docs" validate:"dive"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(loginRequest{Email: "admin@ruble.store", Password: "s3cret-pass"}))
}

func TestValidate_FieldsUseJSONNames(t *testing.T) {
	err := Validate(loginRequest{Email: "nope", Password: "x"})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	fields := valErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 8 characters", fields["password"])
}

func TestValidate_NestedPath(t *testing.T) {
	var p page
	p.Docs = append(p.Docs, struct {
		Title  string  `json:"title" validate:"required"`
		Colors []color `json:"colors" validate:"dive"`
	}{
		Title: "iPhone 16",
		Colors: []color{{
			Color: "Black",
			Countries: []country{
				{Country: "256GB", SimTypes: []simVariant{{SimType: "esim", Price: money.New(1)}}},
				{Country: "512GB", SimTypes: []simVariant{{SimType: "triple-sim", Price: money.New(1)}}},
			},
		}},
	})

	err := Validate(p)
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	path, msg := valErr.First()
	assert.Equal(t, "docs.0.colors.0.manufacturerCountries.1.simTypes.0.simType", path)
	assert.Equal(t, "must be one of: sim-esim esim dual-sim", msg)
	assert.Contains(t, err.Error(), "docs.0.colors.0.manufacturerCountries.1.simTypes.0.simType")
}

func TestValidate_AmountBounds(t *testing.T) {
	assert.NoError(t, Validate(simVariant{SimType: "esim", Price: money.MustParse("129990.5")}))
	assert.NoError(t, Validate(simVariant{SimType: "esim"}))

	err := Validate(simVariant{SimType: "esim", Price: money.MustParse("-0.01")})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "must be greater than or equal to 0", valErr.Fields()["price"])
}

func TestValidationError_FirstEmpty(t *testing.T) {
	path, msg := (&ValidationError{}).First()
	assert.Equal(t, "root", path)
	assert.Equal(t, "invalid value", msg)
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/users/login", strings.NewReader(`{"email":"admin@ruble.store","password":"long-enough"}`))
	var dst loginRequest
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, "admin@ruble.store", dst.Email)

	bad := httptest.NewRequest("POST", "/api/v1/users/login", strings.NewReader(`{`))
	err := DecodeAndValidate(bad, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestValidate_RuPhone(t *testing.T) {
	type contact struct {
		Phone string `json:"phone" validate:"ru_phone"`
	}

	tests := []struct {
		phone string
		valid bool
	}{
		{"+7 (999) 123-45-67", true},
		{"89991234567", true},
		{"+7 (999) 123-45", false},
		{"+7 (999) 123-45-678", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			err := Validate(contact{Phone: tt.phone})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, map[string]string{"phone": "must contain 11 digits"}, valErr.Fields())
		})
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "79991234567", Digits("+7 (999) 123-45-67"))
	assert.Empty(t, Digits("abc"))
}
