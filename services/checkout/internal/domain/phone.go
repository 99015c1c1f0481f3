package domain

import (
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/validator"
)

// PhoneDigits is the length of a complete Russian phone number.
const PhoneDigits = 11

// FormatPhone applies the +7 (999) 999-99-99 mask to whatever digits value
// contains, so a partially typed number gets a partial mask. The first digit
// is the trunk prefix and is always shown as +7; digits past the eleventh
// are dropped.
func FormatPhone(value string) string {
	d := validator.Digits(value)
	if len(d) > PhoneDigits {
		d = d[:PhoneDigits]
	}

	switch n := len(d); {
	case n == 0:
		return ""
	case n <= 1:
		return "+7"
	case n <= 4:
		return "+7 (" + d[1:]
	case n <= 7:
		return "+7 (" + d[1:4] + ") " + d[4:]
	case n <= 9:
		return "+7 (" + d[1:4] + ") " + d[4:7] + "-" + d[7:]
	default:
		return "+7 (" + d[1:4] + ") " + d[4:7] + "-" + d[7:9] + "-" + d[9:]
	}
}

// IsCompletePhone reports whether value carries exactly PhoneDigits digits.
func IsCompletePhone(value string) bool {
	return len(validator.Digits(value)) == PhoneDigits
}
