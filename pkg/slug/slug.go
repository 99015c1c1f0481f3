package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// cyrillic transliterates Russian letters to ASCII (GOST-style, simplified).
var cyrillic = strings.NewReplacer(
	"а", "a", "б", "b", "в", "v", "г", "g", "д", "d", "е", "e", "ё", "e",
	"ж", "zh", "з", "z", "и", "i", "й", "y", "к", "k", "л", "l", "м", "m",
	"н", "n", "о", "o", "п", "p", "р", "r", "с", "s", "т", "t", "у", "u",
	"ф", "f", "х", "h", "ц", "ts", "ч", "ch", "ш", "sh", "щ", "sch",
	"ъ", "", "ы", "y", "ь", "", "э", "e", "ю", "yu", "я", "ya",
)

// Generate creates a URL-friendly slug from the given name.
// Russian letters are transliterated to ASCII.
//
// Examples:
//   - "iPhone 16 Pro" → "iphone-16-pro"
//   - "Чехол для iPhone" → "chehol-dlya-iphone"
//   - "Зарядка USB-C" → "zaryadka-usb-c"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = cyrillic.Replace(s)
	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

var validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsValid reports whether s is already a canonical slug.
func IsValid(s string) bool {
	return validSlug.MatchString(s)
}
