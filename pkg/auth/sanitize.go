package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joshua31324324/user-management/pkg/domain"
)

// Profile field limits, counted in runes.
const (
	maxNameLength     = 100
	maxBioLength      = 500
	maxLocationLength = 100
)

// SanitizeText trims surrounding whitespace and strips control characters.
func SanitizeText(s string) string {
	return strings.TrimSpace(removeControlChars(s))
}

// ValidateStringLength validates that a string is within the specified length constraints.
func ValidateStringLength(field, value string, min, max int) error {
	length := utf8.RuneCountInString(value)

	if min > 0 && length < min {
		return domain.InvalidField(field, fmt.Sprintf("must be at least %d characters long", min))
	}

	if max > 0 && length > max {
		return domain.InvalidField(field, fmt.Sprintf("must be at most %d characters long", max))
	}

	return nil
}

// removeControlChars removes control characters except newline and tab.
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
