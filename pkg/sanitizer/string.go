package sanitizer

import (
	"strings"
)

// TrimAndNormalize trims s and collapses every run of whitespace, newlines
// and tabs included, into a single space.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeGender(gender string) string {
	return strings.ToLower(TrimAndNormalize(gender))
}
