package identity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize upper-cases names for case-insensitive lookups.
func Normalize(name string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(name))
}
