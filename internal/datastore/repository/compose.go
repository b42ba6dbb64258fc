package repository

import (
	"strings"
	"unicode/utf8"
)

// Column limits shared with the API validation.
const (
	MaxNameLength            = 100
	MaxKeywordLength         = 50
	MaxDescriptiveNameLength = 200
	MaxDescriptionLength     = 2000
)

// joinNonEmpty joins the trimmed non-empty parts with a single space.
func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// composeIfEmpty sets *dst to the composed value when it is blank.
func composeIfEmpty(dst *string, composed string) {
	*dst = strings.TrimSpace(*dst)
	if *dst == "" {
		*dst = composed
	}
}

// checkLength reports the first field exceeding its column size.
func checkLength(entity string, fields map[string]lengthCheck) error {
	for name, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			return invalidInput(entity, "%s exceeds %d characters", name, f.max)
		}
	}
	return nil
}

type lengthCheck struct {
	value string
	max   int
}

func trim(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}
