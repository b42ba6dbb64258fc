package models

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/qchem/gausscat/internal/datastore/entities"
)

// Simple is the dropdown projection.
type Simple struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ValidationErrors maps field names to messages.
type ValidationErrors map[string][]string

// Add appends a message for field.
func (v ValidationErrors) Add(field, format string, args ...any) {
	v[field] = append(v[field], fmt.Sprintf(format, args...))
}

// HasErrors reports whether any field failed.
func (v ValidationErrors) HasErrors() bool { return len(v) > 0 }

// Fields returns the failing field names in sorted order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// FieldErrors exposes the messages to the HTTP layer.
func (v ValidationErrors) FieldErrors() map[string][]string { return v }

// Error renders the errors on one line.
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, f := range v.Fields() {
		parts = append(parts, f+": "+strings.Join(v[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// APIModel is a request body for one entity type.
type APIModel[T entities.Record] interface {
	// GetID returns the id carried in the body, zero on create.
	GetID() uint
	// Validate checks every field.
	Validate() ValidationErrors
	// ToEntity maps the body to the entity, trimming text fields.
	ToEntity() T
}

// Mapper projects one entity type.
type Mapper[T entities.Record] struct {
	Record       func(T) any
	Full         func(T) any
	Intermediate func(T) any
	Simple       func(T) Simple
}

// Records maps a slice with fn.
func Records[T any, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

type validator struct {
	errs ValidationErrors
}

func newValidator() *validator {
	return &validator{errs: ValidationErrors{}}
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.errs.Add(field, "The %s field is required.", field)
	}
}

func (v *validator) maxLength(field, value string, limit int) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) > limit {
		v.errs.Add(field, "The field %s must be a string with a maximum length of %d.", field, limit)
	}
}

func (v *validator) requiredID(field string, id uint) {
	if id == 0 {
		v.errs.Add(field, "The %s field is required.", field)
	}
}

func (v *validator) result() ValidationErrors {
	return v.errs
}

// optionalID treats a zero id as unset. HTML forms post "" for "none".
func optionalID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}
