package identity

import (
	"sort"
	"strings"

	"github.com/qchem/gausscat/internal/errors"
)

// Sentinel errors for identity operations.
var (
	ErrInvalidCredentials = errors.NewStd("invalid user name or password")
	ErrLockedOut          = errors.NewStd("account is locked out")
	ErrInvalidToken       = errors.NewStd("invalid or expired token")
	ErrValidation         = errors.NewStd("identity validation failed")
)

// FieldError carries per-field messages, e.g. password policy failures.
type FieldError struct {
	Errors map[string][]string
}

func (e *FieldError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.Errors[f], "; "))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

// Unwrap makes every FieldError match ErrValidation.
func (e *FieldError) Unwrap() error { return ErrValidation }

// FieldErrors exposes the messages to the HTTP layer.
func (e *FieldError) FieldErrors() map[string][]string { return e.Errors }

func fieldError(field string, messages ...string) error {
	return errors.New(&FieldError{Errors: map[string][]string{field: messages}}).
		Component("identity").
		Category(errors.CategoryValidation).
		Build()
}

func authError(err error, userName string) error {
	return errors.New(err).
		Component("identity").
		Category(errors.CategoryAuthentication).
		Context("user", userName).
		Build()
}
