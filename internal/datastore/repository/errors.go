package repository

import (
	"fmt"

	"github.com/qchem/gausscat/internal/datastore"
	"github.com/qchem/gausscat/internal/errors"
)

// Sentinel errors for repository operations.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.NewStd("record not found")

	// ErrDuplicateKey indicates a unique constraint violation.
	ErrDuplicateKey = errors.NewStd("duplicate key")

	// ErrReferenced indicates the record cannot be deleted while other rows point at it.
	ErrReferenced = errors.NewStd("record is still referenced")

	// ErrMissingReference indicates a foreign key points at a record that does not exist.
	ErrMissingReference = errors.NewStd("referenced record does not exist")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.NewStd("invalid input")
)

// ReferenceError names the foreign key field whose target is missing.
type ReferenceError struct {
	Entity string // entity being written
	Field  string // API field name, e.g. "methodFamilyId"
	ID     uint
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s %d", ErrMissingReference, e.Field, e.ID)
}

// Unwrap lets errors.Is match ErrMissingReference.
func (e *ReferenceError) Unwrap() error { return ErrMissingReference }

// DuplicateError names the fields that collide with an existing row.
type DuplicateError struct {
	Entity string
	Fields []string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s with the same %v already exists", ErrDuplicateKey, e.Entity, e.Fields)
}

// Unwrap lets errors.Is match ErrDuplicateKey.
func (e *DuplicateError) Unwrap() error { return ErrDuplicateKey }

func notFoundError(entity string, id any) error {
	return errors.New(fmt.Errorf("%w: %s %v", ErrNotFound, entity, id)).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Entity(entity, id).
		Build()
}

func duplicateError(entity string, fields ...string) error {
	return errors.New(&DuplicateError{Entity: entity, Fields: fields}).
		Component("datastore").
		Category(errors.CategoryConflict).
		Context("entity", entity).
		Build()
}

func referenceError(entity, field string, id uint) error {
	return errors.New(&ReferenceError{Entity: entity, Field: field, ID: id}).
		Component("datastore").
		Category(errors.CategoryReference).
		Context("entity", entity).
		Context("field", field).
		Build()
}

func invalidInput(entity, format string, args ...any) error {
	return errors.New(fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("entity", entity).
		Build()
}

// translate maps a failed write to the repository error vocabulary.
// Foreign key failures mean a missing parent on insert/update and a
// remaining child on delete.
func translate(err error, entity, operation string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrReferenced) || errors.Is(err, ErrMissingReference) ||
		errors.Is(err, ErrInvalidInput) {
		return err
	}
	if datastore.IsRecordNotFound(err) {
		return notFoundError(entity, id)
	}

	switch datastore.Classify(err) {
	case datastore.ViolationUnique:
		return errors.New(fmt.Errorf("%w: %s", ErrDuplicateKey, entity)).
			Component("datastore").
			Category(errors.CategoryConflict).
			Entity(entity, id).
			Context("operation", operation).
			Build()
	case datastore.ViolationForeignKey:
		if operation == opDelete {
			return errors.New(fmt.Errorf("%w: %s %v", ErrReferenced, entity, id)).
				Component("datastore").
				Category(errors.CategoryReference).
				Entity(entity, id).
				Context("operation", operation).
				Build()
		}
		return errors.New(fmt.Errorf("%w: %s", ErrMissingReference, entity)).
			Component("datastore").
			Category(errors.CategoryReference).
			Entity(entity, id).
			Context("operation", operation).
			Build()
	}

	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Entity(entity, id).
		Context("operation", operation).
		Build()
}

func isNotFound(err error) bool {
	return datastore.IsRecordNotFound(err) || errors.Is(err, ErrNotFound)
}
