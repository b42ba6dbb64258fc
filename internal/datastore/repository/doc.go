// Package repository provides typed access to the catalogue and identity
// tables.
//
// Every catalogue entity is served by a Repository[T]; the eight concrete
// repositories differ only in their preloads, filter columns and the hook
// that validates references and composes keywords before a write. Writes
// run in a transaction and publish an events.ChangeEvent after commit.
//
// Errors are reported with sentinel values (ErrNotFound, ErrDuplicateKey,
// ErrReferenced, ErrMissingReference) wrapped in categorized enhanced
// errors, so callers can use errors.Is without knowing about GORM or the
// SQL driver in use.
package repository
