// Package datastore opens and migrates the catalogue database.
//
// Two backends are supported through GORM: SQLite (the default, also used
// in-memory by tests) and MySQL/MariaDB. Both are opened with TranslateError
// so that unique and foreign key violations surface as gorm.ErrDuplicatedKey
// and gorm.ErrForeignKeyViolated; Classify additionally recognises the raw
// driver errors for statements that bypass the translator.
//
// Typed access to the tables lives in the repository subpackage.
package datastore
