package datastore

import (
	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/qchem/gausscat/internal/errors"
	"gorm.io/gorm"
)

// Violation is the constraint class of a failed statement.
type Violation int

const (
	ViolationNone Violation = iota
	ViolationUnique
	ViolationForeignKey
)

// MySQL server error numbers
const (
	mysqlDuplicateEntry     = 1062
	mysqlRowIsReferenced    = 1451
	mysqlNoReferencedRow    = 1452
	mysqlRowIsReferencedOld = 1217
	mysqlNoReferencedRowOld = 1216
)

// Classify reports which constraint, if any, err violates. It understands the
// translated GORM errors as well as raw MySQL and SQLite driver errors.
func Classify(err error) Violation {
	if err == nil {
		return ViolationNone
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ViolationUnique
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ViolationForeignKey
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return ViolationUnique
		case mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlRowIsReferencedOld, mysqlNoReferencedRowOld:
			return ViolationForeignKey
		}
		return ViolationNone
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ViolationUnique
		case sqlite3.ErrConstraintForeignKey:
			return ViolationForeignKey
		}
	}

	return ViolationNone
}

// IsRecordNotFound reports whether err is GORM's not-found sentinel.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// dbError creates a properly categorized database error with context
func dbError(err error, operation, priority string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if priority != "" {
		builder = builder.Priority(priority)
	}

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}
