package datastore

import (
	"fmt"
	"strings"

	"github.com/qchem/gausscat/internal/conf"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqlitePragmas = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"

func sqliteDialector(s *conf.SQLiteSettings) (gorm.Dialector, string) {
	path := s.Path
	if path == "" {
		path = "gausscat.db"
	}
	if path == ":memory:" {
		// WAL is meaningless for memory databases
		return sqlite.Open("file::memory:?_foreign_keys=ON"), path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return sqlite.Open(fmt.Sprintf("%s%s%s", path, sep, sqlitePragmas)), path
}

func isMemorySQLite(settings *conf.DatabaseSettings) bool {
	if settings.Type != conf.DatabaseSQLite && settings.Type != "" {
		return false
	}
	return settings.SQLite.Path == ":memory:" || strings.Contains(settings.SQLite.Path, "mode=memory")
}
