package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/logger"
	"gorm.io/gorm"
)

// Store owns the database connection of the catalogue.
type Store struct {
	db      *gorm.DB
	dialect string
	target  string
	log     logger.Logger
}

// Open connects to the database selected in settings. The schema is not
// touched; call Migrate for that.
func Open(settings *conf.DatabaseSettings, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewDiscard()
	}
	log = log.Module("datastore")

	var (
		dialector gorm.Dialector
		target    string
	)
	switch settings.Type {
	case conf.DatabaseMySQL:
		dialector, target = mysqlDialector(&settings.MySQL)
	case conf.DatabaseSQLite, "":
		dialector, target = sqliteDialector(&settings.SQLite)
	default:
		return nil, errors.Newf("unsupported database type %q", settings.Type).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(log, settings.SlowQueryThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, dbError(err, "open", errors.PriorityCritical, "dialect", dialector.Name(), "target", target)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, dbError(err, "get_sql_db", errors.PriorityCritical)
	}
	if isMemorySQLite(settings) {
		// every new connection would open a fresh empty database
		sqlDB.SetMaxOpenConns(1)
	} else {
		if settings.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(settings.MaxOpenConns)
		}
		if settings.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(settings.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("database opened",
		logger.String("dialect", dialector.Name()),
		logger.String("target", target))

	return &Store{db: db, dialect: dialector.Name(), target: target, log: log}, nil
}

// DB returns the underlying GORM handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Dialect returns "sqlite" or "mysql".
func (s *Store) Dialect() string { return s.dialect }

// Target describes the database location without credentials.
func (s *Store) Target() string { return s.target }

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	start := time.Now()
	if err := s.db.WithContext(ctx).AutoMigrate(entities.All()...); err != nil {
		return dbError(err, "migrate", errors.PriorityCritical)
	}
	s.log.Info("schema migrated", logger.Duration("duration", time.Since(start)))
	return nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return dbError(err, "ping", errors.PriorityHigh)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dbError(err, "ping", errors.PriorityHigh, "target", s.target)
	}
	return nil
}

// Stats returns the connection pool statistics.
func (s *Store) Stats() sql.DBStats {
	sqlDB, err := s.db.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close", errors.PriorityMedium)
	}
	s.log.Debug("database closed")
	return nil
}
