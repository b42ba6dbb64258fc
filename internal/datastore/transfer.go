package datastore

import (
	"context"
	"time"

	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultTransferBatchSize is used when TransferOptions.BatchSize is zero.
const DefaultTransferBatchSize = 500

// TransferOptions tune Transfer.
type TransferOptions struct {
	BatchSize int  // rows per read and insert
	Clean     bool // delete target rows before copying
}

// TableStats reports one copied table.
type TableStats struct {
	Table    string
	Source   int64
	Copied   int64
	Skipped  int64 // already present in the target
	Duration time.Duration
}

// TransferStats reports a whole copy.
type TransferStats struct {
	Tables   []TableStats
	Duration time.Duration
}

// Copied sums the inserted rows of every table.
func (s *TransferStats) Copied() int64 {
	var n int64
	for _, t := range s.Tables {
		n += t.Copied
	}
	return n
}

type tableCopier struct {
	table string
	order string
	copy  func(ctx context.Context, src, dst *gorm.DB, order string, batch int) (TableStats, error)
	model any
}

// transferTables lists every table parents first, so foreign keys hold
// while rows arrive.
func transferTables() []tableCopier {
	return []tableCopier{
		copier[entities.CalculationType]("calculation_types", "id"),
		copier[entities.SpinState]("spin_states", "id"),
		copier[entities.ElectronicState]("electronic_states", "id"),
		copier[entities.MethodFamily]("method_families", "id"),
		copier[entities.BaseMethod]("base_methods", "id"),
		copier[entities.ElectronicStateMethodFamily]("electronic_state_method_families", "id"),
		copier[entities.SpinStateElectronicStateMethodFamily]("spin_state_electronic_state_method_families", "id"),
		copier[entities.FullMethod]("full_methods", "id"),
		copier[entities.User]("users", "id"),
		copier[entities.Role]("roles", "id"),
		copier[entities.UserRole]("user_roles", "user_id, role_id"),
		copier[entities.UserClaim]("user_claims", "id"),
		copier[entities.RoleClaim]("role_claims", "id"),
	}
}

func copier[T any](table, order string) tableCopier {
	return tableCopier{table: table, order: order, copy: copyTable[T], model: new(T)}
}

// Transfer copies every row from src into dst keeping primary keys. The
// target schema is migrated first. Rows whose key already exists in the
// target are skipped, so an interrupted copy can be resumed.
func Transfer(ctx context.Context, src, dst *Store, opts TransferOptions) (*TransferStats, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultTransferBatchSize
	}
	log := dst.log.With(
		logger.String("source", src.Target()),
		logger.String("target", dst.Target()))

	if err := dst.Migrate(ctx); err != nil {
		return nil, err
	}

	tables := transferTables()
	if opts.Clean {
		// children first
		for i := len(tables) - 1; i >= 0; i-- {
			t := tables[i]
			if err := dst.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
				Delete(t.model).Error; err != nil {
				return nil, dbError(err, "transfer_clean", errors.PriorityHigh, "table", t.table)
			}
		}
		log.Info("target tables cleaned")
	}

	start := time.Now()
	stats := &TransferStats{}
	for _, t := range tables {
		ts, err := t.copy(ctx, src.db, dst.db, t.order, opts.BatchSize)
		ts.Table = t.table
		if err != nil {
			return stats, dbError(err, "transfer", errors.PriorityHigh, "table", t.table)
		}
		stats.Tables = append(stats.Tables, ts)
		log.Debug("table copied",
			logger.String("table", t.table),
			logger.Int64("copied", ts.Copied),
			logger.Int64("skipped", ts.Skipped))
	}
	stats.Duration = time.Since(start)

	log.Info("transfer completed",
		logger.Int64("copied", stats.Copied()),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

func copyTable[T any](ctx context.Context, src, dst *gorm.DB, order string, batch int) (TableStats, error) {
	start := time.Now()
	var stats TableStats

	if err := src.WithContext(ctx).Model(new(T)).Count(&stats.Source).Error; err != nil {
		return stats, err
	}

	for offset := 0; int64(offset) < stats.Source; offset += batch {
		var rows []T
		if err := src.WithContext(ctx).Order(order).Limit(batch).Offset(offset).Find(&rows).Error; err != nil {
			return stats, err
		}
		if len(rows) == 0 {
			break
		}
		// Select("*") keeps zero values of columns that have a default.
		result := dst.WithContext(ctx).
			Select("*").
			Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&rows)
		if result.Error != nil {
			return stats, result.Error
		}
		stats.Copied += result.RowsAffected
		stats.Skipped += int64(len(rows)) - result.RowsAffected
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// TableMismatch is one table whose row counts differ after a copy.
type TableMismatch struct {
	Table          string
	Source, Target int64
}

// VerifyTransfer compares row counts of every table in src and dst.
func VerifyTransfer(ctx context.Context, src, dst *Store) ([]TableMismatch, error) {
	var mismatches []TableMismatch
	for _, t := range transferTables() {
		var s, d int64
		if err := src.db.WithContext(ctx).Model(t.model).Count(&s).Error; err != nil {
			return nil, dbError(err, "verify", errors.PriorityMedium, "table", t.table)
		}
		if err := dst.db.WithContext(ctx).Model(t.model).Count(&d).Error; err != nil {
			return nil, dbError(err, "verify", errors.PriorityMedium, "table", t.table)
		}
		if s != d {
			mismatches = append(mismatches, TableMismatch{Table: t.table, Source: s, Target: d})
		}
	}
	return mismatches, nil
}
