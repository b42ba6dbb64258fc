package repository

import (
	"context"
	"time"

	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/events"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	opRead   = "read"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Repository is the CRUD surface shared by all catalogue entities.
type Repository[T entities.Record] interface {
	// Entity returns the entity name, e.g. "BaseMethod".
	Entity() string

	// GetAll returns every row matching the filter with references preloaded.
	GetAll(ctx context.Context, filter Filter) ([]T, error)

	// GetByID returns one row with references preloaded.
	// Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id uint) (*T, error)

	// FindOne returns the first row matching the condition.
	// Returns ErrNotFound if absent.
	FindOne(ctx context.Context, query string, args ...any) (*T, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)

	// Exists checks if a row with the given ID exists.
	Exists(ctx context.Context, id uint) (bool, error)

	// Create inserts rec and returns the stored row with references.
	// Returns ErrDuplicateKey or ErrMissingReference on constraint violations.
	Create(ctx context.Context, rec *T) (*T, error)

	// Update replaces the row with rec's ID.
	// Returns ErrNotFound if absent.
	Update(ctx context.Context, rec *T) (*T, error)

	// Delete removes the row and returns it as it was.
	// Returns ErrNotFound if absent and ErrReferenced if other rows point at it.
	Delete(ctx context.Context, id uint) (*T, error)

	// WithTx returns a repository bound to tx. Writes through it publish no
	// change events.
	WithTx(tx *gorm.DB) Repository[T]
}

// OperationRecorder receives timing of every repository call.
type OperationRecorder interface {
	RecordOperation(entity, operation, status string, duration time.Duration)
}

// prepareFunc validates references and fills derived columns before a write.
type prepareFunc[T any] func(ctx context.Context, tx *gorm.DB, rec *T) error

// table implements Repository for one entity.
type table[T entities.Record] struct {
	db        *gorm.DB
	entity    string
	order     string
	preloads  []string
	filters   []filterColumn
	prepare   prepareFunc[T]
	publisher events.Publisher
	recorder  OperationRecorder
}

func newTable[T entities.Record](db *gorm.DB, opts Options, order string, preloads []string, filters []filterColumn, prepare prepareFunc[T]) *table[T] {
	var zero T
	return &table[T]{
		db:        db,
		entity:    zero.EntityName(),
		order:     order,
		preloads:  preloads,
		filters:   filters,
		prepare:   prepare,
		publisher: opts.Publisher,
		recorder:  opts.Recorder,
	}
}

func (t *table[T]) Entity() string { return t.entity }

func (t *table[T]) WithTx(tx *gorm.DB) Repository[T] {
	c := *t
	c.db = tx
	c.publisher = nil
	return &c
}

func (t *table[T]) query(ctx context.Context) *gorm.DB {
	q := t.db.WithContext(ctx)
	for _, p := range t.preloads {
		q = q.Preload(p)
	}
	return q
}

func (t *table[T]) GetAll(ctx context.Context, filter Filter) ([]T, error) {
	start := time.Now()
	var rows []T
	err := applyFilter(t.query(ctx), t.filters, filter).Order(t.order).Find(&rows).Error
	t.observe("get_all", start, err)
	if err != nil {
		return nil, translate(err, t.entity, opRead, nil)
	}
	return rows, nil
}

func (t *table[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	start := time.Now()
	var rec T
	err := t.query(ctx).First(&rec, id).Error
	t.observe("get_by_id", start, err)
	if err != nil {
		return nil, translate(err, t.entity, opRead, id)
	}
	return &rec, nil
}

func (t *table[T]) FindOne(ctx context.Context, query string, args ...any) (*T, error) {
	start := time.Now()
	var rec T
	err := t.query(ctx).Where(query, args...).First(&rec).Error
	t.observe("find_one", start, err)
	if err != nil {
		return nil, translate(err, t.entity, opRead, query)
	}
	return &rec, nil
}

func (t *table[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var zero T
	if err := t.db.WithContext(ctx).Model(&zero).Count(&count).Error; err != nil {
		return 0, translate(err, t.entity, opRead, nil)
	}
	return count, nil
}

func (t *table[T]) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	var zero T
	err := t.db.WithContext(ctx).Model(&zero).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, translate(err, t.entity, opRead, id)
	}
	return count > 0, nil
}

func (t *table[T]) Create(ctx context.Context, rec *T) (*T, error) {
	start := time.Now()
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t.prepare != nil {
			if err := t.prepare(ctx, tx, rec); err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Create(rec).Error
	})
	t.observe(opCreate, start, err)
	if err != nil {
		return nil, translate(err, t.entity, opCreate, nil)
	}

	id := (*rec).PrimaryKey()
	t.publish(events.OpCreated, id)
	return t.GetByID(ctx, id)
}

func (t *table[T]) Update(ctx context.Context, rec *T) (*T, error) {
	id := (*rec).PrimaryKey()
	if id == 0 {
		return nil, invalidInput(t.entity, "update requires an id")
	}

	start := time.Now()
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing T
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return err
		}
		if t.prepare != nil {
			if err := t.prepare(ctx, tx, rec); err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(rec).Error
	})
	t.observe(opUpdate, start, err)
	if err != nil {
		return nil, translate(err, t.entity, opUpdate, id)
	}

	t.publish(events.OpUpdated, id)
	return t.GetByID(ctx, id)
}

func (t *table[T]) Delete(ctx context.Context, id uint) (*T, error) {
	start := time.Now()
	var existing T
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&existing, id).Error; err != nil {
			return err
		}
		return tx.Delete(&existing).Error
	})
	t.observe(opDelete, start, err)
	if err != nil {
		return nil, translate(err, t.entity, opDelete, id)
	}

	t.publish(events.OpDeleted, id)
	return &existing, nil
}

func (t *table[T]) publish(op events.Op, id uint) {
	if t.publisher == nil {
		return
	}
	t.publisher.TryPublish(events.NewChangeEvent(t.entity, op, id))
}

func (t *table[T]) observe(operation string, start time.Time, err error) {
	if t.recorder == nil {
		return
	}
	status := "success"
	switch {
	case err == nil:
	case isNotFound(err):
		status = "not_found"
	default:
		status = "error"
	}
	t.recorder.RecordOperation(t.entity, operation, status, time.Since(start))
}
