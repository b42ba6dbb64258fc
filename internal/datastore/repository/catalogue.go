package repository

import (
	"context"

	"github.com/qchem/gausscat/internal/datastore"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/events"
	"gorm.io/gorm"
)

// Options carries the collaborators every repository shares.
type Options struct {
	Publisher events.Publisher
	Recorder  OperationRecorder
}

const defaultOrder = "id ASC"

// API field names used in reference and duplicate errors.
const (
	FieldName                                   = "name"
	FieldKeyword                                = "keyword"
	FieldMethodFamilyID                         = "methodFamilyId"
	FieldElectronicStateID                      = "electronicStateId"
	FieldSpinStateID                            = "spinStateId"
	FieldElectronicStateMethodFamilyID          = "electronicStateMethodFamilyId"
	FieldSpinStateElectronicStateMethodFamilyID = "spinStateElectronicStateMethodFamilyId"
	FieldBaseMethodID                           = "baseMethodId"
)

var (
	esmfPreloads = []string{"ElectronicState", "MethodFamily"}

	ssemfPreloads = []string{
		"SpinState",
		"ElectronicStateMethodFamily",
		"ElectronicStateMethodFamily.ElectronicState",
		"ElectronicStateMethodFamily.MethodFamily",
	}

	fullMethodPreloads = []string{
		"SpinStateElectronicStateMethodFamily",
		"SpinStateElectronicStateMethodFamily.SpinState",
		"SpinStateElectronicStateMethodFamily.ElectronicStateMethodFamily",
		"SpinStateElectronicStateMethodFamily.ElectronicStateMethodFamily.ElectronicState",
		"SpinStateElectronicStateMethodFamily.ElectronicStateMethodFamily.MethodFamily",
		"BaseMethod",
		"BaseMethod.MethodFamily",
	}
)

// NewCalculationTypeRepository creates the calculation_types repository.
func NewCalculationTypeRepository(db *gorm.DB, opts Options) Repository[entities.CalculationType] {
	return newTable[entities.CalculationType](db, opts, defaultOrder, nil, nil,
		func(_ context.Context, _ *gorm.DB, rec *entities.CalculationType) error {
			trim(&rec.Name, &rec.Keyword, &rec.Description)
			if err := requireFields(entities.EntityCalculationType, FieldName, rec.Name, FieldKeyword, rec.Keyword); err != nil {
				return err
			}
			return checkLength(entities.EntityCalculationType, map[string]lengthCheck{
				FieldName:     {rec.Name, MaxNameLength},
				FieldKeyword:  {rec.Keyword, MaxKeywordLength},
				"description": {rec.Description, MaxDescriptionLength},
			})
		})
}

// NewSpinStateRepository creates the spin_states repository.
func NewSpinStateRepository(db *gorm.DB, opts Options) Repository[entities.SpinState] {
	return newTable[entities.SpinState](db, opts, defaultOrder, nil, nil,
		func(_ context.Context, _ *gorm.DB, rec *entities.SpinState) error {
			trim(&rec.Name, &rec.Keyword)
			if err := requireFields(entities.EntitySpinState, FieldName, rec.Name, FieldKeyword, rec.Keyword); err != nil {
				return err
			}
			return checkLength(entities.EntitySpinState, map[string]lengthCheck{
				FieldName:    {rec.Name, MaxNameLength},
				FieldKeyword: {rec.Keyword, MaxKeywordLength},
			})
		})
}

// NewElectronicStateRepository creates the electronic_states repository.
func NewElectronicStateRepository(db *gorm.DB, opts Options) Repository[entities.ElectronicState] {
	return newTable[entities.ElectronicState](db, opts, defaultOrder, nil, nil,
		func(_ context.Context, _ *gorm.DB, rec *entities.ElectronicState) error {
			trim(&rec.Name, &rec.Keyword)
			if err := requireFields(entities.EntityElectronicState, FieldName, rec.Name); err != nil {
				return err
			}
			return checkLength(entities.EntityElectronicState, map[string]lengthCheck{
				FieldName:    {rec.Name, MaxNameLength},
				FieldKeyword: {rec.Keyword, MaxKeywordLength},
			})
		})
}

// NewMethodFamilyRepository creates the method_families repository.
func NewMethodFamilyRepository(db *gorm.DB, opts Options) Repository[entities.MethodFamily] {
	return newTable[entities.MethodFamily](db, opts, defaultOrder, nil, nil,
		func(_ context.Context, _ *gorm.DB, rec *entities.MethodFamily) error {
			trim(&rec.Name, &rec.Keyword, &rec.DescriptiveName, &rec.Description)
			if err := requireFields(entities.EntityMethodFamily, FieldName, rec.Name); err != nil {
				return err
			}
			return checkLength(entities.EntityMethodFamily, map[string]lengthCheck{
				FieldName:         {rec.Name, MaxNameLength},
				FieldKeyword:      {rec.Keyword, MaxKeywordLength},
				"descriptiveName": {rec.DescriptiveName, MaxDescriptiveNameLength},
				"description":     {rec.Description, MaxDescriptionLength},
			})
		})
}

// NewBaseMethodRepository creates the base_methods repository.
// Supports the methodFamilyId filter.
func NewBaseMethodRepository(db *gorm.DB, opts Options) Repository[entities.BaseMethod] {
	filters := []filterColumn{{"method_family_id", byMethodFamily}}
	return newTable[entities.BaseMethod](db, opts, defaultOrder, []string{"MethodFamily"}, filters,
		func(_ context.Context, tx *gorm.DB, rec *entities.BaseMethod) error {
			const entity = entities.EntityBaseMethod
			trim(&rec.Keyword, &rec.DescriptiveName)
			if err := requireFields(entity, FieldKeyword, rec.Keyword); err != nil {
				return err
			}
			if _, err := loadRef[entities.MethodFamily](tx, entity, FieldMethodFamilyID, rec.MethodFamilyID); err != nil {
				return err
			}
			return checkLength(entity, map[string]lengthCheck{
				FieldKeyword:      {rec.Keyword, MaxKeywordLength},
				"descriptiveName": {rec.DescriptiveName, MaxDescriptiveNameLength},
			})
		})
}

// NewElectronicStateMethodFamilyRepository creates the
// electronic_state_method_families repository. Supports the
// electronicStateId and methodFamilyId filters.
func NewElectronicStateMethodFamilyRepository(db *gorm.DB, opts Options) Repository[entities.ElectronicStateMethodFamily] {
	filters := []filterColumn{
		{"electronic_state_id", byElectronicState},
		{"method_family_id", byMethodFamily},
	}
	return newTable[entities.ElectronicStateMethodFamily](db, opts, defaultOrder, esmfPreloads, filters, prepareESMF)
}

func prepareESMF(_ context.Context, tx *gorm.DB, rec *entities.ElectronicStateMethodFamily) error {
	const entity = entities.EntityElectronicStateMethodFamily

	es, err := loadRef[entities.ElectronicState](tx, entity, FieldElectronicStateID, rec.ElectronicStateID)
	if err != nil {
		return err
	}
	var mf entities.MethodFamily
	if rec.MethodFamilyID != nil {
		ref, err := loadRef[entities.MethodFamily](tx, entity, FieldMethodFamilyID, *rec.MethodFamilyID)
		if err != nil {
			return err
		}
		mf = *ref
	}

	err = checkUnique(tx, &entities.ElectronicStateMethodFamily{}, entity, rec.ID,
		[]string{FieldElectronicStateID, FieldMethodFamilyID},
		uniqueColumn{"electronic_state_id", &rec.ElectronicStateID},
		uniqueColumn{"method_family_id", rec.MethodFamilyID})
	if err != nil {
		return err
	}

	composeIfEmpty(&rec.Keyword, es.Keyword+mf.Keyword)
	composeIfEmpty(&rec.Name, joinNonEmpty(es.Name, mf.Name))
	composeIfEmpty(&rec.DescriptiveName, joinNonEmpty(es.Name, firstNonEmpty(mf.DescriptiveName, mf.Name)))

	return checkLength(entity, map[string]lengthCheck{
		FieldName:         {rec.Name, MaxNameLength},
		FieldKeyword:      {rec.Keyword, MaxKeywordLength},
		"descriptiveName": {rec.DescriptiveName, MaxDescriptiveNameLength},
	})
}

// NewSpinStateElectronicStateMethodFamilyRepository creates the
// spin_state_electronic_state_method_families repository. Supports the
// spinStateId and electronicStateMethodFamilyId filters.
func NewSpinStateElectronicStateMethodFamilyRepository(db *gorm.DB, opts Options) Repository[entities.SpinStateElectronicStateMethodFamily] {
	filters := []filterColumn{
		{"spin_state_id", bySpinState},
		{"electronic_state_method_family_id", byESMF},
	}
	return newTable[entities.SpinStateElectronicStateMethodFamily](db, opts, defaultOrder, ssemfPreloads, filters, prepareSSEMF)
}

func prepareSSEMF(_ context.Context, tx *gorm.DB, rec *entities.SpinStateElectronicStateMethodFamily) error {
	const entity = entities.EntitySpinStateElectronicStateMethodFamily

	var ss entities.SpinState
	if rec.SpinStateID != nil {
		ref, err := loadRef[entities.SpinState](tx, entity, FieldSpinStateID, *rec.SpinStateID)
		if err != nil {
			return err
		}
		ss = *ref
	}
	esmf, err := loadRef[entities.ElectronicStateMethodFamily](tx, entity, FieldElectronicStateMethodFamilyID, rec.ElectronicStateMethodFamilyID)
	if err != nil {
		return err
	}

	err = checkUnique(tx, &entities.SpinStateElectronicStateMethodFamily{}, entity, rec.ID,
		[]string{FieldSpinStateID, FieldElectronicStateMethodFamilyID},
		uniqueColumn{"spin_state_id", rec.SpinStateID},
		uniqueColumn{"electronic_state_method_family_id", &rec.ElectronicStateMethodFamilyID})
	if err != nil {
		return err
	}

	composeIfEmpty(&rec.Keyword, ss.Keyword+esmf.Keyword)
	composeIfEmpty(&rec.Name, joinNonEmpty(ss.Name, esmf.Name))
	composeIfEmpty(&rec.DescriptiveName, joinNonEmpty(ss.Name, firstNonEmpty(esmf.DescriptiveName, esmf.Name)))

	return checkLength(entity, map[string]lengthCheck{
		FieldName:         {rec.Name, MaxNameLength},
		FieldKeyword:      {rec.Keyword, MaxKeywordLength},
		"descriptiveName": {rec.DescriptiveName, MaxDescriptiveNameLength},
	})
}

// NewFullMethodRepository creates the full_methods repository. Supports the
// spinStateElectronicStateMethodFamilyId and baseMethodId filters.
func NewFullMethodRepository(db *gorm.DB, opts Options) Repository[entities.FullMethod] {
	filters := []filterColumn{
		{"spin_state_electronic_state_method_family_id", bySSEMF},
		{"base_method_id", byBaseMethod},
	}
	return newTable[entities.FullMethod](db, opts, defaultOrder, fullMethodPreloads, filters, prepareFullMethod)
}

func prepareFullMethod(_ context.Context, tx *gorm.DB, rec *entities.FullMethod) error {
	const entity = entities.EntityFullMethod

	ssemf, err := loadRef[entities.SpinStateElectronicStateMethodFamily](tx, entity,
		FieldSpinStateElectronicStateMethodFamilyID, rec.SpinStateElectronicStateMethodFamilyID)
	if err != nil {
		return err
	}
	bm, err := loadRef[entities.BaseMethod](tx, entity, FieldBaseMethodID, rec.BaseMethodID)
	if err != nil {
		return err
	}

	err = checkUnique(tx, &entities.FullMethod{}, entity, rec.ID,
		[]string{FieldSpinStateElectronicStateMethodFamilyID, FieldBaseMethodID},
		uniqueColumn{"spin_state_electronic_state_method_family_id", &rec.SpinStateElectronicStateMethodFamilyID},
		uniqueColumn{"base_method_id", &rec.BaseMethodID})
	if err != nil {
		return err
	}

	composeIfEmpty(&rec.Keyword, ssemf.Keyword+bm.Keyword)
	composeIfEmpty(&rec.DescriptiveName, joinNonEmpty(firstNonEmpty(ssemf.DescriptiveName, ssemf.Name), bm.DescriptiveName))

	err = checkUniqueString(tx, &entities.FullMethod{}, entity, rec.ID, FieldKeyword, "keyword", rec.Keyword)
	if err != nil {
		return err
	}

	return checkLength(entity, map[string]lengthCheck{
		FieldKeyword:      {rec.Keyword, MaxKeywordLength},
		"descriptiveName": {rec.DescriptiveName, MaxDescriptiveNameLength},
	})
}

// loadRef loads the parent row a foreign key points at.
func loadRef[P any](tx *gorm.DB, entity, field string, id uint) (*P, error) {
	var parent P
	if id == 0 {
		return nil, referenceError(entity, field, id)
	}
	err := tx.First(&parent, id).Error
	if datastore.IsRecordNotFound(err) {
		return nil, referenceError(entity, field, id)
	}
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

type uniqueColumn struct {
	column string
	value  *uint
}

// checkUnique rejects a second row with the same combination of nullable
// foreign keys. SQL unique indexes treat NULLs as distinct, so this is
// checked in the transaction.
func checkUnique(tx *gorm.DB, model any, entity string, id uint, fields []string, cols ...uniqueColumn) error {
	q := tx.Model(model)
	for _, c := range cols {
		if c.value == nil {
			q = q.Where(c.column + " IS NULL")
		} else {
			q = q.Where(c.column+" = ?", *c.value)
		}
	}
	if id != 0 {
		q = q.Where("id <> ?", id)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return duplicateError(entity, fields...)
	}
	return nil
}

func checkUniqueString(tx *gorm.DB, model any, entity string, id uint, field, column, value string) error {
	q := tx.Model(model).Where(column+" = ?", value)
	if id != 0 {
		q = q.Where("id <> ?", id)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return duplicateError(entity, field)
	}
	return nil
}

// requireFields takes name/value pairs and rejects the first blank value.
func requireFields(entity string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return invalidInput(entity, "%s is required", pairs[i])
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
