// Package seed imports a catalogue from YAML. Parents are referenced by
// their natural key (keyword or name) instead of ids, rows that already
// exist are left alone, and the whole import runs in one transaction.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/logger"
)

// Document is the YAML layout of a catalogue.
type Document struct {
	CalculationTypes []CalculationType `yaml:"calculationTypes"`
	SpinStates       []SpinState       `yaml:"spinStates"`
	ElectronicStates []ElectronicState `yaml:"electronicStates"`
	MethodFamilies   []MethodFamily    `yaml:"methodFamilies"`
	BaseMethods      []BaseMethod      `yaml:"baseMethods"`

	ElectronicStateMethodFamilies          []ElectronicStateMethodFamily          `yaml:"electronicStateMethodFamilies"`
	SpinStateElectronicStateMethodFamilies []SpinStateElectronicStateMethodFamily `yaml:"spinStateElectronicStateMethodFamilies"`

	FullMethods []FullMethod `yaml:"fullMethods"`
}

type CalculationType struct {
	Name        string `yaml:"name"`
	Keyword     string `yaml:"keyword"`
	Description string `yaml:"description"`
}

type SpinState struct {
	Name    string `yaml:"name"`
	Keyword string `yaml:"keyword"`
}

type ElectronicState struct {
	Name    string `yaml:"name"`
	Keyword string `yaml:"keyword"`
}

type MethodFamily struct {
	Name            string `yaml:"name"`
	Keyword         string `yaml:"keyword"`
	DescriptiveName string `yaml:"descriptiveName"`
	Description     string `yaml:"description"`
}

// BaseMethod names its family by name.
type BaseMethod struct {
	Keyword         string `yaml:"keyword"`
	DescriptiveName string `yaml:"descriptiveName"`
	MethodFamily    string `yaml:"methodFamily"`
}

// ElectronicStateMethodFamily names its electronic state and optional
// method family by name.
type ElectronicStateMethodFamily struct {
	Name            string `yaml:"name"`
	Keyword         string `yaml:"keyword"`
	DescriptiveName string `yaml:"descriptiveName"`
	ElectronicState string `yaml:"electronicState"`
	MethodFamily    string `yaml:"methodFamily"`
}

// SpinStateElectronicStateMethodFamily names its optional spin state by
// keyword and its ElectronicStateMethodFamily by name.
type SpinStateElectronicStateMethodFamily struct {
	Name                        string `yaml:"name"`
	Keyword                     string `yaml:"keyword"`
	DescriptiveName             string `yaml:"descriptiveName"`
	SpinState                   string `yaml:"spinState"`
	ElectronicStateMethodFamily string `yaml:"electronicStateMethodFamily"`
}

// FullMethod names its parents by base method keyword and
// SpinStateElectronicStateMethodFamily name. Empty keywords and names are
// composed from the parents, so references must use the composed value.
type FullMethod struct {
	Keyword                              string `yaml:"keyword"`
	DescriptiveName                      string `yaml:"descriptiveName"`
	BaseMethod                           string `yaml:"baseMethod"`
	SpinStateElectronicStateMethodFamily string `yaml:"spinStateElectronicStateMethodFamily"`
}

// Parse decodes a document. Unknown keys are rejected.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, errors.New(fmt.Errorf("parse seed document: %w", err)).
			Component("seed").
			Category(errors.CategoryFileParsing).
			Build()
	}
	return &doc, nil
}

// LoadFile reads and parses path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("read seed file: %w", err)).
			Component("seed").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return Parse(bytes.NewReader(data))
}

// Result counts rows per entity.
type Result struct {
	Created map[string]int
	Skipped map[string]int
}

func newResult() *Result {
	return &Result{Created: map[string]int{}, Skipped: map[string]int{}}
}

// Total returns the number of created and skipped rows.
func (r *Result) Total() (created, skipped int) {
	for _, n := range r.Created {
		created += n
	}
	for _, n := range r.Skipped {
		skipped += n
	}
	return created, skipped
}

// Importer writes documents into the catalogue.
type Importer struct {
	db  *gorm.DB
	log logger.Logger
}

// NewImporter creates an importer over db.
func NewImporter(db *gorm.DB, log logger.Logger) *Importer {
	if log == nil {
		log = logger.Global().Module("seed")
	}
	return &Importer{db: db, log: log}
}

// Import adds the rows of doc that are not yet present. On error nothing
// is written.
func (im *Importer) Import(ctx context.Context, doc *Document) (*Result, error) {
	result := newResult()
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := &importRun{
			ctx:    ctx,
			repos:  repository.New(tx, repository.Options{}),
			result: result,
		}
		steps := []func(*Document) error{
			run.calculationTypes,
			run.spinStates,
			run.electronicStates,
			run.methodFamilies,
			run.baseMethods,
			run.electronicStateMethodFamilies,
			run.spinStateElectronicStateMethodFamilies,
			run.fullMethods,
		}
		for _, step := range steps {
			if err := step(doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, skipped := result.Total()
	im.log.Info("catalogue imported", logger.Int("created", created), logger.Int("skipped", skipped))
	return result, nil
}

// importRun holds the state of one transaction.
type importRun struct {
	ctx    context.Context
	repos  *repository.Repositories
	result *Result
}

// ensure creates rec unless find reports an existing row.
func ensure[T entities.Record](run *importRun, repo repository.Repository[T], rec T, query string, args ...any) (uint, error) {
	existing, err := repo.FindOne(run.ctx, query, args...)
	if err == nil {
		run.result.Skipped[repo.Entity()]++
		return (*existing).PrimaryKey(), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	created, err := repo.Create(run.ctx, &rec)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", repo.Entity(), err)
	}
	run.result.Created[repo.Entity()]++
	return (*created).PrimaryKey(), nil
}

// resolve finds the id of a parent named in the document.
func resolve[T entities.Record](run *importRun, repo repository.Repository[T], ref, query string) (uint, error) {
	rec, err := repo.FindOne(run.ctx, query, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, errors.Newf("%s %q is not defined", repo.Entity(), ref).
				Component("seed").
				Category(errors.CategoryValidation).
				Build()
		}
		return 0, err
	}
	return (*rec).PrimaryKey(), nil
}

func (run *importRun) calculationTypes(doc *Document) error {
	for _, ct := range doc.CalculationTypes {
		rec := entities.CalculationType{Name: ct.Name, Keyword: ct.Keyword, Description: ct.Description}
		if _, err := ensure(run, run.repos.CalculationTypes, rec, "keyword = ?", ct.Keyword); err != nil {
			return err
		}
	}
	return nil
}

func (run *importRun) spinStates(doc *Document) error {
	for _, ss := range doc.SpinStates {
		rec := entities.SpinState{Name: ss.Name, Keyword: ss.Keyword}
		if _, err := ensure(run, run.repos.SpinStates, rec, "keyword = ?", ss.Keyword); err != nil {
			return err
		}
	}
	return nil
}

func (run *importRun) electronicStates(doc *Document) error {
	for _, es := range doc.ElectronicStates {
		rec := entities.ElectronicState{Name: es.Name, Keyword: es.Keyword}
		if _, err := ensure(run, run.repos.ElectronicStates, rec, "name = ?", es.Name); err != nil {
			return err
		}
	}
	return nil
}

func (run *importRun) methodFamilies(doc *Document) error {
	for _, mf := range doc.MethodFamilies {
		rec := entities.MethodFamily{
			Name:            mf.Name,
			Keyword:         mf.Keyword,
			DescriptiveName: mf.DescriptiveName,
			Description:     mf.Description,
		}
		if _, err := ensure(run, run.repos.MethodFamilies, rec, "name = ?", mf.Name); err != nil {
			return err
		}
	}
	return nil
}

func (run *importRun) baseMethods(doc *Document) error {
	for _, bm := range doc.BaseMethods {
		familyID, err := resolve(run, run.repos.MethodFamilies, bm.MethodFamily, "name = ?")
		if err != nil {
			return fmt.Errorf("base method %s: %w", bm.Keyword, err)
		}
		rec := entities.BaseMethod{Keyword: bm.Keyword, DescriptiveName: bm.DescriptiveName, MethodFamilyID: familyID}
		if _, err := ensure(run, run.repos.BaseMethods, rec, "keyword = ?", bm.Keyword); err != nil {
			return err
		}
	}
	return nil
}

func (run *importRun) electronicStateMethodFamilies(doc *Document) error {
	for _, esmf := range doc.ElectronicStateMethodFamilies {
		stateID, err := resolve(run, run.repos.ElectronicStates, esmf.ElectronicState, "name = ?")
		if err != nil {
			return fmt.Errorf("electronic state method family %s: %w", esmf.Name, err)
		}
		rec := entities.ElectronicStateMethodFamily{
			Name:              esmf.Name,
			Keyword:           esmf.Keyword,
			DescriptiveName:   esmf.DescriptiveName,
			ElectronicStateID: stateID,
		}

		query, args := "electronic_state_id = ? AND method_family_id IS NULL", []any{stateID}
		if esmf.MethodFamily != "" {
			familyID, err := resolve(run, run.repos.MethodFamilies, esmf.MethodFamily, "name = ?")
			if err != nil {
				return fmt.Errorf("electronic state method family %s: %w", esmf.Name, err)
			}
			rec.MethodFamilyID = &familyID
			query, args = "electronic_state_id = ? AND method_family_id = ?", []any{stateID, familyID}
		}
		if _, err := ensure(run, run.repos.ElectronicStateMethodFamilies, rec, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func (run *importRun) spinStateElectronicStateMethodFamilies(doc *Document) error {
	for _, ssemf := range doc.SpinStateElectronicStateMethodFamilies {
		esmfID, err := resolve(run, run.repos.ElectronicStateMethodFamilies, ssemf.ElectronicStateMethodFamily, "name = ?")
		if err != nil {
			return fmt.Errorf("spin state method family %s: %w", ssemf.Name, err)
		}
		rec := entities.SpinStateElectronicStateMethodFamily{
			Name:                          ssemf.Name,
			Keyword:                       ssemf.Keyword,
			DescriptiveName:               ssemf.DescriptiveName,
			ElectronicStateMethodFamilyID: esmfID,
		}

		query, args := "electronic_state_method_family_id = ? AND spin_state_id IS NULL", []any{esmfID}
		if ssemf.SpinState != "" {
			spinID, err := resolve(run, run.repos.SpinStates, ssemf.SpinState, "keyword = ?")
			if err != nil {
				return fmt.Errorf("spin state method family %s: %w", ssemf.Name, err)
			}
			rec.SpinStateID = &spinID
			query, args = "electronic_state_method_family_id = ? AND spin_state_id = ?", []any{esmfID, spinID}
		}
		if _, err := ensure(run, run.repos.SpinStateElectronicStateMethodFamilies, rec, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func (run *importRun) fullMethods(doc *Document) error {
	for _, fm := range doc.FullMethods {
		baseID, err := resolve(run, run.repos.BaseMethods, fm.BaseMethod, "keyword = ?")
		if err != nil {
			return fmt.Errorf("full method %s: %w", fm.Keyword, err)
		}
		ssemfID, err := resolve(run, run.repos.SpinStateElectronicStateMethodFamilies,
			fm.SpinStateElectronicStateMethodFamily, "name = ?")
		if err != nil {
			return fmt.Errorf("full method %s: %w", fm.Keyword, err)
		}
		rec := entities.FullMethod{
			Keyword:                                fm.Keyword,
			DescriptiveName:                        fm.DescriptiveName,
			BaseMethodID:                           baseID,
			SpinStateElectronicStateMethodFamilyID: ssemfID,
		}
		_, err = ensure(run, run.repos.FullMethods, rec,
			"spin_state_electronic_state_method_family_id = ? AND base_method_id = ?", ssemfID, baseID)
		if err != nil {
			return err
		}
	}
	return nil
}
