package models

import (
	"strings"

	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/datastore/repository"
)

// CalculationTypeRecord is the flat calculation type.
type CalculationTypeRecord struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Keyword     string `json:"keyword"`
	Description string `json:"description"`
}

// CalculationTypeAPI is the calculation type request body.
type CalculationTypeAPI struct {
	ID          uint   `json:"id" form:"id"`
	Name        string `json:"name" form:"name"`
	Keyword     string `json:"keyword" form:"keyword"`
	Description string `json:"description" form:"description"`
}

// GetID implements APIModel.
func (m CalculationTypeAPI) GetID() uint { return m.ID }

// Validate reports missing fields and values over the column limits.
func (m CalculationTypeAPI) Validate() ValidationErrors {
	v := newValidator()
	v.required("name", m.Name)
	v.maxLength("name", m.Name, repository.MaxNameLength)
	v.required("keyword", m.Keyword)
	v.maxLength("keyword", m.Keyword, repository.MaxKeywordLength)
	v.maxLength("description", m.Description, repository.MaxDescriptionLength)
	return v.result()
}

// ToEntity maps the body to an entities.CalculationType, trimming text fields.
func (m CalculationTypeAPI) ToEntity() entities.CalculationType {
	return entities.CalculationType{
		ID:          m.ID,
		Name:        strings.TrimSpace(m.Name),
		Keyword:     strings.TrimSpace(m.Keyword),
		Description: strings.TrimSpace(m.Description),
	}
}

// NewCalculationTypeRecord maps the entity.
func NewCalculationTypeRecord(e entities.CalculationType) CalculationTypeRecord {
	return CalculationTypeRecord{ID: e.ID, Name: e.Name, Keyword: e.Keyword, Description: e.Description}
}

// CalculationTypeFromEntity fills the form model for editing.
func CalculationTypeFromEntity(e entities.CalculationType) CalculationTypeAPI {
	return CalculationTypeAPI(NewCalculationTypeRecord(e))
}

// SpinStateRecord is the flat spin state.
type SpinStateRecord struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Keyword string `json:"keyword"`
}

// SpinStateAPI is the spin state request body.
type SpinStateAPI struct {
	ID      uint   `json:"id" form:"id"`
	Name    string `json:"name" form:"name"`
	Keyword string `json:"keyword" form:"keyword"`
}

// GetID implements APIModel.
func (m SpinStateAPI) GetID() uint { return m.ID }

// Validate reports missing fields and values over the column limits.
func (m SpinStateAPI) Validate() ValidationErrors {
	v := newValidator()
	v.required("name", m.Name)
	v.maxLength("name", m.Name, repository.MaxNameLength)
	v.required("keyword", m.Keyword)
	v.maxLength("keyword", m.Keyword, repository.MaxKeywordLength)
	return v.result()
}

// ToEntity maps the body to an entities.SpinState, trimming text fields.
func (m SpinStateAPI) ToEntity() entities.SpinState {
	return entities.SpinState{ID: m.ID, Name: strings.TrimSpace(m.Name), Keyword: strings.TrimSpace(m.Keyword)}
}

// NewSpinStateRecord maps the entity.
func NewSpinStateRecord(e entities.SpinState) SpinStateRecord {
	return SpinStateRecord{ID: e.ID, Name: e.Name, Keyword: e.Keyword}
}

// SpinStateFromEntity fills the form model for editing.
func SpinStateFromEntity(e entities.SpinState) SpinStateAPI {
	return SpinStateAPI(NewSpinStateRecord(e))
}

// ElectronicStateRecord is the flat electronic state.
type ElectronicStateRecord struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Keyword string `json:"keyword"`
}

// ElectronicStateAPI is the electronic state request body. The keyword may
// be empty (ground state).
type ElectronicStateAPI struct {
	ID      uint   `json:"id" form:"id"`
	Name    string `json:"name" form:"name"`
	Keyword string `json:"keyword" form:"keyword"`
}

// GetID implements APIModel.
func (m ElectronicStateAPI) GetID() uint { return m.ID }

// Validate reports missing fields and values over the column limits.
func (m ElectronicStateAPI) Validate() ValidationErrors {
	v := newValidator()
	v.required("name", m.Name)
	v.maxLength("name", m.Name, repository.MaxNameLength)
	v.maxLength("keyword", m.Keyword, repository.MaxKeywordLength)
	return v.result()
}

// ToEntity maps the body to an entities.ElectronicState, trimming text fields.
func (m ElectronicStateAPI) ToEntity() entities.ElectronicState {
	return entities.ElectronicState{ID: m.ID, Name: strings.TrimSpace(m.Name), Keyword: strings.TrimSpace(m.Keyword)}
}

// NewElectronicStateRecord maps the entity.
func NewElectronicStateRecord(e entities.ElectronicState) ElectronicStateRecord {
	return ElectronicStateRecord{ID: e.ID, Name: e.Name, Keyword: e.Keyword}
}

// ElectronicStateFromEntity fills the form model for editing.
func ElectronicStateFromEntity(e entities.ElectronicState) ElectronicStateAPI {
	return ElectronicStateAPI(NewElectronicStateRecord(e))
}

// MethodFamilyRecord is the flat method family.
type MethodFamilyRecord struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Keyword         string `json:"keyword"`
	DescriptiveName string `json:"descriptiveName"`
	Description     string `json:"description"`
}

// MethodFamilyAPI is the method family request body.
type MethodFamilyAPI struct {
	ID              uint   `json:"id" form:"id"`
	Name            string `json:"name" form:"name"`
	Keyword         string `json:"keyword" form:"keyword"`
	DescriptiveName string `json:"descriptiveName" form:"descriptiveName"`
	Description     string `json:"description" form:"description"`
}

// GetID implements APIModel.
func (m MethodFamilyAPI) GetID() uint { return m.ID }

// Validate reports missing fields and values over the column limits.
func (m MethodFamilyAPI) Validate() ValidationErrors {
	v := newValidator()
	v.required("name", m.Name)
	v.maxLength("name", m.Name, repository.MaxNameLength)
	v.maxLength("keyword", m.Keyword, repository.MaxKeywordLength)
	v.maxLength("descriptiveName", m.DescriptiveName, repository.MaxDescriptiveNameLength)
	v.maxLength("description", m.Description, repository.MaxDescriptionLength)
	return v.result()
}

// ToEntity maps the body to an entities.MethodFamily, trimming text fields.
func (m MethodFamilyAPI) ToEntity() entities.MethodFamily {
	return entities.MethodFamily{
		ID:              m.ID,
		Name:            strings.TrimSpace(m.Name),
		Keyword:         strings.TrimSpace(m.Keyword),
		DescriptiveName: strings.TrimSpace(m.DescriptiveName),
		Description:     strings.TrimSpace(m.Description),
	}
}

// NewMethodFamilyRecord maps the entity.
func NewMethodFamilyRecord(e entities.MethodFamily) MethodFamilyRecord {
	return MethodFamilyRecord{
		ID:              e.ID,
		Name:            e.Name,
		Keyword:         e.Keyword,
		DescriptiveName: e.DescriptiveName,
		Description:     e.Description,
	}
}

// MethodFamilyFromEntity fills the form model for editing.
func MethodFamilyFromEntity(e entities.MethodFamily) MethodFamilyAPI {
	return MethodFamilyAPI(NewMethodFamilyRecord(e))
}

// Base entities have no references, so all projections but Simple are the record.

// CalculationTypeMapper projects calculation types.
var CalculationTypeMapper = Mapper[entities.CalculationType]{
	Record:       func(e entities.CalculationType) any { return NewCalculationTypeRecord(e) },
	Full:         func(e entities.CalculationType) any { return NewCalculationTypeRecord(e) },
	Intermediate: func(e entities.CalculationType) any { return NewCalculationTypeRecord(e) },
	Simple:       func(e entities.CalculationType) Simple { return Simple{ID: e.ID, Name: e.Name} },
}

// SpinStateMapper projects spin states.
var SpinStateMapper = Mapper[entities.SpinState]{
	Record:       func(e entities.SpinState) any { return NewSpinStateRecord(e) },
	Full:         func(e entities.SpinState) any { return NewSpinStateRecord(e) },
	Intermediate: func(e entities.SpinState) any { return NewSpinStateRecord(e) },
	Simple:       func(e entities.SpinState) Simple { return Simple{ID: e.ID, Name: e.Name} },
}

// ElectronicStateMapper projects electronic states.
var ElectronicStateMapper = Mapper[entities.ElectronicState]{
	Record:       func(e entities.ElectronicState) any { return NewElectronicStateRecord(e) },
	Full:         func(e entities.ElectronicState) any { return NewElectronicStateRecord(e) },
	Intermediate: func(e entities.ElectronicState) any { return NewElectronicStateRecord(e) },
	Simple:       func(e entities.ElectronicState) Simple { return Simple{ID: e.ID, Name: e.Name} },
}

// MethodFamilyMapper projects method families.
var MethodFamilyMapper = Mapper[entities.MethodFamily]{
	Record:       func(e entities.MethodFamily) any { return NewMethodFamilyRecord(e) },
	Full:         func(e entities.MethodFamily) any { return NewMethodFamilyRecord(e) },
	Intermediate: func(e entities.MethodFamily) any { return NewMethodFamilyRecord(e) },
	Simple:       func(e entities.MethodFamily) Simple { return Simple{ID: e.ID, Name: e.Name} },
}
