package models

import (
	"strings"

	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/datastore/repository"
)

// BaseMethod

// BaseMethodRecord is the flat base method.
type BaseMethodRecord struct {
	ID              uint   `json:"id"`
	Keyword         string `json:"keyword"`
	DescriptiveName string `json:"descriptiveName"`
	MethodFamilyID  uint   `json:"methodFamilyId"`
}

// BaseMethodFull expands the method family.
type BaseMethodFull struct {
	BaseMethodRecord
	MethodFamily *MethodFamilyRecord `json:"methodFamily"`
}

// BaseMethodIntermediate references the method family as a Simple model.
type BaseMethodIntermediate struct {
	BaseMethodRecord
	MethodFamily *Simple `json:"methodFamily"`
}

// BaseMethodAPI is the base method request body.
type BaseMethodAPI struct {
	ID              uint   `json:"id" form:"id"`
	Keyword         string `json:"keyword" form:"keyword"`
	DescriptiveName string `json:"descriptiveName" form:"descriptiveName"`
	MethodFamilyID  uint   `json:"methodFamilyId" form:"methodFamilyId"`
}

// GetID implements APIModel.
func (m BaseMethodAPI) GetID() uint { return m.ID }

// Validate reports missing fields and values over the column limits.
func (m BaseMethodAPI) Validate() ValidationErrors {
	v := newValidator()
	v.required("keyword", m.Keyword)
	v.maxLength("keyword", m.Keyword, repository.MaxKeywordLength)
	v.maxLength("descriptiveName", m.DescriptiveName, repository.MaxDescriptiveNameLength)
	v.requiredID("methodFamilyId", m.MethodFamilyID)
	return v.result()
}

// ToEntity maps the body to an entities.BaseMethod, trimming text fields.
func (m BaseMethodAPI) ToEntity() entities.BaseMethod {
	return entities.BaseMethod{
		ID:              m.ID,
		Keyword:         strings.TrimSpace(m.Keyword),
		DescriptiveName: strings.TrimSpace(m.DescriptiveName),
		MethodFamilyID:  m.MethodFamilyID,
	}
}

// NewBaseMethodRecord maps the entity.
func NewBaseMethodRecord(e entities.BaseMethod) BaseMethodRecord {
	return BaseMethodRecord{
		ID:              e.ID,
		Keyword:         e.Keyword,
		DescriptiveName: e.DescriptiveName,
		MethodFamilyID:  e.MethodFamilyID,
	}
}

// NewBaseMethodFull maps the entity with its loaded method family.
func NewBaseMethodFull(e entities.BaseMethod) BaseMethodFull {
	full := BaseMethodFull{BaseMethodRecord: NewBaseMethodRecord(e)}
	if e.MethodFamily != nil {
		mf := NewMethodFamilyRecord(*e.MethodFamily)
		full.MethodFamily = &mf
	}
	return full
}

// NewBaseMethodIntermediate maps the entity with a Simple method family.
func NewBaseMethodIntermediate(e entities.BaseMethod) BaseMethodIntermediate {
	return BaseMethodIntermediate{
		BaseMethodRecord: NewBaseMethodRecord(e),
		MethodFamily:     simpleOf(e.MethodFamily, MethodFamilyMapper.Simple),
	}
}

// BaseMethodFromEntity fills the form model for editing.
func BaseMethodFromEntity(e entities.BaseMethod) BaseMethodAPI {
	return BaseMethodAPI(NewBaseMethodRecord(e))
}

// BaseMethodMapper projects base methods. The Simple name is the keyword.
var BaseMethodMapper = Mapper[entities.BaseMethod]{
	Record:       func(e entities.BaseMethod) any { return NewBaseMethodRecord(e) },
	Full:         func(e entities.BaseMethod) any { return NewBaseMethodFull(e) },
	Intermediate: func(e entities.BaseMethod) any { return NewBaseMethodIntermediate(e) },
	Simple:       func(e entities.BaseMethod) Simple { return Simple{ID: e.ID, Name: e.Keyword} },
}

// ElectronicStateMethodFamily

// ElectronicStateMethodFamilyRecord is the flat electronic state × method family.
type ElectronicStateMethodFamilyRecord struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	Keyword           string `json:"keyword"`
	DescriptiveName   string `json:"descriptiveName"`
	ElectronicStateID uint   `json:"electronicStateId"`
	MethodFamilyID    *uint  `json:"methodFamilyId"`
}

// ElectronicStateMethodFamilyFull expands both references.
type ElectronicStateMethodFamilyFull struct {
	ElectronicStateMethodFamilyRecord
	ElectronicState *ElectronicStateRecord `json:"electronicState"`
	MethodFamily    *MethodFamilyRecord    `json:"methodFamily"`
}

// ElectronicStateMethodFamilyIntermediate references both as Simple models.
type ElectronicStateMethodFamilyIntermediate struct {
	ElectronicStateMethodFamilyRecord
	ElectronicState *Simple `json:"electronicState"`
	MethodFamily    *Simple `json:"methodFamily"`
}

// ElectronicStateMethodFamilyAPI is the request body. Blank name and keyword
// are composed from the references.
type ElectronicStateMethodFamilyAPI struct {
	ID                uint   `json:"id" form:"id"`
	Name              string `json:"name" form:"name"`
	Keyword           string `json:"keyword" form:"keyword"`
	DescriptiveName   string `json:"descriptiveName" form:"descriptiveName"`
	ElectronicStateID uint   `json:"electronicStateId" form:"electronicStateId"`
	MethodFamilyID    *uint  `json:"methodFamilyId" form:"methodFamilyId"`
}

// GetID implements APIModel.
func (m ElectronicStateMethodFamilyAPI) GetID() uint { return m.ID }

// Validate reports missing fields and values over the column limits.
func (m ElectronicStateMethodFamilyAPI) Validate() ValidationErrors {
	v := newValidator()
	v.maxLength("name", m.Name, repository.MaxNameLength)
	v.maxLength("keyword", m.Keyword, repository.MaxKeywordLength)
	v.maxLength("descriptiveName", m.DescriptiveName, repository.MaxDescriptiveNameLength)
	v.requiredID("electronicStateId", m.ElectronicStateID)
	return v.result()
}

// ToEntity maps the body to an entities.ElectronicStateMethodFamily, trimming text fields.
func (m ElectronicStateMethodFamilyAPI) ToEntity() entities.ElectronicStateMethodFamily {
	return entities.ElectronicStateMethodFamily{
		ID:                m.ID,
		Name:              strings.TrimSpace(m.Name),
		Keyword:           strings.TrimSpace(m.Keyword),
		DescriptiveName:   strings.TrimSpace(m.DescriptiveName),
		ElectronicStateID: m.ElectronicStateID,
		MethodFamilyID:    optionalID(m.MethodFamilyID),
	}
}

// NewElectronicStateMethodFamilyRecord maps the entity.
func NewElectronicStateMethodFamilyRecord(e entities.ElectronicStateMethodFamily) ElectronicStateMethodFamilyRecord {
	return ElectronicStateMethodFamilyRecord{
		ID:                e.ID,
		Name:              e.Name,
		Keyword:           e.Keyword,
		DescriptiveName:   e.DescriptiveName,
		ElectronicStateID: e.ElectronicStateID,
		MethodFamilyID:    optionalID(e.MethodFamilyID),
	}
}

// NewElectronicStateMethodFamilyFull maps the entity with its loaded references.
func NewElectronicStateMethodFamilyFull(e entities.ElectronicStateMethodFamily) ElectronicStateMethodFamilyFull {
	full := ElectronicStateMethodFamilyFull{ElectronicStateMethodFamilyRecord: NewElectronicStateMethodFamilyRecord(e)}
	if e.ElectronicState != nil {
		es := NewElectronicStateRecord(*e.ElectronicState)
		full.ElectronicState = &es
	}
	if e.MethodFamily != nil {
		mf := NewMethodFamilyRecord(*e.MethodFamily)
		full.MethodFamily = &mf
	}
	return full
}

// NewElectronicStateMethodFamilyIntermediate maps the entity with Simple references.
func NewElectronicStateMethodFamilyIntermediate(e entities.ElectronicStateMethodFamily) ElectronicStateMethodFamilyIntermediate {
	return ElectronicStateMethodFamilyIntermediate{
		ElectronicStateMethodFamilyRecord: NewElectronicStateMethodFamilyRecord(e),
		ElectronicState:                   simpleOf(e.ElectronicState, ElectronicStateMapper.Simple),
		MethodFamily:                      simpleOf(e.MethodFamily, MethodFamilyMapper.Simple),
	}
}

// ElectronicStateMethodFamilyFromEntity fills the form model for editing.
func ElectronicStateMethodFamilyFromEntity(e entities.ElectronicStateMethodFamily) ElectronicStateMethodFamilyAPI {
	return ElectronicStateMethodFamilyAPI(NewElectronicStateMethodFamilyRecord(e))
}

// ElectronicStateMethodFamilyMapper projects electronic state × method family rows.
var ElectronicStateMethodFamilyMapper = Mapper[entities.ElectronicStateMethodFamily]{
	Record: func(e entities.ElectronicStateMethodFamily) any { return NewElectronicStateMethodFamilyRecord(e) },
	Full:   func(e entities.ElectronicStateMethodFamily) any { return NewElectronicStateMethodFamilyFull(e) },
	Intermediate: func(e entities.ElectronicStateMethodFamily) any {
		return NewElectronicStateMethodFamilyIntermediate(e)
	},
	Simple: func(e entities.ElectronicStateMethodFamily) Simple { return Simple{ID: e.ID, Name: e.Name} },
}

// SpinStateElectronicStateMethodFamily

// SpinStateElectronicStateMethodFamilyRecord is the flat spin state × ESMF row.
type SpinStateElectronicStateMethodFamilyRecord struct {
	ID                            uint   `json:"id"`
	Name                          string `json:"name"`
	Keyword                       string `json:"keyword"`
	DescriptiveName               string `json:"descriptiveName"`
	SpinStateID                   *uint  `json:"spinStateId"`
	ElectronicStateMethodFamilyID uint   `json:"electronicStateMethodFamilyId"`
}

// SpinStateElectronicStateMethodFamilyFull expands both references.
type SpinStateElectronicStateMethodFamilyFull struct {
	SpinStateElectronicStateMethodFamilyRecord
	SpinState                   *SpinStateRecord                 `json:"spinState"`
	ElectronicStateMethodFamily *ElectronicStateMethodFamilyFull `json:"electronicStateMethodFamily"`
}

// SpinStateElectronicStateMethodFamilyIntermediate references both as Simple models.
type SpinStateElectronicStateMethodFamilyIntermediate struct {
	SpinStateElectronicStateMethodFamilyRecord
	SpinState                   *Simple `json:"spinState"`
	ElectronicStateMethodFamily *Simple `json:"electronicStateMethodFamily"`
}

// SpinStateElectronicStateMethodFamilyAPI is the request body.
type SpinStateElectronicStateMethodFamilyAPI struct {
	ID                            uint   `json:"id" form:"id"`
	Name                          string `json:"name" form:"name"`
	Keyword                       string `json:"keyword" form:"keyword"`
	DescriptiveName               string `json:"descriptiveName" form:"descriptiveName"`
	SpinStateID                   *uint  `json:"spinStateId" form:"spinStateId"`
	ElectronicStateMethodFamilyID uint   `json:"electronicStateMethodFamilyId" form:"electronicStateMethodFamilyId"`
}

// GetID implements APIModel.
func (m SpinStateElectronicStateMethodFamilyAPI) GetID() uint { return m.ID }

// Validate reports missing fields and values over the column limits.
func (m SpinStateElectronicStateMethodFamilyAPI) Validate() ValidationErrors {
	v := newValidator()
	v.maxLength("name", m.Name, repository.MaxNameLength)
	v.maxLength("keyword", m.Keyword, repository.MaxKeywordLength)
	v.maxLength("descriptiveName", m.DescriptiveName, repository.MaxDescriptiveNameLength)
	v.requiredID("electronicStateMethodFamilyId", m.ElectronicStateMethodFamilyID)
	return v.result()
}

// ToEntity maps the body to an entities.SpinStateElectronicStateMethodFamily, trimming text fields.
func (m SpinStateElectronicStateMethodFamilyAPI) ToEntity() entities.SpinStateElectronicStateMethodFamily {
	return entities.SpinStateElectronicStateMethodFamily{
		ID:                            m.ID,
		Name:                          strings.TrimSpace(m.Name),
		Keyword:                       strings.TrimSpace(m.Keyword),
		DescriptiveName:               strings.TrimSpace(m.DescriptiveName),
		SpinStateID:                   optionalID(m.SpinStateID),
		ElectronicStateMethodFamilyID: m.ElectronicStateMethodFamilyID,
	}
}

// NewSpinStateElectronicStateMethodFamilyRecord maps the entity.
func NewSpinStateElectronicStateMethodFamilyRecord(e entities.SpinStateElectronicStateMethodFamily) SpinStateElectronicStateMethodFamilyRecord {
	return SpinStateElectronicStateMethodFamilyRecord{
		ID:                            e.ID,
		Name:                          e.Name,
		Keyword:                       e.Keyword,
		DescriptiveName:               e.DescriptiveName,
		SpinStateID:                   optionalID(e.SpinStateID),
		ElectronicStateMethodFamilyID: e.ElectronicStateMethodFamilyID,
	}
}

// NewSpinStateElectronicStateMethodFamilyFull maps the entity with its loaded graph.
func NewSpinStateElectronicStateMethodFamilyFull(e entities.SpinStateElectronicStateMethodFamily) SpinStateElectronicStateMethodFamilyFull {
	full := SpinStateElectronicStateMethodFamilyFull{
		SpinStateElectronicStateMethodFamilyRecord: NewSpinStateElectronicStateMethodFamilyRecord(e),
	}
	if e.SpinState != nil {
		ss := NewSpinStateRecord(*e.SpinState)
		full.SpinState = &ss
	}
	if e.ElectronicStateMethodFamily != nil {
		esmf := NewElectronicStateMethodFamilyFull(*e.ElectronicStateMethodFamily)
		full.ElectronicStateMethodFamily = &esmf
	}
	return full
}

// NewSpinStateElectronicStateMethodFamilyIntermediate maps the entity with Simple references.
func NewSpinStateElectronicStateMethodFamilyIntermediate(e entities.SpinStateElectronicStateMethodFamily) SpinStateElectronicStateMethodFamilyIntermediate {
	return SpinStateElectronicStateMethodFamilyIntermediate{
		SpinStateElectronicStateMethodFamilyRecord: NewSpinStateElectronicStateMethodFamilyRecord(e),
		SpinState:                   simpleOf(e.SpinState, SpinStateMapper.Simple),
		ElectronicStateMethodFamily: simpleOf(e.ElectronicStateMethodFamily, ElectronicStateMethodFamilyMapper.Simple),
	}
}

// SpinStateElectronicStateMethodFamilyFromEntity fills the form model for editing.
func SpinStateElectronicStateMethodFamilyFromEntity(e entities.SpinStateElectronicStateMethodFamily) SpinStateElectronicStateMethodFamilyAPI {
	return SpinStateElectronicStateMethodFamilyAPI(NewSpinStateElectronicStateMethodFamilyRecord(e))
}

// SpinStateElectronicStateMethodFamilyMapper projects spin state × ESMF rows.
var SpinStateElectronicStateMethodFamilyMapper = Mapper[entities.SpinStateElectronicStateMethodFamily]{
	Record: func(e entities.SpinStateElectronicStateMethodFamily) any {
		return NewSpinStateElectronicStateMethodFamilyRecord(e)
	},
	Full: func(e entities.SpinStateElectronicStateMethodFamily) any {
		return NewSpinStateElectronicStateMethodFamilyFull(e)
	},
	Intermediate: func(e entities.SpinStateElectronicStateMethodFamily) any {
		return NewSpinStateElectronicStateMethodFamilyIntermediate(e)
	},
	Simple: func(e entities.SpinStateElectronicStateMethodFamily) Simple {
		return Simple{ID: e.ID, Name: e.Name}
	},
}

// FullMethod

// FullMethodRecord is the flat full method.
type FullMethodRecord struct {
	ID                                     uint   `json:"id"`
	Keyword                                string `json:"keyword"`
	DescriptiveName                        string `json:"descriptiveName"`
	SpinStateElectronicStateMethodFamilyID uint   `json:"spinStateElectronicStateMethodFamilyId"`
	BaseMethodID                           uint   `json:"baseMethodId"`
}

// FullMethodFull expands both references recursively.
type FullMethodFull struct {
	FullMethodRecord
	SpinStateElectronicStateMethodFamily *SpinStateElectronicStateMethodFamilyFull `json:"spinStateElectronicStateMethodFamily"`
	BaseMethod                           *BaseMethodFull                           `json:"baseMethod"`
}

// FullMethodIntermediate references both as Simple models.
type FullMethodIntermediate struct {
	FullMethodRecord
	SpinStateElectronicStateMethodFamily *Simple `json:"spinStateElectronicStateMethodFamily"`
	BaseMethod                           *Simple `json:"baseMethod"`
}

// FullMethodAPI is the full method request body. A blank keyword is composed.
type FullMethodAPI struct {
	ID                                     uint   `json:"id" form:"id"`
	Keyword                                string `json:"keyword" form:"keyword"`
	DescriptiveName                        string `json:"descriptiveName" form:"descriptiveName"`
	SpinStateElectronicStateMethodFamilyID uint   `json:"spinStateElectronicStateMethodFamilyId" form:"spinStateElectronicStateMethodFamilyId"`
	BaseMethodID                           uint   `json:"baseMethodId" form:"baseMethodId"`
}

// GetID implements APIModel.
func (m FullMethodAPI) GetID() uint { return m.ID }

// Validate reports missing fields and values over the column limits.
func (m FullMethodAPI) Validate() ValidationErrors {
	v := newValidator()
	v.maxLength("keyword", m.Keyword, repository.MaxKeywordLength)
	v.maxLength("descriptiveName", m.DescriptiveName, repository.MaxDescriptiveNameLength)
	v.requiredID("spinStateElectronicStateMethodFamilyId", m.SpinStateElectronicStateMethodFamilyID)
	v.requiredID("baseMethodId", m.BaseMethodID)
	return v.result()
}

// ToEntity maps the body to an entities.FullMethod, trimming text fields.
func (m FullMethodAPI) ToEntity() entities.FullMethod {
	return entities.FullMethod{
		ID:                                     m.ID,
		Keyword:                                strings.TrimSpace(m.Keyword),
		DescriptiveName:                        strings.TrimSpace(m.DescriptiveName),
		SpinStateElectronicStateMethodFamilyID: m.SpinStateElectronicStateMethodFamilyID,
		BaseMethodID:                           m.BaseMethodID,
	}
}

// NewFullMethodRecord maps the entity.
func NewFullMethodRecord(e entities.FullMethod) FullMethodRecord {
	return FullMethodRecord{
		ID:                                     e.ID,
		Keyword:                                e.Keyword,
		DescriptiveName:                        e.DescriptiveName,
		SpinStateElectronicStateMethodFamilyID: e.SpinStateElectronicStateMethodFamilyID,
		BaseMethodID:                           e.BaseMethodID,
	}
}

// NewFullMethodFull maps the entity with its loaded graph.
func NewFullMethodFull(e entities.FullMethod) FullMethodFull {
	full := FullMethodFull{FullMethodRecord: NewFullMethodRecord(e)}
	if e.SpinStateElectronicStateMethodFamily != nil {
		ssemf := NewSpinStateElectronicStateMethodFamilyFull(*e.SpinStateElectronicStateMethodFamily)
		full.SpinStateElectronicStateMethodFamily = &ssemf
	}
	if e.BaseMethod != nil {
		bm := NewBaseMethodFull(*e.BaseMethod)
		full.BaseMethod = &bm
	}
	return full
}

// NewFullMethodIntermediate maps the entity with Simple references.
func NewFullMethodIntermediate(e entities.FullMethod) FullMethodIntermediate {
	return FullMethodIntermediate{
		FullMethodRecord:                     NewFullMethodRecord(e),
		SpinStateElectronicStateMethodFamily: simpleOf(e.SpinStateElectronicStateMethodFamily, SpinStateElectronicStateMethodFamilyMapper.Simple),
		BaseMethod:                           simpleOf(e.BaseMethod, BaseMethodMapper.Simple),
	}
}

// FullMethodFromEntity fills the form model for editing.
func FullMethodFromEntity(e entities.FullMethod) FullMethodAPI {
	return FullMethodAPI(NewFullMethodRecord(e))
}

// FullMethodMapper projects full methods. The Simple name is the keyword.
var FullMethodMapper = Mapper[entities.FullMethod]{
	Record:       func(e entities.FullMethod) any { return NewFullMethodRecord(e) },
	Full:         func(e entities.FullMethod) any { return NewFullMethodFull(e) },
	Intermediate: func(e entities.FullMethod) any { return NewFullMethodIntermediate(e) },
	Simple:       func(e entities.FullMethod) Simple { return Simple{ID: e.ID, Name: e.Keyword} },
}

func simpleOf[T any](ref *T, fn func(T) Simple) *Simple {
	if ref == nil {
		return nil
	}
	s := fn(*ref)
	return &s
}
