package web

import (
	"github.com/qchem/gausscat/internal/datastore/entities"
)

type fieldKind string

const (
	fieldText     fieldKind = "text"
	fieldTextarea fieldKind = "textarea"
	fieldSelect   fieldKind = "select"
)

// Column is one table column. Key is the json key in the Intermediate
// projection; references render their Simple name.
type Column struct {
	Header string
	Key    string
}

// Field is one form input. Name is the form key, matching the API model.
type Field struct {
	Name     string
	Label    string
	Kind     fieldKind
	Lookup   string // entity supplying the options of a select
	Optional bool   // select offers a "none" option
	Help     string
}

// SectionInfo describes how one entity is listed and edited.
type SectionInfo struct {
	Entity  string
	Title   string
	Summary string
	Columns []Column
	Fields  []Field
}

// Lookups returns the entities the form needs for its dropdowns.
func (s SectionInfo) Lookups() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Kind == fieldSelect {
			out = append(out, f.Lookup)
		}
	}
	return out
}

var (
	nameField     = Field{Name: "name", Label: "Name", Kind: fieldText}
	keywordField  = Field{Name: "keyword", Label: "Keyword", Kind: fieldText}
	descNameField = Field{Name: "descriptiveName", Label: "Descriptive name", Kind: fieldText}
	descField     = Field{Name: "description", Label: "Description", Kind: fieldTextarea}

	nameCol     = Column{Header: "Name", Key: "name"}
	keywordCol  = Column{Header: "Keyword", Key: "keyword"}
	descNameCol = Column{Header: "Descriptive name", Key: "descriptiveName"}
)

var (
	calculationTypeSection = SectionInfo{
		Entity:  entities.EntityCalculationType,
		Title:   "Calculation types",
		Summary: "Job types such as single point energies or optimisations.",
		Columns: []Column{nameCol, keywordCol, {Header: "Description", Key: "description"}},
		Fields:  []Field{nameField, keywordField, descField},
	}

	spinStateSection = SectionInfo{
		Entity:  entities.EntitySpinState,
		Title:   "Spin states",
		Summary: "Restricted, unrestricted and restricted open-shell references.",
		Columns: []Column{nameCol, keywordCol},
		Fields:  []Field{nameField, keywordField},
	}

	electronicStateSection = SectionInfo{
		Entity:  entities.EntityElectronicState,
		Title:   "Electronic states",
		Summary: "Ground state and excited state treatments.",
		Columns: []Column{nameCol, keywordCol},
		Fields: []Field{nameField, {
			Name: "keyword", Label: "Keyword", Kind: fieldText,
			Help: "Leave empty for the ground state.",
		}},
	}

	methodFamilySection = SectionInfo{
		Entity:  entities.EntityMethodFamily,
		Title:   "Method families",
		Summary: "Groups of related base methods.",
		Columns: []Column{nameCol, keywordCol, descNameCol},
		Fields:  []Field{nameField, keywordField, descNameField, descField},
	}

	baseMethodSection = SectionInfo{
		Entity:  entities.EntityBaseMethod,
		Title:   "Base methods",
		Summary: "Method keywords within a family.",
		Columns: []Column{keywordCol, descNameCol, {Header: "Method family", Key: "methodFamily"}},
		Fields: []Field{keywordField, descNameField, {
			Name: "methodFamilyId", Label: "Method family", Kind: fieldSelect,
			Lookup: entities.EntityMethodFamily,
		}},
	}

	esmfSection = SectionInfo{
		Entity:  entities.EntityElectronicStateMethodFamily,
		Title:   "Electronic state method families",
		Summary: "Electronic states paired with a method family.",
		Columns: []Column{
			nameCol, keywordCol, descNameCol,
			{Header: "Electronic state", Key: "electronicState"},
			{Header: "Method family", Key: "methodFamily"},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: fieldText, Help: "Composed from the references when empty."},
			{Name: "keyword", Label: "Keyword", Kind: fieldText, Help: "Composed from the references when empty."},
			descNameField,
			{Name: "electronicStateId", Label: "Electronic state", Kind: fieldSelect, Lookup: entities.EntityElectronicState},
			{Name: "methodFamilyId", Label: "Method family", Kind: fieldSelect, Lookup: entities.EntityMethodFamily, Optional: true},
		},
	}

	ssemfSection = SectionInfo{
		Entity:  entities.EntitySpinStateElectronicStateMethodFamily,
		Title:   "Spin state method families",
		Summary: "Electronic state method families with an optional spin state.",
		Columns: []Column{
			nameCol, keywordCol, descNameCol,
			{Header: "Spin state", Key: "spinState"},
			{Header: "Electronic state method family", Key: "electronicStateMethodFamily"},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: fieldText, Help: "Composed from the references when empty."},
			{Name: "keyword", Label: "Keyword", Kind: fieldText, Help: "Composed from the references when empty."},
			descNameField,
			{Name: "spinStateId", Label: "Spin state", Kind: fieldSelect, Lookup: entities.EntitySpinState, Optional: true},
			{
				Name: "electronicStateMethodFamilyId", Label: "Electronic state method family", Kind: fieldSelect,
				Lookup: entities.EntityElectronicStateMethodFamily,
			},
		},
	}

	fullMethodSection = SectionInfo{
		Entity:  entities.EntityFullMethod,
		Title:   "Full methods",
		Summary: "Complete route section method keywords.",
		Columns: []Column{
			keywordCol, descNameCol,
			{Header: "Spin state method family", Key: "spinStateElectronicStateMethodFamily"},
			{Header: "Base method", Key: "baseMethod"},
		},
		Fields: []Field{
			{Name: "keyword", Label: "Keyword", Kind: fieldText, Help: "Composed from the references when empty."},
			descNameField,
			{
				Name: "spinStateElectronicStateMethodFamilyId", Label: "Spin state method family", Kind: fieldSelect,
				Lookup: entities.EntitySpinStateElectronicStateMethodFamily,
			},
			{Name: "baseMethodId", Label: "Base method", Kind: fieldSelect, Lookup: entities.EntityBaseMethod},
		},
	}
)
