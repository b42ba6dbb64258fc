package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestValidate_RequiredAndLength(t *testing.T) {
	t.Parallel()

	errs := SpinStateAPI{Name: " ", Keyword: strings.Repeat("k", 51)}.Validate()
	require.True(t, errs.HasErrors())
	assert.Equal(t, []string{"keyword", "name"}, errs.Fields())
	assert.Equal(t, []string{"The name field is required."}, errs["name"])
	assert.Contains(t, errs["keyword"][0], "maximum length of 50")

	assert.False(t, SpinStateAPI{Name: "Restricted", Keyword: "R"}.Validate().HasErrors())
}

func TestValidate_ForeignKeys(t *testing.T) {
	t.Parallel()

	errs := FullMethodAPI{}.Validate()
	assert.Equal(t, []string{"baseMethodId", "spinStateElectronicStateMethodFamilyId"}, errs.Fields())

	// composed fields may be blank
	assert.False(t, ElectronicStateMethodFamilyAPI{ElectronicStateID: 1}.Validate().HasErrors())
	assert.False(t, ElectronicStateAPI{Name: "Ground State"}.Validate().HasErrors())
}

func TestValidationErrors_Error(t *testing.T) {
	t.Parallel()

	errs := ValidationErrors{}
	errs.Add("name", "bad %s", "name")
	errs.Add("name", "worse")
	errs.Add("keyword", "missing")
	assert.Equal(t, "validation failed: keyword: missing, name: bad name; worse", errs.Error())
}

func TestToEntity_TrimsAndNormalisesOptionalIDs(t *testing.T) {
	t.Parallel()

	e := ElectronicStateMethodFamilyAPI{
		ID: 3, Name: "  TD-DFT ", ElectronicStateID: 2, MethodFamilyID: uintPtr(0),
	}.ToEntity()
	assert.Equal(t, uint(3), e.ID)
	assert.Equal(t, "TD-DFT", e.Name)
	assert.Nil(t, e.MethodFamilyID, "zero id from a form means none")

	ss := SpinStateElectronicStateMethodFamilyAPI{SpinStateID: uintPtr(4), ElectronicStateMethodFamilyID: 1}.ToEntity()
	require.NotNil(t, ss.SpinStateID)
	assert.Equal(t, uint(4), *ss.SpinStateID)
}

func TestFullMethodProjections(t *testing.T) {
	t.Parallel()

	mfID := uint(1)
	ssID := uint(5)
	dft := entities.MethodFamily{ID: mfID, Name: "DFT", DescriptiveName: "Density Functional Theory"}
	fm := entities.FullMethod{
		ID: 9, Keyword: "UB3LYP", SpinStateElectronicStateMethodFamilyID: 7, BaseMethodID: 2,
		BaseMethod: &entities.BaseMethod{ID: 2, Keyword: "B3LYP", MethodFamilyID: mfID, MethodFamily: &dft},
		SpinStateElectronicStateMethodFamily: &entities.SpinStateElectronicStateMethodFamily{
			ID: 7, Name: "Unrestricted Ground State DFT", Keyword: "U", SpinStateID: &ssID, ElectronicStateMethodFamilyID: 3,
			SpinState: &entities.SpinState{ID: ssID, Name: "Unrestricted", Keyword: "U"},
			ElectronicStateMethodFamily: &entities.ElectronicStateMethodFamily{
				ID: 3, Name: "Ground State DFT", ElectronicStateID: 4, MethodFamilyID: &mfID,
				ElectronicState: &entities.ElectronicState{ID: 4, Name: "Ground State"},
				MethodFamily:    &dft,
			},
		},
	}

	full := NewFullMethodFull(fm)
	require.NotNil(t, full.BaseMethod)
	require.NotNil(t, full.BaseMethod.MethodFamily)
	assert.Equal(t, "DFT", full.BaseMethod.MethodFamily.Name)
	require.NotNil(t, full.SpinStateElectronicStateMethodFamily.ElectronicStateMethodFamily.ElectronicState)
	assert.Equal(t, "Ground State", full.SpinStateElectronicStateMethodFamily.ElectronicStateMethodFamily.ElectronicState.Name)

	inter := NewFullMethodIntermediate(fm)
	assert.Equal(t, &Simple{ID: 2, Name: "B3LYP"}, inter.BaseMethod)
	assert.Equal(t, &Simple{ID: 7, Name: "Unrestricted Ground State DFT"}, inter.SpinStateElectronicStateMethodFamily)

	assert.Equal(t, Simple{ID: 9, Name: "UB3LYP"}, FullMethodMapper.Simple(fm))

	raw, err := json.Marshal(FullMethodMapper.Record(fm))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"keyword":"UB3LYP","descriptiveName":"","spinStateElectronicStateMethodFamilyId":7,"baseMethodId":2}`, string(raw))
}

func TestIntermediate_MissingReferenceIsNull(t *testing.T) {
	t.Parallel()

	inter := NewElectronicStateMethodFamilyIntermediate(entities.ElectronicStateMethodFamily{ID: 1, Name: "Excited", ElectronicStateID: 2})
	assert.Nil(t, inter.MethodFamily)
	assert.Nil(t, inter.ElectronicState)

	raw, err := json.Marshal(inter)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"methodFamilyId":null`)
	assert.Contains(t, string(raw), `"methodFamily":null`)
}

func TestFromEntity_RoundTripsFormValues(t *testing.T) {
	t.Parallel()

	bm := entities.BaseMethod{ID: 4, Keyword: "MP2", DescriptiveName: "Møller–Plesset", MethodFamilyID: 2}
	form := BaseMethodFromEntity(bm)
	assert.Equal(t, bm.ID, form.GetID())
	assert.Equal(t, bm, form.ToEntity())
}

func TestRecords(t *testing.T) {
	t.Parallel()

	states := []entities.SpinState{{ID: 1, Name: "Restricted", Keyword: "R"}, {ID: 2, Name: "Unrestricted", Keyword: "U"}}
	simple := Records(states, SpinStateMapper.Simple)
	assert.Equal(t, []Simple{{1, "Restricted"}, {2, "Unrestricted"}}, simple)
}
