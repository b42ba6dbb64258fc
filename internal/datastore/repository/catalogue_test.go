package repository

import (
	"strings"
	"testing"

	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSpinState_CRUDLifecycle(t *testing.T) {
	t.Parallel()
	repos, pub := newTestRepositories(t)
	ctx := t.Context()

	created, err := repos.SpinStates.Create(ctx, &entities.SpinState{Name: "  Restricted ", Keyword: "R"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Restricted", created.Name, "names are trimmed")

	got, err := repos.SpinStates.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "R", got.Keyword)

	got.Name = "Restricted Closed Shell"
	updated, err := repos.SpinStates.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Restricted Closed Shell", updated.Name)

	deleted, err := repos.SpinStates.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = repos.SpinStates.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, errors.IsNotFound(err))

	ops := pub.all()
	require.Len(t, ops, 3)
	assert.Equal(t, events.OpCreated, ops[0].Op)
	assert.Equal(t, events.OpUpdated, ops[1].Op)
	assert.Equal(t, events.OpDeleted, ops[2].Op)
	assert.Equal(t, entities.EntitySpinState, ops[0].Entity)
	assert.Equal(t, created.ID, ops[2].ID)
}

func TestCreate_DuplicateKeyword(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()

	_, err := repos.CalculationTypes.Create(ctx, &entities.CalculationType{Name: "Single Point", Keyword: "SP"})
	require.NoError(t, err)

	_, err = repos.CalculationTypes.Create(ctx, &entities.CalculationType{Name: "Energy", Keyword: "SP"})
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, errors.IsCategory(err, errors.CategoryConflict))
}

func TestCreate_RequiredAndLength(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()

	_, err := repos.SpinStates.Create(ctx, &entities.SpinState{Name: "   ", Keyword: "R"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = repos.SpinStates.Create(ctx, &entities.SpinState{Name: strings.Repeat("x", MaxNameLength+1), Keyword: "R"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "name exceeds")
}

func TestBaseMethod_MissingMethodFamily(t *testing.T) {
	t.Parallel()
	repos, pub := newTestRepositories(t)

	_, err := repos.BaseMethods.Create(t.Context(), &entities.BaseMethod{Keyword: "B3LYP", MethodFamilyID: 99})
	require.ErrorIs(t, err, ErrMissingReference)

	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, FieldMethodFamilyID, refErr.Field)
	assert.Equal(t, uint(99), refErr.ID)
	assert.Empty(t, pub.all(), "failed writes publish nothing")
}

func TestComposition_KeywordsAndNames(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()
	f := seedFixture(t, repos)

	assert.Equal(t, "Ground State DFT", f.groundDFT.Name)
	assert.Equal(t, "", f.groundDFT.Keyword)
	assert.Equal(t, "Ground State Density Functional Theory", f.groundDFT.DescriptiveName)

	assert.Equal(t, "U", f.uGroundDFT.Keyword)
	assert.Equal(t, "Unrestricted Ground State DFT", f.uGroundDFT.Name)

	fm, err := repos.FullMethods.Create(ctx, &entities.FullMethod{
		SpinStateElectronicStateMethodFamilyID: f.uGroundDFT.ID,
		BaseMethodID:                           f.b3lyp.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "UB3LYP", fm.Keyword)
	assert.Equal(t,
		"Unrestricted Ground State Density Functional Theory Becke three-parameter Lee-Yang-Parr",
		fm.DescriptiveName)

	// explicit values are kept
	excitedDFT, err := repos.ElectronicStateMethodFamilies.Create(ctx, &entities.ElectronicStateMethodFamily{
		Name: "TD-DFT", Keyword: "TD", ElectronicStateID: f.excited.ID, MethodFamilyID: &f.dft.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "TD", excitedDFT.Keyword)
	assert.Equal(t, "TD-DFT", excitedDFT.Name)
}

func TestFullMethod_PreloadsGraph(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()
	f := seedFixture(t, repos)

	fm, err := repos.FullMethods.Create(ctx, &entities.FullMethod{
		SpinStateElectronicStateMethodFamilyID: f.uGroundDFT.ID,
		BaseMethodID:                           f.b3lyp.ID,
	})
	require.NoError(t, err)

	got, err := repos.FullMethods.GetByID(ctx, fm.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BaseMethod)
	require.NotNil(t, got.BaseMethod.MethodFamily)
	assert.Equal(t, "DFT", got.BaseMethod.MethodFamily.Name)

	ssemf := got.SpinStateElectronicStateMethodFamily
	require.NotNil(t, ssemf)
	require.NotNil(t, ssemf.SpinState)
	assert.Equal(t, "U", ssemf.SpinState.Keyword)
	require.NotNil(t, ssemf.ElectronicStateMethodFamily)
	require.NotNil(t, ssemf.ElectronicStateMethodFamily.ElectronicState)
	assert.Equal(t, "Ground State", ssemf.ElectronicStateMethodFamily.ElectronicState.Name)
}

func TestFullMethod_DuplicatePair(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()
	f := seedFixture(t, repos)

	rec := entities.FullMethod{SpinStateElectronicStateMethodFamilyID: f.uGroundDFT.ID, BaseMethodID: f.b3lyp.ID}
	_, err := repos.FullMethods.Create(ctx, &rec)
	require.NoError(t, err)

	again := entities.FullMethod{SpinStateElectronicStateMethodFamilyID: f.uGroundDFT.ID, BaseMethodID: f.b3lyp.ID, Keyword: "Other"}
	_, err = repos.FullMethods.Create(ctx, &again)
	require.ErrorIs(t, err, ErrDuplicateKey)

	var dupErr *DuplicateError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, []string{FieldSpinStateElectronicStateMethodFamilyID, FieldBaseMethodID}, dupErr.Fields)
}

func TestESMF_DuplicateWithNullMethodFamily(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()
	f := seedFixture(t, repos)

	_, err := repos.ElectronicStateMethodFamilies.Create(ctx, &entities.ElectronicStateMethodFamily{ElectronicStateID: f.excited.ID})
	require.NoError(t, err)

	_, err = repos.ElectronicStateMethodFamilies.Create(ctx, &entities.ElectronicStateMethodFamily{ElectronicStateID: f.excited.ID})
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestUpdate_SelfIsNotDuplicate(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()
	f := seedFixture(t, repos)

	esmf := *f.groundDFT
	esmf.DescriptiveName = "Ground-state DFT"
	updated, err := repos.ElectronicStateMethodFamilies.Update(ctx, &esmf)
	require.NoError(t, err)
	assert.Equal(t, "Ground-state DFT", updated.DescriptiveName)
}

func TestUpdate_UnknownAndMissingID(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()

	_, err := repos.SpinStates.Update(ctx, &entities.SpinState{ID: 404, Name: "Ghost", Keyword: "G"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repos.SpinStates.Update(ctx, &entities.SpinState{Name: "Ghost", Keyword: "G"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete_ReferencedAndUnknown(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()
	f := seedFixture(t, repos)

	_, err := repos.MethodFamilies.Delete(ctx, f.dft.ID)
	require.ErrorIs(t, err, ErrReferenced)
	assert.True(t, errors.IsCategory(err, errors.CategoryReference))

	exists, err := repos.MethodFamilies.Exists(ctx, f.dft.ID)
	require.NoError(t, err)
	assert.True(t, exists, "referenced row survives")

	_, err = repos.MethodFamilies.Delete(ctx, 12345)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetAll_Filters(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()
	f := seedFixture(t, repos)

	hf, err := repos.MethodFamilies.Create(ctx, &entities.MethodFamily{Name: "Hartree-Fock", Keyword: "HF"})
	require.NoError(t, err)
	_, err = repos.BaseMethods.Create(ctx, &entities.BaseMethod{Keyword: "HF", MethodFamilyID: hf.ID})
	require.NoError(t, err)

	all, err := repos.BaseMethods.GetAll(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	dftOnly, err := repos.BaseMethods.GetAll(ctx, Filter{MethodFamilyID: &f.dft.ID})
	require.NoError(t, err)
	require.Len(t, dftOnly, 1)
	assert.Equal(t, "B3LYP", dftOnly[0].Keyword)
	require.NotNil(t, dftOnly[0].MethodFamily)

	// filters without a column on the entity are ignored
	spin, err := repos.SpinStates.GetAll(ctx, Filter{MethodFamilyID: &f.dft.ID})
	require.NoError(t, err)
	assert.Len(t, spin, 1)

	byState, err := repos.ElectronicStateMethodFamilies.GetAll(ctx, Filter{ElectronicStateID: &f.excited.ID})
	require.NoError(t, err)
	assert.Empty(t, byState)
}

func TestFindOneAndCount(t *testing.T) {
	t.Parallel()
	repos, _ := newTestRepositories(t)
	ctx := t.Context()
	seedFixture(t, repos)

	bm, err := repos.BaseMethods.FindOne(ctx, "keyword = ?", "B3LYP")
	require.NoError(t, err)
	assert.Equal(t, "DFT", bm.MethodFamily.Name)

	_, err = repos.BaseMethods.FindOne(ctx, "keyword = ?", "PBE0")
	require.ErrorIs(t, err, ErrNotFound)

	n, err := repos.ElectronicStates.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestWithTx_RollbackAndNoEvents(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	pub := &recordingPublisher{}
	repos := New(db, Options{Publisher: pub})
	ctx := t.Context()

	sentinel := errors.NewStd("abort")
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := repos.WithTx(tx)
		if _, err := txRepos.SpinStates.Create(ctx, &entities.SpinState{Name: "Restricted", Keyword: "R"}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	n, err := repos.SpinStates.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, pub.all())
}

func TestRecorder_Statuses(t *testing.T) {
	t.Parallel()
	rec := &recordingRecorder{}
	repos := New(newTestDB(t), Options{Recorder: rec})
	ctx := t.Context()

	_, err := repos.SpinStates.Create(ctx, &entities.SpinState{Name: "Restricted", Keyword: "R"})
	require.NoError(t, err)
	_, err = repos.SpinStates.GetByID(ctx, 999)
	require.Error(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Contains(t, rec.ops, recordedOp{entities.EntitySpinState, "create", "success"})
	assert.Contains(t, rec.ops, recordedOp{entities.EntitySpinState, "get_by_id", "not_found"})
}
