package datastore

import (
	"testing"

	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTransferSource(t *testing.T, store *Store) {
	t.Helper()
	db := store.DB()

	family := entities.MethodFamily{ID: 7, Name: "DFT", DescriptiveName: "Density functional theory"}
	require.NoError(t, db.Create(&family).Error)
	require.NoError(t, db.Create(&entities.BaseMethod{ID: 3, Keyword: "B3LYP", MethodFamilyID: 7}).Error)
	require.NoError(t, db.Create(&entities.ElectronicState{ID: 1, Name: "Ground state"}).Error)
	require.NoError(t, db.Create(&entities.SpinState{ID: 2, Name: "Unrestricted", Keyword: "U"}).Error)
	familyID := family.ID
	require.NoError(t, db.Create(&entities.ElectronicStateMethodFamily{
		ID: 4, Name: "Ground state DFT", ElectronicStateID: 1, MethodFamilyID: &familyID,
	}).Error)
	spinID := uint(2)
	require.NoError(t, db.Create(&entities.SpinStateElectronicStateMethodFamily{
		ID: 5, Name: "Unrestricted ground state DFT", Keyword: "U", SpinStateID: &spinID, ElectronicStateMethodFamilyID: 4,
	}).Error)
	require.NoError(t, db.Create(&entities.FullMethod{
		ID: 9, Keyword: "UB3LYP", SpinStateElectronicStateMethodFamilyID: 5, BaseMethodID: 3,
	}).Error)

	require.NoError(t, db.Create(&entities.User{
		ID: "u-1", UserName: "alice", NormalizedUserName: "ALICE", PasswordHash: "x", SecurityStamp: "s",
	}).Error)
	require.NoError(t, db.Model(&entities.User{}).Where("id = ?", "u-1").Update("lockout_enabled", false).Error)
	require.NoError(t, db.Create(&entities.Role{ID: "r-1", Name: "Administrator", NormalizedName: "ADMINISTRATOR"}).Error)
	require.NoError(t, db.Create(&entities.UserRole{UserID: "u-1", RoleID: "r-1"}).Error)
}

func TestTransfer_CopiesEveryTableKeepingKeys(t *testing.T) {
	t.Parallel()

	src := openMemory(t)
	dst, err := Open(memorySettings(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dst.Close() })

	seedTransferSource(t, src)

	stats, err := Transfer(t.Context(), src, dst, TransferOptions{BatchSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.Copied())
	assert.Len(t, stats.Tables, len(entities.All()))

	var fm entities.FullMethod
	require.NoError(t, dst.DB().First(&fm, 9).Error)
	assert.Equal(t, "UB3LYP", fm.Keyword)
	assert.Equal(t, uint(5), fm.SpinStateElectronicStateMethodFamilyID)

	var user entities.User
	require.NoError(t, dst.DB().First(&user, "id = ?", "u-1").Error)
	assert.False(t, user.LockoutEnabled)

	mismatches, err := VerifyTransfer(t.Context(), src, dst)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestTransfer_ResumesWithoutDuplicates(t *testing.T) {
	t.Parallel()

	src := openMemory(t)
	dst := openMemory(t)
	seedTransferSource(t, src)

	_, err := Transfer(t.Context(), src, dst, TransferOptions{})
	require.NoError(t, err)

	again, err := Transfer(t.Context(), src, dst, TransferOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.Copied())
	for _, table := range again.Tables {
		assert.Equal(t, table.Source, table.Skipped, table.Table)
	}
}

func TestTransfer_CleanReplacesTargetRows(t *testing.T) {
	t.Parallel()

	src := openMemory(t)
	dst := openMemory(t)
	seedTransferSource(t, src)
	require.NoError(t, dst.DB().Create(&entities.CalculationType{ID: 1, Name: "Optimization", Keyword: "Opt"}).Error)

	mismatches, err := VerifyTransfer(t.Context(), src, dst)
	require.NoError(t, err)
	assert.NotEmpty(t, mismatches)

	_, err = Transfer(t.Context(), src, dst, TransferOptions{Clean: true})
	require.NoError(t, err)

	var count int64
	require.NoError(t, dst.DB().Model(&entities.CalculationType{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
