package identity

import (
	"testing"
	"time"

	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := t.Context()

	user, err := svc.CreateUser(ctx, " alice ", "Alice@Example.org", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.UserName)
	assert.Equal(t, "ALICE", user.NormalizedUserName)
	assert.Equal(t, "ALICE@EXAMPLE.ORG", user.NormalizedEmail)
	assert.NotEmpty(t, user.SecurityStamp)
	assert.NotEqual(t, strongPassword, user.PasswordHash)

	found, err := svc.FindUserByName(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = svc.CreateUser(ctx, "Alice", "", strongPassword)
	require.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestCreateUser_Validation(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.CreateUser(t.Context(), "bob", "", "weak")
	require.ErrorIs(t, err, ErrValidation)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.NotEmpty(t, fe.FieldErrors()[FieldPassword])

	_, err = svc.CreateUser(t.Context(), "  ", "", strongPassword)
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.FieldErrors(), FieldUserName)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := t.Context()

	user, err := svc.CreateUser(ctx, "carol", "", strongPassword)
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, user.ID, "Caroline", "c@example.org")
	require.NoError(t, err)
	assert.Equal(t, "Caroline", updated.UserName)
	assert.Equal(t, "CAROLINE", updated.NormalizedUserName)
	assert.Equal(t, user.PasswordHash, updated.PasswordHash)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))
	_, err = svc.FindUserByID(ctx, user.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, svc.DeleteUser(ctx, user.ID), repository.ErrNotFound)
	_, err = svc.UpdateUser(ctx, user.ID, "x", "")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := t.Context()

	user, err := svc.CreateUser(ctx, "dave", "", strongPassword)
	require.NoError(t, err)
	_, err = svc.CreateRole(ctx, "Administrator")
	require.NoError(t, err)
	require.NoError(t, svc.AddToRole(ctx, user.ID, "administrator"))

	tok, err := svc.Authenticate(ctx, "DAVE", strongPassword)
	require.NoError(t, err)

	p, err := svc.ValidateToken(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)
	assert.True(t, p.HasRole("Administrator"))

	_, err = svc.Authenticate(ctx, "nobody", strongPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, errors.IsCategory(err, errors.CategoryAuthentication))

	_, err = svc.Authenticate(ctx, "dave", "Wrong1!x")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword_RotatesStamp(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := t.Context()

	user, err := svc.CreateUser(ctx, "erin", "", strongPassword)
	require.NoError(t, err)
	tok, err := svc.Authenticate(ctx, "erin", strongPassword)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "Wrong1!x", "N3w!pass")
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.FieldErrors(), FieldCurrentPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, strongPassword, "N3w!pass"))

	_, err = svc.ValidateToken(ctx, tok.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Authenticate(ctx, "erin", strongPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "erin", "N3w!pass")
	require.NoError(t, err)
}

func TestValidateToken_ReloadsRoles(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := t.Context()

	user, err := svc.CreateUser(ctx, "ivy", "", strongPassword)
	require.NoError(t, err)
	admin, err := svc.EnsureRole(ctx, "Administrator")
	require.NoError(t, err)
	_, err = svc.EnsureRole(ctx, "Curator")
	require.NoError(t, err)
	require.NoError(t, svc.AddToRole(ctx, user.ID, "Administrator"))
	require.NoError(t, svc.AddToRole(ctx, user.ID, "Curator"))
	tok, err := svc.Authenticate(ctx, "ivy", strongPassword)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFromRole(ctx, user.ID, "Curator"))
	p, err := svc.ValidateToken(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.True(t, p.HasRole("Administrator"))
	assert.False(t, p.HasRole("Curator"))

	require.NoError(t, svc.DeleteRole(ctx, admin.ID))
	p, err = svc.ValidateToken(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.False(t, p.HasRole("Administrator"))
}

func TestCheckPassword_Lockout(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := t.Context()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.CreateUser(ctx, "frank", "", strongPassword)
	require.NoError(t, err)

	for range 2 {
		_, err = svc.Authenticate(ctx, "frank", "Wrong1!x")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	user, err := svc.FindUserByName(ctx, "frank")
	require.NoError(t, err)
	assert.Equal(t, 2, user.AccessFailedCount)

	_, err = svc.Authenticate(ctx, "frank", "Wrong1!x")
	require.ErrorIs(t, err, ErrLockedOut)

	_, err = svc.Authenticate(ctx, "frank", strongPassword)
	require.ErrorIs(t, err, ErrLockedOut, "correct password is rejected while locked out")

	now = now.Add(6 * time.Minute)
	_, err = svc.Authenticate(ctx, "frank", strongPassword)
	require.NoError(t, err)

	user, err = svc.FindUserByName(ctx, "frank")
	require.NoError(t, err)
	assert.Zero(t, user.AccessFailedCount)
	assert.Nil(t, user.LockoutEnd)
}

func TestResetPassword_ClearsLockout(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := t.Context()

	user, err := svc.CreateUser(ctx, "gina", "", strongPassword)
	require.NoError(t, err)
	for range 3 {
		_, _ = svc.Authenticate(ctx, "gina", "Wrong1!x")
	}
	_, err = svc.Authenticate(ctx, "gina", strongPassword)
	require.ErrorIs(t, err, ErrLockedOut)

	require.NoError(t, svc.ResetPassword(ctx, user.ID, "R3set!pw"))
	_, err = svc.Authenticate(ctx, "gina", "R3set!pw")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ResetPassword(ctx, user.ID, "weak"), ErrValidation)
}

func TestRoles(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := t.Context()

	role, err := svc.CreateRole(ctx, "Editor")
	require.NoError(t, err)
	_, err = svc.CreateRole(ctx, "editor")
	require.ErrorIs(t, err, repository.ErrDuplicateKey)

	ensured, err := svc.EnsureRole(ctx, "EDITOR")
	require.NoError(t, err)
	assert.Equal(t, role.ID, ensured.ID)

	renamed, err := svc.UpdateRole(ctx, role.ID, "Curator")
	require.NoError(t, err)
	assert.Equal(t, "CURATOR", renamed.NormalizedName)

	user, err := svc.CreateUser(ctx, "hank", "", strongPassword)
	require.NoError(t, err)
	require.NoError(t, svc.AddToRole(ctx, user.ID, "Curator"))
	require.ErrorIs(t, svc.AddToRole(ctx, user.ID, "Curator"), repository.ErrDuplicateKey)
	require.ErrorIs(t, svc.AddToRole(ctx, user.ID, "Missing"), repository.ErrNotFound)

	roles, err := svc.GetRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Curator"}, roles)

	require.NoError(t, svc.RemoveFromRole(ctx, user.ID, "curator"))
	require.ErrorIs(t, svc.RemoveFromRole(ctx, user.ID, "curator"), repository.ErrNotFound)

	require.NoError(t, svc.AddToRole(ctx, user.ID, "Curator"))
	require.NoError(t, svc.DeleteRole(ctx, role.ID))
	roles, err = svc.GetRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)

	list, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.UpdateRole(ctx, role.ID, "Again")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClaims(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := t.Context()

	user, err := svc.CreateUser(ctx, "ivy", "", strongPassword)
	require.NoError(t, err)
	role, err := svc.CreateRole(ctx, "Reviewer")
	require.NoError(t, err)

	_, err = svc.AddUserClaim(ctx, user.ID, "department", "chemistry")
	require.NoError(t, err)
	_, err = svc.AddUserClaim(ctx, user.ID, " ", "x")
	require.ErrorIs(t, err, ErrValidation)

	claims, err := svc.GetUserClaims(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "department", claims[0].ClaimType)

	require.NoError(t, svc.RemoveUserClaim(ctx, user.ID, "department", "chemistry"))
	require.ErrorIs(t, svc.RemoveUserClaim(ctx, user.ID, "department", "chemistry"), repository.ErrNotFound)

	_, err = svc.AddRoleClaim(ctx, role.ID, "scope", "catalogue.write")
	require.NoError(t, err)
	roleClaims, err := svc.GetRoleClaims(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, roleClaims, 1)
	require.NoError(t, svc.RemoveRoleClaim(ctx, role.ID, "scope", "catalogue.write"))

	_, err = svc.GetUserClaims(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.GetRoleClaims(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
