package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	_, err := env.identity.CreateUser(t.Context(), "alice", "alice@example.org", strongPassword)
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/api/v1/Identity/Token",
		fmt.Sprintf(`{"userName":"ALICE","password":%q}`, strongPassword))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[identity.Token](t, rec)
	assert.NotEmpty(t, token.AccessToken)

	rec = env.do(http.MethodPost, "/api/v1/Identity/Token", `{"userName":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MIMEProblemJSON, rec.Header().Get("Content-Type"))
}

func TestIdentityRequiresAdministrator(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/Identity/Users", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/Identity/Users", "", "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := env.tokenFor(t, "bob", false)
	rec = env.doAuth(token, http.MethodGet, "/api/v1/Identity/Users", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := env.tokenFor(t, "root", true)
	rec = env.doAuth(admin, http.MethodGet, "/api/v1/Identity/Users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]UserResponse](t, rec), 2)
}

func TestCreateUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.tokenFor(t, "root", true)

	rec := env.doAuth(admin, http.MethodPost, "/api/v1/Identity/Users",
		`{"userName":"carol","email":"carol@example.org","password":"weak"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[problemBody](t, rec).Errors, "password")

	body := fmt.Sprintf(`{"userName":"carol","email":"carol@example.org","password":%q}`, strongPassword)
	rec = env.doAuth(admin, http.MethodPost, "/api/v1/Identity/Users", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[UserResponse](t, rec)
	assert.Equal(t, "carol", user.UserName)
	assert.Equal(t, "/api/v1/Identity/Users/"+user.ID, rec.Header().Get("Location"))

	rec = env.doAuth(admin, http.MethodPost, "/api/v1/Identity/Users", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUserRolesAndClaims(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.tokenFor(t, "root", true)
	user, err := env.identity.CreateUser(t.Context(), "dave", "", strongPassword)
	require.NoError(t, err)

	rec := env.doAuth(admin, http.MethodPost, "/api/v1/Identity/Roles", `{"name":"Curator"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rolesPath := "/api/v1/Identity/Users/" + user.ID + "/Roles"
	rec = env.doAuth(admin, http.MethodPost, rolesPath, `{"name":"Curator"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Curator"}, decode[[]string](t, rec))

	rec = env.doAuth(admin, http.MethodDelete, rolesPath+"/Curator", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]string](t, rec))

	claimsPath := "/api/v1/Identity/Users/" + user.ID + "/Claims"
	rec = env.doAuth(admin, http.MethodPost, claimsPath, `{"claimType":"lab","claimValue":"north"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "north", decode[ClaimResponse](t, rec).ClaimValue)

	rec = env.doAuth(admin, http.MethodDelete, claimsPath, `{"claimType":"lab","claimValue":"north"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[[]ClaimResponse](t, rec))
}

func TestDeleteOwnAccount(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.tokenFor(t, "root", true)
	self, err := env.identity.FindUserByName(t.Context(), "root")
	require.NoError(t, err)

	rec := env.doAuth(admin, http.MethodDelete, "/api/v1/Identity/Users/"+self.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.doAuth(admin, http.MethodDelete, "/api/v1/Identity/Users/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPasswordChangeRevokesTokens(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.tokenFor(t, "root", true)
	self, err := env.identity.FindUserByName(t.Context(), "root")
	require.NoError(t, err)

	rec := env.doAuth(admin, http.MethodPut, "/api/v1/Identity/Users/"+self.ID+"/Password",
		fmt.Sprintf(`{"currentPassword":%q,"newPassword":"N3w!secret"}`, strongPassword))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = env.doAuth(admin, http.MethodGet, "/api/v1/Identity/Users", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleRemovalAppliesToIssuedTokens(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.tokenFor(t, "root", true)
	self, err := env.identity.FindUserByName(t.Context(), "root")
	require.NoError(t, err)

	rec := env.doAuth(admin, http.MethodGet, "/api/v1/Identity/Users", "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.identity.RemoveFromRole(t.Context(), self.ID, adminRole))

	rec = env.doAuth(admin, http.MethodGet, "/api/v1/Identity/Users", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.doAuth(admin, http.MethodPost, "/api/v1/Identity/Users",
		fmt.Sprintf(`{"userName":"mallory","password":%q}`, strongPassword))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTokenRateLimit(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(s *conf.Settings) {
		s.Security.LoginRateLimit = 0.01
		s.Security.LoginBurst = 1
	})

	body := `{"userName":"nobody","password":"x"}`
	rec := env.do(http.MethodPost, "/api/v1/Identity/Token", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/Identity/Token", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
