package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/identity"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminRole      = "Administrator"
	strongPassword = "Secr3t!pw"
)

type testEnv struct {
	e        *echo.Echo
	ctrl     *Controller
	repos    *repository.Repositories
	identity *identity.Service
	settings *conf.Settings
}

func testSettings() *conf.Settings {
	s := &conf.Settings{}
	s.Security = conf.SecuritySettings{
		RequireAuthForWrites: false,
		AdministratorRole:    adminRole,
		LoginRateLimit:       1000,
		LoginBurst:           1000,
		Password: conf.PasswordPolicy{
			RequiredLength:         6,
			RequireDigit:           true,
			RequireLowercase:       true,
			RequireUppercase:       true,
			RequireNonAlphanumeric: true,
		},
		Lockout: conf.LockoutSettings{MaxFailedAccessAttempts: 5, Duration: 5 * time.Minute},
	}
	return s
}

func newTestEnv(t *testing.T, mutate ...func(*conf.Settings)) *testEnv {
	t.Helper()

	settings := testSettings()
	for _, m := range mutate {
		m(settings)
	}

	store, err := datastore.Open(&conf.DatabaseSettings{
		Type:   conf.DatabaseSQLite,
		SQLite: conf.SQLiteSettings{Path: ":memory:"},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(t.Context()))

	repos := repository.New(store.DB(), repository.Options{})
	opts := identity.OptionsFromSettings(&settings.Security)
	opts.BcryptCost = bcrypt.MinCost
	idsvc := identity.New(repos.Users, repos.Roles,
		identity.NewTokenIssuer("test-secret", "gausscat-test", time.Hour), opts, nil)

	e := echo.New()
	ctrl, err := New(e, repos, idsvc, settings,
		WithHealthChecker(store),
		WithLogger(logger.NewDiscard()))
	require.NoError(t, err)
	e.HTTPErrorHandler = ctrl.HTTPErrorHandler

	return &testEnv{e: e, ctrl: ctrl, repos: repos, identity: idsvc, settings: settings}
}

// do sends a request. headers alternate name, value.
func (env *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doAuth(token, method, path, body string) *httptest.ResponseRecorder {
	return env.do(method, path, body, echo.HeaderAuthorization, "Bearer "+token)
}

// tokenFor creates a user, optionally in the admin role, and signs it in.
func (env *testEnv) tokenFor(t *testing.T, userName string, admin bool) string {
	t.Helper()
	ctx := t.Context()
	user, err := env.identity.CreateUser(ctx, userName, userName+"@example.org", strongPassword)
	require.NoError(t, err)
	if admin {
		_, err = env.identity.EnsureRole(ctx, adminRole)
		require.NoError(t, err)
		require.NoError(t, env.identity.AddToRole(ctx, user.ID, adminRole))
	}
	token, err := env.identity.Authenticate(ctx, userName, strongPassword)
	require.NoError(t, err)
	return token.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
