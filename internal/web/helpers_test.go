package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
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

const strongPassword = "Secr3t!pw"

type testEnv struct {
	e        *echo.Echo
	h        *Handler
	repos    *repository.Repositories
	identity *identity.Service
}

func newTestEnv(t *testing.T, requireLogin bool) *testEnv {
	t.Helper()

	settings := &conf.Settings{}
	settings.Security = conf.SecuritySettings{
		RequireAuthForWrites: requireLogin,
		AdministratorRole:    "Administrator",
		SessionSecret:        "test-session-secret",
		LoginRateLimit:       1000,
		LoginBurst:           1000,
		Password: conf.PasswordPolicy{
			RequiredLength:         6,
			RequireDigit:           true,
			RequireLowercase:       true,
			RequireUppercase:       true,
			RequireNonAlphanumeric: true,
		},
		Lockout: conf.LockoutSettings{MaxFailedAccessAttempts: 3, Duration: 5 * time.Minute},
	}
	settings.Cache.LookupTTL = time.Minute

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

	h, err := New(repos, idsvc, settings, WithLogger(logger.NewDiscard()))
	require.NoError(t, err)

	e := echo.New()
	h.Register(e)
	e.HTTPErrorHandler = h.HTTPErrorHandler

	return &testEnv{e: e, h: h, repos: repos, identity: idsvc}
}

func (env *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// post submits a same-origin form.
func (env *testEnv) post(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set(echo.HeaderSecFetchSite, "same-origin")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
