package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	v1 "github.com/qchem/gausscat/internal/api/v1"
	"github.com/qchem/gausscat/internal/buildinfo"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/identity"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/qchem/gausscat/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testSettings() *conf.Settings {
	settings := &conf.Settings{}
	settings.WebServer.Port = 0
	settings.Metrics = conf.MetricsSettings{Enabled: true, Path: "/metrics"}
	settings.Security.SessionSecret = "session"
	settings.Security.AdministratorRole = "Administrator"
	settings.Security.LoginRateLimit = 100
	settings.Security.LoginBurst = 100
	return settings
}

func newTestServer(t *testing.T, settings *conf.Settings) *Server {
	t.Helper()

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
		identity.NewTokenIssuer("secret", "gausscat-test", time.Hour), opts, nil)

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	s, err := New(settings,
		WithStore(store),
		WithRepositories(repos),
		WithIdentity(idsvc),
		WithMetrics(metrics),
		WithBuildInfo(buildinfo.NewContext("1.2.3", "2026-01-01", "abc")),
		WithLogger(logger.NewDiscard()))
	require.NoError(t, err)
	return s
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestConfigFromSettings(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.WebServer = conf.WebServerSettings{Host: "127.0.0.1", Port: 5080, BodyLimit: "2M"}
	config := ConfigFromSettings(settings)

	assert.Equal(t, "127.0.0.1:5080", config.Address())
	assert.Equal(t, "2M", config.BodyLimit)
	assert.Equal(t, DefaultReadTimeout, config.ReadTimeout)
	assert.Empty(t, config.MetricsPath)
	require.NoError(t, config.Validate())

	settings.Metrics.Enabled = true
	assert.Equal(t, DefaultMetricsPath, ConfigFromSettings(settings).MetricsPath)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	config.Port = 70000
	require.Error(t, config.Validate())

	config = DefaultConfig()
	config.MetricsPath = "metrics"
	require.Error(t, config.Validate())

	config = DefaultConfig()
	config.ShutdownTimeout = 0
	require.Error(t, config.Validate())
}

func TestNew_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := New(testSettings(), WithLogger(logger.NewDiscard()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "datastore is required")
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, testSettings())

	rec := serve(s, http.MethodGet, "/api/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.2.3")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))

	rec = serve(s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)

	rec = serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServer_ErrorDispatch(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, testSettings())

	rec := serve(s, http.MethodGet, "/api/v1/Nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, v1.MIMEProblemJSON, rec.Header().Get(echo.HeaderContentType))

	rec = serve(s, http.MethodGet, "/Nothing/Here")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
}

func TestServer_MetricsDisabled(t *testing.T) {
	t.Parallel()
	settings := testSettings()
	settings.Metrics.Enabled = false
	s := newTestServer(t, settings)

	rec := serve(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
