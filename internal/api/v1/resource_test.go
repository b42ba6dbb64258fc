package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type problemBody struct {
	Type    string              `json:"type"`
	Title   string              `json:"title"`
	Status  int                 `json:"status"`
	Detail  string              `json:"detail"`
	TraceID string              `json:"traceId"`
	Errors  map[string][]string `json:"errors"`
}

func createFamily(t *testing.T, env *testEnv, name string) models.MethodFamilyRecord {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/v1/MethodFamily", fmt.Sprintf(`{"name":%q,"keyword":""}`, name))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.MethodFamilyRecord](t, rec)
}

func TestCalculationTypeLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/CalculationType", `{"name":" Single Point ","keyword":"SP"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.CalculationTypeRecord](t, rec)
	assert.Equal(t, "Single Point", created.Name)
	assert.Equal(t, fmt.Sprintf("/api/v1/CalculationType/%d", created.ID), rec.Header().Get(echo.HeaderLocation))

	rec = env.do(http.MethodGet, fmt.Sprintf("/api/v1/CalculationType/%d", created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[models.CalculationTypeRecord](t, rec))

	rec = env.do(http.MethodPut, fmt.Sprintf("/api/v1/CalculationType/%d", created.ID),
		fmt.Sprintf(`{"id":%d,"name":"Single Point","keyword":"SP","description":"energy only"}`, created.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "energy only", decode[models.CalculationTypeRecord](t, rec).Description)

	rec = env.do(http.MethodGet, "/api/v1/CalculationType/Simple", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Simple{{ID: created.ID, Name: "Single Point"}}, decode[[]models.Simple](t, rec))

	rec = env.do(http.MethodDelete, fmt.Sprintf("/api/v1/CalculationType/%d", created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "energy only", decode[models.CalculationTypeRecord](t, rec).Description)

	rec = env.do(http.MethodGet, fmt.Sprintf("/api/v1/CalculationType/%d", created.ID), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MIMEProblemJSON, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, http.StatusNotFound, decode[problemBody](t, rec).Status)
}

func TestUpdateIDMismatch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	family := createFamily(t, env, "DFT")

	rec := env.do(http.MethodPut, fmt.Sprintf("/api/v1/MethodFamily/%d", family.ID),
		fmt.Sprintf(`{"id":%d,"name":"DFT"}`, family.ID+1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, IDMismatchMessage, rec.Body.String())
}

func TestUpdateUnknownID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPut, "/api/v1/MethodFamily/42", `{"id":42,"name":"DFT"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/MethodFamily/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/CalculationType", `{"name":"","keyword":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MIMEProblemJSON, rec.Header().Get(echo.HeaderContentType))

	problem := decode[problemBody](t, rec)
	assert.Equal(t, validationTitle, problem.Title)
	assert.Contains(t, problem.Errors, "name")
	assert.Contains(t, problem.Errors, "keyword")
}

func TestCreateRejectsID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/SpinState", `{"id":5,"name":"Singlet","keyword":"1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[problemBody](t, rec).Errors, "id")
}

func TestMalformedBody(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/SpinState", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[problemBody](t, rec).Errors, "$")
}

func TestInvalidRouteAndQueryValues(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/SpinState/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"The value 'abc' is not valid."}, decode[problemBody](t, rec).Errors["id"])

	rec = env.do(http.MethodGet, "/api/v1/BaseMethod?methodFamilyId=x", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[problemBody](t, rec).Errors, "methodFamilyId")
}

func TestDuplicateConflict(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	createFamily(t, env, "DFT")

	rec := env.do(http.MethodPost, "/api/v1/MethodFamily", `{"name":"DFT"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestMissingReference(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/BaseMethod", `{"keyword":"B3LYP","methodFamilyId":99}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"The methodFamilyId 99 does not exist."},
		decode[problemBody](t, rec).Errors["methodFamilyId"])
}

func TestDeleteReferencedConflict(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	family := createFamily(t, env, "DFT")

	rec := env.do(http.MethodPost, "/api/v1/BaseMethod",
		fmt.Sprintf(`{"keyword":"B3LYP","methodFamilyId":%d}`, family.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodDelete, fmt.Sprintf("/api/v1/MethodFamily/%d", family.ID), "")
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestBaseMethodProjectionsAndFilter(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	dft := createFamily(t, env, "DFT")
	hf := createFamily(t, env, "Hartree-Fock")

	for _, body := range []string{
		fmt.Sprintf(`{"keyword":"B3LYP","descriptiveName":"Becke three parameter","methodFamilyId":%d}`, dft.ID),
		fmt.Sprintf(`{"keyword":"PBE0","methodFamilyId":%d}`, dft.ID),
		fmt.Sprintf(`{"keyword":"HF","methodFamilyId":%d}`, hf.ID),
	} {
		rec := env.do(http.MethodPost, "/api/v1/BaseMethod", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(http.MethodGet, fmt.Sprintf("/api/v1/BaseMethod?methodFamilyId=%d", dft.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	full := decode[[]models.BaseMethodFull](t, rec)
	require.Len(t, full, 2)
	assert.Equal(t, "B3LYP", full[0].Keyword)
	require.NotNil(t, full[0].MethodFamily)
	assert.Equal(t, "DFT", full[0].MethodFamily.Name)

	rec = env.do(http.MethodGet, "/api/v1/BaseMethod/Intermediate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	intermediate := decode[[]models.BaseMethodIntermediate](t, rec)
	require.Len(t, intermediate, 3)
	require.NotNil(t, intermediate[2].MethodFamily)
	assert.Equal(t, models.Simple{ID: hf.ID, Name: "Hartree-Fock"}, *intermediate[2].MethodFamily)

	rec = env.do(http.MethodGet, "/api/v1/BaseMethod/List", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.BaseMethodRecord](t, rec), 3)
}

func TestWritesRequireAuth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(s *conf.Settings) { s.Security.RequireAuthForWrites = true })

	rec := env.do(http.MethodPost, "/api/v1/SpinState", `{"name":"Singlet","keyword":"1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/SpinState", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	token := env.tokenFor(t, "chemist", false)
	rec = env.doAuth(token, http.MethodPost, "/api/v1/SpinState", `{"name":"Singlet","keyword":"1"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
}

type mockSpinStates struct {
	mock.Mock
}

func (m *mockSpinStates) Entity() string { return entities.EntitySpinState }

func (m *mockSpinStates) GetAll(ctx context.Context, filter repository.Filter) ([]entities.SpinState, error) {
	args := m.Called(ctx, filter)
	rows, _ := args.Get(0).([]entities.SpinState)
	return rows, args.Error(1)
}

func (m *mockSpinStates) GetByID(ctx context.Context, id uint) (*entities.SpinState, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*entities.SpinState)
	return rec, args.Error(1)
}

func (m *mockSpinStates) FindOne(ctx context.Context, query string, args ...any) (*entities.SpinState, error) {
	return nil, repository.ErrNotFound
}

func (m *mockSpinStates) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockSpinStates) Exists(ctx context.Context, id uint) (bool, error) { return false, nil }

func (m *mockSpinStates) Create(ctx context.Context, rec *entities.SpinState) (*entities.SpinState, error) {
	return rec, nil
}

func (m *mockSpinStates) Update(ctx context.Context, rec *entities.SpinState) (*entities.SpinState, error) {
	return rec, nil
}

func (m *mockSpinStates) Delete(ctx context.Context, id uint) (*entities.SpinState, error) {
	return nil, repository.ErrNotFound
}

func (m *mockSpinStates) WithTx(_ *gorm.DB) repository.Repository[entities.SpinState] { return m }

func TestRepositoryFailureIsInternalError(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	repo := &mockSpinStates{}
	repo.On("GetAll", mock.Anything, mock.Anything).Return(nil, errors.New("disk I/O error"))
	NewResource[entities.SpinState, models.SpinStateAPI](env.ctrl, repo, models.SpinStateMapper).
		Register(env.e.Group("/broken"))

	rec := env.do(http.MethodGet, "/broken/SpinState", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	problem := decode[problemBody](t, rec)
	assert.Equal(t, "An error occurred while processing your request.", problem.Title)
	assert.Equal(t, "disk I/O error", problem.Detail)
	repo.AssertExpectations(t)
}
