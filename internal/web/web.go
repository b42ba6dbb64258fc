// Package web serves the HTML pages of the catalogue: a table, details,
// create, edit and delete view per entity, plus cookie based sign-in.
package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/qchem/gausscat/internal/api/middleware"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/factory"
	"github.com/qchem/gausscat/internal/identity"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/qchem/gausscat/internal/models"
)

// Handler owns the page routes.
type Handler struct {
	repos    *repository.Repositories
	identity *identity.Service
	settings *conf.Settings

	sessions sessions.Store
	lookups  *LookupCache
	forms    *factory.Factory[*FormViewModel]
	renderer *TemplateRenderer
	sections []section
	log      logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger overrides the web logger.
func WithLogger(log logger.Logger) Option {
	return func(h *Handler) {
		h.log = log
	}
}

// WithSessionStore replaces the cookie store built from the settings.
func WithSessionStore(store sessions.Store) Option {
	return func(h *Handler) {
		h.sessions = store
	}
}

// WithLookupCache shares a lookup cache, e.g. one whose Publisher feeds the repositories.
func WithLookupCache(cache *LookupCache) Option {
	return func(h *Handler) {
		h.lookups = cache
	}
}

// GetLogger returns the web package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("web")
}

// New creates the page handler.
func New(repos *repository.Repositories, idsvc *identity.Service, settings *conf.Settings, opts ...Option) (*Handler, error) {
	if repos == nil || idsvc == nil || settings == nil {
		return nil, fmt.Errorf("web: repositories, identity service and settings are required")
	}

	h := &Handler{repos: repos, identity: idsvc, settings: settings}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = GetLogger()
	}
	if h.sessions == nil {
		h.sessions = NewSessionStore(&settings.Security)
	}
	if h.lookups == nil {
		h.lookups = NewLookupCache(settings.Cache.LookupTTL, h.log.Module("lookups"))
	}

	renderer, err := NewRenderer(h.log)
	if err != nil {
		return nil, err
	}
	h.renderer = renderer
	h.forms = factory.New(newFormViewModel, h.log.Module("factory"))

	h.initLookups()
	h.initSections()
	return h, nil
}

// Lookups returns the dropdown cache.
func (h *Handler) Lookups() *LookupCache { return h.lookups }

func (h *Handler) initLookups() {
	r := h.repos
	registerRepository(h.lookups, r.CalculationTypes, models.CalculationTypeMapper.Simple)
	registerRepository(h.lookups, r.SpinStates, models.SpinStateMapper.Simple)
	registerRepository(h.lookups, r.ElectronicStates, models.ElectronicStateMapper.Simple)
	registerRepository(h.lookups, r.MethodFamilies, models.MethodFamilyMapper.Simple)
	registerRepository(h.lookups, r.BaseMethods, models.BaseMethodMapper.Simple)
	registerRepository(h.lookups, r.ElectronicStateMethodFamilies, models.ElectronicStateMethodFamilyMapper.Simple)
	registerRepository(h.lookups, r.SpinStateElectronicStateMethodFamilies, models.SpinStateElectronicStateMethodFamilyMapper.Simple)
	registerRepository(h.lookups, r.FullMethods, models.FullMethodMapper.Simple)
}

func (h *Handler) initSections() {
	r := h.repos
	h.sections = []section{
		NewPage(h, calculationTypeSection, r.CalculationTypes, models.CalculationTypeMapper, models.CalculationTypeFromEntity),
		NewPage(h, spinStateSection, r.SpinStates, models.SpinStateMapper, models.SpinStateFromEntity),
		NewPage(h, electronicStateSection, r.ElectronicStates, models.ElectronicStateMapper, models.ElectronicStateFromEntity),
		NewPage(h, methodFamilySection, r.MethodFamilies, models.MethodFamilyMapper, models.MethodFamilyFromEntity),
		NewPage(h, baseMethodSection, r.BaseMethods, models.BaseMethodMapper, models.BaseMethodFromEntity),
		NewPage(h, esmfSection, r.ElectronicStateMethodFamilies, models.ElectronicStateMethodFamilyMapper,
			models.ElectronicStateMethodFamilyFromEntity),
		NewPage(h, ssemfSection, r.SpinStateElectronicStateMethodFamilies, models.SpinStateElectronicStateMethodFamilyMapper,
			models.SpinStateElectronicStateMethodFamilyFromEntity),
		NewPage(h, fullMethodSection, r.FullMethods, models.FullMethodMapper, models.FullMethodFromEntity),
	}
}

// Register mounts the pages on e and installs the template renderer.
func (h *Handler) Register(e *echo.Echo) {
	e.Renderer = h.renderer

	sec := h.settings.Security
	csrf := middleware.NewCSRF(&middleware.CSRFConfig{CookieSecure: sec.CookieSecure})

	var guard echo.MiddlewareFunc
	if sec.RequireAuthForWrites {
		guard = h.RequireLogin
	}

	e.GET("/", h.Home, csrf)
	e.GET("/Home", h.Home, csrf)

	account := e.Group("/Account", csrf)
	account.GET("/Login", h.LoginForm)
	account.POST("/Login", h.Login, middleware.NewRateLimiter(sec.LoginRateLimit, sec.LoginBurst))
	account.POST("/Logout", h.Logout)

	for _, s := range h.sections {
		s.register(e, guard, csrf)
	}

	h.log.Info("page routes initialized",
		logger.Int("sections", len(h.sections)),
		logger.Bool("require_login", sec.RequireAuthForWrites))
}

func (h *Handler) pageData(c echo.Context, title string) PageData {
	infos := make([]SectionInfo, 0, len(h.sections))
	for _, s := range h.sections {
		infos = append(infos, s.Info())
	}
	return PageData{
		Title:        title,
		User:         h.userName(c),
		CSRF:         middleware.CSRFToken(c),
		Sections:     infos,
		RequireLogin: h.settings.Security.RequireAuthForWrites,
	}
}

// Home lists the sections with their row counts.
func (h *Handler) Home(c echo.Context) error {
	counts := make([]SectionCount, len(h.sections))
	g, _ := errgroup.WithContext(c.Request().Context())
	for i, s := range h.sections {
		g.Go(func() error {
			n, err := s.count(c)
			if err != nil {
				return err
			}
			counts[i] = SectionCount{SectionInfo: s.Info(), Count: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return c.Render(http.StatusOK, "home", HomeViewModel{
		PageData: h.pageData(c, "Catalogue"),
		Counts:   counts,
	})
}

// HTTPErrorHandler renders errors of page routes as HTML.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "An error occurred while processing your request."

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		message = fmt.Sprint(httpErr.Message)
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
		message = "The requested record was not found."
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("page request failed",
			logger.String("method", c.Request().Method),
			logger.String("path", c.Request().URL.Path),
			logger.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}

	vm := ErrorViewModel{
		PageData:  h.pageData(c, http.StatusText(status)),
		Status:    status,
		Message:   message,
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
	}
	if renderErr := c.Render(status, "error", vm); renderErr != nil {
		_ = c.String(status, message)
	}
}
