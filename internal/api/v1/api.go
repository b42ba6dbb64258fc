// internal/api/v1/api.go
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/api/auth"
	"github.com/qchem/gausscat/internal/buildinfo"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/identity"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/qchem/gausscat/internal/observability"
)

// Prefix is the mount point of the JSON API.
const Prefix = "/api/v1"

// HealthChecker reports database reachability.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Dialect() string
}

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	Repos    *repository.Repositories
	Identity *identity.Service
	Settings *conf.Settings

	store     HealthChecker
	build     *buildinfo.Context
	metrics   *observability.Metrics
	auth      *auth.Middleware
	log       logger.Logger
	prefix    string
	startTime time.Time
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithHealthChecker sets the database used by the health endpoint.
func WithHealthChecker(store HealthChecker) Option {
	return func(c *Controller) {
		c.store = store
	}
}

// WithBuildInfo sets the build metadata reported by the health endpoint.
func WithBuildInfo(build *buildinfo.Context) Option {
	return func(c *Controller) {
		c.build = build
	}
}

// WithMetrics records token checks in the shared metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithLogger overrides the api logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// GetLogger returns the api package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("api")
}

// New creates the API controller and registers its routes on e.
func New(e *echo.Echo, repos *repository.Repositories, idsvc *identity.Service, settings *conf.Settings, opts ...Option) (*Controller, error) {
	if repos == nil {
		return nil, fmt.Errorf("api: repositories are required")
	}
	if idsvc == nil {
		return nil, fmt.Errorf("api: identity service is required")
	}
	if settings == nil {
		return nil, fmt.Errorf("api: settings are required")
	}

	c := &Controller{
		Echo:      e,
		Repos:     repos,
		Identity:  idsvc,
		Settings:  settings,
		prefix:    Prefix,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = GetLogger()
	}

	var recorder auth.AuthRecorder
	if c.metrics != nil {
		recorder = c.metrics.HTTP
	}
	c.auth = auth.NewMiddleware(idsvc, recorder, c.log.Module("auth"))

	c.Group = e.Group(c.prefix)
	c.initRoutes()

	c.log.Info("API routes initialized",
		logger.String("prefix", c.prefix),
		logger.Bool("require_auth_for_writes", settings.Security.RequireAuthForWrites))
	return c, nil
}

func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)
	c.initCatalogueRoutes()
	c.initIdentityRoutes()
}

// writeGuard returns the middleware protecting catalogue writes.
func (c *Controller) writeGuard() []echo.MiddlewareFunc {
	if !c.Settings.Security.RequireAuthForWrites {
		return nil
	}
	return []echo.MiddlewareFunc{c.auth.Authenticate}
}

// AuthMiddleware exposes bearer authentication to other route groups.
func (c *Controller) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return c.auth.Authenticate(next)
}
