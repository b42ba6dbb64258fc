package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	mw "github.com/qchem/gausscat/internal/api/middleware"
	v1 "github.com/qchem/gausscat/internal/api/v1"
	"github.com/qchem/gausscat/internal/buildinfo"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/identity"
	"github.com/qchem/gausscat/internal/logger"
	"github.com/qchem/gausscat/internal/observability"
	"github.com/qchem/gausscat/internal/web"
)

// Server is the gausscat HTTP server.
type Server struct {
	echo     *echo.Echo
	config   *Config
	settings *conf.Settings
	log      logger.Logger

	// Dependencies
	store    *datastore.Store
	repos    *repository.Repositories
	identity *identity.Service
	metrics  *observability.Metrics
	build    *buildinfo.Context
	lookups  *web.LookupCache

	apiController *v1.Controller
	pages         *web.Handler

	// Lifecycle management
	wg        sync.WaitGroup
	startTime time.Time
	errCh     chan error
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithStore sets the database. Required.
func WithStore(store *datastore.Store) ServerOption {
	return func(s *Server) {
		s.store = store
	}
}

// WithRepositories sets the repositories. Defaults to repositories over
// the store without change events.
func WithRepositories(repos *repository.Repositories) ServerOption {
	return func(s *Server) {
		s.repos = repos
	}
}

// WithIdentity sets the identity service. Required.
func WithIdentity(idsvc *identity.Service) ServerOption {
	return func(s *Server) {
		s.identity = idsvc
	}
}

// WithMetrics sets the observability metrics for the server.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithBuildInfo sets the version reported by the health endpoint.
func WithBuildInfo(build *buildinfo.Context) ServerOption {
	return func(s *Server) {
		s.build = build
	}
}

// WithLookupCache shares the page lookup cache, typically the one whose
// Publisher wraps the repositories' change events.
func WithLookupCache(cache *web.LookupCache) ServerOption {
	return func(s *Server) {
		s.lookups = cache
	}
}

// WithLogger overrides the server logger.
func WithLogger(log logger.Logger) ServerOption {
	return func(s *Server) {
		s.log = log
	}
}

// New creates a new HTTP server with the given settings and options.
func New(settings *conf.Settings, opts ...ServerOption) (*Server, error) {
	config := ConfigFromSettings(settings)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	s := &Server{
		config:    config,
		settings:  settings,
		startTime: time.Now(),
		errCh:     make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = GetLogger()
	}
	if s.store == nil {
		return nil, fmt.Errorf("server: datastore is required")
	}
	if s.identity == nil {
		return nil, fmt.Errorf("server: identity service is required")
	}
	if s.repos == nil {
		s.repos = repository.New(s.store.DB(), repository.Options{})
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = config.Debug
	s.echo.Logger = logger.NewEchoLoggerAdapter(s.log.Module("echo"))

	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	s.echo.HTTPErrorHandler = s.handleError

	s.log.Info("HTTP server initialized",
		logger.String("address", config.Address()),
		logger.String("database", s.store.Dialect()),
		logger.Bool("metrics", config.MetricsPath != ""),
		logger.Bool("debug", config.Debug))

	return s, nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())

	s.echo.Use(mw.NewCorrelationID())

	var recorder mw.RequestRecorder
	if s.metrics != nil {
		recorder = s.metrics.HTTP
	}
	metricsPath := s.config.MetricsPath
	s.echo.Use(mw.NewRequestLoggerWithSkipper(s.log.Module("http"), recorder, func(c echo.Context) bool {
		return metricsPath != "" && c.Request().URL.Path == metricsPath
	}))

	securityConfig := mw.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = s.config.AllowedOrigins

	s.echo.Use(mw.NewCORS(securityConfig))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewGzip(metricsPath))
	s.echo.Use(mw.NewSecureHeaders(securityConfig))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	apiOpts := []v1.Option{
		v1.WithHealthChecker(s.store),
		v1.WithLogger(s.log.Module("api")),
	}
	if s.build != nil {
		apiOpts = append(apiOpts, v1.WithBuildInfo(s.build))
	}
	if s.metrics != nil {
		apiOpts = append(apiOpts, v1.WithMetrics(s.metrics))
	}
	apiController, err := v1.New(s.echo, s.repos, s.identity, s.settings, apiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize API v1: %w", err)
	}
	s.apiController = apiController

	webOpts := []web.Option{web.WithLogger(s.log.Module("web"))}
	if s.lookups != nil {
		webOpts = append(webOpts, web.WithLookupCache(s.lookups))
	}
	pages, err := web.New(s.repos, s.identity, s.settings, webOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize pages: %w", err)
	}
	pages.Register(s.echo)
	s.pages = pages

	if s.metrics != nil && s.config.MetricsPath != "" {
		s.echo.GET(s.config.MetricsPath, s.metricsHandler())
	}

	s.log.Info("routes initialized",
		logger.String("api_prefix", v1.Prefix),
		logger.Int("routes", len(s.echo.Routes())))
	return nil
}

// metricsHandler refreshes the pool gauges before each scrape.
func (s *Server) metricsHandler() echo.HandlerFunc {
	h := s.metrics.Handler()
	return func(c echo.Context) error {
		s.metrics.Catalogue.UpdateConnectionStats(s.store.Stats())
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}

// handleError renders JSON problems under the API prefix and HTML pages
// everywhere else.
func (s *Server) handleError(err error, c echo.Context) {
	if strings.HasPrefix(c.Request().URL.Path, v1.Prefix) {
		s.apiController.HTTPErrorHandler(err, c)
		return
	}
	s.pages.HTTPErrorHandler(err, c)
}

// Start begins serving HTTP requests in a background goroutine and returns
// immediately. Use Shutdown() to stop the server.
func (s *Server) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.startBlocking(); err != nil {
			s.log.Error("server error", logger.Error(err))
			s.errCh <- err
		}
	}()
}

// startBlocking serves until the server is shut down.
func (s *Server) startBlocking() error {
	addr := s.config.Address()
	s.log.Info("starting HTTP server", logger.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Errors reports a listener failure after Start.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// StartWithGracefulShutdown starts the server and blocks until ctx is done,
// SIGINT or SIGTERM arrives, or the listener fails.
func (s *Server) StartWithGracefulShutdown(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.Start()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown signal received, initiating graceful shutdown")
	case err := <-s.errCh:
		return err
	}
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.log.Error("error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.wg.Wait()

	s.log.Info("server shutdown complete", logger.Duration("uptime", time.Since(s.startTime)))
	return nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Config returns the effective server configuration.
func (s *Server) Config() *Config {
	return s.config
}
