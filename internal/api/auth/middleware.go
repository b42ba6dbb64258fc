// Package auth provides bearer token and role middleware for the JSON API.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/identity"
	"github.com/qchem/gausscat/internal/logger"
)

// bearerTokenParts is the expected number of parts when splitting Authorization header.
const bearerTokenParts = 2

// Context keys for authentication values stored in echo.Context.
const (
	// CtxKeyPrincipal holds the *identity.Principal of an authenticated request.
	CtxKeyPrincipal = "auth:principal"
)

// TokenValidator resolves a bearer token to a principal.
type TokenValidator interface {
	ValidateToken(ctx context.Context, raw string) (*identity.Principal, error)
}

// AuthRecorder receives the outcome of every token check.
type AuthRecorder interface {
	RecordAuthOperation(authType, operation, status string)
}

// Middleware authenticates API requests.
type Middleware struct {
	validator TokenValidator
	recorder  AuthRecorder
	log       logger.Logger
}

// NewMiddleware creates auth middleware. recorder may be nil.
func NewMiddleware(validator TokenValidator, recorder AuthRecorder, log logger.Logger) *Middleware {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Middleware{validator: validator, recorder: recorder, log: log}
}

// Authenticate rejects requests without a valid bearer token with 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request())
		if !ok {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer`)
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		principal, err := m.validator.ValidateToken(c.Request().Context(), token)
		if err != nil {
			m.record("failure")
			m.log.Debug("token rejected",
				logger.String("path", c.Request().URL.Path),
				logger.String("ip", c.RealIP()),
				logger.Error(err))
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer error="invalid_token"`)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		m.record("success")
		c.Set(CtxKeyPrincipal, principal)
		return next(c)
	}
}

// RequireRole allows only principals in role. It must run after Authenticate.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			if !p.HasRole(role) {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the authenticated principal, or nil.
func PrincipalFrom(c echo.Context) *identity.Principal {
	p, _ := c.Get(CtxKeyPrincipal).(*identity.Principal)
	return p
}

func (m *Middleware) record(status string) {
	if m.recorder != nil {
		m.recorder.RecordAuthOperation("token", "validate", status)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", bearerTokenParts)
	if len(parts) != bearerTokenParts || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
