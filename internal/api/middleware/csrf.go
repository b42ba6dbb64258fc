package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/qchem/gausscat/internal/logger"
)

const (
	// CSRFContextKey is the key used to store CSRF token in the context.
	// Page templates read it through CSRFToken.
	CSRFContextKey = "csrf"

	// CSRFFormField is the hidden form field carrying the token.
	CSRFFormField = "_csrf"

	// csrfCookieName is the name of the CSRF cookie.
	csrfCookieName = "_gausscat_csrf"

	// csrfCookieMaxAge is the max age of the CSRF cookie in seconds (2 hours).
	csrfCookieMaxAge = 7200

	// csrfTokenLength is the length of the generated CSRF token in bytes.
	csrfTokenLength = 32
)

// IsSecureRequest determines if the request is over HTTPS.
// Checks direct TLS connection and X-Forwarded-Proto header.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}

// CSRFConfig holds configuration for the CSRF middleware.
type CSRFConfig struct {
	// Skipper defines a function to skip the middleware.
	// If nil, DefaultCSRFSkipper is used.
	Skipper middleware.Skipper

	// TokenLookup defaults to "header:X-CSRF-Token,form:_csrf".
	TokenLookup string

	// CookieSecure sets the Secure flag on the token cookie.
	CookieSecure bool
}

// DefaultCSRFSkipper exempts the bearer-token JSON API and the
// unauthenticated ambient endpoints.
func DefaultCSRFSkipper(c echo.Context) bool {
	path := c.Request().URL.Path
	if strings.HasPrefix(path, "/api/") {
		return true
	}
	return path == "/metrics" || path == "/health"
}

// NewCSRF creates a CSRF middleware for the server-rendered pages.
func NewCSRF(config *CSRFConfig) echo.MiddlewareFunc {
	if config == nil {
		config = &CSRFConfig{}
	}

	skipper := config.Skipper
	if skipper == nil {
		skipper = DefaultCSRFSkipper
	}

	tokenLookup := config.TokenLookup
	if tokenLookup == "" {
		tokenLookup = "header:X-CSRF-Token,form:" + CSRFFormField
	}

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        skipper,
		TokenLength:    csrfTokenLength,
		TokenLookup:    tokenLookup,
		ContextKey:     CSRFContextKey,
		CookieName:     csrfCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   config.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
		CookieMaxAge:   csrfCookieMaxAge,
		ErrorHandler: func(err error, c echo.Context) error {
			GetLogger().Warn("CSRF validation failed",
				logger.String("method", c.Request().Method),
				logger.String("path", c.Request().URL.Path),
				logger.String("remote_ip", c.RealIP()),
				logger.Error(err))

			return echo.NewHTTPError(http.StatusForbidden, "Invalid CSRF token")
		},
	})
}

// CSRFToken returns the token the middleware stored for this request.
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(CSRFContextKey).(string)
	return token
}
