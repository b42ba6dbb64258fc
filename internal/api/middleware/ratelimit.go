package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/qchem/gausscat/internal/logger"
	"golang.org/x/time/rate"
)

// rateLimitExpiry drops per-client limiters after this much inactivity.
const rateLimitExpiry = 10 * time.Minute

// NewRateLimiter limits requests per client IP. It guards the credential
// endpoints against password guessing.
func NewRateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	if burst < 1 {
		burst = 1
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: rateLimitExpiry,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			GetLogger().Warn("rate limit exceeded",
				logger.String("path", c.Request().URL.Path),
				logger.String("ip", identifier))
			c.Response().Header().Set("Retry-After", "1")
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
		},
	})
}
