package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/qchem/gausscat/internal/logger"
)

// RequestRecorder receives per-request HTTP metrics.
type RequestRecorder interface {
	RecordHTTPRequest(method, path string, statusCode int, duration float64)
	RecordHTTPRequestError(method, path, errorType string)
	RecordHTTPResponseSize(method, path string, sizeBytes int64)
}

// NewCorrelationID assigns every request an X-Request-ID and carries it in
// the request context so that logs and problem payloads share it.
func NewCorrelationID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithTraceID(req.Context(), id)))
		},
	})
}

// NewRequestLogger creates a request logging middleware using RequestLoggerWithConfig.
// recorder may be nil.
func NewRequestLogger(log logger.Logger, recorder RequestRecorder) echo.MiddlewareFunc {
	return NewRequestLoggerWithSkipper(log, recorder, nil)
}

// NewRequestLoggerWithSkipper creates a request logging middleware with a custom skipper.
func NewRequestLoggerWithSkipper(log logger.Logger, recorder RequestRecorder, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:         skipper,
		LogStatus:       true,
		LogURI:          true,
		LogMethod:       true,
		LogLatency:      true,
		LogRemoteIP:     true,
		LogError:        true,
		LogRequestID:    true,
		LogResponseSize: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// Route template keeps metric label cardinality bounded.
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			if recorder != nil {
				recorder.RecordHTTPRequest(v.Method, route, v.Status, v.Latency.Seconds())
				recorder.RecordHTTPResponseSize(v.Method, route, v.ResponseSize)
				if v.Status >= 500 {
					recorder.RecordHTTPRequestError(v.Method, route, "server_error")
				}
			}

			if log == nil {
				return nil
			}

			fields := []logger.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.String("ip", v.RemoteIP),
				logger.Duration("latency", v.Latency),
				logger.String("request_id", v.RequestID),
			}

			switch {
			case v.Error != nil:
				fields = append(fields, logger.Error(v.Error))
				log.Warn("request", fields...)
			case v.Status >= 500:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		},
	})
}
