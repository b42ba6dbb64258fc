// internal/api/v1/problem.go
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/identity"
	"github.com/qchem/gausscat/internal/logger"
)

// MIMEProblemJSON is the RFC 7807 media type.
const MIMEProblemJSON = "application/problem+json"

// ProblemDetails is an RFC 7807 error payload.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"traceId,omitempty"`
}

// ValidationProblemDetails adds per-field messages.
type ValidationProblemDetails struct {
	ProblemDetails
	Errors map[string][]string `json:"errors"`
}

// fieldErrorer is implemented by models.ValidationErrors and identity.FieldError.
type fieldErrorer interface {
	FieldErrors() map[string][]string
}

type problemKind struct {
	typeURI string
	title   string
}

var problemKinds = map[int]problemKind{
	http.StatusBadRequest:            {"https://tools.ietf.org/html/rfc9110#section-15.5.1", "Bad Request"},
	http.StatusUnauthorized:          {"https://tools.ietf.org/html/rfc9110#section-15.5.2", "Unauthorized"},
	http.StatusForbidden:             {"https://tools.ietf.org/html/rfc9110#section-15.5.4", "Forbidden"},
	http.StatusNotFound:              {"https://tools.ietf.org/html/rfc9110#section-15.5.5", "Not Found"},
	http.StatusMethodNotAllowed:      {"https://tools.ietf.org/html/rfc9110#section-15.5.6", "Method Not Allowed"},
	http.StatusConflict:              {"https://tools.ietf.org/html/rfc9110#section-15.5.10", "Conflict"},
	http.StatusRequestEntityTooLarge: {"https://tools.ietf.org/html/rfc9110#section-15.5.14", "Content Too Large"},
	http.StatusUnsupportedMediaType:  {"https://tools.ietf.org/html/rfc9110#section-15.5.16", "Unsupported Media Type"},
	http.StatusTooManyRequests:       {"https://tools.ietf.org/html/rfc6585#section-4", "Too Many Requests"},
	http.StatusInternalServerError:   {"https://tools.ietf.org/html/rfc9110#section-15.6.1", "An error occurred while processing your request."},
	http.StatusServiceUnavailable:    {"https://tools.ietf.org/html/rfc9110#section-15.6.4", "Service Unavailable"},
}

const validationTitle = "One or more validation errors occurred."

// NewProblem fills type, title, instance and trace id for status.
func NewProblem(ctx echo.Context, status int, detail string) ProblemDetails {
	kind, ok := problemKinds[status]
	if !ok {
		kind = problemKind{typeURI: "about:blank", title: http.StatusText(status)}
	}
	return ProblemDetails{
		Type:     kind.typeURI,
		Title:    kind.title,
		Status:   status,
		Detail:   detail,
		Instance: ctx.Request().URL.Path,
		TraceID:  traceID(ctx),
	}
}

// NewValidationProblem builds a 400 payload carrying field messages.
func NewValidationProblem(ctx echo.Context, fields map[string][]string) ValidationProblemDetails {
	p := NewProblem(ctx, http.StatusBadRequest, "")
	p.Title = validationTitle
	return ValidationProblemDetails{ProblemDetails: p, Errors: fields}
}

// WriteProblem writes p with the problem media type.
func WriteProblem(ctx echo.Context, p ProblemDetails) error {
	ctx.Response().Header().Set(echo.HeaderContentType, MIMEProblemJSON)
	return ctx.JSON(p.Status, p)
}

// WriteValidationProblem writes a 400 ValidationProblemDetails.
func WriteValidationProblem(ctx echo.Context, fields map[string][]string) error {
	ctx.Response().Header().Set(echo.HeaderContentType, MIMEProblemJSON)
	return ctx.JSON(http.StatusBadRequest, NewValidationProblem(ctx, fields))
}

func traceID(ctx echo.Context) string {
	if id := logger.TraceIDFromContext(ctx.Request().Context()); id != "" {
		return id
	}
	return ctx.Response().Header().Get(echo.HeaderXRequestID)
}

// HandleError maps err to a problem response. Unexpected errors are logged
// at error level and answered with 500 and the error message as detail.
func (c *Controller) HandleError(ctx echo.Context, err error, message string) error {
	status, fields, detail := classifyError(err)
	log := c.log.WithContext(ctx.Request().Context())

	if fields != nil {
		log.Debug(message,
			logger.String("path", ctx.Request().URL.Path),
			logger.Any("errors", fields))
		return WriteValidationProblem(ctx, fields)
	}

	if status >= http.StatusInternalServerError {
		log.Error(message,
			logger.String("method", ctx.Request().Method),
			logger.String("path", ctx.Request().URL.Path),
			logger.String("ip", ctx.RealIP()),
			logger.Error(err))
	} else {
		log.Debug(message,
			logger.String("path", ctx.Request().URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	}
	return WriteProblem(ctx, NewProblem(ctx, status, detail))
}

// classifyError returns the status, the field messages for validation
// failures, and the problem detail.
func classifyError(err error) (status int, fields map[string][]string, detail string) {
	var fe fieldErrorer
	if errors.As(err, &fe) {
		return http.StatusBadRequest, fe.FieldErrors(), ""
	}

	var refErr *repository.ReferenceError
	if errors.As(err, &refErr) {
		return http.StatusBadRequest, map[string][]string{
			refErr.Field: {fmt.Sprintf("The %s %d does not exist.", refErr.Field, refErr.ID)},
		}, ""
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, nil, fmt.Sprint(httpErr.Message)
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, nil, err.Error()
	case errors.Is(err, repository.ErrDuplicateKey), errors.Is(err, repository.ErrReferenced):
		return http.StatusConflict, nil, err.Error()
	case errors.Is(err, repository.ErrMissingReference), errors.Is(err, repository.ErrInvalidInput):
		return http.StatusBadRequest, nil, err.Error()
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrLockedOut),
		errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized, nil, err.Error()
	}
	return http.StatusInternalServerError, nil, err.Error()
}

// HTTPErrorHandler renders errors that escaped the handlers, such as
// unknown routes or auth middleware rejections, as problems.
func (c *Controller) HTTPErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	status, fields, detail := classifyError(err)
	var writeErr error
	switch {
	case fields != nil:
		writeErr = WriteValidationProblem(ctx, fields)
	case ctx.Request().Method == http.MethodHead:
		writeErr = ctx.NoContent(status)
	default:
		if status >= http.StatusInternalServerError {
			c.log.Error("unhandled API error",
				logger.String("path", ctx.Request().URL.Path),
				logger.Error(err))
		}
		writeErr = WriteProblem(ctx, NewProblem(ctx, status, detail))
	}
	if writeErr != nil {
		c.log.Warn("failed to write error response", logger.Error(writeErr))
	}
}
