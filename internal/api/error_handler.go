package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/marsone/crew-api/internal/api/handler"
	"github.com/marsone/crew-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain error
// kinds to status codes and renders every failure as a handler.ErrorBody.
// Unexpected errors are logged and never leak their cause to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorBody) {
	// Echo's own errors: bind failures, unknown routes, wrong methods.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorBody{
			Error:  fmt.Sprintf("%v", he.Message),
			Reason: reasonFromStatus(he.Code),
		}
	}

	var de *domain.Error
	if errors.As(err, &de) {
		if code, ok := statusFor(de.Kind); ok {
			return code, handler.ErrorBody{Error: de.Error(), Reason: de.Reason, Fields: de.Fields}
		}
	}
	if code, ok := statusFor(err); ok {
		return code, handler.ErrorBody{Error: err.Error(), Reason: domain.KindName(err)}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorBody{
		Error:  "internal server error",
		Reason: "internal",
	}
}

func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrReferenceNotFound):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrIntegrityViolation):
		return http.StatusConflict, true
	}
	return 0, false
}

// StatusCode returns the status the error handler renders for err.
func StatusCode(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if code, ok := statusFor(err); ok {
		return code
	}
	return http.StatusInternalServerError
}

// reasonFromStatus turns "Method Not Allowed" into "method_not_allowed".
func reasonFromStatus(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "http_error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
