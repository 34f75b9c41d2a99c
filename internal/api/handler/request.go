package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marsone/crew-api/internal/api/metrics"
	"github.com/marsone/crew-api/internal/core/domain"
)

const idempotencyHeader = "Idempotency-Key"

// decodeBody reads a JSON object body into a raw field map. Path parameters
// are not bound, so an "id" in the URL never shadows the body.
func decodeBody(c echo.Context) (map[string]any, error) {
	var raw map[string]any
	if err := new(echo.DefaultBinder).BindBody(c, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, domain.Validation([]domain.FieldViolation{{Field: "id", Message: "must be an integer"}})
	}
	return id, nil
}

// track records the outcome of one resource operation once the handler returns.
// Use as: defer track(resource, operation, time.Now(), &err).
func track(resource, operation string, start time.Time, err *error) {
	metrics.ObserveOperation(resource, operation, domain.KindName(*err), start)
}
