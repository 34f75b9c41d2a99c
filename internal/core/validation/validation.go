// Package validation turns untyped request fields into typed service inputs.
//
// It performs no I/O: type coercion, required-field checks, date parsing and
// value constraints only. Store-dependent rules (foreign references, email
// uniqueness) belong to the resource services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/marsone/crew-api/internal/core/domain"
)

// Validator checks raw field maps for each entity kind.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New returns a Validator that defaults start dates to the wall clock.
func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Validator using now for time-based defaults.
func NewWithClock(now func() time.Time) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return &Validator{v: v, now: now}
}

// maxBytes bounds the encoded length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// check runs struct-tag rules over rules and appends any failures to r.
func (val *Validator) check(r *reader, rules any) {
	err := val.v.Struct(rules)
	if err == nil {
		return
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		r.fail("", err.Error())
		return
	}
	for _, fe := range ve {
		r.fail(fe.Field(), fieldMessage(fe))
	}
}

// fieldMessage converts a single validator.FieldError into a readable message.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			if fe.Param() == "1" {
				return "must not be empty"
			}
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return "must be a non-negative integer"
		}
		return "must be greater than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

func (r *reader) result() error {
	if len(r.violations) == 0 {
		return nil
	}
	return domain.Validation(r.violations)
}
