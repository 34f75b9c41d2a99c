package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by a resource service wraps exactly one of these.
var (
	ErrValidation         = errors.New("validation failed")
	ErrReferenceNotFound  = errors.New("reference not found")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrIntegrityViolation = errors.New("integrity violation")
)

// FieldViolation describes one rejected input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries an error kind together with a machine-readable reason.
type Error struct {
	Kind    error
	Reason  string
	Message string
	Fields  []FieldViolation
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// Validation builds a ValidationFailed error from a list of field violations.
func Validation(fields []FieldViolation) *Error {
	return &Error{
		Kind:    ErrValidation,
		Reason:  "invalid_fields",
		Message: "validation failed",
		Fields:  fields,
	}
}

// NotFound reports that the requested entity does not exist.
func NotFound(entity string, id int64) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Reason:  entity + "_not_found",
		Message: fmt.Sprintf("%s %d not found", entity, id),
	}
}

// ReferenceNotFound reports that field points at an entity that does not exist.
func ReferenceNotFound(field, entity string, id int64) *Error {
	return &Error{
		Kind:    ErrReferenceNotFound,
		Reason:  entity + "_not_found",
		Message: fmt.Sprintf("%s %d not found", entity, id),
		Fields:  []FieldViolation{{Field: field, Message: fmt.Sprintf("%s %d does not exist", entity, id)}},
	}
}

func Conflict(reason, message string) *Error {
	return &Error{Kind: ErrConflict, Reason: reason, Message: message}
}

func IntegrityViolation(reason, message string) *Error {
	return &Error{Kind: ErrIntegrityViolation, Reason: reason, Message: message}
}

// KindName returns a stable label for err's kind, "ok" for nil and "internal"
// for anything that is not one of the known kinds.
func KindName(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrReferenceNotFound):
		return "reference_not_found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrIntegrityViolation):
		return "integrity_violation"
	default:
		return "internal"
	}
}
