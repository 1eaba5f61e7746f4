package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Schema errors
	ErrNoMigrations = fmt.Errorf("no migrations to roll back")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrForbidden        = fmt.Errorf("forbidden")

	// Domain errors
	ErrParse      = fmt.Errorf("parse error")
	ErrRange      = fmt.Errorf("range error")
	ErrValidation = fmt.Errorf("validation failed")
	ErrNotFound   = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports one or more field constraint violations on an entity.
//
// It matches [ErrValidation] with [errors.Is], and Cause too when one is set.
type ValidationError struct {
	Entity string
	Fields []FieldError
	Cause  error
}

// NewValidationError builds a [ValidationError] with a single field failure.
func NewValidationError(entity, field, message string) *ValidationError {
	return &ValidationError{Entity: entity, Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	if e.Entity == "" {
		return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Cause}
}

// WithCause attaches the underlying error, e.g. a note-range parse failure.
func (e *ValidationError) WithCause(err error) *ValidationError {
	e.Cause = err
	return e
}

// NotFoundError reports a missing row referenced by ID.
//
// It matches [ErrNotFound] with [errors.Is].
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError returns a [NotFoundError] for the given entity name and ID.
func NewNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsUserError reports whether err is a recoverable input problem (as opposed to a storage failure).
func IsUserError(err error) bool {
	return errors.Is(err, ErrParse) ||
		errors.Is(err, ErrRange) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrMissingArgument)
}
