package schemaguard

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeDefect marks a broken internal invariant. Defects are never user data problems.
	ErrorTypeDefect ErrorType = "defect"
	ErrorTypeConfig ErrorType = "config"
	ErrorTypeLoad   ErrorType = "load"
)

// Error codes
const (
	ErrCodeUnresolvedReference   = "UNRESOLVED_REFERENCE"
	ErrCodeInvariantViolation    = "INVARIANT_VIOLATION"
	ErrCodeValidatorPanic        = "VALIDATOR_PANIC"
	ErrCodeDuplicateValidator    = "DUPLICATE_VALIDATOR_CODE"
	ErrCodeUnknownDeploymentMode = "UNKNOWN_DEPLOYMENT_MODE"

	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	ErrCodeDocumentInvalid   = "DOCUMENT_INVALID"
)

// SchemaguardError is the structured error returned by the engine and its loaders.
type SchemaguardError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Subject string         `json:"subject,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *SchemaguardError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.Subject, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *SchemaguardError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a single detail to a SchemaguardError
func (e *SchemaguardError) WithDetail(key string, value any) *SchemaguardError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause adds a cause to a SchemaguardError
func (e *SchemaguardError) WithCause(cause error) *SchemaguardError {
	e.Cause = cause
	return e
}

// WithSubject records the entity the error is about
func (e *SchemaguardError) WithSubject(subject string) *SchemaguardError {
	e.Subject = subject
	return e
}

// NewSchemaguardError creates a new SchemaguardError
func NewSchemaguardError(errorType ErrorType, code, message string) *SchemaguardError {
	return &SchemaguardError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
}

// NewDefect creates a defect error
func NewDefect(code, message string) *SchemaguardError {
	return NewSchemaguardError(ErrorTypeDefect, code, message)
}

// NewUnresolvedReferenceError reports a reference that resolution was required to satisfy.
func NewUnresolvedReferenceError(subject, message string) *SchemaguardError {
	return NewDefect(ErrCodeUnresolvedReference, message).WithSubject(subject)
}

// NewLoadError creates an error for a schema source that could not be read.
func NewLoadError(code, message string, cause error) *SchemaguardError {
	return NewSchemaguardError(ErrorTypeLoad, code, message).WithCause(cause)
}

// IsDefect reports whether err (or anything it wraps) is a defect.
func IsDefect(err error) bool {
	var sgErr *SchemaguardError
	if errors.As(err, &sgErr) {
		return sgErr.Type == ErrorTypeDefect
	}
	return false
}
