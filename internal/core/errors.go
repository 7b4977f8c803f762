package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions. Only validation
// and auth errors abort a run; everything else is captured as data inside
// the affected reply or decision.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input or config
	ErrCatAuth       ErrorCategory = "auth"       // Missing or bad credential
	ErrCatNetwork    ErrorCategory = "network"    // Provider unreachable
	ErrCatExecution  ErrorCategory = "execution"  // Provider-side failure
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{Category: ErrCatValidation, Code: code, Message: message}
}

// ErrAuth creates an authentication/credential error.
func ErrAuth(code, message string) *DomainError {
	return &DomainError{Category: ErrCatAuth, Code: code, Message: message}
}

// ErrNetwork creates a network connectivity error.
func ErrNetwork(message string) *DomainError {
	return &DomainError{Category: ErrCatNetwork, Code: "NETWORK", Message: message}
}

// ErrExecution creates a provider execution error.
func ErrExecution(code, message string) *DomainError {
	return &DomainError{Category: ErrCatExecution, Code: code, Message: message}
}

// ErrNotFound creates a not-found error for a named resource.
func ErrNotFound(kind, name string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     "NOT_FOUND",
		Message:  fmt.Sprintf("%s %q not found", kind, name),
	}
}

// IsFatal reports whether err should abort the run before or during
// processing. Backend and parse failures are never fatal; they are recorded
// in the result stream instead.
func IsFatal(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Category == ErrCatValidation || de.Category == ErrCatAuth
	}
	return false
}
