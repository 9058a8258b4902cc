// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Settings errors
	ErrValidationFailed   = &Error{Code: "VALIDATION_FAILED", Message: "settings validation failed"}
	ErrPersistFailed      = &Error{Code: "PERSIST_FAILED", Message: "Failed to save settings"}
	ErrRestoreParseFailed = &Error{Code: "RESTORE_PARSE_FAILED", Message: "stored settings could not be read"}
	ErrInvalidField       = &Error{Code: "INVALID_FIELD", Message: "invalid field update"}
	ErrNotPersisted       = &Error{Code: "NOT_PERSISTED", Message: "settings must be applied before running a strategy"}

	// Storage errors
	ErrNotFound = &Error{Code: "NOT_FOUND", Message: "not found"}

	// Request errors
	ErrBadRequest   = &Error{Code: "BAD_REQUEST", Message: "malformed request"}
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "authentication required"}
	ErrJobNotFound  = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}

	// Upstream service errors
	ErrUpstreamFailed  = &Error{Code: "UPSTREAM_FAILED", Message: "upstream service request failed"}
	ErrUpstreamTimeout = &Error{Code: "UPSTREAM_TIMEOUT", Message: "upstream service timeout"}

	// Notifier errors
	ErrNotifyFailed = &Error{Code: "NOTIFY_FAILED", Message: "notification failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
