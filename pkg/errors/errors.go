// Package errors defines structured error types for the analytics API.
// Errors carry a machine-readable code and the HTTP status they map to.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code identifies an error category.
type Code string

const (
	// CodeQuotaExceeded indicates the caller hit its request quota for the
	// current window. The only rate limiter error that is user-visible.
	CodeQuotaExceeded Code = "quota_exceeded"

	// CodeStoreUnavailable indicates the rate limit counter store could not be
	// reached. Recovered by the fail-open policy and never shown to callers.
	CodeStoreUnavailable Code = "store_unavailable"

	// CodeDatabaseError indicates an analytics query failed.
	CodeDatabaseError Code = "database_error"

	// CodeInvalidConfig indicates invalid configuration, detected at startup.
	CodeInvalidConfig Code = "invalid_config"

	// CodeNotFound indicates the requested resource does not exist.
	CodeNotFound Code = "not_found"

	// CodeServerError is the generic internal failure category.
	CodeServerError Code = "server_error"
)

// AppError is a structured application error.
type AppError struct {
	code       Code
	httpStatus int
	message    string
	cause      error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error category.
func (e *AppError) Code() Code {
	return e.code
}

// HTTPStatus returns the HTTP status code this error maps to.
func (e *AppError) HTTPStatus() int {
	return e.httpStatus
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *AppError) Unwrap() error {
	return e.cause
}

// New creates a new AppError.
func New(code Code, httpStatus int, message string) *AppError {
	return &AppError{code: code, httpStatus: httpStatus, message: message}
}

// Wrap creates a new AppError wrapping a cause.
func Wrap(cause error, code Code, httpStatus int, message string) *AppError {
	return &AppError{code: code, httpStatus: httpStatus, message: message, cause: cause}
}

// ================================================================================
// Predefined Constructors
// ================================================================================

// ErrQuotaExceeded creates a quota exceeded error for a rate limit scope.
func ErrQuotaExceeded(scope string, limit int) *AppError {
	return New(
		CodeQuotaExceeded,
		http.StatusTooManyRequests,
		fmt.Sprintf("rate limit exceeded for scope %q: %d requests", scope, limit),
	)
}

// ErrStoreUnavailable wraps a counter store round trip failure.
func ErrStoreUnavailable(cause error) *AppError {
	return Wrap(cause, CodeStoreUnavailable, http.StatusServiceUnavailable,
		"rate limit counter store unavailable")
}

// ErrDatabaseOperation wraps an analytics query failure.
func ErrDatabaseOperation(cause error) *AppError {
	return Wrap(cause, CodeDatabaseError, http.StatusInternalServerError,
		"database operation failed")
}

// ErrInvalidConfig creates a configuration error. Fatal at startup.
func ErrInvalidConfig(message string) *AppError {
	return New(CodeInvalidConfig, http.StatusInternalServerError, message)
}

// ================================================================================
// Inspection Helpers
// ================================================================================

// AsAppError attempts to extract an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsStoreUnavailable reports whether the error chain contains a counter store
// availability failure. The admission middleware keys its fail-open policy on this.
func IsStoreUnavailable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == CodeStoreUnavailable
	}
	return false
}

// IsQuotaExceeded reports whether the error is a rate limit rejection.
func IsQuotaExceeded(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == CodeQuotaExceeded
	}
	return false
}
