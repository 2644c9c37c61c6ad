// Package errors provides typed errors for the gateway.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common error cases.
var (
	// ErrUpstream indicates a call to the brokerage or news provider failed.
	ErrUpstream = errors.New("upstream error")

	// ErrTokenExpired indicates an OAuth request token is unknown or has expired.
	ErrTokenExpired = errors.New("oauth token expired or not found")

	// ErrUnauthorized indicates no stored broker credential is available.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServiceUnavailable indicates the key-value store is not provisioned.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrDecryption indicates a stored credential could not be decrypted.
	ErrDecryption = errors.New("decryption error")

	// ErrInternal indicates an internal server error.
	ErrInternal = errors.New("internal error")

	// ErrRateLimit indicates too many requests.
	ErrRateLimit = errors.New("rate limit exceeded")
)

// AppError is a structured application error.
type AppError struct {
	// Type is the error type (sentinel error).
	Type error
	// Message is the user-facing error message.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the error type and the cause so both can be matched with errors.Is.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Type, e.Cause}
	}
	return []error{e.Type}
}

// New creates a new AppError.
func New(errType error, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
// When cause already carries one of the sentinel types, that type wins over errType,
// so a store outage surfacing through a broker call keeps its classification.
func Wrap(errType error, message string, cause error) *AppError {
	if t := typeOf(cause); t != nil {
		errType = t
	}
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Upstream creates an upstream error.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrUpstream,
		Message: message,
		Cause:   cause,
	}
}

// TokenExpired creates a token expired or not found error.
func TokenExpired(message string) *AppError {
	if message == "" {
		message = "OAuth token expired or not found"
	}
	return &AppError{
		Type:    ErrTokenExpired,
		Message: message,
	}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Type:    ErrUnauthorized,
		Message: message,
	}
}

// ServiceUnavailable creates a service unavailable error.
func ServiceUnavailable(message string) *AppError {
	if message == "" {
		message = "service unavailable"
	}
	return &AppError{
		Type:    ErrServiceUnavailable,
		Message: message,
	}
}

// Decryption creates a decryption error.
func Decryption(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrDecryption,
		Message: message,
		Cause:   cause,
	}
}

// Internal creates an internal error.
func Internal(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrInternal,
		Message: message,
		Cause:   cause,
	}
}

// IsUpstream checks if an error is an upstream error.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsTokenExpired checks if an error is a token expired error.
func IsTokenExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

// IsUnauthorized checks if an error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsServiceUnavailable checks if an error is a service unavailable error.
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// IsDecryption checks if an error is a decryption error.
func IsDecryption(err error) bool {
	return errors.Is(err, ErrDecryption)
}

// typeOf returns the sentinel type carried by err, or nil.
func typeOf(err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	for _, t := range []error{ErrServiceUnavailable, ErrDecryption, ErrTokenExpired, ErrUnauthorized} {
		if errors.Is(err, t) {
			return t
		}
	}
	return nil
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// A missing store maps to 500, matching the behavior the frontend was built against.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimit):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable error code used in JSON error bodies.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, ErrDecryption):
		return "decryption_error"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrRateLimit):
		return "rate_limited"
	default:
		return "internal_error"
	}
}
