// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrIgnoredEvent indicates a webhook event that requires no response
	// (read receipts, delivery receipts, echoes, empty payloads).
	ErrIgnoredEvent = errors.New("event ignored")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrMissingSecret indicates the app secret needed for signature
	// verification is not configured.
	ErrMissingSecret = errors.New("app secret not configured")

	// ErrInvalidSignature indicates the webhook payload signature did not
	// match the digest computed over the raw body.
	ErrInvalidSignature = errors.New("invalid payload signature")

	// ErrCompletionUnavailable indicates no completion provider is configured.
	ErrCompletionUnavailable = errors.New("completion provider unavailable")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimitExceeded reports whether err wraps ErrRateLimitExceeded.
func IsRateLimitExceeded(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsIgnoredEvent reports whether err wraps ErrIgnoredEvent.
func IsIgnoredEvent(err error) bool {
	return errors.Is(err, ErrIgnoredEvent)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// GraphError represents Graph API call failures with context.
type GraphError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *GraphError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("graph api error (endpoint=%s, status=%d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("graph api error (endpoint=%s): %v", e.Endpoint, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// NewGraphError creates a new Graph API error.
func NewGraphError(endpoint string, statusCode int, err error) *GraphError {
	return &GraphError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Err:        err,
	}
}
