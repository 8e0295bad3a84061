// Package errors defines unified error types for dataset sampling and
// embedding model operations. Provider-specific API failures are mapped to
// ModelError; data and configuration failures use the dedicated types below.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ConfigError reports an invalid configuration detected at construction time.
// It is fatal and never retried.
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// NewConfigError creates a configuration error for the given field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// OutOfRangeError reports a batch lookup outside [0, Count).
// It signals a misuse of the iteration contract by the caller.
type OutOfRangeError struct {
	Position int `json:"position"`
	Count    int `json:"count"`
}

// Error implements the error interface.
func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("batch position %d out of range [0, %d)", e.Position, e.Count)
}

// NewOutOfRangeError creates an out-of-range error.
func NewOutOfRangeError(position, count int) *OutOfRangeError {
	return &OutOfRangeError{Position: position, Count: count}
}

// EmptyBatchError reports a tabular batch whose every row failed text
// validation. The offending raw rows are attached for diagnosis; callers must
// treat this as fatal rather than proceed with an empty batch.
type EmptyBatchError struct {
	Task string           `json:"task"`
	Rows []map[string]any `json:"rows"`
}

// Error implements the error interface.
func (e *EmptyBatchError) Error() string {
	return fmt.Sprintf("batch for task %q is empty after validation, raw rows: %v", e.Task, e.Rows)
}

// NewEmptyBatchError creates an empty-batch error carrying the raw rows.
func NewEmptyBatchError(task string, rows []map[string]any) *EmptyBatchError {
	return &EmptyBatchError{Task: task, Rows: rows}
}

// ModelError represents a standardized error from an embedding model backend.
// It contains all necessary information for error handling, logging, and
// retry decisions.
type ModelError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Retryable  bool   `json:"-"`
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	return fmt.Sprintf("[%s] %s (provider=%s, model=%s, code=%d)",
		e.Type, e.Message, e.Provider, e.Model, e.StatusCode)
}

// Common error types as constants for consistency.
const (
	TypeAuthentication     = "authentication_error"
	TypeRateLimit          = "rate_limit_error"
	TypeInvalidRequest     = "invalid_request_error"
	TypeTimeout            = "timeout_error"
	TypeServiceUnavailable = "service_unavailable_error"
	TypeInternalError      = "internal_error"
)

// NewAuthenticationError creates an authentication error (401).
func NewAuthenticationError(provider, model, message string) *ModelError {
	return &ModelError{
		StatusCode: http.StatusUnauthorized,
		Message:    message,
		Type:       TypeAuthentication,
		Provider:   provider,
		Model:      model,
		Retryable:  false,
	}
}

// NewRateLimitError creates a rate limit error (429).
func NewRateLimitError(provider, model, message string) *ModelError {
	return &ModelError{
		StatusCode: http.StatusTooManyRequests,
		Message:    message,
		Type:       TypeRateLimit,
		Provider:   provider,
		Model:      model,
		Retryable:  true,
	}
}

// NewInvalidRequestError creates an invalid request error (400).
func NewInvalidRequestError(provider, model, message string) *ModelError {
	return &ModelError{
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Type:       TypeInvalidRequest,
		Provider:   provider,
		Model:      model,
		Retryable:  false,
	}
}

// NewTimeoutError creates a timeout error (408).
func NewTimeoutError(provider, model, message string) *ModelError {
	return &ModelError{
		StatusCode: http.StatusRequestTimeout,
		Message:    message,
		Type:       TypeTimeout,
		Provider:   provider,
		Model:      model,
		Retryable:  true,
	}
}

// NewServiceUnavailableError creates a service unavailable error (503).
func NewServiceUnavailableError(provider, model, message string) *ModelError {
	return &ModelError{
		StatusCode: http.StatusServiceUnavailable,
		Message:    message,
		Type:       TypeServiceUnavailable,
		Provider:   provider,
		Model:      model,
		Retryable:  true,
	}
}

// NewInternalError creates an internal server error (500).
func NewInternalError(provider, model, message string) *ModelError {
	return &ModelError{
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Type:       TypeInternalError,
		Provider:   provider,
		Model:      model,
		Retryable:  false,
	}
}

// IsRetryable reports whether err is a backend failure worth retrying.
// Anything that is not a ModelError is treated as fatal.
func IsRetryable(err error) bool {
	var modelErr *ModelError
	if errors.As(err, &modelErr) {
		return modelErr.Retryable
	}
	return false
}

// MapStatusCode converts an HTTP status code from a provider API into the
// appropriate ModelError.
func MapStatusCode(provider, model string, statusCode int, body string) *ModelError {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewAuthenticationError(provider, model, body)
	case http.StatusTooManyRequests:
		return NewRateLimitError(provider, model, body)
	case http.StatusBadRequest, http.StatusNotFound:
		return NewInvalidRequestError(provider, model, body)
	case http.StatusRequestTimeout:
		return NewTimeoutError(provider, model, body)
	default:
		if statusCode >= 500 {
			return NewServiceUnavailableError(provider, model, body)
		}
		return NewInternalError(provider, model, body)
	}
}
