package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Use errors.Is; *APIError and *ValidationError match them.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrServerError    = errors.New("server error")
	ErrTimeout        = errors.New("request timed out")
	ErrRateLimited    = errors.New("rate limited")

	// ErrNoResults indicates a search matched no stations
	ErrNoResults = errors.New("no stations found")
)

// APIError is a non-200 response from bahn.de. Message is the text of the
// response's error object, when it has one.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Message    string
}

// NewAPIError creates an error for a response without an error message
func NewAPIError(statusCode int, status, endpoint string) *APIError {
	return &APIError{StatusCode: statusCode, Status: status, Endpoint: endpoint}
}

// NewAPIErrorWithMessage creates an error carrying the API's own message
func NewAPIErrorWithMessage(statusCode int, endpoint, message string) *APIError {
	return &APIError{StatusCode: statusCode, Endpoint: endpoint, Message: message}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error %d: %s (endpoint: %s)", e.StatusCode, e.Status, e.Endpoint)
}

// Is maps the status code onto the sentinel errors.
func (e *APIError) Is(target error) bool {
	code := e.StatusCode
	switch target {
	case ErrNotFound:
		return code == http.StatusNotFound
	case ErrInvalidRequest:
		return code == http.StatusBadRequest
	case ErrRateLimited:
		return code == http.StatusTooManyRequests
	case ErrServerError:
		return code >= http.StatusInternalServerError
	}
	return false
}

// Temporary reports whether retrying the request later may succeed
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// IsTemporary reports whether err is a timeout or an API error worth
// retrying later.
func IsTemporary(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Temporary()
}

// ValidationError rejects request parameters before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Is lets a ValidationError match ErrInvalidRequest
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// ErrMissingField reports a required parameter that is empty
func ErrMissingField(field string) error {
	return NewValidationError(field, "field is required")
}

// ErrInvalidFormat reports a parameter that does not parse
func ErrInvalidFormat(field, expected string) error {
	return NewValidationError(field, "invalid format, expected "+expected)
}

// ErrInvalidValue reports a parameter outside its allowed range
func ErrInvalidValue(field string, value any) error {
	return NewValidationError(field, fmt.Sprintf("invalid value: %v", value))
}
