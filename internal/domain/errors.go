package domain

import (
	"fmt"
	"net/http"
)

// Error types for consistent error handling across the client.

// APIError is the normalized failure of any API call.
// Status is the HTTP status code, or 0 when no status is available
// (no response, unreadable body, or a delete whose body is not inspected).
type APIError struct {
	Status int
	Detail string
	Err    error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("api error: %s: %v", e.Detail, e.Err)
		}
		return fmt.Sprintf("api error: %s", e.Detail)
	}
	return fmt.Sprintf("api error [%d]: %s", e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// HasStatus reports whether the failure carries an HTTP status code.
func (e *APIError) HasStatus() bool {
	return e.Status != 0
}

// IsUnauthorized reports whether the backend rejected the credential.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// ErrValidation indicates input rejected before any network call.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrNoSession indicates an operation that needs a logged-in user.
type ErrNoSession struct{}

func (e *ErrNoSession) Error() string {
	return "not logged in"
}
