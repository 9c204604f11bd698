package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/misenoti/misenoti/pkg/httpx"
)

// APIError is a failed API call. The server writes it, the client returns it.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Message is safe to show to end users.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// WriteError writes the error as a {"success":false,"message":...} envelope.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, Response{Success: false, Message: e.Message})
}

// NewAPIError creates an APIError with a custom message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

var (
	ErrInvalidAction = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "invalid action",
	}

	ErrInvalidBody = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "invalid request body",
	}

	ErrBodyTooLarge = &APIError{
		StatusCode: http.StatusRequestEntityTooLarge,
		Message:    "request body too large",
	}

	ErrMethodNotAllowed = &APIError{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "method not allowed",
	}

	// ErrServerError hides the cause of an unexpected failure.
	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "internal server error",
	}

	ErrNotReady = &APIError{
		StatusCode: http.StatusServiceUnavailable,
		Message:    "service not ready",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError, keeping the
// server's message when the body carries one.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var envelope Response
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return NewAPIError(resp.StatusCode, envelope.Message)
	}

	return NewAPIError(resp.StatusCode, http.StatusText(resp.StatusCode))
}
