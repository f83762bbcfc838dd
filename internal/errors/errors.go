package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound is returned when a role row is missing.
	ErrRoleNotFound = errors.New("role not found")
	// ErrProgramNotFound is returned when a program is not found.
	ErrProgramNotFound = errors.New("program not found")
)

// AuthenticationError is a rejected login. Message is safe to show to the user.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// ValidationError is a rejected registration. Field names the input the
// message belongs to, or is empty for a generic failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SessionDecodeError reports a persisted session value that could not be decoded.
// It never leaves the session layer as a user-facing failure.
type SessionDecodeError struct {
	Key string
	Err error
}

func (e *SessionDecodeError) Error() string {
	return fmt.Sprintf("decode session %s: %v", e.Key, e.Err)
}

func (e *SessionDecodeError) Unwrap() error {
	return e.Err
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// FirstField returns the first message for field, if any.
func (r ErrorResponse) FirstField(field string) (string, bool) {
	msgs := r.Fields[field]
	if len(msgs) == 0 || msgs[0] == "" {
		return "", false
	}
	return msgs[0], true
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrProgramNotFound):
		return NewHTTPError(http.StatusNotFound, ErrProgramNotFound.Error(), "PROGRAM_NOT_FOUND")
	case errors.Is(err, ErrRoleNotFound):
		return NewHTTPError(http.StatusInternalServerError, "role configuration missing", "ROLE_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
