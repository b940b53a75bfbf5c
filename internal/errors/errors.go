package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a record does not exist or is owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated is returned when no usable identity can be resolved.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrUserAlreadyExists is returned when registering a taken username.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Constraint)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, constraint string) *ValidationError {
	return &ValidationError{Field: field, Constraint: constraint}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
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
// Unknown errors never leak their message.
func MapErrorToHTTP(err error) *HTTPError {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return NewHTTPError(http.StatusBadRequest, ve.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
