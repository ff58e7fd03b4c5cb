package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when no user row matches the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInsufficientCredits is returned when a generation costs more than the balance.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrGenerationUnavailable is returned when every backend model attempt failed.
	ErrGenerationUnavailable = errors.New("generation temporarily unavailable")
	// ErrStoryNotFound is returned when a story ID is not in the user's history.
	ErrStoryNotFound = errors.New("story not found")
	// ErrInvalidAdminCode is returned when the admin override code does not match.
	ErrInvalidAdminCode = errors.New("invalid admin code")
)

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
func MapErrorToHTTP(err error) *HTTPError {
	switch err {
	case ErrUserNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case ErrInsufficientCredits:
		return NewHTTPError(http.StatusPaymentRequired, err.Error(), "INSUFFICIENT_CREDITS")
	case ErrGenerationUnavailable:
		return NewHTTPError(http.StatusServiceUnavailable, err.Error(), "GENERATION_UNAVAILABLE")
	case ErrStoryNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "STORY_NOT_FOUND")
	case ErrInvalidAdminCode:
		return NewHTTPError(http.StatusForbidden, err.Error(), "INVALID_ADMIN_CODE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
