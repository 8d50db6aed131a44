package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInternal        = errors.New("internal error")
	ErrServiceUnavail  = errors.New("service unavailable")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrGeocode         = errors.New("geocode failed")
	ErrStorage         = errors.New("storage failure")
	ErrTimeout         = errors.New("operation timed out")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error for a missing or invalid identity.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error for an authenticated user who may not act on a resource.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// InvalidFileType creates a 400 error for an upload whose content is not accepted.
func InvalidFileType(contentType string) *AppError {
	return &AppError{
		Code:    "INVALID_FILE_TYPE",
		Message: fmt.Sprintf("please upload an image file, got %q", contentType),
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidFileType,
	}
}

// FileTooLarge creates a 413 error for an upload above the configured limit.
func FileTooLarge(size, limit int64) *AppError {
	return &AppError{
		Code:    "FILE_TOO_LARGE",
		Message: fmt.Sprintf("please upload a file less than %d bytes, got %d", limit, size),
		Status:  http.StatusRequestEntityTooLarge,
		Err:     ErrFileTooLarge,
	}
}

// GeocodeFailed creates a 400 error for an address or postal code that cannot be resolved.
func GeocodeFailed(query string) *AppError {
	return &AppError{
		Code:    "GEOCODE_FAILED",
		Message: fmt.Sprintf("could not resolve location for %q", query),
		Status:  http.StatusBadRequest,
		Err:     ErrGeocode,
	}
}

// StorageFailed creates a 500 error for a file that could not be persisted.
func StorageFailed(err error) *AppError {
	return &AppError{
		Code:    "STORAGE_ERROR",
		Message: "cannot upload file",
		Status:  http.StatusInternalServerError,
		Err:     errors.Join(ErrStorage, err),
	}
}

// ServiceUnavailable creates a 503 error for a dependency that is not answering.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// Timeout creates a 504 error for an operation that exceeded its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code:    "TIMEOUT",
		Message: fmt.Sprintf("%s timed out", operation),
		Status:  http.StatusGatewayTimeout,
		Err:     ErrTimeout,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidFileType), errors.Is(err, ErrGeocode):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
