package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Common errors
var (
	ErrNotFound             = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized         = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden            = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest           = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer       = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict             = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrInvalidCredentials   = &AppError{Code: http.StatusUnauthorized, Message: "Invalid doctor ID or password"}
	ErrAuthNotConfigured    = &AppError{Code: http.StatusUnauthorized, Message: "Authentication is not configured for this doctor"}
	ErrTokenExpired         = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken         = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
	ErrServiceUnavailable   = &AppError{Code: http.StatusServiceUnavailable, Message: "Service temporarily unavailable"}
	ErrPrinterNotConfigured = &AppError{Code: http.StatusServiceUnavailable, Message: "No printer is configured"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap keeps err as the cause while presenting message to the client
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewUnprocessableError reports input that is well formed but cannot be used
func NewUnprocessableError(message string, err error) *AppError {
	return Wrap(http.StatusUnprocessableEntity, message, err)
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible. Anything else is
// reported as a generic internal error so collaborator details never reach
// the client.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(http.StatusInternalServerError, ErrInternalServer.Message, err)
}
