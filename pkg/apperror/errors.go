package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure independently of its transport mapping
type Kind string

const (
	KindPreconditionFailed     Kind = "precondition_failed"
	KindNotFound               Kind = "not_found"
	KindValidationFailed       Kind = "validation_failed"
	KindPersistenceUnavailable Kind = "persistence_unavailable"
	KindBadRequest             Kind = "bad_request"
	KindInternal               Kind = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Kind    Kind         `json:"kind"`
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`

	cause error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *AppError) Unwrap() error {
	return e.cause
}

// Common errors
var (
	ErrNotFound       = &AppError{Kind: KindNotFound, Code: http.StatusNotFound, Message: "Resource not found"}
	ErrBadRequest     = &AppError{Kind: KindBadRequest, Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Kind: KindInternal, Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrCompanyProfile = &AppError{Kind: KindPreconditionFailed, Code: http.StatusPreconditionFailed, Message: "Company profile not set"}
)

// NewAppError creates a new application error
func NewAppError(kind Kind, code int, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Kind:    KindValidationFailed,
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldValidationError creates a validation error for a single field
func NewFieldValidationError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewPreconditionFailedError reports a missing prerequisite such as the company profile
func NewPreconditionFailedError(message string) *AppError {
	return &AppError{
		Kind:    KindPreconditionFailed,
		Code:    http.StatusPreconditionFailed,
		Message: message,
	}
}

// NewPersistenceError wraps a durable store failure
func NewPersistenceError(cause error) *AppError {
	return &AppError{
		Kind:    KindPersistenceUnavailable,
		Code:    http.StatusServiceUnavailable,
		Message: "Persistence unavailable",
		cause:   cause,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Kind:    KindBadRequest,
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Kind:    KindInternal,
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
