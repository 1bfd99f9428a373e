package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Input errors
	ErrorTypeValidation      ErrorType = "VALIDATION"
	ErrorTypeFormat          ErrorType = "FORMAT"
	ErrorTypeWeakPassword    ErrorType = "WEAK_PASSWORD"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypePayloadTooLarge ErrorType = "PAYLOAD_TOO_LARGE"

	// Authentication errors
	ErrorTypeInvalidCredentials ErrorType = "INVALID_CREDENTIALS"
	ErrorTypeMissingToken       ErrorType = "MISSING_TOKEN"
	ErrorTypeInvalidToken       ErrorType = "INVALID_TOKEN"
	ErrorTypeExpiredToken       ErrorType = "EXPIRED_TOKEN"
	ErrorTypeUnknownUser        ErrorType = "UNKNOWN_USER"

	// Infrastructure errors
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeDatabase    ErrorType = "DATABASE"
	ErrorTypeStorage     ErrorType = "STORAGE"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Cause      error     `json:"-"`
	HTTPStatus int       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func newError(t ErrorType, status int, message string) *AppError {
	return &AppError{Type: t, Message: message, HTTPStatus: status}
}

// NewValidationError creates an error for a missing or empty required field.
func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewFormatError creates an error for a malformed value such as an email address.
func NewFormatError(message string) *AppError {
	return newError(ErrorTypeFormat, http.StatusBadRequest, message)
}

// NewWeakPasswordError creates an error for a password that violates the policy.
func NewWeakPasswordError(message string) *AppError {
	return newError(ErrorTypeWeakPassword, http.StatusBadRequest, message)
}

// NewConflictError creates a duplicate-key error. The public API reports
// conflicts as 400 like every other registration failure.
func NewConflictError(message string) *AppError {
	return newError(ErrorTypeConflict, http.StatusBadRequest, message)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, message)
}

// NewPayloadTooLargeError creates an error for request bodies over the limit.
func NewPayloadTooLargeError(limit int64) *AppError {
	return newError(ErrorTypePayloadTooLarge, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("request body exceeds %d bytes", limit))
}

// NewInvalidCredentialsError creates the login failure error. The message never
// says which of email or password was wrong.
func NewInvalidCredentialsError() *AppError {
	return newError(ErrorTypeInvalidCredentials, http.StatusUnauthorized, "Invalid credentials")
}

// NewUnauthorizedError creates a 401 error of one of the token failure kinds.
func NewUnauthorizedError(kind ErrorType, message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newError(kind, http.StatusUnauthorized, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

// NewServiceUnavailableError creates a 503 for requests shed while a dependency recovers.
func NewServiceUnavailableError(message string) *AppError {
	return newError(ErrorTypeUnavailable, http.StatusServiceUnavailable, message)
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, err error) *AppError {
	return newError(ErrorTypeDatabase, http.StatusInternalServerError,
		fmt.Sprintf("database operation '%s' failed", operation)).WithCause(err)
}

// NewStorageError creates an attachment storage error
func NewStorageError(operation string, err error) *AppError {
	return newError(ErrorTypeStorage, http.StatusInternalServerError,
		fmt.Sprintf("storage operation '%s' failed", operation)).WithCause(err)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsUnauthorized reports whether err is any of the errors answered with 401.
func IsUnauthorized(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.HTTPStatus == http.StatusUnauthorized
}
