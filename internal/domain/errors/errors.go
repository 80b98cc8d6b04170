// Package errors defines the application error contract: every failure that
// crosses the delivery boundary is an AppError with a stable business code.
package errors

import (
	"net/http"

	"github.com/statech108/backend/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Input validation errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	ErrInvalidArgument = NewBaseError(
		http.StatusBadRequest,
		"INVALID_ARGUMENT",
		"invalid or missing argument",
		"",
	)

	// Authentication errors
	ErrUnauthenticated = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHENTICATED",
		"authentication credential is missing",
		"",
	)

	// Unknown identity and wrong password intentionally share this error to
	// avoid account enumeration.
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"invalid credentials",
		"",
	)

	ErrInvalidToken = NewBaseError(
		http.StatusForbidden,
		"INVALID_OR_EXPIRED_TOKEN",
		"credential is invalid or has expired",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"access denied",
		"",
	)

	ErrNotAMerchant = NewBaseError(
		http.StatusForbidden,
		"NOT_A_MERCHANT",
		"a merchant credential is required",
		"",
	)

	// Resource errors
	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"resource not found",
		"",
	)

	ErrCategoryNotFound = NewBaseError(
		http.StatusNotFound,
		"CATEGORY_NOT_FOUND",
		"category not found",
		"",
	)

	ErrParentNotFound = NewBaseError(
		http.StatusNotFound,
		"PARENT_CATEGORY_NOT_FOUND",
		"parent category not found",
		"",
	)

	// Uniqueness conflicts
	ErrHandleTaken = NewBaseError(
		http.StatusConflict,
		"HANDLE_ALREADY_EXISTS",
		"handle is already registered",
		"",
	)

	ErrEmailTaken = NewBaseError(
		http.StatusConflict,
		"EMAIL_ALREADY_EXISTS",
		"email is already registered",
		"",
	)

	ErrMobileTaken = NewBaseError(
		http.StatusConflict,
		"MOBILE_ALREADY_EXISTS",
		"mobile number is already registered",
		"",
	)

	ErrDuplicateCategory = NewBaseError(
		http.StatusConflict,
		"CATEGORY_ALREADY_EXISTS",
		"an active category with this name already exists here",
		"",
	)

	// Structural (invalid state) errors
	ErrNotLeafCategory = NewBaseError(
		http.StatusBadRequest,
		"NOT_LEAF_CATEGORY",
		"only leaf categories can be modified or deleted",
		"",
	)

	ErrCategoryHasChildren = NewBaseError(
		http.StatusBadRequest,
		"CATEGORY_HAS_CHILDREN",
		"category still has active children",
		"",
	)

	ErrInvalidParentLevel = NewBaseError(
		http.StatusBadRequest,
		"INVALID_PARENT_LEVEL",
		"new parent must be a subcategory",
		"",
	)

	// Internal errors
	ErrHierarchyCorrupt = NewBaseError(
		http.StatusInternalServerError,
		"HIERARCHY_CORRUPT",
		"category hierarchy exceeds the maximum depth",
		"",
	)

	ErrMerchantIDExhausted = NewBaseError(
		http.StatusInternalServerError,
		"MERCHANT_ID_EXHAUSTED",
		"could not allocate a unique merchant identifier",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal server error",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
