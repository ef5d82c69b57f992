package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound            ErrorType = "not_found"
	ErrorTypeValidation          ErrorType = "validation"
	ErrorTypeUnauthorized        ErrorType = "unauthorized"
	ErrorTypeForbidden           ErrorType = "forbidden"
	ErrorTypeInsufficientCredits ErrorType = "insufficient_credits"
	ErrorTypeConflict            ErrorType = "conflict"
	ErrorTypeStorageUnavailable  ErrorType = "storage_unavailable"
	ErrorTypeTransactionFailed   ErrorType = "transaction_failed"
	ErrorTypeInternal            ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is; two domain errors match when their types match
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrAccountNotFound = NewDomainError(ErrorTypeNotFound, "account not found", nil)
	ErrRuleNotFound    = NewDomainError(ErrorTypeNotFound, "rule not found", nil)

	// Validation Errors
	ErrInvalidInput   = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrEmptyCommand   = NewDomainError(ErrorTypeValidation, "command text cannot be empty", nil)
	ErrInvalidPattern = NewDomainError(ErrorTypeValidation, "pattern is not a valid regular expression", nil)
	ErrInvalidAction  = NewDomainError(ErrorTypeValidation, "action must be AUTO_ACCEPT or AUTO_REJECT", nil)

	// Authorization Errors
	ErrUnauthorized  = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidAPIKey = NewDomainError(ErrorTypeUnauthorized, "invalid API key", nil)
	ErrInvalidToken  = NewDomainError(ErrorTypeUnauthorized, "invalid or expired token", nil)

	// Permission Errors
	ErrForbidden  = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)
	ErrAdminsOnly = NewDomainError(ErrorTypeForbidden, "admin role required", nil)

	// Eligibility Errors
	ErrInsufficientCredits = NewDomainError(ErrorTypeInsufficientCredits, "insufficient credits", nil)

	// Conflict Errors
	ErrDuplicateUsername = NewDomainError(ErrorTypeConflict, "username already exists", nil)
	ErrDuplicateAPIKey   = NewDomainError(ErrorTypeConflict, "API key already exists", nil)

	// Storage Errors
	ErrStorageUnavailable = NewDomainError(ErrorTypeStorageUnavailable, "storage unavailable", nil)
	ErrTransactionFailed  = NewDomainError(ErrorTypeTransactionFailed, "transaction failed", nil)

	// Internal Errors
	ErrInternal = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsInsufficientCreditsError checks if an error is an eligibility failure
func IsInsufficientCreditsError(err error) bool {
	return GetErrorType(err) == ErrorTypeInsufficientCredits
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsStorageUnavailableError checks if an error is a failed storage read.
// Safe to retry: no mutation was attempted.
func IsStorageUnavailableError(err error) bool {
	return GetErrorType(err) == ErrorTypeStorageUnavailable
}

// IsTransactionFailedError checks if an error is a failed atomic apply.
// Safe to retry: the unit was rolled back and no partial effect is visible.
func IsTransactionFailedError(err error) bool {
	return GetErrorType(err) == ErrorTypeTransactionFailed
}

// IsRetriableError checks if the caller may safely retry the request
func IsRetriableError(err error) bool {
	t := GetErrorType(err)
	return t == ErrorTypeStorageUnavailable || t == ErrorTypeTransactionFailed
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapStorage wraps an error as a storage-unavailable error
func WrapStorage(message string, err error) error {
	return NewDomainError(ErrorTypeStorageUnavailable, message, err)
}

// WrapTransaction wraps an error as a transaction-failed error
func WrapTransaction(message string, err error) error {
	return NewDomainError(ErrorTypeTransactionFailed, message, err)
}
