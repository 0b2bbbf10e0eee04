package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an application error for transport mapping.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeInvalidState ErrorCode = "INVALID_STATE"
	CodeRetryable    ErrorCode = "RETRYABLE"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// AppError is a recoverable error surfaced to the caller with a human-readable message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewValidationError reports missing or invalid input.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// NewConflictError reports a car/date conflict or an unavailable resource.
func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// NewNotFoundError reports an entity id that does not resolve.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewInvalidStateError reports a lifecycle transition that is not permitted.
func NewInvalidStateError(from, to string) *AppError {
	return &AppError{
		Code:    CodeInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewRetryableError reports a concurrent write conflict the caller may retry once.
func NewRetryableError(message string, cause error) *AppError {
	return &AppError{Code: CodeRetryable, Message: message, Err: cause}
}

// NewForbiddenError reports an action the caller is not allowed to perform.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

// NewUnauthorizedError reports a missing or invalid identity.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsRetryable reports whether err is a concurrency conflict worth one retry.
func IsRetryable(err error) bool { return IsCode(err, CodeRetryable) }
