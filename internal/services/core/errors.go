// File: internal/services/core/errors.go
package core

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeNotFound        ErrorType = "NOT_FOUND"
	ErrTypeUnauthorized    ErrorType = "UNAUTHORIZED"
	ErrTypeForbidden       ErrorType = "FORBIDDEN"
	ErrTypeConflict        ErrorType = "CONFLICT"
	ErrTypeInvalidArgument ErrorType = "INVALID_ARGUMENT"
	ErrTypeUnavailable     ErrorType = "UNAVAILABLE"
)

// CoreError is the typed error every conversation-layer operation returns
// on failure. Handlers map Type onto HTTP status codes.
type CoreError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error in %s: %s (caused by: %v)", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *CoreError) Unwrap() error { return e.Cause }

func NewNotFoundError(operation, msg string) *CoreError {
	return &CoreError{Type: ErrTypeNotFound, Operation: operation, Message: msg}
}

func NewUnauthorizedError(operation, msg string) *CoreError {
	return &CoreError{Type: ErrTypeUnauthorized, Operation: operation, Message: msg}
}

func NewForbiddenError(operation, msg string) *CoreError {
	return &CoreError{Type: ErrTypeForbidden, Operation: operation, Message: msg}
}

func NewConflictError(operation, msg string) *CoreError {
	return &CoreError{Type: ErrTypeConflict, Operation: operation, Message: msg}
}

func NewInvalidArgumentError(operation, msg string) *CoreError {
	return &CoreError{Type: ErrTypeInvalidArgument, Operation: operation, Message: msg}
}

func NewUnavailableError(operation, msg string, cause error) *CoreError {
	return &CoreError{Type: ErrTypeUnavailable, Operation: operation, Message: msg, Cause: cause}
}

// IsType reports whether err is a CoreError of the given type.
func IsType(err error, t ErrorType) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Type == t
	}
	return false
}
