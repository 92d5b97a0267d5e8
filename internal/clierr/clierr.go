// Package clierr defines structured error types for reef commands.
// Errors carry a machine-readable code, a human-readable message
// and optional details.
package clierr

import (
	"errors"
	"fmt"
)

// Error codes are uppercase and underscore-separated.
const (
	TaskNotFound      = "TASK_NOT_FOUND"
	CreatureNotFound  = "CREATURE_NOT_FOUND"
	InvalidInput      = "INVALID_INPUT"
	InvalidDate       = "INVALID_DATE"
	InvalidRecurrence = "INVALID_RECURRENCE"
	InternalError     = "INTERNAL_ERROR"
)

// Error represents a structured CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2
	}
	return 1
}

// From converts any error into an *Error. Errors that are not already
// structured become INTERNAL_ERROR with the original message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return New(InternalError, err.Error())
}

// HasCode reports whether err is a structured error with the given code
func HasCode(err error, code string) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == code
}
