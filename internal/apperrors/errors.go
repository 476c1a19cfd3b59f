package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping.
type Code int

const (
	CodeInternal Code = iota
	CodeValidation
	CodeNotFound
	CodeUnauthenticated
	CodeForbidden
	CodeConflict
	CodeInsufficientStock
)

// Error carries a caller-safe message plus a code the HTTP layer maps to a
// status. The wrapped cause is kept for logs and never sent to clients.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string      // field -> rule, for validation failures
	Details map[string]interface{} // extra context, e.g. available/requested stock
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) *Error {
	return newf(CodeValidation, format, args...)
}

// ValidationFields reports several violated rules at once, keyed by field.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return newf(CodeNotFound, format, args...)
}

func Unauthenticatedf(format string, args ...interface{}) *Error {
	return newf(CodeUnauthenticated, format, args...)
}

func Forbiddenf(format string, args ...interface{}) *Error {
	return newf(CodeForbidden, format, args...)
}

func Conflictf(format string, args ...interface{}) *Error {
	return newf(CodeConflict, format, args...)
}

// Internal wraps an unexpected failure. message is what callers may see;
// err stays internal.
func Internal(err error, message string) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// InsufficientStock reports a stock shortfall with the quantities a caller
// needs to retry sensibly.
func InsufficientStock(product string, available, requested int) *Error {
	return &Error{
		Code:    CodeInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for %s", product),
		Details: map[string]interface{}{
			"available": available,
			"requested": requested,
		},
	}
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// anything that is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
