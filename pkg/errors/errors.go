// Package errors defines the coded errors schemagraph returns.
//
// A coded error aborts a run before anything is written. Problems inside a
// schema that the graph builder can work around (an entry without type
// information, a reference to an unknown component) are not errors; they
// are recorded as graph warnings.
//
//	err := errors.New(errors.ErrCodeInvalidSchema, "schema root is a %s, not a mapping", kind)
//	if errors.Is(err, errors.ErrCodeInvalidSchema) {
//		...
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error for exit handling and HTTP status mapping.
type Code string

const (
	// The input cannot be used as given.
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSchema Code = "INVALID_SCHEMA"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// A broken invariant inside graph building, layout or rendering.
	ErrCodeInternal Code = "INTERNAL_ERROR"
	// A feature that needs something this machine lacks.
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a Code, a message for the user and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := as(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether err's chain holds an *Error with code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage returns the message without the code prefix and cause, or
// err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := as(err); ok {
		return e.Message
	}
	return err.Error()
}

func as(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
