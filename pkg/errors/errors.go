// Package errors provides structured error types for shortword.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror the failure taxonomy of the table engine:
//   - STRUCTURAL_FAILURE: empty generator sets, mismatched domain sizes,
//     malformed permutations. Not recoverable without fixing the input.
//   - INCOMPLETE: the table lacks an entry needed for a factorization.
//     Recoverable by building more rounds or choosing another base.
//   - EXHAUSTED: a round, step or depth budget ran out. Recoverable by
//     raising the budget.
//   - PERSISTENCE_FAILURE: reading or writing a table failed.
//
// "Not found" during table lookups is never an error; lookups return an
// explicit ok flag.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeIncomplete, "no entry at row %d column %d", i, j)
//	if errors.Is(err, errors.ErrCodeIncomplete) {
//	    // build more rounds
//	}
//
//	err := errors.Wrap(errors.ErrCodePersistence, origErr, "save table %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeStructural   Code = "STRUCTURAL_FAILURE"

	// Recoverable search outcomes
	ErrCodeIncomplete Code = "INCOMPLETE"
	ErrCodeExhausted  Code = "EXHAUSTED"

	// Storage errors
	ErrCodePersistence Code = "PERSISTENCE_FAILURE"
	ErrCodeNotFound    Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether err signals a budget or coverage shortfall
// that a caller can fix by retrying with more rounds, steps or depth.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeIncomplete, ErrCodeExhausted:
		return true
	}
	return false
}

// HTTPStatus maps an error code to the status returned by the HTTP API.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeStructural:
		return 400
	case ErrCodeNotFound:
		return 404
	case ErrCodeIncomplete, ErrCodeExhausted:
		return 422
	default:
		return 500
	}
}
