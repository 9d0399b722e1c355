// Package errs provides structured error types for the seatlens application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Venue configuration and input validation failures
//   - RENDER_*: Failures reported by the GPU render backend
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errs.New(errs.ErrCodeInvalidVenueConfig, "section %q references unknown tier %d", id, tier)
//	if errs.Is(err, errs.ErrCodeInvalidVenueConfig) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errs.Wrap(errs.ErrCodeRenderTransient, origErr, "render backend unavailable")
package errs

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Venue configuration errors (fatal at load time)
	ErrCodeInvalidVenueConfig Code = "INVALID_VENUE_CONFIG"
	ErrCodeInvalidVenueType   Code = "INVALID_VENUE_TYPE"
	ErrCodeVenueNotFound      Code = "VENUE_NOT_FOUND"

	// Mapping errors
	ErrCodeSectionResolution Code = "SECTION_RESOLUTION"
	ErrCodeInvalidClick      Code = "INVALID_CLICK"

	// Render backend errors
	ErrCodeRenderTimeout   Code = "RENDER_TIMEOUT"
	ErrCodeRenderTransient Code = "RENDER_TRANSIENT"
	ErrCodeRenderFatal     Code = "RENDER_FATAL"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Transient reports whether an error is worth retrying at the caller level.
// Timeouts and transient render failures qualify; everything else is either
// deterministic (invalid template, bad config) or a caller bug.
func Transient(err error) bool {
	switch GetCode(err) {
	case ErrCodeRenderTimeout, ErrCodeRenderTransient:
		return true
	}
	return false
}
