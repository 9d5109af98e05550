// Package errors provides structured error types for GraphyPad.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: request validation failures (kind "validation")
//   - RENDER_*: failures while drawing a chart (kind "render")
//   - *_NOT_FOUND: resource not found (kind "not_found")
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidColumn, "unknown column %q", name)
//	if errors.IsValidation(err) {
//	    // reject the request before rendering
//	}
//
//	err := errors.Render(errors.ErrCodeRenderEmptySeries, "box", "b", "no values left after dropping missing")
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Request validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidRequest   Code = "INVALID_REQUEST"
	ErrCodeInvalidColumn    Code = "INVALID_COLUMN"
	ErrCodeInvalidChartType Code = "INVALID_CHART_TYPE"
	ErrCodeInvalidJSON      Code = "INVALID_JSON"
	ErrCodeInvalidStyle     Code = "INVALID_STYLE"
	ErrCodeInvalidRange     Code = "INVALID_RANGE"
	ErrCodeInvalidAxis      Code = "INVALID_AXIS"
	ErrCodeInvalidFile      Code = "INVALID_FILE"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeInvalidPage      Code = "INVALID_PAGE"

	// Rendering errors
	ErrCodeRenderMissingColumn Code = "RENDER_MISSING_COLUMN"
	ErrCodeRenderNonNumeric    Code = "RENDER_NON_NUMERIC"
	ErrCodeRenderEmptySeries   Code = "RENDER_EMPTY_SERIES"
	ErrCodeRenderInvalidValue  Code = "RENDER_INVALID_VALUE"
	ErrCodeRenderCanvas        Code = "RENDER_CANVAS"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Backend errors
	ErrCodeTimeout Code = "TIMEOUT"
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error kinds reported to front ends as error_kind.
const (
	KindValidation = "validation"
	KindRender     = "render"
	KindNotFound   = "not_found"
	KindInternal   = "internal"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Op      string // Draw operation that failed (render errors only)
	Column  string // Offending column, if any
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Kind returns the error_kind this code belongs to.
func (c Code) Kind() string {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "INVALID_"):
		return KindValidation
	case strings.HasPrefix(s, "RENDER_"):
		return KindRender
	case s == string(ErrCodeNotFound) || strings.HasSuffix(s, "_NOT_FOUND"):
		return KindNotFound
	default:
		return KindInternal
	}
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

// Column creates a validation error that names the offending column.
func Column(code Code, column string, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Column = column
	return e
}

// Render creates a render error for the given draw operation and column.
func Render(code Code, op, column string, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Op = op
	e.Column = column
	return e
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

// KindOf returns the error_kind of err. Errors that are not *Error are internal.
func KindOf(err error) string {
	if code := GetCode(err); code != "" {
		return code.Kind()
	}
	return KindInternal
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsRender reports whether err is a failure while drawing.
func IsRender(err error) bool { return KindOf(err) == KindRender }

// IsNotFound reports whether err refers to a missing resource.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Column != "" && !strings.Contains(e.Message, e.Column) {
			return fmt.Sprintf("%s (column %q)", e.Message, e.Column)
		}
		return e.Message
	}
	return err.Error()
}
