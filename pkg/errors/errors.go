// Package errors provides structured error types for the hdf2mic converter.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the builder, serializers, and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages carrying the offending path or value
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (config or dataset shape)
//   - UNKNOWN_*: Lookup failures in the fixed type/kind tables
//   - *_MISMATCH: Cross-field invariant violations
//   - DATASET_NOT_FOUND / MISSING_OUTPUT_FILE: Missing resources
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDimension, "dim is %d, not 1, 2 or 3", dim)
//	if errors.Is(err, errors.ErrCodeInvalidDimension) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIOFailure, origErr, "cannot open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the conversion taxonomy.
const (
	// Model construction errors
	ErrCodeInvalidDimension  Code = "INVALID_DIMENSION"
	ErrCodeDimensionMismatch Code = "DIMENSION_MISMATCH"
	ErrCodeUnknownDataType   Code = "UNKNOWN_DATA_TYPE"
	ErrCodeUnknownKind       Code = "UNKNOWN_KIND"
	ErrCodeInvalidSpacing    Code = "INVALID_SPACING"
	ErrCodeInvalidCellData   Code = "INVALID_CELLDATA"
	ErrCodeFieldArrays       Code = "FIELD_ARRAY_MISMATCH"

	// Resource errors
	ErrCodeDatasetNotFound   Code = "DATASET_NOT_FOUND"
	ErrCodeMissingOutputFile Code = "MISSING_OUTPUT_FILE"
	ErrCodeTemplateEmpty     Code = "TEMPLATE_EMPTY"

	// Serialization errors
	ErrCodeKindMismatch Code = "KIND_MISMATCH"

	// Configuration and environment errors
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeIOFailure     Code = "IO_FAILURE"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
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
