// Package errors provides structured error types for memeforge.
//
// Errors carry a machine-readable [Code] so callers can tell the three
// failure families of the editor apart without string matching:
//
//   - INVALID_*: input rejected locally (non-image file, zero-area image,
//     malformed aspect preset). No state changes.
//   - DECODE_FAILED / RASTERIZE_FAILED / FILE_NOT_FOUND: a collaborator
//     failed at an async boundary. The scene stays at its last good
//     snapshot.
//   - ELEMENT_NOT_FOUND / GESTURE_*: desynchronized selection or gesture
//     state. The single action is aborted and the failure logged.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidImage, "image %s has zero area", id)
//	if errors.Is(err, errors.ErrCodeInvalidImage) {
//	    // reject locally
//	}
//
//	err := errors.Wrap(errors.ErrCodeDecodeFailed, origErr, "decode %s", path)
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
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidImage     Code = "INVALID_IMAGE"
	ErrCodeInvalidCanvas    Code = "INVALID_CANVAS"
	ErrCodeInvalidAspect    Code = "INVALID_ASPECT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeInvalidColor     Code = "INVALID_COLOR"
	ErrCodeEmptyArrangement Code = "EMPTY_ARRANGEMENT"

	// Resource failures
	ErrCodeDecodeFailed    Code = "DECODE_FAILED"
	ErrCodeRasterizeFailed Code = "RASTERIZE_FAILED"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Invariant violations
	ErrCodeElementNotFound Code = "ELEMENT_NOT_FOUND"
	ErrCodeGestureActive   Code = "GESTURE_ACTIVE"
	ErrCodeNoActiveGesture Code = "NO_ACTIVE_GESTURE"

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

// IsInvalidInput reports whether err belongs to the input validation family.
// These are rejected locally and never reach the scene or the history.
func IsInvalidInput(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidImage, ErrCodeInvalidCanvas,
		ErrCodeInvalidAspect, ErrCodeInvalidFormat, ErrCodeInvalidPath,
		ErrCodeInvalidColor, ErrCodeEmptyArrangement:
		return true
	}
	return false
}

// IsResourceFailure reports whether err came from a failing collaborator
// (decoder, rasterizer, filesystem).
func IsResourceFailure(err error) bool {
	switch GetCode(err) {
	case ErrCodeDecodeFailed, ErrCodeRasterizeFailed, ErrCodeFileNotFound:
		return true
	}
	return false
}
