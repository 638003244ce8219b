package errors

import (
	"errors"
	"fmt"
)

// Error codes used across the system to classify failures.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeForbidden       = "FORBIDDEN"
	CodeInternal        = "INTERNAL"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeUnavailable     = "UNAVAILABLE"
)

// AppError is a structured error with a stable code, a human-readable
// message, and an optional wrapped cause.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given code, message, and optional cause.
func New(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Wrap annotates err with a message, preserving its code if it is already
// an AppError, defaulting to CodeInternal otherwise.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return &AppError{Code: ae.Code, Message: message, Err: err}
	}
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

// NotFound creates a CodeNotFound error.
func NotFound(message string, err error) *AppError {
	return New(CodeNotFound, message, err)
}

// Conflict creates a CodeConflict error.
func Conflict(message string, err error) *AppError {
	return New(CodeConflict, message, err)
}

// Forbidden creates a CodeForbidden error.
func Forbidden(message string, err error) *AppError {
	return New(CodeForbidden, message, err)
}

// Internal creates a CodeInternal error.
func Internal(message string, err error) *AppError {
	return New(CodeInternal, message, err)
}

// InvalidArgument creates a CodeInvalidArgument error.
func InvalidArgument(message string, err error) *AppError {
	return New(CodeInvalidArgument, message, err)
}

// RateLimited creates a CodeRateLimited error.
func RateLimited(message string, err error) *AppError {
	return New(CodeRateLimited, message, err)
}

// Unavailable creates a CodeUnavailable error.
func Unavailable(message string, err error) *AppError {
	return New(CodeUnavailable, message, err)
}

// Code returns the code of err if it is an AppError, or CodeInternal otherwise.
func Code(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// Is reports whether err's code equals code.
func Is(err error, code string) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
