package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{Code: appErr.Code, Message: message, Cause: err}
	}
	return &AppError{Code: CodeInternal, Message: message, Cause: err}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Code extracts the error code, or CodeInternal for unstructured errors.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Error codes used across the application.
const (
	CodeInternal       = "INTERNAL_ERROR"
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeDatasetInvalid = "DATASET_INVALID"
	CodeSourceRead     = "SOURCE_READ_FAILED"
	CodeNotFound       = "NOT_FOUND"
)

// ConfigInvalid builds a configuration error
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// DatasetInvalid builds a malformed-dataset error. These propagate to the
// caller; they are not recoverable analysis conditions.
func DatasetInvalid(message string) *AppError {
	return New(CodeDatasetInvalid, message)
}

// SourceRead builds a data-source read error
func SourceRead(message string) *AppError {
	return New(CodeSourceRead, message)
}

// NotFound builds a lookup-miss error
func NotFound(what string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", what))
}
