package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// I/O errors raised by write sinks. Callers treat these as
	// environment problems and render them as system errors.
	ErrFileRead     ErrorCode = "FILE_READ"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrFileCopy     ErrorCode = "FILE_COPY"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
	ErrFlush        ErrorCode = "FLUSH"
	ErrManifestCopy ErrorCode = "MANIFEST_COPY"

	// Merge-semantic errors. Distinct from the I/O kind so callers can
	// render a build-logic diagnostic instead of a system-error message.
	ErrMergeConflict ErrorCode = "MERGE_CONFLICT"

	// Cache errors
	ErrCacheEncode ErrorCode = "CACHE_ENCODE"
	ErrCacheDecode ErrorCode = "CACHE_DECODE"
)

// ResmergeError represents a structured error with code and details
type ResmergeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ResmergeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ResmergeError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ResmergeError) Is(target error) bool {
	var targetErr *ResmergeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ResmergeError with the given code and message
func New(code ErrorCode, message string) *ResmergeError {
	return &ResmergeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ResmergeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ResmergeError {
	return &ResmergeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ResmergeError
func Wrap(err error, code ErrorCode, message string) *ResmergeError {
	if err == nil {
		return nil
	}
	return &ResmergeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ResmergeError {
	if err == nil {
		return nil
	}
	return &ResmergeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ResmergeError) WithDetail(key string, value interface{}) *ResmergeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var rmErr *ResmergeError
	if errors.As(err, &rmErr) {
		return rmErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ResmergeError
func GetErrorCode(err error) ErrorCode {
	var rmErr *ResmergeError
	if errors.As(err, &rmErr) {
		return rmErr.Code
	}
	return ErrUnknown
}

// IsMergeError reports whether err is the merge-semantic kind rather than
// a raw I/O failure.
func IsMergeError(err error) bool {
	return IsErrorCode(err, ErrMergeConflict)
}
