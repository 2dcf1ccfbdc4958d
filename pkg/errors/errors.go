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

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Template store errors
	ErrTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrTemplateInvalid  ErrorCode = "TEMPLATE_INVALID"

	// Render errors
	ErrAuxFileConflict ErrorCode = "AUX_FILE_CONFLICT"

	// Planning errors
	ErrUserCancelled  ErrorCode = "USER_CANCELLED"
	ErrNotADirectory  ErrorCode = "NOT_A_DIRECTORY"
	ErrInvalidPolicy  ErrorCode = "INVALID_POLICY"
	ErrEmptySelection ErrorCode = "EMPTY_SELECTION"

	// FileSystem errors
	ErrFileRead     ErrorCode = "FILE_READ"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
	ErrPartialWrite ErrorCode = "PARTIAL_WRITE"
)

// InixError represents a structured error with code and details
type InixError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *InixError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *InixError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *InixError) Is(target error) bool {
	var targetErr *InixError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new InixError with the given code and message
func New(code ErrorCode, message string) *InixError {
	return &InixError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new InixError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *InixError {
	return &InixError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an InixError
func Wrap(err error, code ErrorCode, message string) *InixError {
	if err == nil {
		return nil
	}
	return &InixError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *InixError {
	if err == nil {
		return nil
	}
	return &InixError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *InixError) WithDetail(key string, value interface{}) *InixError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var inixErr *InixError
	if errors.As(err, &inixErr) {
		return inixErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an InixError
func GetErrorCode(err error) ErrorCode {
	var inixErr *InixError
	if errors.As(err, &inixErr) {
		return inixErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an InixError
func GetErrorDetails(err error) map[string]interface{} {
	var inixErr *InixError
	if errors.As(err, &inixErr) {
		return inixErr.Details
	}
	return nil
}
