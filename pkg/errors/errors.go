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
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Stress harness errors
	ErrStressMismatch ErrorCode = "STRESS_MISMATCH"

	// Help topic errors
	ErrTopicNotFound ErrorCode = "TOPIC_NOT_FOUND"
)

// DelgError represents a structured error with code and details
type DelgError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DelgError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DelgError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DelgError) Is(target error) bool {
	var targetErr *DelgError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DelgError with the given code and message
func New(code ErrorCode, message string) *DelgError {
	return &DelgError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DelgError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DelgError {
	return &DelgError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DelgError
func Wrap(err error, code ErrorCode, message string) *DelgError {
	if err == nil {
		return nil
	}
	return &DelgError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DelgError {
	if err == nil {
		return nil
	}
	return &DelgError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DelgError) WithDetail(key string, value interface{}) *DelgError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Join combines several errors into one, dropping nils. It returns nil when
// nothing is left and the single error unchanged when only one remains.
func Join(errs ...error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return errors.Join(kept...)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var delgErr *DelgError
	if errors.As(err, &delgErr) {
		return delgErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DelgError
func GetErrorCode(err error) ErrorCode {
	var delgErr *DelgError
	if errors.As(err, &delgErr) {
		return delgErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DelgError
func GetErrorDetails(err error) map[string]interface{} {
	var delgErr *DelgError
	if errors.As(err, &delgErr) {
		return delgErr.Details
	}
	return nil
}
