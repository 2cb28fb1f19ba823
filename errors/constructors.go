package errors

import "fmt"

// New creates a new PlatformError with the given code and message.
//
// Example:
//
//	err := errors.New(errors.CodeInvalidConfig, "bucket is required")
func New(code ErrorCode, message string) PlatformError {
	return &platformError{
		code:    code,
		message: message,
	}
}

// Newf creates a new PlatformError with a formatted message.
//
// Example:
//
//	err := errors.Newf(errors.CodeInvalidFlags, "invalid access mode %#o", flags&3)
func Newf(code ErrorCode, format string, args ...interface{}) PlatformError {
	return &platformError{
		code:    code,
		message: fmt.Sprintf(format, args...),
	}
}
