package errors

import (
	stderrors "errors"
	"syscall"
)

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard library errors.As.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
//
// A bare syscall.Errno (a native backend error returned unchanged) reports
// CodeNative. Returns CodeUnknown if the error is nil or carries neither.
//
// Example:
//
//	if errors.GetCode(err) == errors.CodeInvalidFlags {
//	    // configuration error, no native call was made
//	}
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var platformErr PlatformError
	if stderrors.As(err, &platformErr) {
		return platformErr.Code()
	}

	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		return CodeNative
	}

	return CodeUnknown
}

// Errno extracts the native errno from err's chain.
// It reports false if err is nil or carries no errno.
func Errno(err error) (syscall.Errno, bool) {
	if err == nil {
		return 0, false
	}
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}

// IsConfigError reports whether err is a configuration error detected before
// any native call was attempted.
func IsConfigError(err error) bool {
	code := GetCode(err)
	return code == CodeInvalidFlags || code == CodeInvalidConfig
}
