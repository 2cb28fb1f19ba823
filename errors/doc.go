// Package errors provides the structured error type used by the filesystem
// adapters when a failure is not a plain native backend error.
//
// Native backend failures (the errno a device, descriptor or stream call
// produced) are returned to callers unchanged so that conformance tests
// observe true backend behavior. This package covers everything else:
//
//   - Configuration errors, such as an open-flags combination that has no
//     stream-mode equivalent (CodeInvalidFlags).
//   - Lifecycle errors raised while registering or mounting a device
//     (CodeLifecycle).
//
// Every PlatformError carries a code, a message, optional context metadata and
// an optional cause. The cause stays reachable through errors.Is and
// errors.As, so a configuration error that wraps EINVAL still satisfies
// errors.Is(err, unix.EINVAL).
//
// # Quick Start
//
//	err := errors.Wrap(unix.EINVAL, errors.CodeInvalidFlags, "O_CREAT requires O_TRUNC or O_APPEND")
//	err = errors.WithContext(err, "flags", flags)
//
//	if errors.GetCode(err) == errors.CodeInvalidFlags {
//	    // rejected before any native call was attempted
//	}
//
//	if errno, ok := errors.Errno(err); ok && errno == unix.ENOENT {
//	    // native not-found
//	}
package errors
