package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability.
type ErrorCode string

const (
	// CodeInvalidFlags indicates an open-flags combination the backend has no
	// native representation for. Detected before any native call.
	CodeInvalidFlags ErrorCode = "INVALID_FLAGS"

	// CodeInvalidConfig indicates a component was constructed with an invalid
	// configuration.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeNative indicates a backend call failed. The cause is the backend's
	// native error.
	CodeNative ErrorCode = "NATIVE_ERROR"

	// CodeLifecycle indicates device registration, mount or unmount failed.
	CodeLifecycle ErrorCode = "LIFECYCLE_FAILED"

	// CodeNotFound indicates a repository or revision does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a repository already exists.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeConflict indicates the operation conflicts with current state, such
	// as a commit with nothing staged.
	CodeConflict ErrorCode = "CONFLICT"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
