// Package errs translates MinIO errors into the errno results a device
// reports.
package errs

import (
	"syscall"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sys/unix"
)

// Translate converts a MinIO error to an errno. Unrecognized errors become
// EIO.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errno, ok := err.(syscall.Errno); ok {
		return errno
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return unix.ENOENT
	case "AccessDenied":
		return unix.EACCES
	case "InvalidObjectName":
		return unix.EINVAL
	case "KeyTooLongError":
		return unix.ENAMETOOLONG
	case "EntityTooLarge":
		return unix.EFBIG
	case "SlowDown", "RequestTimeout":
		return unix.EAGAIN
	}
	return unix.EIO
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}
