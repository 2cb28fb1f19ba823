package core

import (
	"errors"
	"io"
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrUnsupported is returned by backends that cannot honor a primitive, such
// as hard links on object storage.
var ErrUnsupported = unix.ENOTSUP

// ToErrno converts an error produced by an os-shaped backend (go-billy, an
// object store) into the errno a device reports. Errors that already carry an
// errno keep it. Unrecognized errors become EIO.
func ToErrno(err error) error {
	if err == nil {
		return nil
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return unix.ENOENT
	case errors.Is(err, fs.ErrExist):
		return unix.EEXIST
	case errors.Is(err, fs.ErrPermission):
		return unix.EACCES
	case errors.Is(err, fs.ErrClosed):
		return unix.EBADF
	case errors.Is(err, fs.ErrInvalid):
		return unix.EINVAL
	case errors.Is(err, io.ErrShortWrite):
		return unix.EIO
	}

	return unix.EIO
}
