package vfs

import (
	"github.com/jmgilman/go/fsadapter/fs/core"
)

// DevID identifies a registered device.
type DevID int

// Well-known device identifiers.
const (
	// DevNone is the zero DevID. It is never registered.
	DevNone DevID = 0
	// DevHostFS is the host passthrough filesystem.
	DevHostFS DevID = 1
	// DevMemFS is the enclave-local in-memory filesystem.
	DevMemFS DevID = 2
	// DevObjFS is the object storage filesystem.
	DevObjFS DevID = 3
)

// MountFlags modify a mount.
type MountFlags uint32

const (
	// MountReadOnly rejects opens requesting write access and every
	// mutating path operation with EPERM.
	MountReadOnly MountFlags = 1 << iota
)

// Device is the dispatch table of a storage device. Paths passed to a Device
// are absolute within the device ("/" is the device root).
//
// Every method reports failure with a native errno.
type Device interface {
	// Type reports the kind of storage behind the device.
	Type() core.FSType

	// Clone returns an independent instance for a new mount.
	Clone() (Device, error)

	// Mount notifies the device that it has been bound at target. source is
	// device specific and may be empty.
	Mount(source, target string, flags MountFlags) error

	// Unmount notifies the device that its binding at target was removed.
	Unmount(target string) error

	// Open opens path with the given open flags.
	Open(path string, flags int, mode uint32) (File, error)

	// Opendir opens a directory cursor. Cursors report "." and ".." entries.
	Opendir(path string) (Dir, error)

	core.PathOps
}

// File is an open file on a device.
type File interface {
	// Read reads up to len(buf) bytes, returning 0 and nil at end of data.
	Read(buf []byte) (int, error)
	// Write writes buf at the current offset, or at end of file for
	// handles opened with O_APPEND.
	Write(buf []byte) (int, error)
	// Lseek repositions the offset and returns the new absolute offset.
	Lseek(offset int64, whence int) (int64, error)
	// Close releases the file.
	Close() error
}

// Dir is an open directory cursor on a device.
type Dir interface {
	// Readdir returns the next entry, or nil and io.EOF.
	Readdir() (*core.Dirent, error)
	// Close releases the cursor.
	Close() error
}
