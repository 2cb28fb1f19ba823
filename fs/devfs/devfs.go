// Package devfs adapts a single vfs.Device to core.FileSystem.
//
// Calls go straight to the device's methods with no mount table in between,
// so paths are device paths ("/" is the device root). The device is supplied
// by the caller and is not owned by the adapter.
package devfs

import (
	"io"

	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// FS is the device-based adapter.
type FS struct {
	dev vfs.Device
}

// New returns an adapter over dev.
func New(dev vfs.Device) *FS {
	return &FS{dev: dev}
}

// Device returns the wrapped device.
func (fs *FS) Device() vfs.Device {
	return fs.dev
}

// Open implements core.FileOps.
func (fs *FS) Open(path string, flags int, mode uint32) (vfs.File, error) {
	return fs.dev.Open(path, flags, mode)
}

// Read implements core.FileOps.
func (fs *FS) Read(f vfs.File, buf []byte) (int, error) {
	return f.Read(buf)
}

// Write implements core.FileOps. A short count is io.ErrShortWrite.
func (fs *FS) Write(f vfs.File, buf []byte) (int, error) {
	n, err := f.Write(buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	return n, err
}

// Lseek implements core.FileOps.
func (fs *FS) Lseek(f vfs.File, offset int64, whence int) (int64, error) {
	return f.Lseek(offset, whence)
}

// Close implements core.FileOps.
func (fs *FS) Close(f vfs.File) error {
	return f.Close()
}

// Opendir implements core.DirOps.
func (fs *FS) Opendir(path string) (vfs.Dir, error) {
	return fs.dev.Opendir(path)
}

// Readdir implements core.DirOps.
func (fs *FS) Readdir(d vfs.Dir) (*core.Dirent, error) {
	return d.Readdir()
}

// Closedir implements core.DirOps.
func (fs *FS) Closedir(d vfs.Dir) error {
	return d.Close()
}

// Unlink implements core.PathOps.
func (fs *FS) Unlink(path string) error {
	return fs.dev.Unlink(path)
}

// Link implements core.PathOps.
func (fs *FS) Link(oldpath, newpath string) error {
	return fs.dev.Link(oldpath, newpath)
}

// Rename implements core.PathOps.
func (fs *FS) Rename(oldpath, newpath string) error {
	return fs.dev.Rename(oldpath, newpath)
}

// Mkdir implements core.PathOps.
func (fs *FS) Mkdir(path string, mode uint32) error {
	return fs.dev.Mkdir(path, mode)
}

// Rmdir implements core.PathOps.
func (fs *FS) Rmdir(path string) error {
	return fs.dev.Rmdir(path)
}

// Stat implements core.PathOps.
func (fs *FS) Stat(path string, buf *core.Stat) error {
	return fs.dev.Stat(path, buf)
}

// Truncate implements core.PathOps.
func (fs *FS) Truncate(path string, length int64) error {
	return fs.dev.Truncate(path, length)
}

var _ core.FileSystem[vfs.File, vfs.Dir] = (*FS)(nil)
