//go:build linux

// Package posixfs adapts the host's own POSIX calls to core.FileSystem.
// There is no device or mount table: paths are host paths and files are
// host descriptors.
package posixfs

import (
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/internal/unixfs"
)

// FS is the host-native adapter.
type FS struct{}

// Dir is an open host directory.
type Dir struct {
	r *unixfs.DirReader
}

// New returns a host-native adapter.
func New() *FS {
	return &FS{}
}

// Open implements core.FileOps.
func (fs *FS) Open(path string, flags int, mode uint32) (int, error) {
	return unix.Open(path, unixfs.OpenFlags(flags), mode)
}

// Read makes one read(2) call.
func (fs *FS) Read(fd int, buf []byte) (int, error) {
	return unixfs.Read(fd, buf)
}

// Write makes one write(2) call. A short count is io.ErrShortWrite.
func (fs *FS) Write(fd int, buf []byte) (int, error) {
	return unixfs.Write(fd, buf)
}

// Lseek implements core.FileOps.
func (fs *FS) Lseek(fd int, offset int64, whence int) (int64, error) {
	return unixfs.Lseek(fd, offset, whence)
}

// Close implements core.FileOps.
func (fs *FS) Close(fd int) error {
	return unix.Close(fd)
}

// Opendir implements core.DirOps.
func (fs *FS) Opendir(path string) (*Dir, error) {
	r, err := unixfs.OpenDir(path)
	if err != nil {
		return nil, err
	}
	return &Dir{r: r}, nil
}

// Readdir returns io.EOF once the stream is exhausted.
func (fs *FS) Readdir(d *Dir) (*core.Dirent, error) {
	return d.r.Next()
}

// Closedir implements core.DirOps.
func (fs *FS) Closedir(d *Dir) error {
	return d.r.Close()
}

// Unlink implements core.PathOps.
func (fs *FS) Unlink(path string) error {
	return unix.Unlink(path)
}

// Link implements core.PathOps.
func (fs *FS) Link(oldpath, newpath string) error {
	return unix.Link(oldpath, newpath)
}

// Rename implements core.PathOps.
func (fs *FS) Rename(oldpath, newpath string) error {
	return unix.Rename(oldpath, newpath)
}

// Mkdir implements core.PathOps.
func (fs *FS) Mkdir(path string, mode uint32) error {
	return unix.Mkdir(path, mode)
}

// Rmdir implements core.PathOps.
func (fs *FS) Rmdir(path string) error {
	return unix.Rmdir(path)
}

// Stat implements core.PathOps.
func (fs *FS) Stat(path string, buf *core.Stat) error {
	return unixfs.Stat(path, buf)
}

// Truncate implements core.PathOps.
func (fs *FS) Truncate(path string, length int64) error {
	return unix.Truncate(path, length)
}

var _ core.FileSystem[int, *Dir] = (*FS)(nil)
