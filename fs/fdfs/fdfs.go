// Package fdfs adapts the descriptor calls of a vfs.System to
// core.FileSystem. Files are integer descriptors and paths are resolved
// through the System's mount table.
package fdfs

import (
	"io"

	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// FS is the descriptor-based adapter.
type FS struct {
	sys *vfs.System
}

// New returns an adapter over sys. A nil sys selects vfs.Default().
func New(sys *vfs.System) *FS {
	if sys == nil {
		sys = vfs.Default()
	}
	return &FS{sys: sys}
}

// System returns the System the adapter forwards to.
func (fs *FS) System() *vfs.System {
	return fs.sys
}

// Open implements core.FileOps.
func (fs *FS) Open(path string, flags int, mode uint32) (int, error) {
	return fs.sys.Open(path, flags, mode)
}

// Read implements core.FileOps.
func (fs *FS) Read(fd int, buf []byte) (int, error) {
	return fs.sys.Read(fd, buf)
}

// Write implements core.FileOps. A short count is io.ErrShortWrite.
func (fs *FS) Write(fd int, buf []byte) (int, error) {
	n, err := fs.sys.Write(fd, buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	return n, err
}

// Lseek implements core.FileOps.
func (fs *FS) Lseek(fd int, offset int64, whence int) (int64, error) {
	return fs.sys.Lseek(fd, offset, whence)
}

// Close implements core.FileOps.
func (fs *FS) Close(fd int) error {
	return fs.sys.Close(fd)
}

// Opendir implements core.DirOps.
func (fs *FS) Opendir(path string) (*vfs.DirStream, error) {
	return fs.sys.Opendir(path)
}

// Readdir implements core.DirOps.
func (fs *FS) Readdir(d *vfs.DirStream) (*core.Dirent, error) {
	return fs.sys.Readdir(d)
}

// Closedir implements core.DirOps.
func (fs *FS) Closedir(d *vfs.DirStream) error {
	return fs.sys.Closedir(d)
}

// Unlink implements core.PathOps.
func (fs *FS) Unlink(path string) error {
	return fs.sys.Unlink(path)
}

// Link implements core.PathOps.
func (fs *FS) Link(oldpath, newpath string) error {
	return fs.sys.Link(oldpath, newpath)
}

// Rename implements core.PathOps.
func (fs *FS) Rename(oldpath, newpath string) error {
	return fs.sys.Rename(oldpath, newpath)
}

// Mkdir implements core.PathOps.
func (fs *FS) Mkdir(path string, mode uint32) error {
	return fs.sys.Mkdir(path, mode)
}

// Rmdir implements core.PathOps.
func (fs *FS) Rmdir(path string) error {
	return fs.sys.Rmdir(path)
}

// Stat implements core.PathOps.
func (fs *FS) Stat(path string, buf *core.Stat) error {
	return fs.sys.Stat(path, buf)
}

// Truncate implements core.PathOps.
func (fs *FS) Truncate(path string, length int64) error {
	return fs.sys.Truncate(path, length)
}

var _ core.FileSystem[int, *vfs.DirStream] = (*FS)(nil)
