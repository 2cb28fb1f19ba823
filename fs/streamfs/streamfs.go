// Package streamfs adapts buffered stdio streams to core.FileSystem.
//
// Files are opened as streams on a vfs.System after translating the open
// flags to a mode string with ModeFor. Directory and path operations go to
// the System directly. Stream reads and writes only report counts, so the
// adapter consults the end-of-file and error indicators to turn a short
// count into either normal end of data or an error.
package streamfs

import (
	"io"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/stdio"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// FS is the buffered-stream adapter.
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

// System returns the System the adapter opens streams on.
func (fs *FS) System() *vfs.System {
	return fs.sys
}

// Open opens path as a stream. The mode argument is ignored; streams create
// files with stdio.CreateMode.
func (fs *FS) Open(path string, flags int, _ uint32) (*stdio.Stream, error) {
	mode, err := ModeFor(flags)
	if err != nil {
		return nil, err
	}
	return stdio.Open(fs.sys, path, mode)
}

// Read fills buf from the stream. The error indicator takes precedence over
// end of file, so a failure after end of data is still reported.
func (fs *FS) Read(s *stdio.Stream, buf []byte) (int, error) {
	n := s.Fread(buf)
	if err := s.Ferror(); err != nil {
		return n, err
	}
	if n == len(buf) || s.Feof() {
		return n, nil
	}
	return n, unix.EIO
}

// Write buffers buf on the stream. A short count is reported through the
// error indicator, or io.ErrShortWrite when none is set.
func (fs *FS) Write(s *stdio.Stream, buf []byte) (int, error) {
	n := s.Fwrite(buf)
	if n == len(buf) {
		return n, nil
	}
	if err := s.Ferror(); err != nil {
		return n, err
	}
	return n, io.ErrShortWrite
}

// Lseek seeks the stream and returns the new offset.
func (fs *FS) Lseek(s *stdio.Stream, offset int64, whence int) (int64, error) {
	if err := s.Fseek(offset, whence); err != nil {
		return -1, err
	}
	return s.Ftell()
}

// Close flushes and closes the stream.
func (fs *FS) Close(s *stdio.Stream) error {
	return s.Fclose()
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

var _ core.FileSystem[*stdio.Stream, *vfs.DirStream] = (*FS)(nil)
