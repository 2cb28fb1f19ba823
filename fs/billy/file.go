package billy

import (
	"errors"
	"io"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// file wraps billy.File with POSIX read/write semantics. billy reports end
// of file as io.EOF and leaves access checks and O_APPEND to the backend, so
// the handle enforces them itself.
type file struct {
	file  billy.File
	flags int
}

func (f *file) Read(buf []byte) (int, error) {
	if !core.Readable(f.flags) {
		return 0, unix.EBADF
	}
	n, err := f.file.Read(buf)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	if err != nil {
		return n, core.ToErrno(err)
	}
	return n, nil
}

func (f *file) Write(buf []byte) (int, error) {
	if !core.Writable(f.flags) {
		return 0, unix.EBADF
	}
	if f.flags&core.O_APPEND != 0 {
		if _, err := f.file.Seek(0, io.SeekEnd); err != nil {
			return 0, core.ToErrno(err)
		}
	}
	n, err := f.file.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	return n, core.ToErrno(err)
}

func (f *file) Lseek(offset int64, whence int) (int64, error) {
	if whence < core.SeekSet || whence > core.SeekEnd {
		return -1, unix.EINVAL
	}
	pos, err := f.file.Seek(offset, whence)
	if err != nil {
		return -1, core.ToErrno(err)
	}
	if pos < 0 {
		return -1, unix.EINVAL
	}
	return pos, nil
}

func (f *file) Close() error {
	return core.ToErrno(f.file.Close())
}

var _ vfs.File = (*file)(nil)
