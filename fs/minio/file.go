package minio

import (
	"context"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// file holds a whole object in memory. Writes modify the buffer and mark it
// dirty; a dirty buffer is uploaded on Close.
type file struct {
	dev    *Device
	key    string
	flags  int
	data   []byte
	pos    int64
	dirty  bool
	closed bool
}

func (f *file) Read(buf []byte) (int, error) {
	if f.closed {
		return 0, unix.EBADF
	}
	if !core.Readable(f.flags) {
		return 0, unix.EBADF
	}
	if f.pos >= int64(len(f.data)) {
		return 0, nil
	}
	n := copy(buf, f.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *file) Write(buf []byte) (int, error) {
	if f.closed {
		return 0, unix.EBADF
	}
	if !core.Writable(f.flags) {
		return 0, unix.EBADF
	}
	if f.flags&core.O_APPEND != 0 {
		f.pos = int64(len(f.data))
	}

	end := f.pos + int64(len(buf))
	if end > int64(len(f.data)) {
		f.data = resize(f.data, end)
	}
	copy(f.data[f.pos:], buf)
	f.pos = end
	f.dirty = true
	return len(buf), nil
}

func (f *file) Lseek(offset int64, whence int) (int64, error) {
	if f.closed {
		return -1, unix.EBADF
	}

	var base int64
	switch whence {
	case core.SeekSet:
	case core.SeekCur:
		base = f.pos
	case core.SeekEnd:
		base = int64(len(f.data))
	default:
		return -1, unix.EINVAL
	}
	if base+offset < 0 {
		return -1, unix.EINVAL
	}
	f.pos = base + offset
	return f.pos, nil
}

// Close uploads the buffer if it was modified. The handle is released even
// when the upload fails.
func (f *file) Close() error {
	if f.closed {
		return unix.EBADF
	}
	f.closed = true
	if !f.dirty {
		return nil
	}

	err := f.dev.put(context.Background(), f.key, f.data)
	if err != nil {
		f.dev.logger.Warn("object upload failed", "bucket", f.dev.bucket, "key", f.key, "size", len(f.data), "error", err)
	}
	f.data = nil
	return err
}

var _ vfs.File = (*file)(nil)
