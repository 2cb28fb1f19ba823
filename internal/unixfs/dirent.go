//go:build linux

package unixfs

import (
	"encoding/binary"
	"io"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// linux_dirent64 field offsets.
const (
	direntIno    = 0
	direntOff    = 8
	direntReclen = 16
	direntType   = 18
	direntName   = 19
)

const direntBufSize = 8192

// DirReader reads directory entries from an open directory descriptor with
// getdents64.
type DirReader struct {
	fd   int
	buf  []byte
	pos  int
	end  int
	ent  core.Dirent
	done bool
}

// OpenDir opens path as a directory.
func OpenDir(path string) (*DirReader, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &DirReader{fd: fd, buf: make([]byte, direntBufSize)}, nil
}

// Next returns the next entry, or nil and io.EOF. The entry is overwritten
// by the following call.
func (r *DirReader) Next() (*core.Dirent, error) {
	if r.fd < 0 {
		return nil, unix.EBADF
	}
	for {
		if r.pos < r.end {
			return r.parse(), nil
		}
		if r.done {
			return nil, io.EOF
		}

		n, err := unix.Getdents(r.fd, r.buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			r.done = true
			return nil, io.EOF
		}
		r.pos, r.end = 0, n
	}
}

func (r *DirReader) parse() *core.Dirent {
	rec := r.buf[r.pos:r.end]
	reclen := binary.NativeEndian.Uint16(rec[direntReclen:])

	name := rec[direntName:reclen]
	for i, c := range name {
		if c == 0 {
			name = name[:i]
			break
		}
	}

	r.ent = core.Dirent{
		Ino:    binary.NativeEndian.Uint64(rec[direntIno:]),
		Off:    int64(binary.NativeEndian.Uint64(rec[direntOff:])),
		Reclen: reclen,
		Type:   rec[direntType],
		Name:   string(name),
	}
	r.pos += int(reclen)
	return &r.ent
}

// Close closes the directory descriptor.
func (r *DirReader) Close() error {
	if r.fd < 0 {
		return unix.EBADF
	}
	fd := r.fd
	r.fd = -1
	return unix.Close(fd)
}
