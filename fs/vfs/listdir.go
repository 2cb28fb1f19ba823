package vfs

import (
	"io"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// listDir is a cursor over a directory listing taken when it was opened.
type listDir struct {
	entries []core.Dirent
	next    int
	cur     core.Dirent
	closed  bool
}

// NewListDir returns a Dir that yields entries in order. Off is set to the
// 1-based position of each entry, and Reclen to the size linux_dirent64
// would use for its name. It is meant for devices whose backend returns
// whole listings rather than a kernel cursor.
func NewListDir(entries []core.Dirent) Dir {
	for i := range entries {
		entries[i].Off = int64(i + 1)
		entries[i].Reclen = direntReclen(entries[i].Name)
	}
	return &listDir{entries: entries}
}

func (d *listDir) Readdir() (*core.Dirent, error) {
	if d.closed {
		return nil, unix.EBADF
	}
	if d.next >= len(d.entries) {
		return nil, io.EOF
	}
	d.cur = d.entries[d.next]
	d.next++
	return &d.cur, nil
}

func (d *listDir) Close() error {
	if d.closed {
		return unix.EBADF
	}
	d.closed = true
	d.entries = nil
	return nil
}

func direntReclen(name string) uint16 {
	const header = 19
	return uint16((header + len(name) + 1 + 7) &^ 7)
}
