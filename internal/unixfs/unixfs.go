//go:build linux

// Package unixfs holds the host syscall helpers shared by the host
// passthrough device and the host-native adapter.
package unixfs

import (
	"io"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// OpenFlags converts core open flags to host flags. Descriptors are always
// opened close-on-exec.
func OpenFlags(flags int) int {
	out := 0
	switch core.AccessMode(flags) {
	case core.O_RDONLY:
		out = unix.O_RDONLY
	case core.O_WRONLY:
		out = unix.O_WRONLY
	case core.O_RDWR:
		out = unix.O_RDWR
	default:
		out = flags & core.O_ACCMODE
	}
	if flags&core.O_CREAT != 0 {
		out |= unix.O_CREAT
	}
	if flags&core.O_EXCL != 0 {
		out |= unix.O_EXCL
	}
	if flags&core.O_TRUNC != 0 {
		out |= unix.O_TRUNC
	}
	if flags&core.O_APPEND != 0 {
		out |= unix.O_APPEND
	}
	return out | unix.O_CLOEXEC
}

// FillStat copies a host stat record into buf.
func FillStat(st *unix.Stat_t, buf *core.Stat) {
	*buf = core.Stat{
		Dev:     uint64(st.Dev),
		Ino:     st.Ino,
		Mode:    st.Mode,
		Nlink:   uint64(st.Nlink),
		UID:     st.Uid,
		GID:     st.Gid,
		Rdev:    uint64(st.Rdev),
		Size:    st.Size,
		Blksize: int64(st.Blksize),
		Blocks:  st.Blocks,
		Atime:   time.Unix(st.Atim.Unix()),
		Mtime:   time.Unix(st.Mtim.Unix()),
		Ctime:   time.Unix(st.Ctim.Unix()),
	}
}

// Stat stats path on the host.
func Stat(path string, buf *core.Stat) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return err
	}
	FillStat(&st, buf)
	return nil
}

// Lseek repositions fd, rejecting an unknown whence before the syscall.
func Lseek(fd int, offset int64, whence int) (int64, error) {
	if whence < core.SeekSet || whence > core.SeekEnd {
		return -1, unix.EINVAL
	}
	return unix.Seek(fd, offset, whence)
}

// Read makes a single read(2) on fd. EINTR and every other errno come
// back unchanged.
func Read(fd int, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Write makes a single write(2) on fd. A count short of len(buf) with no
// errno is reported as io.ErrShortWrite.
func Write(fd int, buf []byte) (int, error) {
	n, err := unix.Write(fd, buf)
	if err != nil {
		return 0, err
	}
	if n != len(buf) {
		return n, io.ErrShortWrite
	}
	return n, nil
}
