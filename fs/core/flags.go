package core

import "os"

// Open flags. The values follow the Linux encoding: the access mode occupies
// the low two bits and the behavior bits are independent.
const (
	O_RDONLY  = 0x0
	O_WRONLY  = 0x1
	O_RDWR    = 0x2
	O_ACCMODE = 0x3
	O_CREAT   = 0o100
	O_EXCL    = 0o200
	O_TRUNC   = 0o1000
	O_APPEND  = 0o2000
)

// Seek origins for Lseek.
const (
	SeekSet = 0
	SeekCur = 1
	SeekEnd = 2
)

// AccessMode returns the access-mode bits of flags.
func AccessMode(flags int) int {
	return flags & O_ACCMODE
}

// Readable reports whether flags grant read access.
func Readable(flags int) bool {
	mode := AccessMode(flags)
	return mode == O_RDONLY || mode == O_RDWR
}

// Writable reports whether flags grant write access.
func Writable(flags int) bool {
	mode := AccessMode(flags)
	return mode == O_WRONLY || mode == O_RDWR
}

// OSFlags converts flags into the os package encoding used by go-billy and
// other os-shaped backends. Unknown bits are dropped.
func OSFlags(flags int) int {
	var out int
	switch AccessMode(flags) {
	case O_WRONLY:
		out = os.O_WRONLY
	case O_RDWR:
		out = os.O_RDWR
	default:
		out = os.O_RDONLY
	}
	if flags&O_CREAT != 0 {
		out |= os.O_CREATE
	}
	if flags&O_EXCL != 0 {
		out |= os.O_EXCL
	}
	if flags&O_TRUNC != 0 {
		out |= os.O_TRUNC
	}
	if flags&O_APPEND != 0 {
		out |= os.O_APPEND
	}
	return out
}
