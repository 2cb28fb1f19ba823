package core

import (
	"io/fs"
	"time"
)

// File type bits of Stat.Mode.
const (
	S_IFMT   = 0o170000
	S_IFSOCK = 0o140000
	S_IFLNK  = 0o120000
	S_IFREG  = 0o100000
	S_IFBLK  = 0o060000
	S_IFDIR  = 0o040000
	S_IFCHR  = 0o020000
	S_IFIFO  = 0o010000
)

// Directory entry types of Dirent.Type.
const (
	DT_UNKNOWN = 0
	DT_FIFO    = 1
	DT_CHR     = 2
	DT_DIR     = 4
	DT_BLK     = 6
	DT_REG     = 8
	DT_LNK     = 10
	DT_SOCK    = 12
)

// Stat describes file metadata. It is filled in place by FileSystem.Stat and
// owned by the caller.
type Stat struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   uint64
	UID     uint32
	GID     uint32
	Rdev    uint64
	Size    int64
	Blksize int64
	Blocks  int64
	Atime   time.Time
	Mtime   time.Time
	Ctime   time.Time
}

// IsReg reports whether the record describes a regular file.
func (s *Stat) IsReg() bool { return s.Mode&S_IFMT == S_IFREG }

// IsDir reports whether the record describes a directory.
func (s *Stat) IsDir() bool { return s.Mode&S_IFMT == S_IFDIR }

// Perm returns the permission bits.
func (s *Stat) Perm() uint32 { return s.Mode & 0o777 }

// Dirent is one directory entry produced by Readdir.
type Dirent struct {
	Ino    uint64
	Off    int64
	Reclen uint16
	Type   uint8
	Name   string
}

// ModeFromFileMode converts an io/fs mode into POSIX mode bits.
func ModeFromFileMode(m fs.FileMode) uint32 {
	mode := uint32(m.Perm())
	switch {
	case m.IsDir():
		mode |= S_IFDIR
	case m&fs.ModeSymlink != 0:
		mode |= S_IFLNK
	case m&fs.ModeNamedPipe != 0:
		mode |= S_IFIFO
	case m&fs.ModeSocket != 0:
		mode |= S_IFSOCK
	case m&fs.ModeCharDevice != 0:
		mode |= S_IFCHR
	case m&fs.ModeDevice != 0:
		mode |= S_IFBLK
	default:
		mode |= S_IFREG
	}
	return mode
}

// DirentType returns the Dirent.Type for POSIX mode bits.
func DirentType(mode uint32) uint8 {
	switch mode & S_IFMT {
	case S_IFREG:
		return DT_REG
	case S_IFDIR:
		return DT_DIR
	case S_IFLNK:
		return DT_LNK
	case S_IFIFO:
		return DT_FIFO
	case S_IFSOCK:
		return DT_SOCK
	case S_IFCHR:
		return DT_CHR
	case S_IFBLK:
		return DT_BLK
	default:
		return DT_UNKNOWN
	}
}

// StatFromFileInfo fills buf from an fs.FileInfo, for backends that do not
// keep inode level metadata. Fields the backend cannot supply are zero, apart
// from Nlink which is 1 for files and 2 for directories.
func StatFromFileInfo(info fs.FileInfo, buf *Stat) {
	*buf = Stat{
		Mode:    ModeFromFileMode(info.Mode()),
		Nlink:   1,
		Size:    info.Size(),
		Blksize: 4096,
		Blocks:  (info.Size() + 511) / 512,
		Atime:   info.ModTime(),
		Mtime:   info.ModTime(),
		Ctime:   info.ModTime(),
	}
	if info.IsDir() {
		buf.Nlink = 2
		buf.Size = 0
		buf.Blocks = 0
	}
}
