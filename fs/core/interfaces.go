package core

// FSType represents the underlying type of storage behind a device.
type FSType int

const (
	// FSTypeUnknown indicates the filesystem type is unknown or unspecified.
	FSTypeUnknown FSType = iota
	// FSTypeLocal indicates a local filesystem (e.g., disk-backed).
	FSTypeLocal
	// FSTypeMemory indicates an in-memory filesystem.
	FSTypeMemory
	// FSTypeRemote indicates a remote filesystem (e.g., S3, cloud storage).
	FSTypeRemote
)

// String returns a string representation of the FSType.
func (t FSType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeMemory:
		return "memory"
	case FSTypeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// FileSystem is the uniform adapter contract. Every backend adapter
// implements it with its own handle types F and D.
//
// FileSystem is composed of three sub-interfaces: FileOps (handle based I/O),
// DirOps (directory enumeration) and PathOps (operations addressed by path).
// A backend that cannot honor a primitive must still implement it and return
// its native failure.
type FileSystem[F, D any] interface {
	FileOps[F]
	DirOps[D]
	PathOps
}

// FileOps defines operations on open file handles.
type FileOps[F any] interface {
	// Open opens path with the given open flags (O_RDONLY, O_CREAT, ...).
	// mode is the permission for a newly created file. The returned handle
	// must be released with Close.
	Open(path string, flags int, mode uint32) (F, error)

	// Read reads up to len(buf) bytes. It returns 0 and a nil error at end
	// of data.
	Read(f F, buf []byte) (int, error)

	// Write writes buf. A count other than len(buf) is always accompanied by
	// a non-nil error.
	Write(f F, buf []byte) (int, error)

	// Lseek repositions the file offset relative to whence (SeekSet,
	// SeekCur, SeekEnd) and returns the resulting absolute offset.
	Lseek(f F, offset int64, whence int) (int64, error)

	// Close releases the handle. The handle must not be used again.
	Close(f F) error
}

// DirOps defines directory enumeration.
type DirOps[D any] interface {
	// Opendir opens a directory cursor.
	Opendir(path string) (D, error)

	// Readdir returns the next entry, or nil and io.EOF when the directory
	// is exhausted. The returned entry may be overwritten by the next call.
	Readdir(d D) (*Dirent, error)

	// Closedir releases the cursor.
	Closedir(d D) error
}

// PathOps defines operations addressed by path.
type PathOps interface {
	// Unlink removes a file.
	Unlink(path string) error

	// Link creates newpath as a hard link to oldpath.
	Link(oldpath, newpath string) error

	// Rename renames oldpath to newpath, replacing newpath if it is a file.
	Rename(oldpath, newpath string) error

	// Mkdir creates a directory. The parent must exist.
	Mkdir(path string, mode uint32) error

	// Rmdir removes an empty directory.
	Rmdir(path string) error

	// Stat fills buf with the metadata of path.
	Stat(path string, buf *Stat) error

	// Truncate sets the size of the file at path, discarding or zero
	// filling as needed.
	Truncate(path string, length int64) error
}
