// Package core defines the POSIX-shaped filesystem contract shared by every
// storage backend adapter, together with the data types that flow through it.
//
// The contract is intentionally narrow: open, read, write, lseek, close,
// directory enumeration, and the path operations unlink, link, rename, mkdir,
// rmdir, stat and truncate. A conformance suite written once against
// FileSystem runs unmodified against every backend.
//
// # Handles
//
// FileSystem is generic over two opaque handle types. F is the backend's file
// handle (a device file object, an integer descriptor, a buffered stream) and
// D its directory cursor. Generic code never inspects or compares handles; it
// only passes them back into the adapter that produced them.
//
// # Errors
//
// Native backend failures are returned unchanged. Adapters built on errno
// style backends return syscall.Errno values, so callers can test
// errors.Is(err, unix.ENOENT) as well as errors.Is(err, fs.ErrNotExist).
// End of a directory enumeration is io.EOF. End of file data is a zero count
// with a nil error, as with read(2).
//
// # Selecting a Backend
//
// Test code is written against the type parameters and bound to one concrete
// adapter at instantiation:
//
//	func exercise[F, D any, FS core.FileSystem[F, D]](fsys FS) error {
//	    f, err := fsys.Open("/tmp/x", core.O_CREAT|core.O_TRUNC|core.O_WRONLY, 0o644)
//	    if err != nil {
//	        return err
//	    }
//	    defer fsys.Close(f)
//	    _, err = fsys.Write(f, []byte("hello"))
//	    return err
//	}
//
//	err := exercise[int, *vfs.DirStream](fdfs.New(sys))
//
// # Providers
//
// Storage devices live in sibling packages:
//
//   - github.com/jmgilman/go/fsadapter/fs/hostfs - host passthrough device
//   - github.com/jmgilman/go/fsadapter/fs/billy - go-billy-backed device
//   - github.com/jmgilman/go/fsadapter/fs/minio - MinIO S3 device
package core
