// Package billy provides a vfs.Device backed by a go-billy filesystem.
//
// The device translates billy's os-shaped API into the POSIX contract the
// mount table expects: errno results, (0, nil) at end of file, parents that
// must exist, and directory cursors that report "." and "..".
//
// Usage:
//
//	// Enclave-local storage stand-in
//	dev := billy.NewMemory()
//
//	// Host directory through osfs
//	dev := billy.NewLocal("/var/lib/app")
//
//	sys := vfs.New()
//	_ = sys.Register(vfs.DevMemFS, dev)
//	_ = sys.Mount(vfs.DevMemFS, "", "/", 0)
//
// # Limitations
//
// billy has no hard links, so Link always fails with ENOTSUP. Stat records
// carry no inode, owner or link count information beyond what fs.FileInfo
// exposes.
//
// # Thread Safety
//
// A Device is safe for concurrent use when the underlying filesystem is.
// File and directory handles are not safe for concurrent use.
package billy
