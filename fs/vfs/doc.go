// Package vfs implements the device, mount and descriptor tables that route
// descriptor-style filesystem calls to registered storage devices.
//
// A System holds three tables:
//
//   - Devices: storage providers registered under a fixed DevID.
//   - Mounts: bindings of a registered device to a target path. Paths are
//     resolved to the mount with the longest matching target, with "/"
//     acting as the catch-all.
//   - Descriptors: small integers handed out by Open. Descriptors 0, 1 and 2
//     are console streams.
//
// Each mount owns a clone of the registered device, so several mounts of the
// same device keep independent mount state. A mount cannot be removed while
// descriptors or directory streams opened through it are still open.
//
// All failures are native errno values (syscall.Errno).
//
// Usage:
//
//	sys := vfs.New()
//	if err := sys.Register(vfs.DevMemFS, billy.NewMemory()); err != nil {
//	    return err
//	}
//	if err := sys.Mount(vfs.DevMemFS, "", "/", 0); err != nil {
//	    return err
//	}
//	defer sys.Unmount(vfs.DevMemFS, "/")
//
//	fd, err := sys.Open("/hello.txt", core.O_CREAT|core.O_TRUNC|core.O_WRONLY, 0o644)
//
// # Thread Safety
//
// The tables are guarded by a mutex, so a System may be shared. Descriptors
// and directory streams are not safe for concurrent use.
package vfs
