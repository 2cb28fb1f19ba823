//go:build linux

// Package hostfs provides a vfs.Device that passes every call through to the
// host kernel. A mount's source, or the root set with WithRoot, is prefixed
// to every path the device receives.
package hostfs

import (
	"log/slog"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
	"github.com/jmgilman/go/fsadapter/internal/unixfs"
)

// Device is the host passthrough device.
type Device struct {
	root   string
	logger *slog.Logger
}

// Option configures a Device.
type Option func(*Device)

// WithRoot sets the host directory that device paths are relative to.
func WithRoot(root string) Option {
	return func(d *Device) {
		d.root = root
	}
}

// WithLogger sets the logger used for mount notifications.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Device) {
		d.logger = logger
	}
}

// New creates a host device rooted at "/".
func New(opts ...Option) *Device {
	d := &Device{root: "/", logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Root returns the host directory the device is rooted at.
func (d *Device) Root() string {
	return d.root
}

func (d *Device) host(path string) string {
	return filepath.Join(d.root, filepath.Clean("/"+path))
}

// Type implements vfs.Device.
func (d *Device) Type() core.FSType {
	return core.FSTypeLocal
}

// Clone implements vfs.Device.
func (d *Device) Clone() (vfs.Device, error) {
	clone := *d
	return &clone, nil
}

// Mount implements vfs.Device. A non-empty source replaces the root.
func (d *Device) Mount(source, target string, _ vfs.MountFlags) error {
	if source != "" {
		var st unix.Stat_t
		if err := unix.Stat(source, &st); err != nil {
			return err
		}
		if st.Mode&unix.S_IFMT != unix.S_IFDIR {
			return unix.ENOTDIR
		}
		d.root = source
	}
	d.logger.Debug("host device mounted", "root", d.root, "target", target)
	return nil
}

// Unmount implements vfs.Device.
func (d *Device) Unmount(target string) error {
	d.logger.Debug("host device unmounted", "root", d.root, "target", target)
	return nil
}

// Open implements vfs.Device.
func (d *Device) Open(path string, flags int, mode uint32) (vfs.File, error) {
	fd, err := unix.Open(d.host(path), unixfs.OpenFlags(flags), mode)
	if err != nil {
		return nil, err
	}
	return &file{fd: fd}, nil
}

// Opendir implements vfs.Device.
func (d *Device) Opendir(path string) (vfs.Dir, error) {
	r, err := unixfs.OpenDir(d.host(path))
	if err != nil {
		return nil, err
	}
	return &dir{r: r}, nil
}

// Unlink implements vfs.Device.
func (d *Device) Unlink(path string) error {
	return unix.Unlink(d.host(path))
}

// Link implements vfs.Device.
func (d *Device) Link(oldpath, newpath string) error {
	return unix.Link(d.host(oldpath), d.host(newpath))
}

// Rename implements vfs.Device.
func (d *Device) Rename(oldpath, newpath string) error {
	return unix.Rename(d.host(oldpath), d.host(newpath))
}

// Mkdir implements vfs.Device.
func (d *Device) Mkdir(path string, mode uint32) error {
	return unix.Mkdir(d.host(path), mode)
}

// Rmdir implements vfs.Device.
func (d *Device) Rmdir(path string) error {
	return unix.Rmdir(d.host(path))
}

// Stat implements vfs.Device.
func (d *Device) Stat(path string, buf *core.Stat) error {
	return unixfs.Stat(d.host(path), buf)
}

// Truncate implements vfs.Device.
func (d *Device) Truncate(path string, length int64) error {
	return unix.Truncate(d.host(path), length)
}

type file struct {
	fd int
}

func (f *file) Read(buf []byte) (int, error) {
	return unixfs.Read(f.fd, buf)
}

func (f *file) Write(buf []byte) (int, error) {
	return unixfs.Write(f.fd, buf)
}

func (f *file) Lseek(offset int64, whence int) (int64, error) {
	return unixfs.Lseek(f.fd, offset, whence)
}

func (f *file) Close() error {
	if f.fd < 0 {
		return unix.EBADF
	}
	fd := f.fd
	f.fd = -1
	return unix.Close(fd)
}

type dir struct {
	r *unixfs.DirReader
}

func (d *dir) Readdir() (*core.Dirent, error) {
	return d.r.Next()
}

func (d *dir) Close() error {
	return d.r.Close()
}

var (
	_ vfs.Device = (*Device)(nil)
	_ vfs.File   = (*file)(nil)
	_ vfs.Dir    = (*dir)(nil)
)
