package billy

import (
	"io/fs"
	"log/slog"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// Device is a vfs.Device over a billy.Filesystem.
type Device struct {
	bfs    billy.Filesystem
	fstype core.FSType
	local  bool
	logger *slog.Logger
}

// Option configures a Device.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for mount notifications.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// New creates a device over bfs. fstype is what the device reports from
// Type.
func New(bfs billy.Filesystem, fstype core.FSType, opts ...Option) *Device {
	cfg := newConfig(opts)
	return &Device{bfs: bfs, fstype: fstype, logger: cfg.logger}
}

// NewMemory creates a device backed by an empty memfs filesystem.
// Clones share the same storage, so every mount of the device sees the same
// files.
func NewMemory(opts ...Option) *Device {
	return New(memfs.New(), core.FSTypeMemory, opts...)
}

// NewLocal creates a device over the host directory root using osfs.
// A mount with a non-empty source re-roots the clone at that host directory.
func NewLocal(root string, opts ...Option) *Device {
	if root == "" {
		root = "/"
	}
	d := New(osfs.New(root), core.FSTypeLocal, opts...)
	d.local = true
	return d
}

// Unwrap returns the underlying billy.Filesystem.
func (d *Device) Unwrap() billy.Filesystem {
	return d.bfs
}

// Type implements vfs.Device.
func (d *Device) Type() core.FSType {
	return d.fstype
}

// Clone implements vfs.Device.
func (d *Device) Clone() (vfs.Device, error) {
	clone := *d
	return &clone, nil
}

// Mount implements vfs.Device. A non-empty source selects a subdirectory of
// the filesystem (or a host directory for local devices) as the mount root.
func (d *Device) Mount(source, target string, _ vfs.MountFlags) error {
	d.logger.Debug("billy device mounted", "source", source, "target", target, "type", d.fstype.String())
	if source == "" {
		return nil
	}
	if d.local {
		d.bfs = osfs.New(source)
		return nil
	}

	if err := d.bfs.MkdirAll(normalize(source), 0o755); err != nil {
		return core.ToErrno(err)
	}
	sub, err := d.bfs.Chroot(normalize(source))
	if err != nil {
		return core.ToErrno(err)
	}
	d.bfs = sub
	return nil
}

// Unmount implements vfs.Device.
func (d *Device) Unmount(target string) error {
	d.logger.Debug("billy device unmounted", "target", target)
	return nil
}

// Open implements vfs.Device.
func (d *Device) Open(name string, flags int, mode uint32) (vfs.File, error) {
	name = normalize(name)
	info, err := d.bfs.Stat(name)
	if err == nil && info.IsDir() {
		return nil, unix.EISDIR
	}
	if err == nil && flags&(core.O_CREAT|core.O_EXCL) == core.O_CREAT|core.O_EXCL {
		return nil, unix.EEXIST
	}
	if flags&core.O_CREAT != 0 {
		if err := d.parentDir(name); err != nil {
			return nil, err
		}
	}

	f, err := d.bfs.OpenFile(name, core.OSFlags(flags), fs.FileMode(mode&0o777))
	if err != nil {
		return nil, core.ToErrno(err)
	}
	return &file{file: f, flags: flags}, nil
}

// Opendir implements vfs.Device.
func (d *Device) Opendir(name string) (vfs.Dir, error) {
	name = normalize(name)
	if err := d.isDir(name); err != nil {
		return nil, err
	}

	infos, err := d.bfs.ReadDir(name)
	if err != nil {
		return nil, core.ToErrno(err)
	}

	entries := make([]core.Dirent, 0, len(infos)+2)
	entries = append(entries,
		core.Dirent{Name: ".", Type: core.DT_DIR},
		core.Dirent{Name: "..", Type: core.DT_DIR},
	)
	for _, info := range infos {
		entries = append(entries, core.Dirent{
			Name: info.Name(),
			Type: core.DirentType(core.ModeFromFileMode(info.Mode())),
		})
	}
	return vfs.NewListDir(entries), nil
}

// Unlink implements vfs.Device.
func (d *Device) Unlink(name string) error {
	name = normalize(name)
	info, err := d.bfs.Stat(name)
	if err != nil {
		return core.ToErrno(err)
	}
	if info.IsDir() {
		return unix.EISDIR
	}
	return core.ToErrno(d.bfs.Remove(name))
}

// Link implements vfs.Device. billy has no hard links.
func (d *Device) Link(_, _ string) error {
	return core.ErrUnsupported
}

// Rename implements vfs.Device.
func (d *Device) Rename(oldpath, newpath string) error {
	oldpath, newpath = normalize(oldpath), normalize(newpath)
	src, err := d.bfs.Stat(oldpath)
	if err != nil {
		return core.ToErrno(err)
	}
	if oldpath == newpath {
		return nil
	}
	if err := d.parentDir(newpath); err != nil {
		return err
	}

	if dst, err := d.bfs.Stat(newpath); err == nil {
		switch {
		case dst.IsDir() && !src.IsDir():
			return unix.EISDIR
		case !dst.IsDir() && src.IsDir():
			return unix.ENOTDIR
		case dst.IsDir():
			children, err := d.bfs.ReadDir(newpath)
			if err != nil {
				return core.ToErrno(err)
			}
			if len(children) > 0 {
				return unix.ENOTEMPTY
			}
		}
		if err := d.bfs.Remove(newpath); err != nil {
			return core.ToErrno(err)
		}
	}
	return core.ToErrno(d.bfs.Rename(oldpath, newpath))
}

// Mkdir implements vfs.Device. Unlike billy's MkdirAll the parent must exist.
func (d *Device) Mkdir(name string, mode uint32) error {
	name = normalize(name)
	if _, err := d.bfs.Stat(name); err == nil {
		return unix.EEXIST
	}
	if err := d.parentDir(name); err != nil {
		return err
	}
	return core.ToErrno(d.bfs.MkdirAll(name, fs.FileMode(mode&0o777)))
}

// Rmdir implements vfs.Device.
func (d *Device) Rmdir(name string) error {
	name = normalize(name)
	if name == "/" {
		return unix.EBUSY
	}
	if err := d.isDir(name); err != nil {
		return err
	}
	children, err := d.bfs.ReadDir(name)
	if err != nil {
		return core.ToErrno(err)
	}
	if len(children) > 0 {
		return unix.ENOTEMPTY
	}
	return core.ToErrno(d.bfs.Remove(name))
}

// Stat implements vfs.Device.
func (d *Device) Stat(name string, buf *core.Stat) error {
	info, err := d.bfs.Stat(normalize(name))
	if err != nil {
		return core.ToErrno(err)
	}
	core.StatFromFileInfo(info, buf)
	return nil
}

// Truncate implements vfs.Device.
func (d *Device) Truncate(name string, length int64) error {
	if length < 0 {
		return unix.EINVAL
	}
	name = normalize(name)
	if err := d.isDir(name); err == nil {
		return unix.EISDIR
	}

	f, err := d.bfs.OpenFile(name, core.OSFlags(core.O_WRONLY), 0)
	if err != nil {
		return core.ToErrno(err)
	}
	if err := f.Truncate(length); err != nil {
		_ = f.Close()
		return core.ToErrno(err)
	}
	return core.ToErrno(f.Close())
}

func (d *Device) isDir(name string) error {
	info, err := d.bfs.Stat(name)
	if err != nil {
		return core.ToErrno(err)
	}
	if !info.IsDir() {
		return unix.ENOTDIR
	}
	return nil
}

// parentDir checks that the parent of name exists and is a directory.
// billy creates missing parents on its own, which POSIX callers do not
// expect.
func (d *Device) parentDir(name string) error {
	parent := path.Dir(name)
	if parent == "/" {
		return nil
	}
	return d.isDir(parent)
}

// normalize makes name absolute and clean.
func normalize(name string) string {
	return path.Clean("/" + name)
}

var _ vfs.Device = (*Device)(nil)
