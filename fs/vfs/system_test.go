package vfs_test

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/billy"
	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// countingDevice records mount notifications of its clones.
type countingDevice struct {
	*billy.Device
	mounts   *int
	unmounts *int
}

func newCountingDevice() *countingDevice {
	return &countingDevice{Device: billy.NewMemory(), mounts: new(int), unmounts: new(int)}
}

func (c *countingDevice) Clone() (vfs.Device, error) {
	inner, err := c.Device.Clone()
	if err != nil {
		return nil, err
	}
	return &countingDevice{Device: inner.(*billy.Device), mounts: c.mounts, unmounts: c.unmounts}, nil
}

func (c *countingDevice) Mount(source, target string, flags vfs.MountFlags) error {
	*c.mounts++
	return c.Device.Mount(source, target, flags)
}

func (c *countingDevice) Unmount(target string) error {
	*c.unmounts++
	return c.Device.Unmount(target)
}

// refusingDevice fails Unmount while *refuse is set.
type refusingDevice struct {
	*billy.Device
	refuse *bool
}

func (r *refusingDevice) Clone() (vfs.Device, error) {
	inner, err := r.Device.Clone()
	if err != nil {
		return nil, err
	}
	return &refusingDevice{Device: inner.(*billy.Device), refuse: r.refuse}, nil
}

func (r *refusingDevice) Unmount(target string) error {
	if *r.refuse {
		return unix.EIO
	}
	return r.Device.Unmount(target)
}

func newRootSystem(t *testing.T, opts ...vfs.Option) *vfs.System {
	t.Helper()
	sys := vfs.New(opts...)
	require.NoError(t, sys.Register(vfs.DevMemFS, billy.NewMemory()))
	require.NoError(t, sys.Mount(vfs.DevMemFS, "", "/", 0))
	return sys
}

func createFile(t *testing.T, sys *vfs.System, path, data string) {
	t.Helper()
	fd, err := sys.Open(path, core.O_WRONLY|core.O_CREAT|core.O_TRUNC, 0o644)
	require.NoError(t, err)
	n, err := sys.Write(fd, []byte(data))
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, sys.Close(fd))
}

func TestSystem_Register(t *testing.T) {
	sys := vfs.New()

	require.NoError(t, sys.Register(vfs.DevMemFS, billy.NewMemory()))
	assert.ErrorIs(t, sys.Register(vfs.DevMemFS, billy.NewMemory()), unix.EADDRINUSE)
	assert.ErrorIs(t, sys.Register(vfs.DevNone, billy.NewMemory()), unix.EINVAL)
	assert.ErrorIs(t, sys.Register(7, nil), unix.EINVAL)

	require.NoError(t, sys.Register(vfs.DevHostFS, billy.NewMemory()))
	assert.Equal(t, []vfs.DevID{vfs.DevHostFS, vfs.DevMemFS}, sys.Devices())

	_, err := sys.Device(vfs.DevObjFS)
	assert.ErrorIs(t, err, unix.EINVAL)

	dev, err := sys.Device(vfs.DevMemFS)
	require.NoError(t, err)
	assert.Equal(t, core.FSTypeMemory, dev.Type())
}

func TestSystem_Unregister(t *testing.T) {
	sys := vfs.New()
	require.NoError(t, sys.Register(vfs.DevMemFS, billy.NewMemory()))
	require.NoError(t, sys.Mount(vfs.DevMemFS, "", "/", 0))

	assert.ErrorIs(t, sys.Unregister(vfs.DevMemFS), unix.EBUSY)
	assert.ErrorIs(t, sys.Unregister(vfs.DevObjFS), unix.EINVAL)

	require.NoError(t, sys.Unmount(vfs.DevMemFS, "/"))
	require.NoError(t, sys.Unregister(vfs.DevMemFS))
	assert.Empty(t, sys.Devices())
}

func TestSystem_MountNotifiesClone(t *testing.T) {
	sys := vfs.New()
	dev := newCountingDevice()
	require.NoError(t, sys.Register(vfs.DevMemFS, dev))

	require.NoError(t, sys.Mount(vfs.DevMemFS, "", "/", 0))
	assert.Equal(t, 1, *dev.mounts)

	require.NoError(t, sys.Unmount(vfs.DevMemFS, "/"))
	assert.Equal(t, 1, *dev.unmounts)
}

func TestSystem_MountErrors(t *testing.T) {
	sys := newRootSystem(t)
	createFile(t, sys, "/file", "x")
	require.NoError(t, sys.Register(10, billy.NewMemory()))

	tests := []struct {
		name   string
		devid  vfs.DevID
		target string
		want   error
	}{
		{"unknown device", 42, "/", unix.EINVAL},
		{"empty target", 10, "", unix.EINVAL},
		{"missing target", 10, "/missing", unix.EIO},
		{"target is file", 10, "/file", unix.ENOTDIR},
		{"duplicate target", 10, "/", unix.EEXIST},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, sys.Mount(tt.devid, "", tt.target, 0), tt.want)
		})
	}
}

func TestSystem_MountTableFull(t *testing.T) {
	sys := newRootSystem(t)
	require.NoError(t, sys.Register(10, billy.NewMemory()))

	for i := 1; i < vfs.MaxMounts; i++ {
		dir := fmt.Sprintf("/m%d", i)
		require.NoError(t, sys.Mkdir(dir, 0o755))
		require.NoError(t, sys.Mount(10, "", dir, 0), dir)
	}
	require.NoError(t, sys.Mkdir("/overflow", 0o755))
	assert.ErrorIs(t, sys.Mount(10, "", "/overflow", 0), unix.ENOMEM)
	assert.Len(t, sys.Mounts(), vfs.MaxMounts)
}

func TestSystem_LongestPrefix(t *testing.T) {
	sys := newRootSystem(t)
	require.NoError(t, sys.Mkdir("/mnt", 0o755))
	require.NoError(t, sys.Mkdir("/mntx", 0o755))

	inner := billy.NewMemory()
	require.NoError(t, sys.Register(10, inner))
	require.NoError(t, sys.Mount(10, "", "/mnt", 0))

	createFile(t, sys, "/mnt/inner.txt", "in")
	createFile(t, sys, "/mntx/outer.txt", "out")

	var st core.Stat
	require.NoError(t, inner.Stat("/inner.txt", &st))
	assert.ErrorIs(t, inner.Stat("/outer.txt", &st), unix.ENOENT)

	// The mount point itself resolves to the mounted device's root.
	require.NoError(t, sys.Stat("/mnt", &st))
	assert.True(t, st.IsDir())

	ds, err := sys.Opendir("/mnt")
	require.NoError(t, err)
	var names []string
	for {
		ent, err := sys.Readdir(ds)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, ent.Name)
	}
	require.NoError(t, sys.Closedir(ds))
	assert.ElementsMatch(t, []string{".", "..", "inner.txt"}, names)
}

func TestSystem_UnmountBusy(t *testing.T) {
	sys := newRootSystem(t)
	createFile(t, sys, "/a", "x")

	fd, err := sys.Open("/a", core.O_RDONLY, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, sys.Unmount(vfs.DevMemFS, "/"), unix.EBUSY)
	assert.Equal(t, 1, sys.Mounts()[0].Open)
	require.NoError(t, sys.Close(fd))

	ds, err := sys.Opendir("/")
	require.NoError(t, err)
	assert.ErrorIs(t, sys.Unmount(vfs.DevMemFS, "/"), unix.EBUSY)
	require.NoError(t, sys.Closedir(ds))

	assert.ErrorIs(t, sys.Unmount(vfs.DevMemFS, "/elsewhere"), unix.ENOENT)
	assert.ErrorIs(t, sys.Unmount(99, "/"), unix.EINVAL)
	require.NoError(t, sys.Unmount(vfs.DevMemFS, "/"))
	assert.Empty(t, sys.Mounts())

	var st core.Stat
	assert.ErrorIs(t, sys.Stat("/a", &st), unix.ENOENT)
}

func TestSystem_UnmountRefusedKeepsMount(t *testing.T) {
	refuse := true
	sys := vfs.New()
	require.NoError(t, sys.Register(vfs.DevMemFS, &refusingDevice{Device: billy.NewMemory(), refuse: &refuse}))
	require.NoError(t, sys.Mount(vfs.DevMemFS, "", "/", 0))
	createFile(t, sys, "/a", "x")

	assert.ErrorIs(t, sys.Unmount(vfs.DevMemFS, "/"), unix.EIO)
	require.Len(t, sys.Mounts(), 1, "a refused unmount leaves the table unchanged")
	var st core.Stat
	require.NoError(t, sys.Stat("/a", &st))

	refuse = false
	require.NoError(t, sys.Unmount(vfs.DevMemFS, "/"))
	assert.Empty(t, sys.Mounts())
}

func TestSystem_ReadOnlyMount(t *testing.T) {
	sys := newRootSystem(t)
	require.NoError(t, sys.Mkdir("/ro", 0o755))

	dev := billy.NewMemory()
	require.NoError(t, sys.Register(10, dev))
	require.NoError(t, sys.Mount(10, "", "/ro", vfs.MountReadOnly))

	f, err := dev.Open("/seed", core.O_WRONLY|core.O_CREAT, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("seed"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = sys.Open("/ro/new", core.O_WRONLY|core.O_CREAT, 0o644)
	assert.ErrorIs(t, err, unix.EPERM)
	_, err = sys.Open("/ro/seed", core.O_RDWR, 0)
	assert.ErrorIs(t, err, unix.EPERM)
	assert.ErrorIs(t, sys.Mkdir("/ro/d", 0o755), unix.EPERM)
	assert.ErrorIs(t, sys.Unlink("/ro/seed"), unix.EPERM)
	assert.ErrorIs(t, sys.Truncate("/ro/seed", 0), unix.EPERM)
	assert.ErrorIs(t, sys.Rename("/ro/seed", "/ro/other"), unix.EPERM)

	fd, err := sys.Open("/ro/seed", core.O_RDONLY, 0)
	require.NoError(t, err)
	buf := make([]byte, 8)
	n, err := sys.Read(fd, buf)
	require.NoError(t, err)
	assert.Equal(t, "seed", string(buf[:n]))
	require.NoError(t, sys.Close(fd))
}

func TestSystem_DefaultDevice(t *testing.T) {
	sys := newRootSystem(t)
	other := billy.NewMemory()
	require.NoError(t, sys.Register(10, other))

	assert.ErrorIs(t, sys.SetDefaultDevice(99), unix.EINVAL)
	require.NoError(t, sys.SetDefaultDevice(10))
	assert.Equal(t, vfs.DevID(10), sys.DefaultDevice())

	createFile(t, sys, "/routed", "x")
	var st core.Stat
	require.NoError(t, other.Stat("/routed", &st))

	require.NoError(t, sys.ClearDefaultDevice())
	assert.Equal(t, vfs.DevNone, sys.DefaultDevice())
	assert.ErrorIs(t, sys.Stat("/routed", &st), unix.ENOENT)
}

func TestSystem_Descriptors(t *testing.T) {
	sys := newRootSystem(t)
	createFile(t, sys, "/a", "abcdef")

	fd1, err := sys.Open("/a", core.O_RDONLY, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, fd1)

	fd2, err := sys.Open("/a", core.O_RDONLY, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, fd2)

	require.NoError(t, sys.Close(fd1))
	fd3, err := sys.Open("/a", core.O_RDONLY, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, fd3, "lowest free descriptor is reused")

	off, err := sys.Lseek(fd3, 2, core.SeekSet)
	require.NoError(t, err)
	assert.Equal(t, int64(2), off)
	buf := make([]byte, 2)
	n, err := sys.Read(fd3, buf)
	require.NoError(t, err)
	assert.Equal(t, "cd", string(buf[:n]))

	require.NoError(t, sys.Close(fd2))
	require.NoError(t, sys.Close(fd3))

	_, err = sys.Read(fd3, buf)
	assert.ErrorIs(t, err, unix.EBADF)
	_, err = sys.Write(100, buf)
	assert.ErrorIs(t, err, unix.EBADF)
	_, err = sys.Lseek(100, 0, core.SeekSet)
	assert.ErrorIs(t, err, unix.EBADF)
	assert.ErrorIs(t, sys.Close(fd3), unix.EBADF)
}

func TestSystem_DirStream(t *testing.T) {
	sys := newRootSystem(t)
	other := vfs.New()

	ds, err := sys.Opendir("/")
	require.NoError(t, err)

	_, err = other.Readdir(ds)
	assert.ErrorIs(t, err, unix.EBADF, "stream belongs to another System")

	require.NoError(t, sys.Closedir(ds))
	assert.ErrorIs(t, sys.Closedir(ds), unix.EBADF)
	_, err = sys.Readdir(ds)
	assert.ErrorIs(t, err, unix.EBADF)

	_, err = sys.Opendir("/missing")
	assert.ErrorIs(t, err, unix.ENOENT)
	assert.Equal(t, 0, sys.Mounts()[0].Open)
}

func TestSystem_CrossDevice(t *testing.T) {
	sys := newRootSystem(t)
	require.NoError(t, sys.Mkdir("/mnt", 0o755))
	require.NoError(t, sys.Register(10, billy.NewMemory()))
	require.NoError(t, sys.Mount(10, "", "/mnt", 0))
	createFile(t, sys, "/a", "x")

	assert.ErrorIs(t, sys.Rename("/a", "/mnt/a"), unix.EXDEV)
	assert.ErrorIs(t, sys.Link("/a", "/mnt/a"), unix.EXDEV)
	require.NoError(t, sys.Rename("/a", "/b"))
}

func TestSystem_PathOps(t *testing.T) {
	sys := newRootSystem(t)

	require.NoError(t, sys.Mkdir("/d", 0o755))
	createFile(t, sys, "/d/f", "hello world")
	require.NoError(t, sys.Truncate("/d/f", 5))

	var st core.Stat
	require.NoError(t, sys.Stat("d/f", &st), "relative paths resolve from /")
	assert.Equal(t, int64(5), st.Size)
	assert.True(t, st.IsReg())

	assert.ErrorIs(t, sys.Rmdir("/d"), unix.ENOTEMPTY)
	require.NoError(t, sys.Unlink("/d/f"))
	require.NoError(t, sys.Rmdir("/d"))
	assert.ErrorIs(t, sys.Stat("/d", &st), unix.ENOENT)
}

func TestSystem_Console(t *testing.T) {
	var out, errOut bytes.Buffer
	sys := vfs.New(vfs.WithConsole(strings.NewReader("input"), &out, &errOut))

	buf := make([]byte, 16)
	n, err := sys.Read(vfs.Stdin, buf)
	require.NoError(t, err)
	assert.Equal(t, "input", string(buf[:n]))

	n, err = sys.Read(vfs.Stdin, buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = sys.Write(vfs.Stdout, []byte("out"))
	require.NoError(t, err)
	_, err = sys.Write(vfs.Stderr, []byte("err"))
	require.NoError(t, err)
	assert.Equal(t, "out", out.String())
	assert.Equal(t, "err", errOut.String())

	_, err = sys.Lseek(vfs.Stdout, 0, core.SeekSet)
	assert.ErrorIs(t, err, unix.ESPIPE)

	closed := vfs.New(vfs.WithConsole(nil, nil, nil))
	_, err = closed.Read(vfs.Stdin, buf)
	assert.ErrorIs(t, err, unix.EBADF)
	_, err = closed.Write(vfs.Stdout, buf)
	assert.ErrorIs(t, err, unix.EBADF)
}

func TestSystem_Logging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sys := newRootSystem(t, vfs.WithLogger(logger))
	require.NoError(t, sys.Unmount(vfs.DevMemFS, "/"))

	assert.Contains(t, logs.String(), "device registered")
	assert.Contains(t, logs.String(), "device mounted")
	assert.Contains(t, logs.String(), "device unmounted")
}

func TestDefault(t *testing.T) {
	assert.Same(t, vfs.Default(), vfs.Default())
}
