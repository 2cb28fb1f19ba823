package streamfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/errors"
	"github.com/jmgilman/go/fsadapter/fs/billy"
	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/fstest"
	"github.com/jmgilman/go/fsadapter/fs/lifecycle"
	"github.com/jmgilman/go/fsadapter/fs/stdio"
	"github.com/jmgilman/go/fsadapter/fs/streamfs"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

func TestModeFor(t *testing.T) {
	const (
		creat = core.O_CREAT
		trunc = core.O_TRUNC
		appnd = core.O_APPEND
	)

	tests := []struct {
		name  string
		flags int
		want  string
	}{
		{"RDONLY", core.O_RDONLY, "r"},
		{"RDONLY|CREAT|TRUNC", core.O_RDONLY | creat | trunc, "r"},
		{"RDONLY|CREAT|APPEND", core.O_RDONLY | creat | appnd, "r"},
		{"RDONLY|CREAT", core.O_RDONLY | creat, "r"},
		{"WRONLY", core.O_WRONLY, "w"},
		{"WRONLY|CREAT|TRUNC", core.O_WRONLY | creat | trunc, "w"},
		{"WRONLY|CREAT|APPEND", core.O_WRONLY | creat | appnd, "a"},
		{"WRONLY|CREAT|TRUNC|APPEND", core.O_WRONLY | creat | trunc | appnd, "w"},
		{"WRONLY|CREAT|TRUNC|EXCL", core.O_WRONLY | creat | trunc | core.O_EXCL, "wx"},
		{"RDWR", core.O_RDWR, "r+"},
		{"RDWR|CREAT|TRUNC", core.O_RDWR | creat | trunc, "w+"},
		{"RDWR|CREAT|APPEND", core.O_RDWR | creat | appnd, "a+"},
		{"RDWR|CREAT|TRUNC|APPEND", core.O_RDWR | creat | trunc | appnd, "w+"},
		{"RDWR|CREAT|TRUNC|EXCL", core.O_RDWR | creat | trunc | core.O_EXCL, "w+x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := streamfs.ModeFor(tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			_, err = stdio.ParseMode(got)
			assert.NoError(t, err, "mode must be accepted by the stream layer")
		})
	}

	for _, flags := range []int{
		core.O_WRONLY | creat,
		core.O_RDWR | creat,
		core.O_ACCMODE,
		core.O_ACCMODE | creat | trunc,
	} {
		_, err := streamfs.ModeFor(flags)
		assert.ErrorIs(t, err, unix.EINVAL, "flags %#o", flags)
		assert.Equal(t, errors.CodeInvalidFlags, errors.GetCode(err), "flags %#o", flags)
		assert.True(t, errors.IsConfigError(err), "flags %#o", flags)
	}
}

func TestStreamFS_Memory(t *testing.T) {
	sys := vfs.New()
	w := lifecycle.Bind(t, sys, lifecycle.MemFS(), streamfs.New(sys))
	fstest.TestSuite[*stdio.Stream, *vfs.DirStream](t, w.FS, "/", fstest.StreamTestConfig(fstest.MemoryTestConfig()))
}

func TestStreamFS_ConfigErrorBeforeNativeCall(t *testing.T) {
	// Nothing is mounted, so any native call would fail with ENOENT.
	fsys := streamfs.New(vfs.New())

	_, err := fsys.Open("/f", core.O_WRONLY|core.O_CREAT, 0o644)
	assert.ErrorIs(t, err, unix.EINVAL)
	assert.True(t, errors.IsConfigError(err))

	_, err = fsys.Open("/f", core.O_RDONLY, 0)
	assert.ErrorIs(t, err, unix.ENOENT)
	assert.False(t, errors.IsConfigError(err))
}

func TestStreamFS_WriteOnlyCreates(t *testing.T) {
	sys := vfs.New()
	fsys := streamfs.New(sys)
	lifecycle.Mount(t, sys, lifecycle.MemFS())

	s, err := fsys.Open("/new", core.O_WRONLY, 0)
	require.NoError(t, err, "O_WRONLY maps to \"w\", which creates")
	_, err = fsys.Write(s, []byte("data"))
	require.NoError(t, err)
	require.NoError(t, fsys.Close(s))

	var st core.Stat
	require.NoError(t, fsys.Stat("/new", &st))
	assert.Equal(t, int64(4), st.Size)

	// The descriptor variant over the same System refuses the same call.
	_, err = sys.Open("/other", core.O_WRONLY, 0)
	assert.ErrorIs(t, err, unix.ENOENT)
}

// failingDevice serves files whose reads and writes fail with EIO.
type failingDevice struct {
	vfs.Device
}

type failingFile struct {
	vfs.File
}

func (d failingDevice) Clone() (vfs.Device, error) {
	return d, nil
}

func (d failingDevice) Open(path string, flags int, mode uint32) (vfs.File, error) {
	f, err := d.Device.Open(path, flags, mode)
	if err != nil {
		return nil, err
	}
	return failingFile{f}, nil
}

func (failingFile) Read([]byte) (int, error)  { return 0, unix.EIO }
func (failingFile) Write([]byte) (int, error) { return 0, unix.EIO }

func TestStreamFS_ErrorVersusEndOfData(t *testing.T) {
	mem := billy.NewMemory()
	sys := vfs.New()
	fsys := streamfs.New(sys)
	lifecycle.Mount(t, sys, lifecycle.Provider{
		ID:  10,
		New: func() (vfs.Device, error) { return failingDevice{mem}, nil },
	})

	f, err := mem.Open("/f", core.O_CREAT|core.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s, err := fsys.Open("/f", core.O_RDONLY, 0)
	require.NoError(t, err)
	n, err := fsys.Read(s, make([]byte, 4))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, unix.EIO, "a failed read is not end of data")
	assert.False(t, s.Feof())
	require.NoError(t, fsys.Close(s))

	s, err = fsys.Open("/f", core.O_WRONLY|core.O_CREAT|core.O_TRUNC, 0o644)
	require.NoError(t, err)
	_, err = fsys.Write(s, make([]byte, stdio.BufferSize))
	assert.ErrorIs(t, err, unix.EIO)
	assert.NoError(t, fsys.Close(s), "nothing is left buffered to flush")
}

func TestStreamFS_EndOfData(t *testing.T) {
	sys := vfs.New()
	fsys := streamfs.New(sys)
	lifecycle.Mount(t, sys, lifecycle.MemFS())

	s, err := fsys.Open("/f", core.O_RDWR|core.O_CREAT|core.O_TRUNC, 0o644)
	require.NoError(t, err)
	defer func() { _ = fsys.Close(s) }()

	_, err = fsys.Write(s, []byte("abc"))
	require.NoError(t, err)
	off, err := fsys.Lseek(s, 0, core.SeekSet)
	require.NoError(t, err)
	assert.Zero(t, off)

	buf := make([]byte, 8)
	n, err := fsys.Read(s, buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))
	assert.True(t, s.Feof())

	n, err = fsys.Read(s, buf)
	assert.NoError(t, err)
	assert.Zero(t, n)

	off, err = fsys.Lseek(s, -1, core.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(2), off)
}

func TestStreamFS_ErrorAfterEndOfData(t *testing.T) {
	sys := vfs.New()
	fsys := streamfs.New(sys)
	lifecycle.Mount(t, sys, lifecycle.MemFS())

	s, err := fsys.Open("/f", core.O_RDWR|core.O_CREAT|core.O_TRUNC, 0o644)
	require.NoError(t, err)
	_, err = fsys.Write(s, []byte("ab"))
	require.NoError(t, err)
	_, err = fsys.Lseek(s, 0, core.SeekSet)
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := fsys.Read(s, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.True(t, s.Feof())

	// Pull the descriptor out from under the stream.
	require.NoError(t, sys.Close(s.Fd()))

	n, err = fsys.Read(s, buf)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, unix.EBADF, "a failure after end of data is not end of data")
	assert.ErrorIs(t, s.Ferror(), unix.EBADF)
	assert.Error(t, fsys.Close(s))
}
