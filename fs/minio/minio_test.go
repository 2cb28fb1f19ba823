package minio

import (
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/errors"
	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/minio/internal/errs"
	"github.com/jmgilman/go/fsadapter/fs/minio/internal/pathutil"
)

// TestConfigValidation tests Config.validate() with various scenarios.
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config with credentials",
			config: Config{
				Endpoint:  "localhost:9000",
				Bucket:    "test-bucket",
				AccessKey: "minioadmin",
				SecretKey: "minioadmin",
			},
		},
		{
			name: "valid config with client",
			config: Config{
				Client: &minio.Client{},
				Bucket: "test-bucket",
			},
		},
		{
			name:    "missing bucket",
			config:  Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"},
			wantErr: true,
			errMsg:  "bucket is required",
		},
		{
			name:    "missing endpoint without client",
			config:  Config{Bucket: "b", AccessKey: "a", SecretKey: "s"},
			wantErr: true,
			errMsg:  "endpoint is required",
		},
		{
			name:    "missing access key without client",
			config:  Config{Endpoint: "localhost:9000", Bucket: "b", SecretKey: "s"},
			wantErr: true,
			errMsg:  "access key is required",
		},
		{
			name:    "missing secret key without client",
			config:  Config{Endpoint: "localhost:9000", Bucket: "b", AccessKey: "a"},
			wantErr: true,
			errMsg:  "secret key is required",
		},
		{
			name:    "negative rename concurrency",
			config:  Config{Client: &minio.Client{}, Bucket: "b", MaxRenameConcurrency: -1},
			wantErr: true,
			errMsg:  "rename concurrency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d, err := New(Config{
			Endpoint:  "localhost:9000",
			Bucket:    "bucket",
			AccessKey: "a",
			SecretKey: "s",
			Prefix:    "/data/",
		})
		require.NoError(t, err)
		assert.NotNil(t, d.Client())
		assert.Equal(t, "bucket", d.Bucket())
		assert.Equal(t, "data", d.Prefix())
		assert.Equal(t, defaultRenameConcurrency, d.renameConcurrency)
		assert.Equal(t, core.FSTypeRemote, d.Type())
	})

	t.Run("provided client", func(t *testing.T) {
		client := &minio.Client{}
		d, err := New(Config{Client: client, Bucket: "bucket", MaxRenameConcurrency: 3})
		require.NoError(t, err)
		assert.Same(t, client, d.Client())
		assert.Equal(t, 3, d.renameConcurrency)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
		assert.True(t, errors.IsConfigError(err))
	})

	t.Run("client error carries endpoint", func(t *testing.T) {
		_, err := New(Config{Endpoint: "localhost:9000/path", Bucket: "bucket", AccessKey: "a", SecretKey: "s"})
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))

		var perr errors.PlatformError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "localhost:9000/path", perr.Context()["endpoint"])
	})
}

func TestDevice_CloneAndMount(t *testing.T) {
	d, err := New(Config{Client: &minio.Client{}, Bucket: "bucket", Prefix: "root"})
	require.NoError(t, err)

	clone, err := d.Clone()
	require.NoError(t, err)
	require.NoError(t, clone.Mount("tenant/a", "/mnt", 0))

	assert.Equal(t, "root/tenant/a", clone.(*Device).Prefix())
	assert.Equal(t, "root", d.Prefix(), "mounting a clone leaves the original alone")
	assert.Equal(t, "root/tenant/a/x", clone.(*Device).key("/x"))
	require.NoError(t, clone.Unmount("/mnt"))
}

func TestDevice_LinkUnsupported(t *testing.T) {
	d, err := New(Config{Client: &minio.Client{}, Bucket: "bucket"})
	require.NoError(t, err)
	assert.ErrorIs(t, d.Link("/a", "/b"), unix.ENOTSUP)
}

func TestPathutil(t *testing.T) {
	tests := []struct {
		prefix, path, want string
	}{
		{"", "/", ""},
		{"", "", ""},
		{"", "/a/b", "a/b"},
		{"", "a//b/", "a/b"},
		{"", "/a/../b", "b"},
		{"", "\\a\\b", "a/b"},
		{"p", "/", "p"},
		{"p", "/x", "p/x"},
		{"p", "/../x", "p/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pathutil.Key(tt.prefix, tt.path), "Key(%q, %q)", tt.prefix, tt.path)
	}

	assert.Equal(t, "", pathutil.NormalizePrefix("."))
	assert.Equal(t, "a/b", pathutil.NormalizePrefix("/a/b/"))
	assert.Equal(t, "", pathutil.DirKey(""))
	assert.Equal(t, "a/", pathutil.DirKey("a"))
	assert.Equal(t, "a/", pathutil.DirKey("a/"))
	assert.Equal(t, "/", pathutil.Parent("/a"))
	assert.Equal(t, "/a", pathutil.Parent("/a/b"))

	name, isDir := pathutil.ChildName("dir/", "dir/sub/")
	assert.Equal(t, "sub", name)
	assert.True(t, isDir)
	name, isDir = pathutil.ChildName("dir/", "dir/file")
	assert.Equal(t, "file", name)
	assert.False(t, isDir)
	name, _ = pathutil.ChildName("dir/", "dir/")
	assert.Empty(t, name)
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"NoSuchKey", unix.ENOENT},
		{"NoSuchBucket", unix.ENOENT},
		{"AccessDenied", unix.EACCES},
		{"InvalidObjectName", unix.EINVAL},
		{"KeyTooLongError", unix.ENAMETOOLONG},
		{"EntityTooLarge", unix.EFBIG},
		{"SlowDown", unix.EAGAIN},
		{"InternalError", unix.EIO},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := errs.Translate(minio.ErrorResponse{Code: tt.code})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.NoError(t, errs.Translate(nil))
	assert.Equal(t, unix.EXDEV, errs.Translate(unix.EXDEV))
	assert.True(t, errs.IsNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.False(t, errs.IsNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}

func TestFile_Buffer(t *testing.T) {
	f := &file{flags: core.O_RDWR, data: []byte("hello")}

	buf := make([]byte, 3)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hel", string(buf[:n]))

	n, err = f.Write([]byte("LOWORLD"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "helLOWORLD", string(f.data))
	assert.True(t, f.dirty)

	n, err = f.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n, "end of data reads zero bytes without error")

	pos, err := f.Lseek(-5, core.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pos)

	pos, err = f.Lseek(2, core.SeekCur)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos)

	_, err = f.Lseek(-100, core.SeekCur)
	assert.ErrorIs(t, err, unix.EINVAL)
	_, err = f.Lseek(0, 9)
	assert.ErrorIs(t, err, unix.EINVAL)
}

func TestFile_SparseWrite(t *testing.T) {
	f := &file{flags: core.O_WRONLY}
	_, err := f.Lseek(3, core.SeekSet)
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 'x'}, f.data)
}

func TestFile_Append(t *testing.T) {
	f := &file{flags: core.O_WRONLY | core.O_APPEND, data: []byte("ab")}
	_, err := f.Lseek(0, core.SeekSet)
	require.NoError(t, err)
	_, err = f.Write([]byte("cd"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(f.data))
}

func TestFile_AccessAndClose(t *testing.T) {
	ro := &file{flags: core.O_RDONLY}
	_, err := ro.Write([]byte("x"))
	assert.ErrorIs(t, err, unix.EBADF)

	wo := &file{flags: core.O_WRONLY}
	_, err = wo.Read(make([]byte, 1))
	assert.ErrorIs(t, err, unix.EBADF)

	// A clean handle closes without contacting the store.
	require.NoError(t, ro.Close())
	assert.ErrorIs(t, ro.Close(), unix.EBADF)
	_, err = ro.Read(make([]byte, 1))
	assert.ErrorIs(t, err, unix.EBADF)
}

func TestResize(t *testing.T) {
	assert.Equal(t, []byte("ab"), resize([]byte("abc"), 2))
	assert.Equal(t, []byte{'a', 0, 0}, resize([]byte("a"), 3))
	assert.Empty(t, resize([]byte("a"), 0))
}
