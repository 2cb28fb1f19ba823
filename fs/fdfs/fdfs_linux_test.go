//go:build linux

package fdfs_test

import (
	"testing"

	"github.com/jmgilman/go/fsadapter/fs/fdfs"
	"github.com/jmgilman/go/fsadapter/fs/fstest"
	"github.com/jmgilman/go/fsadapter/fs/lifecycle"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

func TestFdFS_Host(t *testing.T) {
	sys := vfs.New()
	w := lifecycle.Bind(t, sys, lifecycle.HostFS(), fdfs.New(sys))
	fstest.TestSuite[int, *vfs.DirStream](t, w.FS, t.TempDir(), fstest.POSIXTestConfig())
}
