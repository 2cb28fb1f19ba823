package fstest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/billy"
	"github.com/jmgilman/go/fsadapter/fs/devfs"
	"github.com/jmgilman/go/fsadapter/fs/fstest"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

func TestRunScript_RecordsOutcomes(t *testing.T) {
	steps := []fstest.Step{
		{Op: fstest.OpCreate, Path: "f"},
		{Op: fstest.OpWrite, Path: "f", Arg: "abc"},
		{Op: fstest.OpWrite, Path: "f", Arg: "de"},
		{Op: fstest.OpStat, Path: "f"},
		{Op: fstest.OpRmdir, Path: "f"},
		{Op: "chmod", Path: "f"},
	}

	got := fstest.RunScript[vfs.File, vfs.Dir](devfs.New(billy.NewMemory()), "/", steps)

	assert.Equal(t, []fstest.Outcome{
		{Op: fstest.OpCreate, Path: "f"},
		{Op: fstest.OpWrite, Path: "f"},
		{Op: fstest.OpWrite, Path: "f"},
		{Op: fstest.OpStat, Path: "f", Size: 5},
		{Op: fstest.OpRmdir, Path: "f", Errno: unix.ENOTDIR},
		{Op: "chmod", Path: "f", Errno: unix.EINVAL},
	}, got)

	assert.Equal(t, "stat f: ok size=5", got[3].String())
	assert.Equal(t, "rmdir f: ENOTDIR", got[4].String())
}

func TestConfigPresets(t *testing.T) {
	assert.True(t, fstest.POSIXTestConfig().HardLinks)
	assert.False(t, fstest.MemoryTestConfig().HardLinks)
	assert.False(t, fstest.S3TestConfig().ModeBits)

	stream := fstest.StreamTestConfig(fstest.POSIXTestConfig())
	assert.True(t, stream.WriteOnlyCreates)
	assert.True(t, stream.RejectBareCreate)
	assert.True(t, stream.HardLinks)
}
