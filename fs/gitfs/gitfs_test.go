package gitfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/fsadapter/errors"
	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/devfs"
	"github.com/jmgilman/go/fsadapter/fs/fdfs"
	"github.com/jmgilman/go/fsadapter/fs/fstest"
	"github.com/jmgilman/go/fsadapter/fs/gitfs"
	"github.com/jmgilman/go/fsadapter/fs/lifecycle"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

var author = gitfs.CommitOptions{Author: "Test User", Email: "test@example.com"}

func commitOpts(msg string) gitfs.CommitOptions {
	opts := author
	opts.Message = msg
	return opts
}

func writeFile(t *testing.T, fsys *fdfs.FS, p, data string) {
	t.Helper()
	fd, err := fsys.Open(p, core.O_CREAT|core.O_TRUNC|core.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = fsys.Write(fd, []byte(data))
	require.NoError(t, err)
	require.NoError(t, fsys.Close(fd))
}

func TestSnapshot(t *testing.T) {
	repo, err := gitfs.InitMemory()
	require.NoError(t, err)

	sys := vfs.New()
	w := lifecycle.Bind(t, sys, lifecycle.GitFS(repo), fdfs.New(sys))

	require.NoError(t, w.FS.Mkdir("/docs", 0o755))
	writeFile(t, w.FS, "/docs/README", "hello")
	writeFile(t, w.FS, "/main.txt", "main")

	first, err := repo.Snapshot(commitOpts("initial"))
	require.NoError(t, err)
	assert.Len(t, first, 40)

	files, err := repo.Files("HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/README", "main.txt"}, files)

	content, err := repo.Show("HEAD", "docs/README")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	require.NoError(t, w.FS.Unlink("/main.txt"))
	writeFile(t, w.FS, "/docs/README", "changed")
	second, err := repo.Snapshot(commitOpts("update"))
	require.NoError(t, err)

	files, err = repo.Files("HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/README"}, files, "deletions are staged")

	content, err = repo.Show(first, "docs/README")
	require.NoError(t, err)
	assert.Equal(t, "hello", content, "earlier snapshots are unchanged")

	var log []gitfs.Commit
	for c, err := range repo.Log("HEAD") {
		require.NoError(t, err)
		log = append(log, c)
	}
	require.Len(t, log, 2)
	assert.Equal(t, second, log[0].Hash)
	assert.Equal(t, "update", log[0].Message)
	assert.Equal(t, first, log[1].Hash)
	assert.Equal(t, "Test User", log[1].Author)
	assert.Equal(t, "test@example.com", log[1].Email)
}

func TestSnapshot_Errors(t *testing.T) {
	repo, err := gitfs.InitMemory()
	require.NoError(t, err)

	_, err = repo.Snapshot(gitfs.CommitOptions{Email: "e", Message: "m"})
	assert.True(t, errors.IsConfigError(err))
	_, err = repo.Snapshot(gitfs.CommitOptions{Author: "a", Message: "m"})
	assert.True(t, errors.IsConfigError(err))
	_, err = repo.Snapshot(gitfs.CommitOptions{Author: "a", Email: "e"})
	assert.True(t, errors.IsConfigError(err))

	opts := commitOpts("empty")
	opts.AllowEmpty = true
	_, err = repo.Snapshot(opts)
	require.NoError(t, err)

	_, err = repo.Snapshot(commitOpts("nothing"))
	assert.Equal(t, errors.CodeConflict, errors.GetCode(err))

	_, err = repo.Show("HEAD", "missing")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	_, err = repo.Files("no-such-branch")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	_, err = repo.Files("")
	assert.True(t, errors.IsConfigError(err))
}

func TestHostRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := gitfs.Init(dir)
	require.NoError(t, err)
	require.NotNil(t, repo.Underlying())

	_, err = gitfs.Init(dir)
	assert.Equal(t, errors.CodeAlreadyExists, errors.GetCode(err))

	reopened, err := gitfs.Open(dir)
	require.NoError(t, err)
	assert.Equal(t, core.FSTypeLocal, reopened.Device().Type())

	_, err = gitfs.Open(t.TempDir())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestDevice_Conformance(t *testing.T) {
	repo, err := gitfs.InitMemory()
	require.NoError(t, err)

	dev := repo.Device()
	assert.Equal(t, core.FSTypeMemory, dev.Type())
	fstest.TestSuite[vfs.File, vfs.Dir](t, devfs.New(dev), "/", fstest.MemoryTestConfig())
}
