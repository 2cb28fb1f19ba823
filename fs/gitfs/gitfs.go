// Package gitfs serves the worktree of a git repository as a vfs device and
// records its state as commits.
//
// The worktree is a go-billy filesystem, so the device is a billy device and
// behaves like one (no hard links, directories listed with "." and "..").
// Snapshot stages every change made through the device and commits it:
//
//	repo, err := gitfs.InitMemory()
//	if err != nil {
//		return err
//	}
//	sys.Register(gitfs.DevID, repo.Device())
//	sys.Mount(gitfs.DevID, "", "/", 0)
//	// ... write files through sys ...
//	hash, err := repo.Snapshot(gitfs.CommitOptions{
//		Author:  "Ada",
//		Email:   "ada@example.com",
//		Message: "checkpoint",
//	})
package gitfs

import (
	"log/slog"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"

	fsbilly "github.com/jmgilman/go/fsadapter/fs/billy"
	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// DevID is the device id gitfs devices are registered under by convention.
const DevID vfs.DevID = 4

// Option configures a Repository.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used by the repository and its device.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Repository is a git repository whose worktree can be mounted.
type Repository struct {
	repo   *gogit.Repository
	wt     billy.Filesystem
	fstype core.FSType
	logger *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// InitMemory creates an empty repository with in-memory object storage and
// worktree.
func InitMemory(opts ...Option) (*Repository, error) {
	o := newOptions(opts)

	wt := memfs.New()
	repo, err := gogit.Init(memory.NewStorage(), wt)
	if err != nil {
		return nil, wrapError(err, "failed to initialize repository")
	}

	o.logger.Debug("repository initialized", "storage", "memory")
	return &Repository{repo: repo, wt: wt, fstype: core.FSTypeMemory, logger: o.logger}, nil
}

// Init creates a repository in dir on the host with objects stored under
// dir/.git.
func Init(dir string, opts ...Option) (*Repository, error) {
	o := newOptions(opts)

	wt, storage, err := hostStorage(dir)
	if err != nil {
		return nil, err
	}
	repo, err := gogit.Init(storage, wt)
	if err != nil {
		return nil, wrapError(err, "failed to initialize repository")
	}

	o.logger.Debug("repository initialized", "dir", dir)
	return &Repository{repo: repo, wt: wt, fstype: core.FSTypeLocal, logger: o.logger}, nil
}

// Open opens the repository in dir.
func Open(dir string, opts ...Option) (*Repository, error) {
	o := newOptions(opts)

	wt, storage, err := hostStorage(dir)
	if err != nil {
		return nil, err
	}
	repo, err := gogit.Open(storage, wt)
	if err != nil {
		return nil, wrapError(err, "failed to open repository")
	}

	return &Repository{repo: repo, wt: wt, fstype: core.FSTypeLocal, logger: o.logger}, nil
}

func hostStorage(dir string) (billy.Filesystem, *filesystem.Storage, error) {
	wt := osfs.New(dir)
	dotGit, err := wt.Chroot(gogit.GitDirName)
	if err != nil {
		return nil, nil, wrapError(err, "failed to create .git filesystem")
	}
	return wt, filesystem.NewStorage(dotGit, cache.NewObjectLRUDefault()), nil
}

// Device returns a device serving the worktree. Devices returned by separate
// calls share the worktree.
func (r *Repository) Device() *fsbilly.Device {
	return fsbilly.New(r.wt, r.fstype, fsbilly.WithLogger(r.logger))
}

// Underlying returns the go-git repository.
func (r *Repository) Underlying() *gogit.Repository {
	return r.repo
}
