package gitfs

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/jmgilman/go/fsadapter/errors"
)

// CommitOptions configures Snapshot.
type CommitOptions struct {
	Author     string
	Email      string
	Message    string
	AllowEmpty bool
}

// Commit is a recorded snapshot.
type Commit struct {
	Hash      string
	Author    string
	Email     string
	Message   string
	Timestamp time.Time
}

func newCommit(c *object.Commit) Commit {
	return Commit{
		Hash:      c.Hash.String(),
		Author:    c.Author.Name,
		Email:     c.Author.Email,
		Message:   c.Message,
		Timestamp: c.Author.When,
	}
}

// Snapshot stages every change in the worktree, including deletions, and
// commits it on HEAD. It returns the commit hash. A clean worktree is a
// CodeConflict error unless AllowEmpty is set.
func (r *Repository) Snapshot(opts CommitOptions) (string, error) {
	switch {
	case opts.Author == "":
		return "", errors.New(errors.CodeInvalidConfig, "author is required")
	case opts.Email == "":
		return "", errors.New(errors.CodeInvalidConfig, "email is required")
	case opts.Message == "":
		return "", errors.New(errors.CodeInvalidConfig, "message is required")
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return "", wrapError(err, "failed to get worktree")
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return "", wrapError(err, "failed to stage changes")
	}

	hash, err := wt.Commit(opts.Message, &gogit.CommitOptions{
		All: true,
		Author: &object.Signature{
			Name:  opts.Author,
			Email: opts.Email,
			When:  time.Now(),
		},
		AllowEmptyCommits: opts.AllowEmpty,
	})
	if err != nil {
		return "", wrapError(err, "failed to create commit")
	}

	r.logger.Debug("snapshot committed", "hash", hash.String())
	return hash.String(), nil
}

// Log walks history from ref, newest first.
func (r *Repository) Log(ref string) iter.Seq2[Commit, error] {
	return func(yield func(Commit, error) bool) {
		c, err := r.commit(ref)
		if err != nil {
			yield(Commit{}, err)
			return
		}

		it := object.NewCommitPreorderIter(c, nil, nil)
		defer it.Close()

		for {
			c, err := it.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(Commit{}, wrapError(err, "failed to iterate commits"))
				}
				return
			}
			if !yield(newCommit(c), nil) {
				return
			}
		}
	}
}

// Files lists the paths recorded in the tree of ref, sorted.
func (r *Repository) Files(ref string) ([]string, error) {
	c, err := r.commit(ref)
	if err != nil {
		return nil, err
	}

	files, err := c.Files()
	if err != nil {
		return nil, wrapError(err, "failed to read tree")
	}
	defer files.Close()

	var names []string
	err = files.ForEach(func(f *object.File) error {
		names = append(names, f.Name)
		return nil
	})
	if err != nil {
		return nil, wrapError(err, "failed to read tree")
	}
	slices.Sort(names)
	return names, nil
}

// Show returns the content of name as recorded in ref.
func (r *Repository) Show(ref, name string) (string, error) {
	c, err := r.commit(ref)
	if err != nil {
		return "", err
	}

	f, err := c.File(name)
	if err != nil {
		return "", wrapError(err, fmt.Sprintf("failed to find %q in %s", name, ref))
	}
	content, err := f.Contents()
	if err != nil {
		return "", wrapError(err, fmt.Sprintf("failed to read %q in %s", name, ref))
	}
	return content, nil
}

func (r *Repository) commit(ref string) (*object.Commit, error) {
	if ref == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "reference is required")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to resolve reference %q", ref))
	}
	c, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to get commit for %q", ref))
	}
	return c, nil
}
