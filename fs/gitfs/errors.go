package gitfs

import (
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/jmgilman/go/fsadapter/errors"
)

// wrapError classifies a go-git error and wraps it with msg. The original
// error stays in the chain. If err is nil, returns nil.
func wrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, classify(err), msg)
}

func classify(err error) errors.ErrorCode {
	switch {
	case errors.Is(err, gogit.ErrRepositoryNotExists),
		errors.Is(err, plumbing.ErrReferenceNotFound),
		errors.Is(err, plumbing.ErrObjectNotFound),
		errors.Is(err, object.ErrFileNotFound):
		return errors.CodeNotFound
	case errors.Is(err, gogit.ErrRepositoryAlreadyExists):
		return errors.CodeAlreadyExists
	case errors.Is(err, gogit.ErrEmptyCommit),
		errors.Is(err, gogit.ErrWorktreeNotClean):
		return errors.CodeConflict
	case errors.Is(err, gogit.ErrMissingAuthor):
		return errors.CodeInvalidConfig
	}
	return errors.CodeUnknown
}
