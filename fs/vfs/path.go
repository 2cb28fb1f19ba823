package vfs

import (
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// Unlink removes the file at path.
func (s *System) Unlink(path string) error {
	_, dev, suffix, err := s.resolveWritable(path)
	if err != nil {
		return err
	}
	return dev.Unlink(suffix)
}

// Link creates newpath as a hard link to oldpath. Both paths must be served
// by the same mount (EXDEV otherwise).
func (s *System) Link(oldpath, newpath string) error {
	dev, oldSuffix, newSuffix, err := s.resolvePair(oldpath, newpath)
	if err != nil {
		return err
	}
	return dev.Link(oldSuffix, newSuffix)
}

// Rename renames oldpath to newpath. Both paths must be served by the same
// mount (EXDEV otherwise).
func (s *System) Rename(oldpath, newpath string) error {
	dev, oldSuffix, newSuffix, err := s.resolvePair(oldpath, newpath)
	if err != nil {
		return err
	}
	return dev.Rename(oldSuffix, newSuffix)
}

// Mkdir creates a directory.
func (s *System) Mkdir(path string, mode uint32) error {
	_, dev, suffix, err := s.resolveWritable(path)
	if err != nil {
		return err
	}
	return dev.Mkdir(suffix, mode)
}

// Rmdir removes an empty directory.
func (s *System) Rmdir(path string) error {
	_, dev, suffix, err := s.resolveWritable(path)
	if err != nil {
		return err
	}
	return dev.Rmdir(suffix)
}

// Stat fills buf with the metadata of path.
func (s *System) Stat(path string, buf *core.Stat) error {
	_, dev, suffix, err := s.resolve(path)
	if err != nil {
		return err
	}
	return dev.Stat(suffix, buf)
}

// Truncate sets the size of the file at path.
func (s *System) Truncate(path string, length int64) error {
	_, dev, suffix, err := s.resolveWritable(path)
	if err != nil {
		return err
	}
	return dev.Truncate(suffix, length)
}

func (s *System) resolvePair(oldpath, newpath string) (Device, string, string, error) {
	oldMount, dev, oldSuffix, err := s.resolveWritable(oldpath)
	if err != nil {
		return nil, "", "", err
	}
	newMount, _, newSuffix, err := s.resolveWritable(newpath)
	if err != nil {
		return nil, "", "", err
	}
	if oldMount != newMount {
		return nil, "", "", unix.EXDEV
	}
	return dev, oldSuffix, newSuffix, nil
}
