package vfs

import (
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// DirStream is an open directory on a System.
type DirStream struct {
	sys    *System
	dir    Dir
	mount  *mountPoint
	closed bool
}

// Opendir opens a directory cursor on the device serving path.
func (s *System) Opendir(path string) (*DirStream, error) {
	mp, dev, suffix, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	s.acquire(mp)
	d, err := dev.Opendir(suffix)
	if err != nil {
		s.release(mp)
		return nil, err
	}
	return &DirStream{sys: s, dir: d, mount: mp}, nil
}

// Readdir returns the next entry of ds, or nil and io.EOF.
func (s *System) Readdir(ds *DirStream) (*core.Dirent, error) {
	if ds == nil || ds.closed || ds.sys != s {
		return nil, unix.EBADF
	}
	return ds.dir.Readdir()
}

// Closedir releases ds.
func (s *System) Closedir(ds *DirStream) error {
	if ds == nil || ds.closed || ds.sys != s {
		return unix.EBADF
	}
	ds.closed = true
	err := ds.dir.Close()
	s.release(ds.mount)
	return err
}
