package vfs

import (
	"io"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// Open opens path on the device serving it and returns the lowest free
// descriptor.
func (s *System) Open(path string, flags int, mode uint32) (int, error) {
	var (
		mp     *mountPoint
		dev    Device
		suffix string
		err    error
	)
	if core.Writable(flags) || flags&(core.O_CREAT|core.O_TRUNC) != 0 {
		mp, dev, suffix, err = s.resolveWritable(path)
	} else {
		mp, dev, suffix, err = s.resolve(path)
	}
	if err != nil {
		return -1, err
	}

	s.acquire(mp)
	f, err := dev.Open(suffix, flags, mode)
	if err != nil {
		s.release(mp)
		return -1, err
	}

	s.mu.Lock()
	fd := 0
	for {
		if _, used := s.files[fd]; !used {
			break
		}
		fd++
	}
	s.files[fd] = &descriptor{file: f, mount: mp}
	s.mu.Unlock()

	return fd, nil
}

func (s *System) lookup(fd int) (*descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.files[fd]
	if !ok {
		return nil, unix.EBADF
	}
	return d, nil
}

// Read reads from fd. It returns 0 and nil at end of data.
func (s *System) Read(fd int, buf []byte) (int, error) {
	d, err := s.lookup(fd)
	if err != nil {
		return 0, err
	}
	return d.file.Read(buf)
}

// Write writes buf to fd.
func (s *System) Write(fd int, buf []byte) (int, error) {
	d, err := s.lookup(fd)
	if err != nil {
		return 0, err
	}
	return d.file.Write(buf)
}

// Lseek repositions the offset of fd.
func (s *System) Lseek(fd int, offset int64, whence int) (int64, error) {
	d, err := s.lookup(fd)
	if err != nil {
		return -1, err
	}
	return d.file.Lseek(offset, whence)
}

// Close releases fd. The descriptor is freed even when the device reports
// an error.
func (s *System) Close(fd int) error {
	s.mu.Lock()
	d, ok := s.files[fd]
	if ok {
		delete(s.files, fd)
	}
	s.mu.Unlock()

	if !ok {
		return unix.EBADF
	}
	err := d.file.Close()
	s.release(d.mount)
	return err
}

// consoleFile backs the standard descriptors.
type consoleFile struct {
	r io.Reader
	w io.Writer
}

func (c *consoleFile) Read(buf []byte) (int, error) {
	if c.r == nil {
		return 0, unix.EBADF
	}
	n, err := c.r.Read(buf)
	if err == io.EOF {
		return n, nil
	}
	if err != nil {
		return n, unix.EIO
	}
	return n, nil
}

func (c *consoleFile) Write(buf []byte) (int, error) {
	if c.w == nil {
		return 0, unix.EBADF
	}
	n, err := c.w.Write(buf)
	if err != nil {
		return n, unix.EIO
	}
	return n, nil
}

func (c *consoleFile) Lseek(int64, int) (int64, error) {
	return -1, unix.ESPIPE
}

func (c *consoleFile) Close() error {
	return nil
}
