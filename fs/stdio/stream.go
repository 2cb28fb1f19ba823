package stdio

import (
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// BufferSize is the size of a stream's read and write buffers.
const BufferSize = 4096

// CreateMode is the permission requested for files a stream creates.
const CreateMode = 0o666

// Descriptors is the descriptor table a Stream performs I/O through.
// *vfs.System implements it.
type Descriptors interface {
	Open(path string, flags int, mode uint32) (int, error)
	Read(fd int, buf []byte) (int, error)
	Write(fd int, buf []byte) (int, error)
	Lseek(fd int, offset int64, whence int) (int64, error)
	Close(fd int) error
}

// Stream is a buffered stream over a descriptor.
//
// Like a C FILE it keeps an end-of-file indicator and an error indicator.
// Fread and Fwrite report only counts; callers consult Feof and Ferror to
// tell a short count at end of data from a failure.
type Stream struct {
	fds   Descriptors
	fd    int
	flags int

	rbuf []byte
	rpos int
	rend int

	wbuf []byte

	lastRune int
	eof      bool
	err      error
	closed   bool
}

// Open opens path on fds with an fopen style mode. An invalid mode is a
// configuration error wrapping EINVAL. Otherwise the error is whatever the
// descriptor table reports.
func Open(fds Descriptors, path, mode string) (*Stream, error) {
	flags, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	fd, err := fds.Open(path, flags, CreateMode)
	if err != nil {
		return nil, err
	}
	return newStream(fds, fd, flags), nil
}

// Fdopen wraps an already open descriptor. The stream takes ownership of fd.
func Fdopen(fds Descriptors, fd int, mode string) (*Stream, error) {
	flags, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return newStream(fds, fd, flags), nil
}

func newStream(fds Descriptors, fd, flags int) *Stream {
	return &Stream{
		fds:      fds,
		fd:       fd,
		flags:    flags,
		lastRune: -1,
	}
}

// Fd returns the underlying descriptor.
func (s *Stream) Fd() int {
	return s.fd
}

// Fread reads up to len(p) bytes and returns the count. A count short of
// len(p) means end of data or an error; see Feof and Ferror.
func (s *Stream) Fread(p []byte) int {
	if !s.usable() {
		return 0
	}
	if !core.Readable(s.flags) {
		s.err = unix.EBADF
		return 0
	}
	if len(s.wbuf) > 0 && !s.flush() {
		return 0
	}
	s.lastRune = -1

	n := 0
	for n < len(p) {
		if s.rpos == s.rend {
			if len(p)-n >= BufferSize {
				m, ok := s.readRaw(p[n:])
				n += m
				if !ok {
					break
				}
				continue
			}
			if !s.fill() {
				break
			}
		}
		c := copy(p[n:], s.rbuf[s.rpos:s.rend])
		s.rpos += c
		n += c
	}
	return n
}

// readRaw reads straight into p, bypassing the buffer.
func (s *Stream) readRaw(p []byte) (int, bool) {
	m, err := s.fds.Read(s.fd, p)
	switch {
	case err != nil:
		s.err = err
		return 0, false
	case m == 0:
		s.eof = true
		return 0, false
	}
	return m, true
}

// fill refills the read buffer. It returns false at end of data or on error.
func (s *Stream) fill() bool {
	if s.rbuf == nil {
		s.rbuf = make([]byte, BufferSize)
	}
	m, ok := s.readRaw(s.rbuf)
	if !ok {
		s.rpos, s.rend = 0, 0
		return false
	}
	s.rpos, s.rend = 0, m
	return true
}

// Fwrite writes p and returns the count accepted. A count short of len(p)
// means an error; see Ferror.
func (s *Stream) Fwrite(p []byte) int {
	if !s.usable() {
		return 0
	}
	if !core.Writable(s.flags) {
		s.err = unix.EBADF
		return 0
	}
	if !s.dropReadBuffer() {
		return 0
	}
	s.lastRune = -1

	if len(s.wbuf)+len(p) > BufferSize {
		if !s.flush() {
			return 0
		}
	}
	if len(p) >= BufferSize {
		return s.writeRaw(p)
	}
	s.wbuf = append(s.wbuf, p...)
	return len(p)
}

// writeRaw writes p to the descriptor, continuing after partial writes.
func (s *Stream) writeRaw(p []byte) int {
	written := 0
	for written < len(p) {
		n, err := s.fds.Write(s.fd, p[written:])
		if err != nil {
			s.err = err
			return written
		}
		if n <= 0 {
			s.err = io.ErrShortWrite
			return written
		}
		written += n
	}
	return written
}

// flush writes the pending write buffer. On failure the unwritten tail is
// discarded and the error indicator set.
func (s *Stream) flush() bool {
	if len(s.wbuf) == 0 {
		return true
	}
	n := s.writeRaw(s.wbuf)
	ok := n == len(s.wbuf)
	s.wbuf = s.wbuf[:0]
	return ok
}

// dropReadBuffer discards buffered input and moves the descriptor offset
// back to the logical stream position.
func (s *Stream) dropReadBuffer() bool {
	unread := s.rend - s.rpos
	s.rpos, s.rend = 0, 0
	if unread == 0 {
		return true
	}
	if _, err := s.fds.Lseek(s.fd, -int64(unread), core.SeekCur); err != nil {
		s.err = err
		return false
	}
	return true
}

// Fseek repositions the stream. Pending output is written first, buffered
// input is discarded and the end-of-file indicator is cleared.
func (s *Stream) Fseek(offset int64, whence int) error {
	if s.closed {
		return unix.EBADF
	}
	if !s.flush() {
		return s.err
	}

	if whence == core.SeekCur {
		offset -= int64(s.rend - s.rpos)
	}
	s.rpos, s.rend = 0, 0
	s.lastRune = -1

	if _, err := s.fds.Lseek(s.fd, offset, whence); err != nil {
		return err
	}
	s.eof = false
	return nil
}

// Ftell returns the logical stream position.
func (s *Stream) Ftell() (int64, error) {
	if s.closed {
		return -1, unix.EBADF
	}
	if !s.flush() {
		return -1, s.err
	}
	pos, err := s.fds.Lseek(s.fd, 0, core.SeekCur)
	if err != nil {
		return -1, err
	}
	return pos - int64(s.rend-s.rpos), nil
}

// Rewind seeks to the start and clears both indicators.
func (s *Stream) Rewind() error {
	err := s.Fseek(0, core.SeekSet)
	s.Clearerr()
	return err
}

// Feof reports the end-of-file indicator.
func (s *Stream) Feof() bool {
	return s.eof
}

// Ferror returns the error indicator: the first error since the stream was
// opened or Clearerr was called, or nil.
func (s *Stream) Ferror() error {
	return s.err
}

// Clearerr clears the end-of-file and error indicators.
func (s *Stream) Clearerr() {
	s.eof = false
	s.err = nil
}

// Fflush writes pending output.
func (s *Stream) Fflush() error {
	if s.closed {
		return unix.EBADF
	}
	if !s.flush() {
		return s.err
	}
	return nil
}

// Fclose flushes and closes the stream. The descriptor is closed even when
// the flush fails; the first error is returned.
func (s *Stream) Fclose() error {
	if s.closed {
		return unix.EBADF
	}

	var err error
	if !s.flush() {
		err = s.err
	}
	if cerr := s.fds.Close(s.fd); err == nil {
		err = cerr
	}
	s.closed = true
	s.rbuf, s.wbuf = nil, nil
	return err
}

// usable reports whether I/O is allowed. A failed stream keeps failing until
// Clearerr.
func (s *Stream) usable() bool {
	if s.closed {
		return false
	}
	return s.err == nil
}

// Printf writes formatted output and returns the number of bytes written.
func (s *Stream) Printf(format string, args ...any) (int, error) {
	return fmt.Fprintf(writer{s}, format, args...)
}

// Scanf scans formatted input and returns the number of items assigned.
func (s *Stream) Scanf(format string, args ...any) (int, error) {
	return fmt.Fscanf(scanner{s}, format, args...)
}

// writer adapts a Stream to io.Writer for fmt.
type writer struct{ s *Stream }

func (w writer) Write(p []byte) (int, error) {
	n := w.s.Fwrite(p)
	if n < len(p) {
		if err := w.s.Ferror(); err != nil {
			return n, err
		}
		return n, io.ErrShortWrite
	}
	return n, nil
}

// scanner adapts a Stream to io.RuneScanner so fmt does not read past what
// it consumes.
type scanner struct{ s *Stream }

func (r scanner) Read(p []byte) (int, error) {
	n := r.s.Fread(p)
	if n == 0 {
		if err := r.s.Ferror(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	return n, nil
}

func (r scanner) ReadRune() (rune, int, error) {
	s := r.s
	if !s.usable() {
		if s.err != nil {
			return 0, 0, s.err
		}
		return 0, 0, unix.EBADF
	}
	if !core.Readable(s.flags) {
		s.err = unix.EBADF
		return 0, 0, s.err
	}
	if len(s.wbuf) > 0 && !s.flush() {
		return 0, 0, s.err
	}

	if s.rend-s.rpos < utf8.UTFMax && !utf8.FullRune(s.rbuf[s.rpos:s.rend]) {
		s.compactAndFill()
	}
	if s.rpos == s.rend {
		if s.err != nil {
			return 0, 0, s.err
		}
		return 0, 0, io.EOF
	}

	c, size := utf8.DecodeRune(s.rbuf[s.rpos:s.rend])
	s.rpos += size
	s.lastRune = size
	return c, size, nil
}

// compactAndFill moves unread input to the front of the buffer and reads
// more after it.
func (s *Stream) compactAndFill() {
	if s.rbuf == nil {
		s.rbuf = make([]byte, BufferSize)
	}
	n := copy(s.rbuf, s.rbuf[s.rpos:s.rend])
	s.rpos, s.rend = 0, n

	m, ok := s.readRaw(s.rbuf[n:])
	if ok {
		s.rend += m
	}
}

func (r scanner) UnreadRune() error {
	s := r.s
	if s.lastRune < 0 || s.rpos < s.lastRune {
		return unix.EINVAL
	}
	s.rpos -= s.lastRune
	s.lastRune = -1
	return nil
}
