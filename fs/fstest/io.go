package fstest

import (
	"bytes"
	"errors"
	"io"
	"path"
	"testing"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// TestRoundTrip writes a multi-chunk file, reads it back and checks seek
// results against the written size.
func TestRoundTrip[F, D any, FS core.FileSystem[F, D]](t *testing.T, fsys FS, dir string) {
	p := path.Join(dir, "roundtrip.bin")
	t.Cleanup(func() { _ = fsys.Unlink(p) })

	data := make([]byte, 64*1024+17)
	for i := range data {
		data[i] = byte(i * 7)
	}

	f, err := fsys.Open(p, core.O_CREAT|core.O_TRUNC|core.O_WRONLY, FileMode)
	if err != nil {
		t.Fatalf("Open(%q): got error %v, want nil", p, err)
	}
	for off := 0; off < len(data); off += 1000 {
		end := min(off+1000, len(data))
		if n, err := fsys.Write(f, data[off:end]); err != nil || n != end-off {
			t.Fatalf("Write(%d:%d): got (%d, %v), want (%d, nil)", off, end, n, err, end-off)
		}
	}
	if err := fsys.Close(f); err != nil {
		t.Fatalf("Close(): got error %v, want nil", err)
	}

	f, err = fsys.Open(p, core.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("Open(%q): got error %v, want nil", p, err)
	}
	defer func() { _ = fsys.Close(f) }()

	got, err := core.ReadAll[F, D](fsys, f)
	if err != nil {
		t.Fatalf("ReadAll(): got error %v, want nil", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadAll(): got %d bytes, want %d matching bytes", len(got), len(data))
	}

	end, err := fsys.Lseek(f, 0, core.SeekEnd)
	if err != nil || end != int64(len(data)) {
		t.Errorf("Lseek(0, SeekEnd): got (%d, %v), want (%d, nil)", end, err, len(data))
	}

	if _, err := fsys.Lseek(f, 100, core.SeekSet); err != nil {
		t.Fatalf("Lseek(100, SeekSet): got error %v, want nil", err)
	}
	cur, err := fsys.Lseek(f, 50, core.SeekCur)
	if err != nil || cur != 150 {
		t.Errorf("Lseek(50, SeekCur): got (%d, %v), want (150, nil)", cur, err)
	}
	buf := make([]byte, 10)
	if n, err := fsys.Read(f, buf); err != nil || n != len(buf) {
		t.Fatalf("Read(10) at 150: got (%d, %v), want (10, nil)", n, err)
	}
	if !bytes.Equal(buf, data[150:160]) {
		t.Errorf("Read(10) at 150: got %v, want %v", buf, data[150:160])
	}
}

// TestEndOfData checks that reads at end of data return (0, nil) and that
// directory streams end with io.EOF on every further call.
func TestEndOfData[F, D any, FS core.FileSystem[F, D]](t *testing.T, fsys FS, dir string) {
	p := path.Join(dir, "eod.txt")
	t.Cleanup(func() { _ = fsys.Unlink(p) })

	f, err := fsys.Open(p, core.O_CREAT|core.O_TRUNC|core.O_RDWR, FileMode)
	if err != nil {
		t.Fatalf("Open(%q): got error %v, want nil", p, err)
	}
	if _, err := fsys.Write(f, []byte("hello")); err != nil {
		t.Fatalf("Write(): got error %v, want nil", err)
	}
	if _, err := fsys.Lseek(f, 0, core.SeekSet); err != nil {
		t.Fatalf("Lseek(0, SeekSet): got error %v, want nil", err)
	}

	buf := make([]byte, 16)
	n, err := fsys.Read(f, buf)
	if err != nil || string(buf[:n]) != "hello" {
		t.Errorf("Read(): got (%q, %v), want (%q, nil)", buf[:n], err, "hello")
	}
	for i := range 2 {
		if n, err := fsys.Read(f, buf); err != nil || n != 0 {
			t.Errorf("Read() past end #%d: got (%d, %v), want (0, nil)", i, n, err)
		}
	}
	if err := fsys.Close(f); err != nil {
		t.Errorf("Close(): got error %v, want nil", err)
	}

	d, err := fsys.Opendir(dir)
	if err != nil {
		t.Fatalf("Opendir(%q): got error %v, want nil", dir, err)
	}
	defer func() { _ = fsys.Closedir(d) }()

	for {
		ent, err := fsys.Readdir(d)
		if errors.Is(err, io.EOF) {
			if ent != nil {
				t.Errorf("Readdir(): got entry %q with io.EOF, want nil", ent.Name)
			}
			break
		}
		if err != nil {
			t.Fatalf("Readdir(): got error %v, want nil or io.EOF", err)
		}
	}
	if ent, err := fsys.Readdir(d); ent != nil || !errors.Is(err, io.EOF) {
		t.Errorf("Readdir() after end: got (%v, %v), want (nil, io.EOF)", ent, err)
	}
}
