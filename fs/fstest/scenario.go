package fstest

import (
	"bytes"
	"errors"
	"io"
	"path"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// Alphabet is the content written by the scenario, including the trailing
// NUL a C string literal carries.
var Alphabet = []byte("abcdefghijklmnopqrstuvwxyz\x00")

// FileMode is the permission the scenario creates files with.
const FileMode = 0o644

// TestScenario runs the create, read, stat, link, rename, readdir, truncate
// and unlink sequence in order. Each step depends on the state the previous
// one left behind.
func TestScenario[F, D any, FS core.FileSystem[F, D]](t *testing.T, fsys FS, dir string, config Config) {
	s := scenario[F, D, FS]{fsys: fsys, dir: dir, config: config}

	s.cleanup()
	t.Cleanup(s.cleanup)

	steps := []struct {
		name string
		run  func(t *testing.T)
	}{
		{"CreateFile", s.createFile},
		{"ReadFile", s.readFile},
		{"StatFile", s.statFile},
		{"LinkFile", s.linkFile},
		{"RenameFile", s.renameFile},
		{"Readdir", s.readdir},
		{"TruncateFile", s.truncateFile},
		{"UnlinkFile", s.unlinkFile},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			if config.skip("Scenario/" + step.name) {
				t.Skip("Skipped by provider configuration")
				return
			}
			step.run(t)
		})
	}
}

type scenario[F, D any, FS core.FileSystem[F, D]] struct {
	fsys   FS
	dir    string
	config Config
}

func (s scenario[F, D, FS]) path(name string) string {
	return path.Join(s.dir, name)
}

// cleanup removes everything the scenario may have created, ignoring errors.
func (s scenario[F, D, FS]) cleanup() {
	_ = s.fsys.Unlink(s.path("alphabet"))
	_ = s.fsys.Unlink(s.path("alphabet.renamed"))
	_ = s.fsys.Unlink(s.path("alphabet.linked"))
	_ = s.fsys.Rmdir(s.path("dir1"))
	_ = s.fsys.Rmdir(s.path("dir2"))
}

func (s scenario[F, D, FS]) createFile(t *testing.T) {
	p := s.path("alphabet")
	f, err := s.fsys.Open(p, core.O_CREAT|core.O_TRUNC|core.O_WRONLY, FileMode)
	if err != nil {
		t.Fatalf("Open(%q): got error %v, want nil", p, err)
	}

	n, err := s.fsys.Write(f, Alphabet)
	if err != nil {
		t.Errorf("Write(): got error %v, want nil", err)
	}
	if n != len(Alphabet) {
		t.Errorf("Write(): wrote %d bytes, want %d", n, len(Alphabet))
	}

	if err := s.fsys.Close(f); err != nil {
		t.Errorf("Close(): got error %v, want nil", err)
	}
}

func (s scenario[F, D, FS]) readFile(t *testing.T) {
	p := s.path("alphabet")
	f, err := s.fsys.Open(p, core.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("Open(%q): got error %v, want nil", p, err)
	}
	defer func() {
		if err := s.fsys.Close(f); err != nil {
			t.Errorf("Close(): got error %v, want nil", err)
		}
	}()

	buf := make([]byte, 4096)
	n, err := s.fsys.Read(f, buf)
	if err != nil {
		t.Fatalf("Read(): got error %v, want nil", err)
	}
	if !bytes.Equal(buf[:n], Alphabet) {
		t.Errorf("Read(): got %q, want %q", buf[:n], Alphabet)
	}

	off, err := s.fsys.Lseek(f, 11, core.SeekSet)
	if err != nil || off != 11 {
		t.Fatalf("Lseek(11, SeekSet): got (%d, %v), want (11, nil)", off, err)
	}
	n, err = s.fsys.Read(f, buf[:5])
	if err != nil || n != 5 {
		t.Fatalf("Read(5): got (%d, %v), want (5, nil)", n, err)
	}
	if string(buf[:5]) != "lmnop" {
		t.Errorf("Read(5) at 11: got %q, want %q", buf[:5], "lmnop")
	}

	if off, err := s.fsys.Lseek(f, 0, core.SeekSet); err != nil || off != 0 {
		t.Fatalf("Lseek(0, SeekSet): got (%d, %v), want (0, nil)", off, err)
	}
	for i, want := range Alphabet {
		n, err := s.fsys.Read(f, buf[:1])
		if err != nil || n != 1 {
			t.Fatalf("Read(1) #%d: got (%d, %v), want (1, nil)", i, n, err)
		}
		if buf[0] != want {
			t.Errorf("Read(1) #%d: got %q, want %q", i, buf[0], want)
		}
	}
}

func (s scenario[F, D, FS]) statFile(t *testing.T) {
	p := s.path("alphabet")
	var st core.Stat
	if err := s.fsys.Stat(p, &st); err != nil {
		t.Fatalf("Stat(%q): got error %v, want nil", p, err)
	}
	if st.Size != int64(len(Alphabet)) {
		t.Errorf("Stat(%q): Size = %d, want %d", p, st.Size, len(Alphabet))
	}
	if !st.IsReg() {
		t.Errorf("Stat(%q): mode %#o is not a regular file", p, st.Mode)
	}
	if s.config.ModeBits && st.Mode != core.S_IFREG|FileMode {
		t.Errorf("Stat(%q): Mode = %#o, want %#o", p, st.Mode, core.S_IFREG|FileMode)
	}
}

func (s scenario[F, D, FS]) linkFile(t *testing.T) {
	oldname, newname := s.path("alphabet"), s.path("alphabet.linked")

	err := s.fsys.Link(oldname, newname)
	switch {
	case s.config.HardLinks && err != nil:
		t.Fatalf("Link(%q, %q): got error %v, want nil", oldname, newname, err)
	case !s.config.HardLinks:
		if !errors.Is(err, unix.ENOTSUP) {
			t.Errorf("Link(%q, %q): got error %v, want ENOTSUP", oldname, newname, err)
		}
		if err := core.CopyFile[F, D](s.fsys, oldname, newname, FileMode); err != nil {
			t.Fatalf("CopyFile(%q, %q): got error %v, want nil", oldname, newname, err)
		}
	}

	var st core.Stat
	for _, p := range []string{oldname, newname} {
		if err := s.fsys.Stat(p, &st); err != nil {
			t.Errorf("Stat(%q): got error %v, want nil", p, err)
		}
	}
	if s.config.HardLinks && st.Nlink != 2 {
		t.Errorf("Stat(%q): Nlink = %d, want 2", newname, st.Nlink)
	}
}

func (s scenario[F, D, FS]) renameFile(t *testing.T) {
	oldname, newname := s.path("alphabet.linked"), s.path("alphabet.renamed")

	if err := s.fsys.Rename(oldname, newname); err != nil {
		t.Fatalf("Rename(%q, %q): got error %v, want nil", oldname, newname, err)
	}

	var st core.Stat
	if err := s.fsys.Stat(oldname, &st); !errors.Is(err, unix.ENOENT) {
		t.Errorf("Stat(%q): got error %v, want ENOENT", oldname, err)
	}
	if err := s.fsys.Stat(newname, &st); err != nil {
		t.Errorf("Stat(%q): got error %v, want nil", newname, err)
	}
}

func (s scenario[F, D, FS]) readdir(t *testing.T) {
	for _, name := range []string{"dir1", "dir2"} {
		if err := s.fsys.Mkdir(s.path(name), 0o777); err != nil {
			t.Fatalf("Mkdir(%q): got error %v, want nil", s.path(name), err)
		}
	}

	var st core.Stat
	if err := s.fsys.Stat(s.path("dir1"), &st); err != nil {
		t.Errorf("Stat(%q): got error %v, want nil", s.path("dir1"), err)
	} else if !st.IsDir() {
		t.Errorf("Stat(%q): mode %#o is not a directory", s.path("dir1"), st.Mode)
	}

	if err := s.fsys.Rmdir(s.path("dir2")); err != nil {
		t.Fatalf("Rmdir(%q): got error %v, want nil", s.path("dir2"), err)
	}

	names, err := ListNames[F, D](s.fsys, s.dir)
	if err != nil {
		t.Fatalf("Readdir(%q): got error %v, want nil", s.dir, err)
	}

	for _, want := range []string{".", "..", "alphabet", "alphabet.renamed", "dir1"} {
		if !names[want] {
			t.Errorf("Readdir(%q): entry %q not found in %v", s.dir, want, names)
		}
	}
	if names["dir2"] {
		t.Errorf("Readdir(%q): removed entry %q still listed", s.dir, "dir2")
	}
}

func (s scenario[F, D, FS]) truncateFile(t *testing.T) {
	p := s.path("alphabet")
	if err := s.fsys.Truncate(p, 5); err != nil {
		t.Fatalf("Truncate(%q, 5): got error %v, want nil", p, err)
	}

	var st core.Stat
	if err := s.fsys.Stat(p, &st); err != nil {
		t.Fatalf("Stat(%q): got error %v, want nil", p, err)
	}
	if st.Size != 5 {
		t.Errorf("Stat(%q): Size = %d, want 5", p, st.Size)
	}
}

func (s scenario[F, D, FS]) unlinkFile(t *testing.T) {
	p := s.path("alphabet")
	if err := s.fsys.Unlink(p); err != nil {
		t.Fatalf("Unlink(%q): got error %v, want nil", p, err)
	}

	var st core.Stat
	if err := s.fsys.Stat(p, &st); !errors.Is(err, unix.ENOENT) {
		t.Errorf("Stat(%q): got error %v, want ENOENT", p, err)
	}
}

// ListNames reads every entry of dir until end of stream and returns the set
// of names seen.
func ListNames[F, D any, FS core.FileSystem[F, D]](fsys FS, dir string) (map[string]bool, error) {
	d, err := fsys.Opendir(dir)
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool)
	for {
		ent, err := fsys.Readdir(d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = fsys.Closedir(d)
			return names, err
		}
		names[ent.Name] = true
	}
	return names, fsys.Closedir(d)
}
