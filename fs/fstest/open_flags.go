package fstest

import (
	"errors"
	"path"
	"testing"

	"golang.org/x/sys/unix"

	fserrors "github.com/jmgilman/go/fsadapter/errors"
	"github.com/jmgilman/go/fsadapter/fs/core"
)

// flagCase is one row of the open flags matrix.
type flagCase struct {
	name    string
	flags   int
	exists  bool
	wantErr error
	// config reports a configuration error rather than a native one.
	config bool
	// content is the file's content after writing "new" and closing, or ""
	// to skip the check.
	content string
}

func flagCases(config Config) []flagCase {
	const (
		rdonly = core.O_RDONLY
		wronly = core.O_WRONLY
		rdwr   = core.O_RDWR
		creat  = core.O_CREAT
		trunc  = core.O_TRUNC
		appnd  = core.O_APPEND
		excl   = core.O_EXCL
	)

	cases := []flagCase{
		{name: "RDONLY/missing", flags: rdonly, wantErr: unix.ENOENT},
		{name: "RDWR/missing", flags: rdwr, wantErr: unix.ENOENT},
		{name: "RDONLY/existing", flags: rdonly, exists: true},
		{name: "RDWR/existing", flags: rdwr, exists: true, content: "newsting"},
		{name: "WRONLY|CREAT|TRUNC/missing", flags: wronly | creat | trunc, content: "new"},
		{name: "WRONLY|CREAT|TRUNC/existing", flags: wronly | creat | trunc, exists: true, content: "new"},
		{name: "RDWR|CREAT|TRUNC/existing", flags: rdwr | creat | trunc, exists: true, content: "new"},
		{name: "WRONLY|CREAT|APPEND/existing", flags: wronly | creat | appnd, exists: true, content: "existingnew"},
		{name: "RDWR|CREAT|APPEND/missing", flags: rdwr | creat | appnd, content: "new"},
		{name: "WRONLY|CREAT|TRUNC|EXCL/existing", flags: wronly | creat | trunc | excl, exists: true, wantErr: unix.EEXIST},
		{name: "WRONLY|CREAT|TRUNC|EXCL/missing", flags: wronly | creat | trunc | excl, content: "new"},
	}

	if config.WriteOnlyCreates {
		cases = append(cases,
			flagCase{name: "WRONLY/missing", flags: wronly, content: "new"},
			flagCase{name: "WRONLY/existing", flags: wronly, exists: true, content: "new"},
		)
	} else {
		cases = append(cases,
			flagCase{name: "WRONLY/missing", flags: wronly, wantErr: unix.ENOENT},
			flagCase{name: "WRONLY/existing", flags: wronly, exists: true, content: "newsting"},
		)
	}

	if config.RejectBareCreate {
		cases = append(cases,
			flagCase{name: "WRONLY|CREAT/missing", flags: wronly | creat, wantErr: unix.EINVAL, config: true},
			flagCase{name: "RDWR|CREAT/existing", flags: rdwr | creat, exists: true, wantErr: unix.EINVAL, config: true},
			flagCase{name: "ACCMODE/existing", flags: core.O_ACCMODE, exists: true, wantErr: unix.EINVAL, config: true},
		)
	} else {
		cases = append(cases,
			flagCase{name: "WRONLY|CREAT/missing", flags: wronly | creat, content: "new"},
			flagCase{name: "RDWR|CREAT/existing", flags: rdwr | creat, exists: true, content: "newsting"},
		)
	}

	return cases
}

// TestOpenFlags opens files with each flag combination the contract names
// and checks the outcome and resulting content. Expectations depend on
// config.WriteOnlyCreates and config.RejectBareCreate.
func TestOpenFlags[F, D any, FS core.FileSystem[F, D]](t *testing.T, fsys FS, dir string, config Config) {
	p := path.Join(dir, "flags.txt")
	t.Cleanup(func() { _ = fsys.Unlink(p) })

	for _, tc := range flagCases(config) {
		t.Run(tc.name, func(t *testing.T) {
			if config.skip("OpenFlags/" + tc.name) {
				t.Skip("Skipped by provider configuration")
				return
			}

			_ = fsys.Unlink(p)
			if tc.exists {
				writeFile[F, D](t, fsys, p, "existing")
			}

			f, err := fsys.Open(p, tc.flags, FileMode)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Open(%#o): got error %v, want %v", tc.flags, err, tc.wantErr)
				}
				if got := fserrors.IsConfigError(err); got != tc.config {
					t.Errorf("Open(%#o): IsConfigError = %v, want %v", tc.flags, got, tc.config)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open(%#o): got error %v, want nil", tc.flags, err)
			}

			if core.Writable(tc.flags) {
				if _, err := fsys.Write(f, []byte("new")); err != nil {
					t.Errorf("Write(): got error %v, want nil", err)
				}
			}
			if err := fsys.Close(f); err != nil {
				t.Errorf("Close(): got error %v, want nil", err)
			}

			if tc.content != "" {
				if got := readFile[F, D](t, fsys, p); got != tc.content {
					t.Errorf("content after Open(%#o): got %q, want %q", tc.flags, got, tc.content)
				}
			}
		})
	}
}

// TestAccessModes checks that a handle only allows the transfers its access
// mode declares: reads on a write-only handle and writes on a read-only
// handle fail with EBADF.
func TestAccessModes[F, D any, FS core.FileSystem[F, D]](t *testing.T, fsys FS, dir string, config Config) {
	p := path.Join(dir, "access.txt")
	t.Cleanup(func() { _ = fsys.Unlink(p) })

	cases := []struct {
		name  string
		flags int
		read  bool
	}{
		{"ReadOnWriteOnly", core.O_WRONLY | core.O_CREAT | core.O_TRUNC, true},
		{"WriteOnReadOnly", core.O_RDONLY, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if config.skip("AccessModes/" + tc.name) {
				t.Skip("Skipped by provider configuration")
				return
			}

			writeFile[F, D](t, fsys, p, "existing")
			f, err := fsys.Open(p, tc.flags, FileMode)
			if err != nil {
				t.Fatalf("Open(%#o): got error %v, want nil", tc.flags, err)
			}

			var n int
			if tc.read {
				n, err = fsys.Read(f, make([]byte, 4))
			} else {
				n, err = fsys.Write(f, []byte("new"))
			}
			if !errors.Is(err, unix.EBADF) {
				t.Errorf("%s on %#o: got (%d, %v), want EBADF", tc.name, tc.flags, n, err)
			}
			if n != 0 {
				t.Errorf("%s on %#o: transferred %d bytes, want 0", tc.name, tc.flags, n)
			}
			if err := fsys.Close(f); err != nil {
				t.Errorf("Close(): got error %v, want nil", err)
			}

			if !tc.read {
				if got := readFile[F, D](t, fsys, p); got != "existing" {
					t.Errorf("content after refused write: got %q, want %q", got, "existing")
				}
			}
		})
	}
}

func writeFile[F, D any, FS core.FileSystem[F, D]](t *testing.T, fsys FS, p, content string) {
	t.Helper()
	f, err := fsys.Open(p, core.O_CREAT|core.O_TRUNC|core.O_WRONLY, FileMode)
	if err != nil {
		t.Fatalf("Open(%q): setup failed: %v", p, err)
	}
	if _, err := fsys.Write(f, []byte(content)); err != nil {
		t.Fatalf("Write(%q): setup failed: %v", p, err)
	}
	if err := fsys.Close(f); err != nil {
		t.Fatalf("Close(%q): setup failed: %v", p, err)
	}
}

func readFile[F, D any, FS core.FileSystem[F, D]](t *testing.T, fsys FS, p string) string {
	t.Helper()
	f, err := fsys.Open(p, core.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("Open(%q): got error %v, want nil", p, err)
	}
	defer func() { _ = fsys.Close(f) }()

	data, err := core.ReadAll[F, D](fsys, f)
	if err != nil {
		t.Fatalf("ReadAll(%q): got error %v, want nil", p, err)
	}
	return string(data)
}
