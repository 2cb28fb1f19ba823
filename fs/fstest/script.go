package fstest

import (
	"fmt"
	"path"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/errors"
	"github.com/jmgilman/go/fsadapter/fs/core"
)

// Op names a script step.
type Op string

const (
	OpMkdir  Op = "mkdir"
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpStat   Op = "stat"
	OpRename Op = "rename"
	OpUnlink Op = "unlink"
	OpRmdir  Op = "rmdir"
)

// Step is one operation of a script. Paths are relative to the script's
// directory. Arg is the rename target for OpRename and the data for OpWrite.
type Step struct {
	Op   Op
	Path string
	Arg  string
	Want syscall.Errno
}

// Outcome records what a step did. Errno is zero on success. Size is set by
// successful OpStat steps.
type Outcome struct {
	Op    Op
	Path  string
	Errno syscall.Errno
	Size  int64
}

func (o Outcome) String() string {
	result := "ok"
	if o.Errno != 0 {
		result = unix.ErrnoName(o.Errno)
	}
	if o.Op == OpStat && o.Errno == 0 {
		return fmt.Sprintf("%s %s: %s size=%d", o.Op, o.Path, result, o.Size)
	}
	return fmt.Sprintf("%s %s: %s", o.Op, o.Path, result)
}

// DefaultScript returns a sequence covering success and failure of each
// mutating operation.
func DefaultScript() []Step {
	return []Step{
		{Op: OpMkdir, Path: "d"},
		{Op: OpMkdir, Path: "d", Want: unix.EEXIST},
		{Op: OpCreate, Path: "d/a"},
		{Op: OpWrite, Path: "d/a", Arg: "hello"},
		{Op: OpStat, Path: "d/a"},
		{Op: OpRename, Path: "d/a", Arg: "d/b"},
		{Op: OpStat, Path: "d/a", Want: unix.ENOENT},
		{Op: OpStat, Path: "d/b"},
		{Op: OpRename, Path: "d/missing", Arg: "d/c", Want: unix.ENOENT},
		{Op: OpRmdir, Path: "d", Want: unix.ENOTEMPTY},
		{Op: OpUnlink, Path: "d/b"},
		{Op: OpUnlink, Path: "d/b", Want: unix.ENOENT},
		{Op: OpRmdir, Path: "d"},
		{Op: OpStat, Path: "d", Want: unix.ENOENT},
		{Op: OpRmdir, Path: "d", Want: unix.ENOENT},
	}
}

// RunScript executes steps against fsys inside dir and records each outcome.
// Running the same script on two adapters and comparing the outcomes checks
// that they behave alike.
func RunScript[F, D any, FS core.FileSystem[F, D]](fsys FS, dir string, steps []Step) []Outcome {
	outcomes := make([]Outcome, 0, len(steps))
	for _, step := range steps {
		p := path.Join(dir, step.Path)
		out := Outcome{Op: step.Op, Path: step.Path}

		var err error
		switch step.Op {
		case OpMkdir:
			err = fsys.Mkdir(p, 0o755)
		case OpCreate:
			err = create[F, D](fsys, p, core.O_CREAT|core.O_TRUNC|core.O_WRONLY, "")
		case OpWrite:
			err = create[F, D](fsys, p, core.O_CREAT|core.O_APPEND|core.O_WRONLY, step.Arg)
		case OpStat:
			var st core.Stat
			err = fsys.Stat(p, &st)
			if err == nil {
				out.Size = st.Size
			}
		case OpRename:
			err = fsys.Rename(p, path.Join(dir, step.Arg))
		case OpUnlink:
			err = fsys.Unlink(p)
		case OpRmdir:
			err = fsys.Rmdir(p)
		default:
			err = unix.EINVAL
		}

		out.Errno = errnoOf(err)
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// TestScript runs DefaultScript and checks each step's errno.
func TestScript[F, D any, FS core.FileSystem[F, D]](t *testing.T, fsys FS, dir string) {
	steps := DefaultScript()
	outcomes := RunScript[F, D](fsys, dir, steps)

	for i, step := range steps {
		if got := outcomes[i].Errno; got != step.Want {
			t.Errorf("step %d (%s %s): got errno %v, want %v", i, step.Op, step.Path, got, step.Want)
		}
	}
}

func create[F, D any, FS core.FileSystem[F, D]](fsys FS, p string, flags int, data string) error {
	f, err := fsys.Open(p, flags, FileMode)
	if err != nil {
		return err
	}
	if data != "" {
		if _, err := fsys.Write(f, []byte(data)); err != nil {
			_ = fsys.Close(f)
			return err
		}
	}
	return fsys.Close(f)
}

func errnoOf(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	if errno, ok := errors.Errno(core.ToErrno(err)); ok {
		return errno
	}
	return unix.EIO
}
