// Package lifecycle ties device registration and mounting to a test's
// lifetime.
//
// Mount registers a device, mounts it and arranges for the mount to be torn
// down when the test ends:
//
//	func TestSomething(t *testing.T) {
//	    sys := vfs.New()
//	    lifecycle.Mount(t, sys, lifecycle.MemFS())
//	    fsys := fdfs.New(sys)
//	    ...
//	}
//
// Failures are fatal to the test. Scopes on one System nest: each must be
// released before the scopes created ahead of it.
package lifecycle

import (
	"slices"
	"sync"
	"testing"

	"github.com/jmgilman/go/fsadapter/errors"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// Provider describes a device to activate. ID is the fixed device id it is
// registered under; New constructs the device when the id is not yet
// registered.
type Provider struct {
	ID  vfs.DevID
	New func() (vfs.Device, error)
}

// Option configures a Scope.
type Option func(*config)

type config struct {
	source string
	target string
	flags  vfs.MountFlags
}

// WithTarget sets the mount target. Defaults to "/".
func WithTarget(target string) Option {
	return func(c *config) {
		c.target = target
	}
}

// WithSource sets the mount source passed to the device.
func WithSource(source string) Option {
	return func(c *config) {
		c.source = source
	}
}

// WithFlags sets the mount flags.
func WithFlags(flags vfs.MountFlags) Option {
	return func(c *config) {
		c.flags = flags
	}
}

// Scope is an active device mount. It is released by Release or, at the
// latest, when the test that created it finishes.
type Scope struct {
	tb         testing.TB
	sys        *vfs.System
	devid      vfs.DevID
	target     string
	registered bool
	released   bool
}

var (
	mu     sync.Mutex
	stacks = make(map[*vfs.System][]*Scope)
)

// Mount activates p on sys. The device is registered unless its id already
// is, then mounted at the configured target. A nil sys selects
// vfs.Default(). At most one scope per device id may be active on a System.
func Mount(tb testing.TB, sys *vfs.System, p Provider, opts ...Option) *Scope {
	tb.Helper()

	cfg := config{target: "/"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if sys == nil {
		sys = vfs.Default()
	}

	mu.Lock()
	defer mu.Unlock()

	for _, s := range stacks[sys] {
		if s.devid == p.ID {
			tb.Fatalf("lifecycle: device %d already has an active scope at %s", p.ID, s.target)
			return nil
		}
	}

	s := &Scope{tb: tb, sys: sys, devid: p.ID, target: cfg.target}

	if _, err := sys.Device(p.ID); err != nil {
		if p.New == nil {
			tb.Fatalf("lifecycle: device %d is not registered and has no constructor", p.ID)
			return nil
		}
		dev, err := p.New()
		if err != nil {
			tb.Fatalf("%v", errors.Wrapf(err, errors.CodeLifecycle, "construct device %d", p.ID))
			return nil
		}
		if err := sys.Register(p.ID, dev); err != nil {
			tb.Fatalf("%v", errors.Wrapf(err, errors.CodeLifecycle, "register device %d", p.ID))
			return nil
		}
		s.registered = true
	}

	if err := sys.Mount(p.ID, cfg.source, cfg.target, cfg.flags); err != nil {
		if s.registered {
			_ = sys.Unregister(p.ID)
		}
		tb.Fatalf("%v", errors.WithContext(
			errors.Wrapf(err, errors.CodeLifecycle, "mount device %d at %s", p.ID, cfg.target),
			"source", cfg.source,
		))
		return nil
	}

	stacks[sys] = append(stacks[sys], s)
	tb.Logf("lifecycle: mounted device %d at %s", p.ID, cfg.target)
	tb.Cleanup(s.Release)
	return s
}

// DevID returns the scope's device id.
func (s *Scope) DevID() vfs.DevID {
	return s.devid
}

// Target returns the mount target.
func (s *Scope) Target() string {
	return s.target
}

// System returns the System the device is mounted on.
func (s *Scope) System() *vfs.System {
	return s.sys
}

// Release unmounts the device, and unregisters it if the scope registered
// it. Calling Release more than once is a no-op. Releasing a scope while a
// scope created after it on the same System is still active is fatal.
func (s *Scope) Release() {
	s.tb.Helper()

	mu.Lock()
	defer mu.Unlock()

	if s.released {
		return
	}

	stack := stacks[s.sys]
	if len(stack) == 0 || stack[len(stack)-1] != s {
		s.tb.Fatalf("lifecycle: device %d at %s released out of order", s.devid, s.target)
		return
	}

	if err := s.sys.Unmount(s.devid, s.target); err != nil {
		s.tb.Fatalf("%v", errors.Wrapf(err, errors.CodeLifecycle, "unmount device %d at %s", s.devid, s.target))
		return
	}
	if s.registered {
		if err := s.sys.Unregister(s.devid); err != nil {
			s.tb.Fatalf("%v", errors.Wrapf(err, errors.CodeLifecycle, "unregister device %d", s.devid))
			return
		}
	}

	stack = slices.Delete(stack, len(stack)-1, len(stack))
	if len(stack) == 0 {
		delete(stacks, s.sys)
	} else {
		stacks[s.sys] = stack
	}
	s.released = true
	s.tb.Logf("lifecycle: released device %d at %s", s.devid, s.target)
}

// With bundles an adapter with the scope that keeps its device mounted.
type With[A any] struct {
	FS    A
	Scope *Scope
}

// Bind mounts p on sys and returns it together with fsys.
func Bind[A any](tb testing.TB, sys *vfs.System, p Provider, fsys A, opts ...Option) With[A] {
	tb.Helper()
	return With[A]{FS: fsys, Scope: Mount(tb, sys, p, opts...)}
}
