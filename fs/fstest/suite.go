// Package fstest provides a conformance test suite for core.FileSystem
// adapters.
//
// The suite is generic over the adapter's handle types, so the same tests run
// unchanged against every variant. Behavioral differences between backends
// (hard links, permission bits, the stream layer's mode strings) are
// described with a Config rather than by skipping whole groups.
//
// Example usage:
//
//	func TestDevFS(t *testing.T) {
//	    fsys := devfs.New(billy.NewMemory())
//	    fstest.TestSuite[vfs.File, vfs.Dir](t, fsys, "/", fstest.MemoryTestConfig())
//	}
package fstest

import (
	"slices"
	"testing"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// Config configures the test suite to match backend characteristics.
type Config struct {
	// HardLinks indicates Link creates a second name for the same file.
	// When false the suite expects ENOTSUP from Link and copies instead.
	HardLinks bool

	// ModeBits indicates Stat reports the permission bits requested when the
	// file was created (after the host umask of 022).
	ModeBits bool

	// WriteOnlyCreates indicates O_WRONLY without O_CREAT creates and
	// truncates a file, as it does when flags are translated to fopen modes.
	WriteOnlyCreates bool

	// RejectBareCreate indicates O_CREAT without O_TRUNC or O_APPEND on a
	// writable open is rejected as a configuration error.
	RejectBareCreate bool

	// SkipTests lists specific test names to skip.
	// Format: "Group/SubTest" (e.g., "Scenario/LinkFile").
	SkipTests []string
}

// POSIXTestConfig returns configuration for host filesystems.
func POSIXTestConfig() Config {
	return Config{
		HardLinks: true,
		ModeBits:  true,
	}
}

// MemoryTestConfig returns configuration for in-memory go-billy devices.
func MemoryTestConfig() Config {
	return Config{}
}

// S3TestConfig returns configuration for object store devices.
func S3TestConfig() Config {
	return Config{}
}

// StreamTestConfig adjusts base for the buffered-stream adapter.
func StreamTestConfig(base Config) Config {
	base.WriteOnlyCreates = true
	base.RejectBareCreate = true
	return base
}

func (c Config) skip(name string) bool {
	return slices.Contains(c.SkipTests, name)
}

// TestSuite runs all conformance tests against fsys inside dir. The
// directory must exist and is left as it was found.
func TestSuite[F, D any, FS core.FileSystem[F, D]](t *testing.T, fsys FS, dir string, config Config) {
	t.Helper()

	groups := []struct {
		name string
		run  func(t *testing.T)
	}{
		{"Scenario", func(t *testing.T) { TestScenario[F, D](t, fsys, dir, config) }},
		{"RoundTrip", func(t *testing.T) { TestRoundTrip[F, D](t, fsys, dir) }},
		{"EndOfData", func(t *testing.T) { TestEndOfData[F, D](t, fsys, dir) }},
		{"OpenFlags", func(t *testing.T) { TestOpenFlags[F, D](t, fsys, dir, config) }},
		{"AccessModes", func(t *testing.T) { TestAccessModes[F, D](t, fsys, dir, config) }},
		{"Script", func(t *testing.T) { TestScript[F, D](t, fsys, dir) }},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if config.skip(g.name) {
				t.Skip("Skipped by provider configuration")
				return
			}
			g.run(t)
		})
	}
}
