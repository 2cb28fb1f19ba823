package vfs

import (
	"io"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/fs/core"
)

// MaxMounts is the capacity of a System's mount table.
const MaxMounts = 64

// Console descriptors.
const (
	Stdin  = 0
	Stdout = 1
	Stderr = 2
)

// Option configures a System.
type Option func(*config)

type config struct {
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// WithLogger sets the logger used for table changes. The default discards
// all records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithConsole sets the streams backing descriptors 0, 1 and 2. A nil stream
// makes the matching descriptor fail with EBADF.
func WithConsole(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(c *config) {
		c.stdin = stdin
		c.stdout = stdout
		c.stderr = stderr
	}
}

// System holds the device, mount and descriptor tables.
type System struct {
	mu         sync.Mutex
	logger     *slog.Logger
	devices    map[DevID]Device
	mounts     []*mountPoint
	files      map[int]*descriptor
	defaultDev DevID
}

type mountPoint struct {
	target string
	devid  DevID
	dev    Device
	flags  MountFlags
	refs   int
}

type descriptor struct {
	file  File
	mount *mountPoint
}

// MountInfo describes one mount table entry.
type MountInfo struct {
	DevID  DevID
	Target string
	Flags  MountFlags
	Open   int
}

// New creates an empty System with console descriptors installed.
func New(opts ...Option) *System {
	cfg := &config{
		logger: slog.New(slog.DiscardHandler),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &System{
		logger:  cfg.logger,
		devices: make(map[DevID]Device),
		files:   make(map[int]*descriptor),
	}
	s.files[Stdin] = &descriptor{file: &consoleFile{r: cfg.stdin}}
	s.files[Stdout] = &descriptor{file: &consoleFile{w: cfg.stdout}}
	s.files[Stderr] = &descriptor{file: &consoleFile{w: cfg.stderr}}
	return s
}

var (
	defaultOnce   sync.Once
	defaultSystem *System
)

// Default returns the process-wide System.
func Default() *System {
	defaultOnce.Do(func() {
		defaultSystem = New()
	})
	return defaultSystem
}

// Register adds dev to the device table under devid.
// It fails with EINVAL for a non-positive id and EADDRINUSE if devid is
// already taken.
func (s *System) Register(devid DevID, dev Device) error {
	if devid <= DevNone || dev == nil {
		return unix.EINVAL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.devices[devid]; ok {
		return unix.EADDRINUSE
	}
	s.devices[devid] = dev
	s.logger.Debug("device registered", "devid", int(devid), "type", dev.Type().String())
	return nil
}

// Unregister removes devid from the device table. It fails with EINVAL if
// devid is not registered and EBUSY while it is mounted or routed to by
// default.
func (s *System) Unregister(devid DevID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.devices[devid]; !ok {
		return unix.EINVAL
	}
	if s.defaultDev == devid {
		return unix.EBUSY
	}
	for _, mp := range s.mounts {
		if mp.devid == devid {
			return unix.EBUSY
		}
	}
	delete(s.devices, devid)
	s.logger.Debug("device unregistered", "devid", int(devid))
	return nil
}

// Device returns the device registered under devid.
func (s *System) Device(devid DevID) (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev, ok := s.devices[devid]
	if !ok {
		return nil, unix.EINVAL
	}
	return dev, nil
}

// Devices returns the registered ids in ascending order.
func (s *System) Devices() []DevID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]DevID, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Mount binds a clone of the device registered under devid at target.
//
// A non-root target must already exist as a directory (EIO if it cannot be
// stat'ed, ENOTDIR if it is not a directory). Mounting a target twice fails
// with EEXIST and a full table with ENOMEM. source is passed to the device.
func (s *System) Mount(devid DevID, source, target string, flags MountFlags) error {
	if target == "" {
		return unix.EINVAL
	}
	target = cleanPath(target)

	if _, err := s.Device(devid); err != nil {
		return err
	}

	if target != "/" {
		var st core.Stat
		if err := s.Stat(target, &st); err != nil {
			return unix.EIO
		}
		if !st.IsDir() {
			return unix.ENOTDIR
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dev, ok := s.devices[devid]
	if !ok {
		return unix.EINVAL
	}
	if len(s.mounts) == MaxMounts {
		return unix.ENOMEM
	}
	for _, mp := range s.mounts {
		if mp.target == target {
			return unix.EEXIST
		}
	}

	clone, err := dev.Clone()
	if err != nil {
		return unix.ENOMEM
	}
	if err := clone.Mount(source, target, flags); err != nil {
		return err
	}

	s.mounts = append(s.mounts, &mountPoint{
		target: target,
		devid:  devid,
		dev:    clone,
		flags:  flags,
	})
	s.logger.Debug("device mounted", "devid", int(devid), "source", source, "target", target, "flags", uint32(flags))
	return nil
}

// Unmount removes the binding of devid at target. It fails with EINVAL if
// devid is not registered, ENOENT if no such binding exists and EBUSY while
// descriptors opened through the mount remain open.
func (s *System) Unmount(devid DevID, target string) error {
	if target == "" {
		return unix.EINVAL
	}
	target = cleanPath(target)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.devices[devid]; !ok {
		return unix.EINVAL
	}

	index := -1
	for i, mp := range s.mounts {
		if mp.target == target && mp.devid == devid {
			index = i
			break
		}
	}
	if index < 0 {
		return unix.ENOENT
	}

	mp := s.mounts[index]
	if mp.refs > 0 {
		return unix.EBUSY
	}

	// The entry stays in the table if the device refuses.
	if err := mp.dev.Unmount(target); err != nil {
		return err
	}
	s.mounts = append(s.mounts[:index], s.mounts[index+1:]...)
	s.logger.Debug("device unmounted", "devid", int(devid), "target", target)
	return nil
}

// Mounts returns a snapshot of the mount table in mount order.
func (s *System) Mounts() []MountInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MountInfo, len(s.mounts))
	for i, mp := range s.mounts {
		out[i] = MountInfo{DevID: mp.devid, Target: mp.target, Flags: mp.flags, Open: mp.refs}
	}
	return out
}

// SetDefaultDevice routes every path to devid, bypassing the mount table,
// until ClearDefaultDevice is called.
func (s *System) SetDefaultDevice(devid DevID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.devices[devid]; !ok {
		return unix.EINVAL
	}
	s.defaultDev = devid
	return nil
}

// ClearDefaultDevice restores mount table resolution.
func (s *System) ClearDefaultDevice() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.defaultDev = DevNone
	return nil
}

// DefaultDevice returns the device set by SetDefaultDevice, or DevNone.
func (s *System) DefaultDevice() DevID {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.defaultDev
}

// resolve finds the device serving p and the path within that device.
// mp is nil when default device routing is active.
func (s *System) resolve(p string) (*mountPoint, Device, string, error) {
	p = cleanPath(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.defaultDev != DevNone {
		dev, ok := s.devices[s.defaultDev]
		if !ok {
			return nil, nil, "", unix.ENODEV
		}
		return nil, dev, p, nil
	}

	var match *mountPoint
	suffix := ""
	for _, mp := range s.mounts {
		if match != nil && len(mp.target) <= len(match.target) {
			continue
		}
		if mp.target == "/" {
			match, suffix = mp, p
			continue
		}
		if strings.HasPrefix(p, mp.target) && (len(p) == len(mp.target) || p[len(mp.target)] == '/') {
			match, suffix = mp, p[len(mp.target):]
			if suffix == "" {
				suffix = "/"
			}
		}
	}
	if match == nil {
		return nil, nil, "", unix.ENOENT
	}
	return match, match.dev, suffix, nil
}

// resolveWritable resolves p for a mutating operation.
func (s *System) resolveWritable(p string) (*mountPoint, Device, string, error) {
	mp, dev, suffix, err := s.resolve(p)
	if err != nil {
		return nil, nil, "", err
	}
	if mp != nil && mp.flags&MountReadOnly != 0 {
		return nil, nil, "", unix.EPERM
	}
	return mp, dev, suffix, nil
}

func (s *System) acquire(mp *mountPoint) {
	if mp == nil {
		return
	}
	s.mu.Lock()
	mp.refs++
	s.mu.Unlock()
}

func (s *System) release(mp *mountPoint) {
	if mp == nil {
		return
	}
	s.mu.Lock()
	mp.refs--
	s.mu.Unlock()
}

func cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
