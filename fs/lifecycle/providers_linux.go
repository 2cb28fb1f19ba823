//go:build linux

package lifecycle

import (
	"github.com/jmgilman/go/fsadapter/fs/hostfs"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// HostFS provides the host passthrough device under vfs.DevHostFS.
func HostFS(opts ...hostfs.Option) Provider {
	return Provider{
		ID: vfs.DevHostFS,
		New: func() (vfs.Device, error) {
			return hostfs.New(opts...), nil
		},
	}
}
