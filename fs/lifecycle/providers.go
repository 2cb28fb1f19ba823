package lifecycle

import (
	"github.com/jmgilman/go/fsadapter/fs/billy"
	"github.com/jmgilman/go/fsadapter/fs/gitfs"
	"github.com/jmgilman/go/fsadapter/fs/minio"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

// MemFS provides an in-memory go-billy device under vfs.DevMemFS.
func MemFS(opts ...billy.Option) Provider {
	return Provider{
		ID: vfs.DevMemFS,
		New: func() (vfs.Device, error) {
			return billy.NewMemory(opts...), nil
		},
	}
}

// LocalFS provides a go-billy device over the host directory root under id.
func LocalFS(id vfs.DevID, root string, opts ...billy.Option) Provider {
	return Provider{
		ID: id,
		New: func() (vfs.Device, error) {
			return billy.NewLocal(root, opts...), nil
		},
	}
}

// ObjFS provides an object store device under vfs.DevObjFS.
func ObjFS(cfg minio.Config) Provider {
	return Provider{
		ID: vfs.DevObjFS,
		New: func() (vfs.Device, error) {
			dev, err := minio.New(cfg)
			if err != nil {
				return nil, err
			}
			return dev, nil
		},
	}
}

// GitFS provides the worktree of repo under gitfs.DevID.
func GitFS(repo *gitfs.Repository) Provider {
	return Provider{
		ID: gitfs.DevID,
		New: func() (vfs.Device, error) {
			return repo.Device(), nil
		},
	}
}
