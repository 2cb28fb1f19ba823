package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fsadapter/errors"
	"github.com/jmgilman/go/fsadapter/fs/core"
	"github.com/jmgilman/go/fsadapter/fs/minio/internal/errs"
	"github.com/jmgilman/go/fsadapter/fs/minio/internal/pathutil"
	"github.com/jmgilman/go/fsadapter/fs/vfs"
)

const (
	defaultRenameConcurrency = 10
	contentType              = "application/octet-stream"

	fileMode = 0o644
	dirMode  = 0o755
)

// Device is a vfs.Device over one bucket of an S3-compatible store.
//
// Files are single objects. Directories are "key/" marker objects, or are
// implied by any object below them. The device root always exists.
type Device struct {
	client            *minio.Client
	bucket            string
	prefix            string
	renameConcurrency int
	logger            *slog.Logger
}

// New creates a MinIO device.
// Returns error if configuration is invalid or the client cannot be built.
func New(cfg Config) (*Device, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to create minio client",
				map[string]interface{}{"endpoint": cfg.Endpoint})
		}
	}

	concurrency := cfg.MaxRenameConcurrency
	if concurrency == 0 {
		concurrency = defaultRenameConcurrency
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Device{
		client:            client,
		bucket:            cfg.Bucket,
		prefix:            pathutil.NormalizePrefix(cfg.Prefix),
		renameConcurrency: concurrency,
		logger:            logger,
	}, nil
}

// Client returns the underlying MinIO client.
func (d *Device) Client() *minio.Client {
	return d.client
}

// Bucket returns the bucket the device stores objects in.
func (d *Device) Bucket() string {
	return d.bucket
}

// Prefix returns the key prefix of the device.
func (d *Device) Prefix() string {
	return d.prefix
}

func (d *Device) key(p string) string {
	return pathutil.Key(d.prefix, p)
}

// Type implements vfs.Device.
func (d *Device) Type() core.FSType {
	return core.FSTypeRemote
}

// Clone implements vfs.Device.
func (d *Device) Clone() (vfs.Device, error) {
	clone := *d
	return &clone, nil
}

// Mount implements vfs.Device. A non-empty source is appended to the key
// prefix.
func (d *Device) Mount(source, target string, _ vfs.MountFlags) error {
	if source != "" {
		d.prefix = pathutil.Key(d.prefix, source)
	}
	d.logger.Debug("minio device mounted", "bucket", d.bucket, "prefix", d.prefix, "target", target)
	return nil
}

// Unmount implements vfs.Device.
func (d *Device) Unmount(target string) error {
	d.logger.Debug("minio device unmounted", "bucket", d.bucket, "target", target)
	return nil
}

// entry describes what a path refers to.
type entry struct {
	exists  bool
	isDir   bool
	size    int64
	modTime time.Time
}

// lookup resolves p to a file object, a directory or nothing.
func (d *Device) lookup(ctx context.Context, p string) (entry, error) {
	if pathutil.Normalize(p) == "" {
		return entry{exists: true, isDir: true}, nil
	}

	key := d.key(p)
	info, err := d.client.StatObject(ctx, d.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return entry{exists: true, size: info.Size, modTime: info.LastModified}, nil
	}
	if !errs.IsNotFound(err) {
		return entry{}, errs.Translate(err)
	}

	marker, found, err := d.firstBelow(ctx, pathutil.DirKey(key))
	if err != nil {
		return entry{}, err
	}
	if !found {
		return entry{}, nil
	}
	return entry{exists: true, isDir: true, modTime: marker.LastModified}, nil
}

// firstBelow returns the first object under dirKey, if any.
func (d *Device) firstBelow(ctx context.Context, dirKey string) (minio.ObjectInfo, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for object := range d.client.ListObjects(ctx, d.bucket, minio.ListObjectsOptions{
		Prefix:    dirKey,
		Recursive: true,
		MaxKeys:   1,
	}) {
		if object.Err != nil {
			return minio.ObjectInfo{}, false, errs.Translate(object.Err)
		}
		return object, true, nil
	}
	return minio.ObjectInfo{}, false, nil
}

// dirExists checks that p names a directory.
func (d *Device) dirExists(ctx context.Context, p string) error {
	e, err := d.lookup(ctx, p)
	if err != nil {
		return err
	}
	if !e.exists {
		return unix.ENOENT
	}
	if !e.isDir {
		return unix.ENOTDIR
	}
	return nil
}

func (d *Device) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := d.client.GetObject(ctx, d.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errs.Translate(err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errs.Translate(err)
	}
	return data, nil
}

func (d *Device) put(ctx context.Context, key string, data []byte) error {
	_, err := d.client.PutObject(ctx, d.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return errs.Translate(err)
}

// Open implements vfs.Device. The object is downloaded into the handle and
// uploaded again when a modified handle is closed.
func (d *Device) Open(p string, flags int, _ uint32) (vfs.File, error) {
	ctx := context.Background()
	key := d.key(p)

	e, err := d.lookup(ctx, p)
	if err != nil {
		return nil, err
	}

	h := &file{dev: d, key: key, flags: flags}
	switch {
	case e.isDir:
		return nil, unix.EISDIR
	case !e.exists:
		if flags&core.O_CREAT == 0 {
			return nil, unix.ENOENT
		}
		if err := d.dirExists(ctx, pathutil.Parent(p)); err != nil {
			return nil, err
		}
		if err := d.put(ctx, key, nil); err != nil {
			return nil, err
		}
	case flags&(core.O_CREAT|core.O_EXCL) == core.O_CREAT|core.O_EXCL:
		return nil, unix.EEXIST
	case flags&core.O_TRUNC != 0 && core.Writable(flags):
		h.dirty = true
	default:
		data, err := d.get(ctx, key)
		if err != nil {
			return nil, err
		}
		h.data = data
	}
	return h, nil
}

// Opendir implements vfs.Device.
func (d *Device) Opendir(p string) (vfs.Dir, error) {
	ctx := context.Background()
	if err := d.dirExists(ctx, p); err != nil {
		return nil, err
	}

	dirKey := pathutil.DirKey(d.key(p))
	entries := []core.Dirent{
		{Name: ".", Type: core.DT_DIR},
		{Name: "..", Type: core.DT_DIR},
	}

	var children []core.Dirent
	for object := range d.client.ListObjects(ctx, d.bucket, minio.ListObjectsOptions{
		Prefix:    dirKey,
		Recursive: false,
	}) {
		if object.Err != nil {
			return nil, errs.Translate(object.Err)
		}
		name, isDir := pathutil.ChildName(dirKey, object.Key)
		if name == "" {
			continue
		}
		typ := uint8(core.DT_REG)
		if isDir {
			typ = core.DT_DIR
		}
		children = append(children, core.Dirent{Name: name, Type: typ})
	}

	sort.Slice(children, func(i, j int) bool {
		return children[i].Name < children[j].Name
	})
	return vfs.NewListDir(append(entries, children...)), nil
}

// Unlink implements vfs.Device.
func (d *Device) Unlink(p string) error {
	ctx := context.Background()
	e, err := d.lookup(ctx, p)
	if err != nil {
		return err
	}
	switch {
	case !e.exists:
		return unix.ENOENT
	case e.isDir:
		return unix.EISDIR
	}
	return errs.Translate(d.client.RemoveObject(ctx, d.bucket, d.key(p), minio.RemoveObjectOptions{}))
}

// Link implements vfs.Device. Object stores have no hard links.
func (d *Device) Link(_, _ string) error {
	return core.ErrUnsupported
}

// Rename implements vfs.Device.
//
// A file rename is a server-side copy followed by a delete of the source. A
// directory rename copies every object below it in parallel and then batch
// deletes the originals. Neither is atomic: a failure part way through can
// leave objects at both paths.
func (d *Device) Rename(oldpath, newpath string) error {
	ctx := context.Background()

	src, err := d.lookup(ctx, oldpath)
	if err != nil {
		return err
	}
	if !src.exists {
		return unix.ENOENT
	}
	if pathutil.Normalize(oldpath) == pathutil.Normalize(newpath) {
		return nil
	}
	if err := d.dirExists(ctx, pathutil.Parent(newpath)); err != nil {
		return err
	}

	dst, err := d.lookup(ctx, newpath)
	if err != nil {
		return err
	}

	oldKey, newKey := d.key(oldpath), d.key(newpath)
	if !src.isDir {
		if dst.isDir {
			return unix.EISDIR
		}
		return d.renameFile(ctx, oldKey, newKey)
	}

	if dst.exists {
		if !dst.isDir {
			return unix.ENOTDIR
		}
		if empty, err := d.isEmpty(ctx, newKey); err != nil {
			return err
		} else if !empty {
			return unix.ENOTEMPTY
		}
	}
	return d.renameDir(ctx, pathutil.DirKey(oldKey), pathutil.DirKey(newKey))
}

func (d *Device) renameFile(ctx context.Context, oldKey, newKey string) error {
	src := minio.CopySrcOptions{Bucket: d.bucket, Object: oldKey}
	dst := minio.CopyDestOptions{Bucket: d.bucket, Object: newKey}
	if _, err := d.client.CopyObject(ctx, dst, src); err != nil {
		return errs.Translate(err)
	}
	return errs.Translate(d.client.RemoveObject(ctx, d.bucket, oldKey, minio.RemoveObjectOptions{}))
}

func (d *Device) renameDir(ctx context.Context, oldPrefix, newPrefix string) error {
	copied, err := d.parallelCopy(ctx, oldPrefix, newPrefix)
	if err != nil {
		d.logger.Warn("directory rename copy failed", "from", oldPrefix, "to", newPrefix, "copied", len(copied), "error", err)
		var cerr *copyError
		if errors.As(err, &cerr) {
			return errs.Translate(cerr.err)
		}
		return errs.Translate(err)
	}

	// An implied directory has no marker; give the destination one so that
	// it survives as an empty directory.
	if err := d.put(ctx, newPrefix, nil); err != nil {
		return err
	}

	toDelete := make(chan minio.ObjectInfo, len(copied))
	for _, key := range copied {
		toDelete <- minio.ObjectInfo{Key: key}
	}
	close(toDelete)

	for rerr := range d.client.RemoveObjects(ctx, d.bucket, toDelete, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			return errs.Translate(rerr.Err)
		}
	}
	return nil
}

// parallelCopy copies every object below oldPrefix to newPrefix using a
// bounded worker pool. It returns the source keys that were copied.
func (d *Device) parallelCopy(ctx context.Context, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(d.renameConcurrency)

	var (
		mu     sync.Mutex
		copied []string
	)

	for object := range d.client.ListObjects(egCtx, d.bucket, minio.ListObjectsOptions{
		Prefix:    oldPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			if err := eg.Wait(); err != nil {
				return copied, err
			}
			return copied, &copyError{err: object.Err}
		}

		objectKey := object.Key
		eg.Go(func() error {
			newKey := newPrefix + objectKey[len(oldPrefix):]
			src := minio.CopySrcOptions{Bucket: d.bucket, Object: objectKey}
			dst := minio.CopyDestOptions{Bucket: d.bucket, Object: newKey}
			if _, err := d.client.CopyObject(egCtx, dst, src); err != nil {
				return &copyError{key: objectKey, err: err}
			}

			mu.Lock()
			copied = append(copied, objectKey)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return copied, err
	}
	return copied, nil
}

type copyError struct {
	key string
	err error
}

func (e *copyError) Error() string {
	return fmt.Sprintf("copy object %q: %v", e.key, e.err)
}

func (e *copyError) Unwrap() error {
	return e.err
}

// isEmpty reports whether the directory at key has no entries besides its
// own marker.
func (d *Device) isEmpty(ctx context.Context, key string) (bool, error) {
	dirKey := pathutil.DirKey(key)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for object := range d.client.ListObjects(ctx, d.bucket, minio.ListObjectsOptions{
		Prefix:    dirKey,
		Recursive: false,
	}) {
		if object.Err != nil {
			return false, errs.Translate(object.Err)
		}
		if object.Key != dirKey {
			return false, nil
		}
	}
	return true, nil
}

// Mkdir implements vfs.Device by writing the directory marker.
func (d *Device) Mkdir(p string, _ uint32) error {
	ctx := context.Background()
	e, err := d.lookup(ctx, p)
	if err != nil {
		return err
	}
	if e.exists {
		return unix.EEXIST
	}
	if err := d.dirExists(ctx, pathutil.Parent(p)); err != nil {
		return err
	}
	return d.put(ctx, pathutil.DirKey(d.key(p)), nil)
}

// Rmdir implements vfs.Device.
func (d *Device) Rmdir(p string) error {
	if pathutil.Normalize(p) == "" {
		return unix.EBUSY
	}

	ctx := context.Background()
	if err := d.dirExists(ctx, p); err != nil {
		return err
	}

	key := d.key(p)
	empty, err := d.isEmpty(ctx, key)
	if err != nil {
		return err
	}
	if !empty {
		return unix.ENOTEMPTY
	}
	return errs.Translate(d.client.RemoveObject(ctx, d.bucket, pathutil.DirKey(key), minio.RemoveObjectOptions{}))
}

// Stat implements vfs.Device. Objects carry no POSIX metadata, so files
// report mode 0644 and directories 0755.
func (d *Device) Stat(p string, buf *core.Stat) error {
	e, err := d.lookup(context.Background(), p)
	if err != nil {
		return err
	}
	if !e.exists {
		return unix.ENOENT
	}

	*buf = core.Stat{
		Mode:    core.S_IFREG | fileMode,
		Nlink:   1,
		Size:    e.size,
		Blksize: 4096,
		Blocks:  (e.size + 511) / 512,
		Atime:   e.modTime,
		Mtime:   e.modTime,
		Ctime:   e.modTime,
	}
	if e.isDir {
		buf.Mode = core.S_IFDIR | dirMode
		buf.Nlink = 2
	}
	return nil
}

// Truncate implements vfs.Device by rewriting the object.
func (d *Device) Truncate(p string, length int64) error {
	if length < 0 {
		return unix.EINVAL
	}

	ctx := context.Background()
	e, err := d.lookup(ctx, p)
	if err != nil {
		return err
	}
	switch {
	case !e.exists:
		return unix.ENOENT
	case e.isDir:
		return unix.EISDIR
	}

	key := d.key(p)
	data, err := d.get(ctx, key)
	if err != nil {
		return err
	}
	return d.put(ctx, key, resize(data, length))
}

// resize truncates or zero extends data to length.
func resize(data []byte, length int64) []byte {
	if int64(len(data)) >= length {
		return data[:length]
	}
	return append(data, make([]byte, length-int64(len(data)))...)
}

var _ vfs.Device = (*Device)(nil)
