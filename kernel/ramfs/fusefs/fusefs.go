// Package fusefs exports a live RAM filesystem to the host through FUSE.
//
// Nodes carry only a path: every operation resolves the path against the
// filesystem again, so changes made by the kernel shell are visible on the
// host immediately and vice versa.
package fusefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"syscall"
	"time"

	"github.com/Mine4x/unsafeOS/kernel/ramfs"
	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

const (
	dirMode  = syscall.S_IFDIR | 0o755
	fileMode = syscall.S_IFREG | 0o644
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the host directory where the filesystem is mounted.
	// It is created if it does not exist.
	Mountpoint string

	// FS is the filesystem to export.
	FS *ramfs.FS

	// Logger receives diagnostic messages. If nil, errors are logged to
	// stderr.
	Logger *slog.Logger
}

// Mount exports options.FS at options.Mountpoint. The caller must call
// Unmount on the returned server when done.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.FS == nil {
		return nil, fmt.Errorf("filesystem is required")
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	// The kernel modifies the tree behind the host's back, so nothing is
	// cached.
	var noCache time.Duration

	root := &node{fs: options.FS, path: "/", logger: options.Logger}
	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &noCache,
		AttrTimeout:     &noCache,
		NegativeTimeout: &noCache,
		MountOptions: fuse.MountOptions{
			FsName: "unsafeos-ramfs",
			Name:   "unsafeos",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("ramfs mounted", "mountpoint", options.Mountpoint)
	return server, nil
}

// node is a file or directory of the exported filesystem.
type node struct {
	gofuse.Inode

	fs     *ramfs.FS
	path   string
	logger *slog.Logger
}

var _ gofuse.InodeEmbedder = (*node)(nil)
var _ gofuse.NodeLookuper = (*node)(nil)
var _ gofuse.NodeReaddirer = (*node)(nil)
var _ gofuse.NodeGetattrer = (*node)(nil)
var _ gofuse.NodeSetattrer = (*node)(nil)
var _ gofuse.NodeOpener = (*node)(nil)
var _ gofuse.NodeReader = (*node)(nil)
var _ gofuse.NodeWriter = (*node)(nil)
var _ gofuse.NodeCreater = (*node)(nil)
var _ gofuse.NodeMkdirer = (*node)(nil)

func (n *node) child(ctx context.Context, name string, info ramfs.Info, out *fuse.EntryOut) *gofuse.Inode {
	fillAttr(info, &out.Attr)

	mode := uint32(syscall.S_IFREG)
	if info.IsDir() {
		mode = syscall.S_IFDIR
	}

	return n.NewInode(ctx, &node{
		fs:     n.fs,
		path:   path.Join(n.path, name),
		logger: n.logger,
	}, gofuse.StableAttr{Mode: mode})
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	info, err := n.fs.Stat(path.Join(n.path, name))
	if err != nil {
		return nil, n.errno("lookup", err)
	}
	return n.child(ctx, name, info, out), 0
}

func (n *node) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	names, err := n.fs.ListDir(n.path)
	if err != nil {
		return nil, n.errno("readdir", err)
	}

	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		info, err := n.fs.Stat(path.Join(n.path, name))
		if err != nil {
			// Removed between the listing and the stat.
			continue
		}

		mode := uint32(syscall.S_IFREG)
		if info.IsDir() {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: name, Mode: mode})
	}

	return gofuse.NewListDirStream(entries), 0
}

func (n *node) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, err := n.fs.Stat(n.path)
	if err != nil {
		return n.errno("getattr", err)
	}

	fillAttr(info, &out.Attr)
	return 0
}

// Setattr supports size changes only; mode, owner and time updates are
// accepted and ignored.
func (n *node) Setattr(ctx context.Context, f gofuse.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if size, ok := in.GetSize(); ok {
		if err := n.fs.Truncate(n.path, int(size)); err != nil {
			return n.errno("truncate", err)
		}
	}
	return n.Getattr(ctx, f, out)
}

func (n *node) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&syscall.O_TRUNC != 0 {
		if err := n.fs.Truncate(n.path, 0); err != nil {
			return nil, 0, n.errno("open", err)
		}
	}

	// File contents change without the host being told.
	return nil, fuse.FOPEN_DIRECT_IO, 0
}

func (n *node) Read(ctx context.Context, f gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.fs.Read(n.path)
	if err != nil {
		return nil, n.errno("read", err)
	}
	return fuse.ReadResultData(readRange(data, off, len(dest))), 0
}

func (n *node) Write(ctx context.Context, f gofuse.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, err := n.fs.WriteAt(n.path, data, int(off))
	if err != nil {
		return 0, n.errno("write", err)
	}
	return uint32(written), 0
}

func (n *node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*gofuse.Inode, gofuse.FileHandle, uint32, syscall.Errno) {
	file := path.Join(n.path, name)
	if err := n.fs.Write(file, nil); err != nil {
		return nil, nil, 0, n.errno("create", err)
	}

	info, err := n.fs.Stat(file)
	if err != nil {
		return nil, nil, 0, n.errno("create", err)
	}

	return n.child(ctx, name, info, out), nil, fuse.FOPEN_DIRECT_IO, 0
}

func (n *node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	dir := path.Join(n.path, name)
	if err := n.fs.CreateDirExcl(dir); err != nil {
		return nil, n.errno("mkdir", err)
	}

	info, err := n.fs.Stat(dir)
	if err != nil {
		return nil, n.errno("mkdir", err)
	}

	return n.child(ctx, name, info, out), 0
}

// errno translates a filesystem error into the errno reported to the host.
func (n *node) errno(op string, err error) syscall.Errno {
	errno := toErrno(err)
	if errno == syscall.EIO {
		n.logger.Error("ramfs operation failed", "op", op, "path", n.path, "error", err)
	}
	return errno
}

func toErrno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ramfs.ErrPathNotFound):
		return syscall.ENOENT
	case errors.Is(err, ramfs.ErrNotADirectory), errors.Is(err, ramfs.ErrParentNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, ramfs.ErrNotAFile):
		return syscall.EISDIR
	case errors.Is(err, ramfs.ErrAlreadyExists):
		return syscall.EEXIST
	case errors.Is(err, ramfs.ErrInvalidOffset):
		return syscall.EINVAL
	case errors.Is(err, ramfs.ErrFileTooLarge):
		return syscall.EFBIG
	default:
		return syscall.EIO
	}
}

func fillAttr(info ramfs.Info, out *fuse.Attr) {
	if info.IsDir() {
		out.Mode = dirMode
		out.Nlink = 2
		out.Size = 0
		return
	}

	out.Mode = fileMode
	out.Nlink = 1
	out.Size = uint64(info.Size)
	out.Blocks = (out.Size + 511) / 512
}

// readRange returns the part of data a read of size bytes at off sees.
func readRange(data []byte, off int64, size int) []byte {
	if off < 0 || off >= int64(len(data)) {
		return nil
	}

	end := off + int64(size)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[off:end]
}
