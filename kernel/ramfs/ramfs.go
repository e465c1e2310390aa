// Package ramfs implements a volatile hierarchical filesystem kept entirely
// in memory.
//
// The whole tree sits behind a single lock. Every operation holds the lock
// for its full duration, traversal included, so operations are serialized
// with respect to each other. No reference to a tree node ever leaves the
// package: file contents are copied in and out.
package ramfs

import (
	"maps"
	"slices"
	"strings"

	"github.com/Mine4x/unsafeOS/kernel/sync"
)

// MaxFileSize is the largest size a single file may reach.
const MaxFileSize = 16 << 20

// Kind identifies the type of a node.
type Kind uint8

const (
	// KindFile marks a node holding a byte buffer.
	KindFile Kind = iota

	// KindDirectory marks a node holding named children.
	KindDirectory
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// node is either a file or a directory. Each node is owned by exactly one
// parent directory.
type node struct {
	kind     Kind
	data     []byte
	children map[string]*node
}

func newDir() *node {
	return &node{kind: KindDirectory, children: make(map[string]*node)}
}

// Info describes a node.
type Info struct {
	Name string
	Kind Kind
	Size int
}

// IsDir returns true if the node is a directory.
func (i Info) IsDir() bool { return i.Kind == KindDirectory }

// FS is an in-memory directory tree. The zero value is not usable; create
// instances with New.
type FS struct {
	lock sync.Spinlock
	root *node
}

// New returns an empty filesystem whose root is a directory.
func New() *FS {
	return &FS{root: newDir()}
}

// Read returns a copy of the contents of the file at path.
func (fs *FS) Read(path string) ([]byte, error) {
	fs.lock.Acquire()
	defer fs.lock.Release()

	n, err := fs.walk("read", path, splitPath(path))
	if err != nil {
		return nil, err
	}

	if n.kind != KindFile {
		return nil, &PathError{Op: "read", Path: path, Err: ErrNotAFile}
	}

	return slices.Clone(n.data), nil
}

// Write creates the file at path or replaces the contents of an existing
// file. Data is never appended. Writing onto an existing directory fails
// with ErrNotAFile and leaves the directory untouched.
func (fs *FS) Write(path string, data []byte) error {
	if len(data) > MaxFileSize {
		return &PathError{Op: "write", Path: path, Err: ErrFileTooLarge}
	}

	fs.lock.Acquire()
	defer fs.lock.Release()

	parent, name, err := fs.walkParent("write", path)
	if err != nil {
		return err
	}

	if existing, ok := parent.children[name]; ok && existing.kind != KindFile {
		return &PathError{Op: "write", Path: path, Err: ErrNotAFile, Segment: name}
	}

	parent.children[name] = &node{kind: KindFile, data: slices.Clone(data)}
	return nil
}

// CreateDir creates a directory at path. Creating a directory that already
// exists succeeds and keeps its contents; creating one over an existing file
// fails with ErrAlreadyExists. Parent directories are not created.
func (fs *FS) CreateDir(path string) error {
	return fs.mkdir(path, false)
}

// CreateDirExcl behaves like CreateDir but fails with ErrAlreadyExists if
// any node, directory or file, already exists at path. The check and the
// insertion happen under a single lock hold.
func (fs *FS) CreateDirExcl(path string) error {
	return fs.mkdir(path, true)
}

func (fs *FS) mkdir(path string, excl bool) error {
	fs.lock.Acquire()
	defer fs.lock.Release()

	if len(splitPath(path)) == 0 {
		if excl {
			return &PathError{Op: "mkdir", Path: path, Err: ErrAlreadyExists, Segment: "/"}
		}
		return nil
	}

	parent, name, err := fs.walkParent("mkdir", path)
	if err != nil {
		return err
	}

	if existing, ok := parent.children[name]; ok {
		if existing.kind == KindDirectory && !excl {
			return nil
		}
		return &PathError{Op: "mkdir", Path: path, Err: ErrAlreadyExists, Segment: name}
	}

	parent.children[name] = newDir()
	return nil
}

// CreateDirAll creates the directory at path together with every missing
// parent. It stops at the first segment that cannot be created.
func (fs *FS) CreateDirAll(path string) error {
	parts := splitPath(path)
	for i := range parts {
		if err := fs.CreateDir("/" + strings.Join(parts[:i+1], "/")); err != nil {
			return err
		}
	}
	return nil
}

// ListDir returns the names of the entries of the directory at path in name
// order.
func (fs *FS) ListDir(path string) ([]string, error) {
	fs.lock.Acquire()
	defer fs.lock.Release()

	n, err := fs.walk("list", path, splitPath(path))
	if err != nil {
		return nil, err
	}

	if n.kind != KindDirectory {
		return nil, &PathError{Op: "list", Path: path, Err: ErrNotADirectory}
	}

	return slices.Sorted(maps.Keys(n.children)), nil
}

// Stat returns information about the node at path.
func (fs *FS) Stat(path string) (Info, error) {
	fs.lock.Acquire()
	defer fs.lock.Release()

	parts := splitPath(path)
	n, err := fs.walk("stat", path, parts)
	if err != nil {
		return Info{}, err
	}

	info := Info{Name: "/", Kind: n.kind, Size: len(n.data)}
	if len(parts) != 0 {
		info.Name = parts[len(parts)-1]
	}
	if n.kind == KindDirectory {
		info.Size = len(n.children)
	}

	return info, nil
}

// WriteAt writes data into the existing file at path starting at offset,
// growing the file with zero bytes if needed. It returns the number of bytes
// written. Writes that would grow the file past MaxFileSize fail with
// ErrFileTooLarge and leave it untouched.
func (fs *FS) WriteAt(path string, data []byte, offset int) (int, error) {
	if offset < 0 {
		return 0, &PathError{Op: "write", Path: path, Err: ErrInvalidOffset}
	}
	if len(data) > MaxFileSize || offset > MaxFileSize-len(data) {
		return 0, &PathError{Op: "write", Path: path, Err: ErrFileTooLarge}
	}

	fs.lock.Acquire()
	defer fs.lock.Release()

	n, err := fs.walk("write", path, splitPath(path))
	if err != nil {
		return 0, err
	}

	if n.kind != KindFile {
		return 0, &PathError{Op: "write", Path: path, Err: ErrNotAFile}
	}

	if end := offset + len(data); end > len(n.data) {
		n.data = append(n.data, make([]byte, end-len(n.data))...)
	}

	return copy(n.data[offset:], data), nil
}

// Truncate changes the size of the file at path. Sizes above MaxFileSize
// fail with ErrFileTooLarge.
func (fs *FS) Truncate(path string, size int) error {
	if size < 0 {
		return &PathError{Op: "truncate", Path: path, Err: ErrInvalidOffset}
	}
	if size > MaxFileSize {
		return &PathError{Op: "truncate", Path: path, Err: ErrFileTooLarge}
	}

	fs.lock.Acquire()
	defer fs.lock.Release()

	n, err := fs.walk("truncate", path, splitPath(path))
	if err != nil {
		return err
	}

	if n.kind != KindFile {
		return &PathError{Op: "truncate", Path: path, Err: ErrNotAFile}
	}

	if size <= len(n.data) {
		n.data = n.data[:size]
	} else {
		n.data = append(n.data, make([]byte, size-len(n.data))...)
	}

	return nil
}

// walk follows parts from the root and returns the node they lead to. It
// stops at the first missing segment or at the first file it would have to
// descend through. Callers must hold fs.lock.
func (fs *FS) walk(op, path string, parts []string) (*node, error) {
	cur := fs.root
	for i, part := range parts {
		if cur.kind != KindDirectory {
			return nil, &PathError{Op: op, Path: path, Err: ErrNotADirectory, Segment: parts[i-1]}
		}

		next, ok := cur.children[part]
		if !ok {
			return nil, &PathError{Op: op, Path: path, Err: ErrPathNotFound, Segment: part}
		}
		cur = next
	}

	return cur, nil
}

// walkParent resolves the directory that holds the last segment of path and
// returns it together with that segment. Callers must hold fs.lock.
func (fs *FS) walkParent(op, path string) (*node, string, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, "", &PathError{Op: op, Path: path, Err: ErrNotAFile}
	}

	dirs, name := parts[:len(parts)-1], parts[len(parts)-1]
	parent, err := fs.walk(op, path, dirs)
	if err != nil {
		return nil, "", err
	}

	if parent.kind != KindDirectory {
		return nil, "", &PathError{Op: op, Path: path, Err: ErrParentNotADirectory, Segment: dirs[len(dirs)-1]}
	}

	return parent, name, nil
}
