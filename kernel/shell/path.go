package shell

import (
	"path"

	"github.com/Mine4x/unsafeOS/kernel/sync"
)

// WorkingDir holds the shell's current working directory. The path is
// always absolute and normalized.
type WorkingDir struct {
	lock sync.Spinlock
	path string
}

// NewWorkingDir returns a working directory set to dir, resolved against the
// root.
func NewWorkingDir(dir string) *WorkingDir {
	return &WorkingDir{path: Resolve("/", dir)}
}

// Get returns the current working directory.
func (wd *WorkingDir) Get() string {
	wd.lock.Acquire()
	defer wd.lock.Release()
	return wd.path
}

// Set replaces the current working directory with dir, resolved against the
// current one.
func (wd *WorkingDir) Set(dir string) {
	wd.lock.Acquire()
	wd.path = Resolve(wd.path, dir)
	wd.lock.Release()
}

// Resolve turns p into an absolute path. Relative paths are interpreted
// relative to cwd. "." and ".." segments are resolved lexically; ".." at
// the root stays at the root.
func Resolve(cwd, p string) string {
	if !path.IsAbs(p) {
		p = path.Join("/", cwd, p)
	}
	return path.Clean(p)
}
