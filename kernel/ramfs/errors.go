package ramfs

import "github.com/Mine4x/unsafeOS/kernel"

var (
	// ErrPathNotFound is returned when a path segment does not exist.
	ErrPathNotFound = &kernel.Error{Module: "ramfs", Message: "path not found"}

	// ErrNotADirectory is returned when a path descends through a file or
	// when a directory operation targets a file.
	ErrNotADirectory = &kernel.Error{Module: "ramfs", Message: "not a directory"}

	// ErrNotAFile is returned when a file operation targets a directory.
	ErrNotAFile = &kernel.Error{Module: "ramfs", Message: "path is not a file"}

	// ErrParentNotADirectory is returned when the parent of a write or
	// create target resolves to a file.
	ErrParentNotADirectory = &kernel.Error{Module: "ramfs", Message: "parent is not a directory"}

	// ErrAlreadyExists is returned when a directory would replace a file, or
	// by CreateDirExcl when any node already exists at the path.
	ErrAlreadyExists = &kernel.Error{Module: "ramfs", Message: "file exists"}

	// ErrInvalidOffset is returned for negative offsets and sizes.
	ErrInvalidOffset = &kernel.Error{Module: "ramfs", Message: "invalid offset"}

	// ErrFileTooLarge is returned when a file would grow past MaxFileSize.
	ErrFileTooLarge = &kernel.Error{Module: "ramfs", Message: "file too large"}
)

// PathError records a failed filesystem operation. Err is always one of the
// package's sentinel errors so callers can match it with errors.Is.
type PathError struct {
	Op   string // Operation that failed (e.g. "read", "mkdir")
	Path string // Path passed to the operation
	Err  error  // Sentinel error

	// Segment is the path segment where resolution stopped, if any.
	Segment string
}

// Error returns the sentinel message followed by the offending segment.
func (e *PathError) Error() string {
	if e.Segment == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Segment
}

// Unwrap implements error unwrapping for the errors.Is/As functions.
func (e *PathError) Unwrap() error {
	return e.Err
}
