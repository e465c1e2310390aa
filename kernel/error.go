// Package kernel contains the types shared by every kernel subsystem.
package kernel

// Error describes a kernel error. Kernel errors are declared as package-level
// pointers to Error so that callers can compare them with errors.Is and so
// that interrupt handlers can report them without allocating.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface. Only the message is returned so it
// can be surfaced verbatim on the console.
func (e *Error) Error() string {
	return e.Message
}
