// Package kfmt implements the kernel console output functions.
//
// Output produced before a terminal is attached is buffered in a ring
// buffer and replayed as soon as SetOutputSink installs the active TTY.
package kfmt

import (
	"fmt"
	"io"
)

var (
	// earlyPrintBuffer is a ring buffer that stores Printf output before the
	// console and TTYs are initialized.
	earlyPrintBuffer ringBuffer

	// outputSink is a io.Writer where Printf will send its output. If set
	// to nil, then the output will be redirected to the earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the default target for calls to Printf to w and copies
// any data accumulated in the earlyPrintBuffer to it. It is called during
// boot, before any task runs.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// GetOutputSink returns the current target for calls to Printf. A nil value
// means output is being buffered.
func GetOutputSink() io.Writer {
	return outputSink
}

// Printf formats according to a format specifier (see package fmt) and
// writes the result to the active TTY. If no TTY is attached yet, the output
// is buffered.
//
// Each call results in a single Write to the sink so that output from an
// interrupt handler never interleaves with a line printed by a task.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but it writes the formatted output to
// the specified io.Writer. A nil writer selects the early print buffer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	doWrite(w, fmt.Appendf(nil, format, args...))
}

// Write sends p unformatted to the active TTY, or to the early print buffer
// if none is attached. Unlike Printf it never allocates, so interrupt
// handlers use it for fixed diagnostics.
func Write(p []byte) {
	doWrite(outputSink, p)
}

func doWrite(w io.Writer, p []byte) {
	if len(p) == 0 {
		return
	}

	if w != nil {
		w.Write(p)
	} else {
		earlyPrintBuffer.Write(p)
	}
}
