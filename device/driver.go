// Package device defines the interface implemented by device drivers and the
// order in which the hal package probes for them.
package device

import (
	"io"

	"github.com/Mine4x/unsafeOS/kernel"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. Any diagnostic output
	// should be written to the supplied io.Writer via kfmt.Fprintf.
	DriverInit(io.Writer) *kernel.Error
}

// ProbeFn is a function that scans for the presence of a particular
// piece of hardware and returns a driver for it or nil if the hardware is
// not present.
type ProbeFn func() Driver

// DetectOrder specifies when a driver gets probed relative to other drivers.
type DetectOrder int

const (
	// DetectOrderEarly is used by drivers that other drivers depend on.
	DetectOrderEarly DetectOrder = -1000

	// DetectOrderConsole is used by console drivers.
	DetectOrderConsole DetectOrder = -500

	// DetectOrderTTY is used by terminal drivers. Terminals are probed
	// after consoles so they can be attached right away.
	DetectOrderTTY DetectOrder = -400

	// DetectOrderInput is used by input device drivers.
	DetectOrderInput DetectOrder = 0

	// DetectOrderLast is used by drivers that should be probed last.
	DetectOrderLast DetectOrder = 1000
)

// DriverInfo pairs a probe function with its detection order.
type DriverInfo struct {
	// Order specifies at which stage of the detection process the probe
	// function runs. Drivers with the same order are probed in the order
	// they were added to the list.
	Order DetectOrder

	// Probe checks for the presence of the hardware.
	Probe ProbeFn
}

// DriverInfoList is a list of DriverInfo entries. It implements sort.Interface
// ordering entries by ascending DetectOrder; use sort.Stable to keep the
// relative order of entries with the same DetectOrder.
type DriverInfoList []*DriverInfo

// Len implements sort.Interface.
func (l DriverInfoList) Len() int { return len(l) }

// Less implements sort.Interface.
func (l DriverInfoList) Less(i, j int) bool { return l[i].Order < l[j].Order }

// Swap implements sort.Interface.
func (l DriverInfoList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }
