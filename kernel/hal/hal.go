// Package hal detects the hardware the kernel runs on and wires the
// resulting drivers together.
package hal

import (
	"bytes"
	"sort"

	"github.com/Mine4x/unsafeOS/device"
	"github.com/Mine4x/unsafeOS/device/tty"
	"github.com/Mine4x/unsafeOS/device/video/console"
	"github.com/Mine4x/unsafeOS/kernel/kfmt"
)

// Devices contains the devices discovered by DetectHardware.
type Devices struct {
	// Console is the first console that was initialized.
	Console console.Device

	// TTY is the first terminal that was initialized. Once both a console
	// and a terminal are available, the terminal is attached to the
	// console and becomes the kfmt output sink.
	TTY tty.Device

	// Drivers tracks all initialized device drivers in init order.
	Drivers []device.Driver
}

// DetectHardware runs the probe function of each entry in drivers, ordered
// by detection priority, and initializes the drivers they return.
func DetectHardware(drivers device.DriverInfoList) *Devices {
	sorted := make(device.DriverInfoList, len(drivers))
	copy(sorted, drivers)
	sort.Stable(sorted)

	devices := new(Devices)
	devices.probe(sorted)
	return devices
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver.
func (devices *Devices) probe(driverInfoList device.DriverInfoList) {
	var (
		strBuf bytes.Buffer
		w      = kfmt.PrefixWriter{Sink: kfmt.GetOutputSink()}
	)

	for _, info := range driverInfoList {
		if info == nil || info.Probe == nil {
			continue
		}

		drv := info.Probe()
		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = strBuf.Bytes()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		devices.onDriverInit(drv)
		devices.Drivers = append(devices.Drivers, drv)

		// Drivers probed after the terminal went live log to it.
		w.Sink = kfmt.GetOutputSink()
	}
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized.
func (devices *Devices) onDriverInit(drv device.Driver) {
	switch drvImpl := drv.(type) {
	case console.Device:
		if devices.Console != nil {
			return
		}

		devices.Console = drvImpl
		if devices.TTY != nil {
			devices.linkTTYToConsole()
		}
	case tty.Device:
		if devices.TTY != nil {
			return
		}

		devices.TTY = drvImpl
		if devices.Console != nil {
			devices.linkTTYToConsole()
		}
	}
}

// linkTTYToConsole connects the active TTY device to the active console device
// and syncs their contents.
func (devices *Devices) linkTTYToConsole() {
	devices.TTY.AttachTo(devices.Console)
	devices.TTY.SetState(tty.StateActive)
	kfmt.SetOutputSink(devices.TTY)
}
