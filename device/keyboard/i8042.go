package keyboard

import (
	"io"
	gosync "sync"

	"github.com/Mine4x/unsafeOS/device"
	"github.com/Mine4x/unsafeOS/kernel"
	"github.com/Mine4x/unsafeOS/kernel/cpu"
	"github.com/Mine4x/unsafeOS/kernel/irq"
	"github.com/Mine4x/unsafeOS/kernel/kfmt"
)

var errNoIRQTable = &kernel.Error{Module: "i8042", Message: "no interrupt table"}

// DataPort is the data register of a PS/2 controller.
type DataPort interface {
	// ReadData returns the next byte sent by the keyboard. It returns
	// false if the output buffer is empty.
	ReadData() (byte, bool)
}

// Controller emulates the output side of an i8042 PS/2 controller. The host
// feeds it scancodes; the controller raises the keyboard interrupt line for
// as long as unread bytes remain.
type Controller struct {
	mu   gosync.Mutex
	buf  []byte
	core *cpu.Core
}

// NewController returns a controller that raises interrupts on core.
func NewController(core *cpu.Core) *Controller {
	return &Controller{core: core}
}

// Feed appends scancodes to the controller's output buffer and raises the
// keyboard interrupt. It is called by the host and never blocks on the
// kernel.
func (c *Controller) Feed(scancodes ...byte) {
	if len(scancodes) == 0 {
		return
	}

	c.mu.Lock()
	c.buf = append(c.buf, scancodes...)
	c.mu.Unlock()

	c.core.Raise(uint8(irq.Keyboard))
}

// ReadData implements DataPort. Reading a byte while more remain raises the
// keyboard interrupt again.
func (c *Controller) ReadData() (byte, bool) {
	c.mu.Lock()
	if len(c.buf) == 0 {
		c.mu.Unlock()
		return 0, false
	}

	b := c.buf[0]
	c.buf = c.buf[1:]
	more := len(c.buf) != 0
	c.mu.Unlock()

	if more {
		c.core.Raise(uint8(irq.Keyboard))
	}
	return b, true
}

// Buffered returns the number of unread bytes.
func (c *Controller) Buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// Driver services the keyboard interrupt by moving scancodes from the
// controller data port into a Bridge.
type Driver struct {
	port   DataPort
	table  *irq.Table
	bridge *Bridge
}

// NewDriver returns a keyboard driver for the given data port.
func NewDriver(port DataPort, table *irq.Table, bridge *Bridge) *Driver {
	return &Driver{port: port, table: table, bridge: bridge}
}

// Probe returns a probe function that detects a keyboard behind port.
func Probe(port DataPort, table *irq.Table, bridge *Bridge) device.ProbeFn {
	return func() device.Driver {
		if port == nil {
			return nil
		}
		return NewDriver(port, table, bridge)
	}
}

// handleIRQ runs in interrupt context.
func (d *Driver) handleIRQ(_ irq.Line) {
	if b, ok := d.port.ReadData(); ok {
		d.bridge.Push(b)
	}
}

// DriverName returns the name of this driver.
func (d *Driver) DriverName() string {
	return "i8042"
}

// DriverVersion returns the version of this driver.
func (d *Driver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit installs the keyboard interrupt handler.
func (d *Driver) DriverInit(w io.Writer) *kernel.Error {
	if d.table == nil {
		return errNoIRQTable
	}

	d.table.HandleInterrupt(irq.Keyboard, d.handleIRQ)
	kfmt.Fprintf(w, "keyboard on IRQ%d, scancode queue capacity %d\n", irq.Keyboard, d.bridge.Capacity())
	return nil
}
