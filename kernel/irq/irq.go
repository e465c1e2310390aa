// Package irq maps hardware interrupt lines to their handlers.
package irq

import (
	"sync/atomic"

	"github.com/Mine4x/unsafeOS/kernel/cpu"
	"github.com/Mine4x/unsafeOS/kernel/kfmt"
)

// Line identifies a hardware interrupt line.
type Line uint8

const (
	// Timer is raised by the programmable interval timer.
	Timer = Line(0)

	// Keyboard is raised by the i8042 controller whenever a scancode byte
	// is available on its data port.
	Keyboard = Line(1)

	// NumLines is the number of lines handled by a Table.
	NumLines = 16
)

// Handler services an interrupt. Handlers run in interrupt context: they
// must not block, must not wait on a lock held by task context and must not
// allocate unboundedly.
type Handler func(Line)

// Table holds the handler registered for each interrupt line.
type Table struct {
	handlers [NumLines]Handler

	spurious atomic.Uint64
}

// HandleInterrupt registers handler for the given line, replacing any
// previous registration. Registration happens during driver init, before
// interrupts are enabled.
func (t *Table) HandleInterrupt(line Line, handler Handler) {
	if int(line) >= NumLines {
		return
	}
	t.handlers[line] = handler
}

// Install makes t the interrupt dispatcher of core.
func (t *Table) Install(core *cpu.Core) {
	core.SetDispatcher(t.Dispatch)
}

// Dispatch invokes the handler registered for line. Interrupts without a
// handler are counted as spurious.
func (t *Table) Dispatch(line uint8) {
	if int(line) < NumLines {
		if handler := t.handlers[line]; handler != nil {
			handler(Line(line))
			return
		}
	}

	if t.spurious.Add(1) == 1 {
		kfmt.Printf("[irq] spurious interrupt on line %d\n", line)
	}
}

// Spurious returns the number of interrupts that arrived on a line without a
// handler.
func (t *Table) Spurious() uint64 {
	return t.spurious.Load()
}
