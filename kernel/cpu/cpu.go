// Package cpu models the single processor the kernel runs on.
//
// The kernel is hosted: one goroutine plays the role of the hardware
// execution context and every interrupt handler runs on that goroutine. Host
// devices never call into the kernel directly; they latch an interrupt line
// with Raise and the core services latched lines at the next interrupt
// window (EnableInterrupts, Halt or EnableInterruptsAndHalt) while the
// interrupt flag is set.
package cpu

import (
	"math/bits"
	"sync"
)

// MaxLines is the number of interrupt lines supported by a Core.
const MaxLines = 32

// Dispatcher services a single interrupt line. It is invoked on the kernel
// goroutine with interrupts disabled.
type Dispatcher func(line uint8)

// Core tracks the interrupt flag, the latched interrupt lines and the halt
// state of the processor.
type Core struct {
	mu sync.Mutex

	// enabled mirrors the interrupt flag.
	enabled bool

	// inIRQ is set while a dispatcher runs.
	inIRQ bool

	// pending holds one bit per latched interrupt line.
	pending uint32

	// kicked records a Kick that arrived while the core was not halted.
	kicked bool

	// halted is non-nil while the core is halted and is closed to resume it.
	halted chan struct{}

	dispatch Dispatcher
}

// NewCore returns a core with interrupts disabled, matching the processor
// state right after boot.
func NewCore() *Core {
	return &Core{}
}

// SetDispatcher installs the function that services interrupt lines.
func (c *Core) SetDispatcher(fn Dispatcher) {
	c.mu.Lock()
	c.dispatch = fn
	c.mu.Unlock()
}

// Raise latches the specified interrupt line and resumes the core if it is
// halted. It is safe to call from any goroutine and never blocks on the
// kernel.
func (c *Core) Raise(line uint8) {
	if line >= MaxLines {
		return
	}

	c.mu.Lock()
	c.pending |= 1 << line
	c.resumeLocked()
	c.mu.Unlock()
}

// Kick resumes a halted core without latching an interrupt line. A Kick that
// arrives while the core is running is remembered so that the next halt
// returns immediately.
func (c *Core) Kick() {
	c.mu.Lock()
	if c.halted == nil {
		c.kicked = true
	}
	c.resumeLocked()
	c.mu.Unlock()
}

// Pending returns true if at least one interrupt line is latched.
func (c *Core) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != 0
}

// InterruptsEnabled returns the state of the interrupt flag.
func (c *Core) InterruptsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// DisableInterrupts clears the interrupt flag. Lines raised afterwards stay
// latched until interrupts are enabled again.
func (c *Core) DisableInterrupts() {
	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()
}

// EnableInterrupts sets the interrupt flag and services any latched lines.
func (c *Core) EnableInterrupts() {
	c.mu.Lock()
	c.enabled = true
	c.mu.Unlock()
	c.service()
}

// SaveAndDisableInterrupts clears the interrupt flag and returns its previous
// value so it can be passed to RestoreInterrupts.
func (c *Core) SaveAndDisableInterrupts() bool {
	c.mu.Lock()
	prev := c.enabled
	c.enabled = false
	c.mu.Unlock()
	return prev
}

// RestoreInterrupts re-enables interrupts if enabled is true. Nested
// sections therefore only service latched lines when the outermost section
// ends.
func (c *Core) RestoreInterrupts(enabled bool) {
	if enabled {
		c.EnableInterrupts()
	}
}

// WithoutInterrupts runs fn with interrupts disabled and restores the
// previous interrupt flag afterwards.
func (c *Core) WithoutInterrupts(fn func()) {
	prev := c.SaveAndDisableInterrupts()
	defer c.RestoreInterrupts(prev)
	fn()
}

// Halt stops instruction execution until an interrupt line is raised or the
// core is kicked. If interrupts are enabled, the latched lines are serviced
// before Halt returns. A halted core with interrupts disabled resumes without
// servicing anything.
func (c *Core) Halt() {
	c.mu.Lock()
	c.haltLocked()
}

// EnableInterruptsAndHalt sets the interrupt flag and halts as a single
// atomic step: a line latched at any point after interrupts were disabled
// makes the halt return immediately, so a wakeup that races with going idle
// is never lost.
func (c *Core) EnableInterruptsAndHalt() {
	c.mu.Lock()
	c.enabled = true
	c.haltLocked()
}

// haltLocked must be called with c.mu held and returns with it released.
func (c *Core) haltLocked() {
	if c.pending == 0 && !c.kicked {
		ch := make(chan struct{})
		c.halted = ch
		c.mu.Unlock()
		<-ch
	} else {
		c.kicked = false
		c.mu.Unlock()
	}

	c.service()
}

func (c *Core) resumeLocked() {
	if c.halted != nil {
		close(c.halted)
		c.halted = nil
	}
}

// service dispatches latched lines, lowest line first, until none are left
// or interrupts get disabled. The interrupt flag is cleared while a
// dispatcher runs and restored when it returns, as the processor does on
// interrupt entry and exit.
func (c *Core) service() {
	for {
		c.mu.Lock()
		if !c.enabled || c.inIRQ || c.pending == 0 || c.dispatch == nil {
			c.mu.Unlock()
			return
		}

		line := uint8(bits.TrailingZeros32(c.pending))
		c.pending &^= 1 << line
		c.inIRQ, c.enabled = true, false
		dispatch := c.dispatch
		c.mu.Unlock()

		dispatch(line)

		c.mu.Lock()
		c.inIRQ, c.enabled = false, true
		c.mu.Unlock()
	}
}
