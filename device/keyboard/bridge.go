// Package keyboard implements the keyboard input pipeline: the bridge that
// hands scancodes from the interrupt handler to the keyboard task, the
// scancode set 1 decoder with its US 104-key layout, the callback registry
// the decoded keys are dispatched to and the i8042 controller driver.
package keyboard

import (
	"sync/atomic"

	"github.com/Mine4x/unsafeOS/kernel"
	"github.com/Mine4x/unsafeOS/kernel/kfmt"
	"github.com/Mine4x/unsafeOS/kernel/task"
)

// DefaultQueueCapacity is the number of scancodes the bridge buffers when
// created with a non-positive capacity.
const DefaultQueueCapacity = 100

var (
	// panicFn is invoked when the bridge is misused.
	panicFn = kfmt.Panic

	errStreamExists = &kernel.Error{Module: "keyboard", Message: "scancode stream already created"}

	warnQueueMissing = []byte("WARNING: scancode queue uninitialized\n")
	warnQueueFull    = []byte("WARNING: scancode queue full; dropping keyboard input\n")
)

// Bridge connects the keyboard interrupt handler to the task that consumes
// scancodes. The handler pushes bytes into a bounded queue and wakes the
// consumer; the consumer drains the queue through the single ScancodeStream
// the bridge hands out.
type Bridge struct {
	capacity int

	queue   atomic.Pointer[byteRing]
	waker   task.AtomicWaker
	dropped atomic.Uint64
}

// NewBridge returns a bridge whose queue holds up to capacity bytes. The
// queue itself is allocated by the first call to Stream.
func NewBridge(capacity int) *Bridge {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Bridge{capacity: capacity}
}

// Capacity returns the maximum number of queued scancodes.
func (br *Bridge) Capacity() int {
	return br.capacity
}

// Stream creates the scancode queue and returns the stream that consumes it.
// A bridge has exactly one consumer: calling Stream a second time is a fatal
// error.
func (br *Bridge) Stream() *ScancodeStream {
	if !br.queue.CompareAndSwap(nil, newByteRing(br.capacity)) {
		panicFn(errStreamExists)
		return nil
	}

	return &ScancodeStream{bridge: br}
}

// Push queues a scancode and wakes the consumer. It is meant to be called
// from the keyboard interrupt handler: it never blocks and does not allocate.
// If the queue is full the scancode is dropped and counted.
func (br *Bridge) Push(b byte) {
	queue := br.queue.Load()
	if queue == nil {
		kfmt.Write(warnQueueMissing)
		return
	}

	if !queue.push(b) {
		br.dropped.Add(1)
		kfmt.Write(warnQueueFull)
		return
	}

	br.waker.Wake()
}

// Dropped returns the number of scancodes discarded because the queue was
// full.
func (br *Bridge) Dropped() uint64 {
	return br.dropped.Load()
}

// Len returns the number of queued scancodes.
func (br *Bridge) Len() int {
	if queue := br.queue.Load(); queue != nil {
		return queue.len()
	}
	return 0
}
