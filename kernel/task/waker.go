package task

import (
	"sync/atomic"

	"github.com/Mine4x/unsafeOS/kernel"
	"github.com/Mine4x/unsafeOS/kernel/cpu"
)

var errWakeQueueFull = &kernel.Error{Module: "task", Message: "wake queue full"}

// Waker moves a suspended task back to the executor's ready set.
type Waker struct {
	id ID

	// queued is set while the task ID sits in the wake queue and stays set
	// once the task has completed.
	queued atomic.Bool

	queue chan<- ID
	core  *cpu.Core
}

// Wake schedules the task for another poll. It never blocks and may be called
// from any context, interrupt handlers included. Waking a task that is
// already scheduled has no effect, so any number of wakeups between two polls
// result in a single poll.
func (w *Waker) Wake() {
	if !w.queued.CompareAndSwap(false, true) {
		return
	}

	select {
	case w.queue <- w.id:
	default:
		// The executor sizes the queue for one entry per live task.
		panicFn(errWakeQueueFull)
		return
	}

	if w.core != nil {
		w.core.Kick()
	}
}

// AtomicWaker is a single-slot holder for the Waker to notify when a
// resource becomes available. Registering a new Waker replaces the previous
// one, so only one task may wait on an AtomicWaker at a time.
type AtomicWaker struct {
	slot atomic.Pointer[Waker]
}

// Register stores w, replacing any previous registration.
func (a *AtomicWaker) Register(w *Waker) {
	a.slot.Store(w)
}

// Wake clears the slot and wakes the Waker it held, if any.
func (a *AtomicWaker) Wake() {
	if w := a.slot.Swap(nil); w != nil {
		w.Wake()
	}
}

// Take clears the slot and returns the Waker it held without waking it.
func (a *AtomicWaker) Take() *Waker {
	return a.slot.Swap(nil)
}
