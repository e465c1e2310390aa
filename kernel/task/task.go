// Package task implements cooperative multitasking for the kernel.
//
// A Task is polled by an Executor until it reports that it is done. A task
// that cannot make progress registers the Waker found in its Context with
// whatever resource it is waiting on and returns Pending; it will not be
// polled again until that Waker fires. There is no preemption: a task that
// never returns Pending keeps the processor to itself.
package task

// ID uniquely identifies a spawned task.
type ID uint64

// Poll is the result of polling a task.
type Poll uint8

const (
	// Pending indicates that the task is waiting for a wakeup.
	Pending Poll = iota

	// Ready indicates that the task has completed.
	Ready
)

// Task is a resumable unit of work.
type Task interface {
	Poll(ctx *Context) Poll
}

// Func adapts an ordinary function to the Task interface.
type Func func(ctx *Context) Poll

// Poll implements Task.
func (f Func) Poll(ctx *Context) Poll {
	return f(ctx)
}

// Context is passed to a task each time it is polled.
type Context struct {
	id    ID
	waker *Waker
}

// ID returns the identifier of the task being polled.
func (c *Context) ID() ID {
	return c.id
}

// Waker returns the handle that reschedules the task being polled.
func (c *Context) Waker() *Waker {
	return c.waker
}
