package task

import (
	"github.com/Mine4x/unsafeOS/kernel"
	"github.com/Mine4x/unsafeOS/kernel/cpu"
	"github.com/Mine4x/unsafeOS/kernel/kfmt"
)

// DefaultWakeQueueCapacity is the wake queue size used when NewExecutor is
// passed a non-positive capacity. It also bounds the number of live tasks.
const DefaultWakeQueueCapacity = 100

var (
	// panicFn is invoked on unrecoverable scheduler errors.
	panicFn = kfmt.Panic

	// beforeHaltFn runs after the executor has decided to halt and before
	// the halt instruction. Tests use it to land a wakeup inside that
	// window.
	beforeHaltFn = func() {}

	errDuplicateTask = &kernel.Error{Module: "task", Message: "duplicate task id"}
	errTooManyTasks  = &kernel.Error{Module: "task", Message: "too many tasks for wake queue"}
)

type entry struct {
	task  Task
	waker *Waker
	ctx   Context
}

// Executor polls spawned tasks on the kernel goroutine. Tasks become ready
// when spawned and whenever their Waker fires; the wake queue doubles as the
// ready set.
type Executor struct {
	core      *cpu.Core
	tasks     map[ID]*entry
	wakeQueue chan ID
	nextID    ID

	// stale counts wake queue slots held by IDs of completed tasks.
	stale int
}

// NewExecutor returns an executor that halts core while idle. The wake queue
// holds up to capacity task IDs.
func NewExecutor(core *cpu.Core, capacity int) *Executor {
	if capacity <= 0 {
		capacity = DefaultWakeQueueCapacity
	}

	return &Executor{
		core:      core,
		tasks:     make(map[ID]*entry),
		wakeQueue: make(chan ID, capacity),
	}
}

// Len returns the number of tasks that have not completed yet.
func (e *Executor) Len() int {
	return len(e.tasks)
}

// Spawn registers t with the executor, marks it ready and returns its ID.
func (e *Executor) Spawn(t Task) ID {
	id := e.nextID
	e.nextID++

	if _, exists := e.tasks[id]; exists {
		panicFn(errDuplicateTask)
		return id
	}

	if len(e.tasks)+e.stale >= cap(e.wakeQueue) {
		panicFn(errTooManyTasks)
		return id
	}

	w := &Waker{id: id, queue: e.wakeQueue, core: e.core}
	e.tasks[id] = &entry{task: t, waker: w, ctx: Context{id: id, waker: w}}
	w.Wake()

	return id
}

// Run polls ready tasks and halts the core whenever none are ready. It
// returns once every spawned task has completed.
func (e *Executor) Run() {
	for {
		e.runReady()
		if len(e.tasks) == 0 {
			return
		}
		e.sleepIfIdle()
	}
}

// RunUntilIdle polls ready tasks and services latched interrupt lines until
// no task is ready. Unlike Run it never halts the core.
func (e *Executor) RunUntilIdle() {
	for {
		e.runReady()

		if e.core != nil && e.core.Pending() {
			e.core.EnableInterrupts()
		}

		if len(e.wakeQueue) == 0 {
			return
		}
	}
}

// runReady polls every task that was ready when it was called. Tasks woken
// while it runs are polled on the next call.
func (e *Executor) runReady() {
	for n := len(e.wakeQueue); n > 0; n-- {
		id := <-e.wakeQueue

		ent, ok := e.tasks[id]
		if !ok {
			// Woken during its final poll.
			if e.stale > 0 {
				e.stale--
			}
			continue
		}

		ent.waker.queued.Store(false)
		if ent.task.Poll(&ent.ctx) == Ready {
			if ent.waker.queued.Swap(true) {
				e.stale++
			}
			delete(e.tasks, id)
		}
	}
}

// sleepIfIdle halts the core if no task is ready. The wake queue is checked
// with interrupts disabled and the core is halted with the atomic
// enable-and-halt sequence, so a wakeup that lands after the check makes the
// halt return immediately.
func (e *Executor) sleepIfIdle() {
	e.core.DisableInterrupts()
	if len(e.wakeQueue) != 0 {
		e.core.EnableInterrupts()
		return
	}

	beforeHaltFn()
	e.core.EnableInterruptsAndHalt()
}
