package sync

import "github.com/Mine4x/unsafeOS/kernel/cpu"

// IRQLock is a spinlock that is held with interrupts disabled. Locks that can
// also be taken by interrupt handlers must be IRQLocks: a handler spinning on
// a lock held by the task it interrupted would never make progress on a
// single core.
type IRQLock struct {
	core *cpu.Core
	lock Spinlock

	// savedFlag is the interrupt flag observed by the current holder.
	savedFlag bool
}

// NewIRQLock returns a lock that disables interrupts on core while held. A nil
// core yields a plain spinlock.
func NewIRQLock(core *cpu.Core) *IRQLock {
	return &IRQLock{core: core}
}

// Acquire disables interrupts and then acquires the lock.
func (l *IRQLock) Acquire() {
	var prev bool
	if l.core != nil {
		prev = l.core.SaveAndDisableInterrupts()
	}

	l.lock.Acquire()
	l.savedFlag = prev
}

// Release releases the lock and restores the interrupt flag that was active
// when Acquire was called.
func (l *IRQLock) Release() {
	prev := l.savedFlag
	l.lock.Release()

	if l.core != nil {
		l.core.RestoreInterrupts(prev)
	}
}
