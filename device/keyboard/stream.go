package keyboard

import "github.com/Mine4x/unsafeOS/kernel/task"

// beforeRegisterFn runs between the first empty pop and the waker
// registration in PollNext.
var beforeRegisterFn = func() {}

// ScancodeStream is the consuming end of a Bridge.
type ScancodeStream struct {
	bridge *Bridge
}

// PollNext returns the next queued scancode. If the queue is empty it
// registers w with the bridge and returns false; w fires when the next
// scancode is pushed.
func (s *ScancodeStream) PollNext(w *task.Waker) (byte, bool) {
	queue := s.bridge.queue.Load()

	if b, ok := queue.pop(); ok {
		return b, true
	}

	// A byte pushed between the pop above and the registration would
	// not wake anyone, so check again once registered.
	beforeRegisterFn()
	s.bridge.waker.Register(w)

	if b, ok := queue.pop(); ok {
		s.bridge.waker.Take()
		return b, true
	}

	return 0, false
}
