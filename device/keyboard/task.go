package keyboard

import "github.com/Mine4x/unsafeOS/kernel/task"

// Task consumes the scancodes of a Bridge, decodes them and dispatches the
// resulting keys to a Registry. It never completes.
type Task struct {
	bridge   *Bridge
	registry *Registry
	decoder  *Decoder

	// stream is created on the first poll.
	stream *ScancodeStream
}

// NewTask returns the keyboard task for the given bridge and registry.
func NewTask(bridge *Bridge, registry *Registry) *Task {
	return &Task{
		bridge:   bridge,
		registry: registry,
		decoder:  NewDecoder(),
	}
}

// Poll implements task.Task. It drains every queued scancode before
// suspending.
func (t *Task) Poll(ctx *task.Context) task.Poll {
	if t.stream == nil {
		if t.stream = t.bridge.Stream(); t.stream == nil {
			return task.Ready
		}
	}

	for {
		b, ok := t.stream.PollNext(ctx.Waker())
		if !ok {
			return task.Pending
		}

		if key, ok := t.decoder.Decode(b); ok {
			t.registry.Dispatch(key)
		}
	}
}
