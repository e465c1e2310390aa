package keyboard

import "github.com/Mine4x/unsafeOS/kernel/sync"

// Callback receives every decoded key.
type Callback func(DecodedKey)

// Registry is an ordered list of key callbacks. Callbacks cannot be removed.
type Registry struct {
	lock      sync.Spinlock
	callbacks []Callback
}

// Register appends cb to the registry. Callbacks are invoked in registration
// order.
func (r *Registry) Register(cb Callback) {
	if cb == nil {
		return
	}

	r.lock.Acquire()
	r.callbacks = append(r.callbacks, cb)
	r.lock.Release()
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	r.lock.Acquire()
	defer r.lock.Release()
	return len(r.callbacks)
}

// Dispatch invokes every registered callback with key. The registry lock is
// held until the last callback returns, so a callback must not call
// Register or Dispatch: doing so deadlocks the kernel.
func (r *Registry) Dispatch(key DecodedKey) {
	r.lock.Acquire()
	defer r.lock.Release()

	for _, cb := range r.callbacks {
		cb(key)
	}
}
