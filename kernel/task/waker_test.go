package task

import "testing"

func TestAtomicWaker(t *testing.T) {
	var (
		queue = make(chan ID, 4)
		w1    = &Waker{id: 1, queue: queue}
		w2    = &Waker{id: 2, queue: queue}
		slot  AtomicWaker
	)

	t.Run("wake without registration", func(t *testing.T) {
		slot.Wake()
		if len(queue) != 0 {
			t.Fatal("expected an empty slot to wake nothing")
		}
	})

	t.Run("last registrant wins", func(t *testing.T) {
		slot.Register(w1)
		slot.Register(w2)
		slot.Wake()

		if got := len(queue); got != 1 {
			t.Fatalf("expected a single wakeup; got %d", got)
		}
		if got := <-queue; got != 2 {
			t.Fatalf("expected task 2 to be woken; got %d", got)
		}

		// The slot is cleared by Wake.
		slot.Wake()
		if len(queue) != 0 {
			t.Fatal("expected the slot to be empty after Wake")
		}
	})

	t.Run("take", func(t *testing.T) {
		slot.Register(w1)
		if got := slot.Take(); got != w1 {
			t.Fatalf("expected Take to return the registered waker; got %v", got)
		}
		if got := slot.Take(); got != nil {
			t.Fatalf("expected Take on an empty slot to return nil; got %v", got)
		}
		if len(queue) != 0 {
			t.Fatal("expected Take not to wake the task")
		}
	})
}

func TestWakeOnFullQueuePanics(t *testing.T) {
	defer func(orig func(interface{})) { panicFn = orig }(panicFn)

	var panicErr interface{}
	panicFn = func(e interface{}) { panicErr = e }

	queue := make(chan ID, 1)
	queue <- 42

	(&Waker{id: 1, queue: queue}).Wake()
	if panicErr != errWakeQueueFull {
		t.Fatalf("expected errWakeQueueFull; got %v", panicErr)
	}
}
