package keyboard

import "sync/atomic"

// byteRing is a fixed-capacity FIFO for exactly one producer and one
// consumer. The producer only advances tail and the consumer only advances
// head, so neither side ever waits for the other.
type byteRing struct {
	buf  []byte
	head atomic.Uint64
	tail atomic.Uint64
}

func newByteRing(capacity int) *byteRing {
	return &byteRing{buf: make([]byte, capacity)}
}

// push appends b and returns false if the ring is full.
func (r *byteRing) push(b byte) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() == uint64(len(r.buf)) {
		return false
	}

	r.buf[tail%uint64(len(r.buf))] = b
	r.tail.Store(tail + 1)
	return true
}

// pop removes the oldest byte. It returns false if the ring is empty.
func (r *byteRing) pop() (byte, bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return 0, false
	}

	b := r.buf[head%uint64(len(r.buf))]
	r.head.Store(head + 1)
	return b, true
}

func (r *byteRing) len() int {
	return int(r.tail.Load() - r.head.Load())
}
