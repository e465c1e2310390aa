package keyboard

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/Mine4x/unsafeOS/kernel/cpu"
	"github.com/Mine4x/unsafeOS/kernel/kfmt"
	"github.com/Mine4x/unsafeOS/kernel/task"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	orig := kfmt.GetOutputSink()
	kfmt.SetOutputSink(&buf)
	t.Cleanup(func() { kfmt.SetOutputSink(orig) })

	return &buf
}

func drain(s *ScancodeStream) []byte {
	var out []byte
	for {
		b, ok := s.PollNext(nil)
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

func TestBridgeDeliversInPushOrder(t *testing.T) {
	specs := []int{0, 1, 7, DefaultQueueCapacity}

	for specIndex, count := range specs {
		br := NewBridge(0)
		stream := br.Stream()

		var exp []byte
		for i := 0; i < count; i++ {
			exp = append(exp, byte(i))
			br.Push(byte(i))
		}

		if got := br.Len(); got != count {
			t.Errorf("[spec %d] expected %d queued bytes; got %d", specIndex, count, got)
		}

		if got := drain(stream); !bytes.Equal(got, exp) {
			t.Errorf("[spec %d] expected to receive %v; got %v", specIndex, exp, got)
		}

		if got := br.Dropped(); got != 0 {
			t.Errorf("[spec %d] expected no dropped bytes; got %d", specIndex, got)
		}
	}
}

func TestBridgeDropsOnOverflow(t *testing.T) {
	out := captureOutput(t)

	const capacity, excess = 5, 3

	br := NewBridge(capacity)
	stream := br.Stream()
	for i := 0; i < capacity+excess; i++ {
		br.Push(byte(i))
	}

	if got := br.Dropped(); got != excess {
		t.Fatalf("expected %d dropped bytes; got %d", excess, got)
	}

	if exp, got := []byte{0, 1, 2, 3, 4}, drain(stream); !bytes.Equal(got, exp) {
		t.Fatalf("expected to receive %v; got %v", exp, got)
	}

	if got := strings.Count(out.String(), "WARNING: scancode queue full; dropping keyboard input\n"); got != excess {
		t.Fatalf("expected %d overflow warnings; got %d in %q", excess, got, out.String())
	}

	// The queue accepts bytes again once drained.
	br.Push(42)
	if exp, got := []byte{42}, drain(stream); !bytes.Equal(got, exp) {
		t.Fatalf("expected to receive %v; got %v", exp, got)
	}
}

func TestBridgePushDoesNotAllocate(t *testing.T) {
	orig := kfmt.GetOutputSink()
	kfmt.SetOutputSink(io.Discard)
	defer kfmt.SetOutputSink(orig)

	br := NewBridge(4)
	br.Stream()
	queue := br.queue.Load()

	accepted := testing.AllocsPerRun(100, func() {
		br.Push(1)
		queue.pop()
	})
	if accepted != 0 {
		t.Fatalf("expected an accepted push not to allocate; got %v allocs", accepted)
	}

	for i := 0; i < br.Capacity(); i++ {
		br.Push(byte(i))
	}
	overflow := testing.AllocsPerRun(100, func() { br.Push(0xff) })
	if overflow != 0 {
		t.Fatalf("expected a dropped push not to allocate; got %v allocs", overflow)
	}

	if br.Dropped() == 0 {
		t.Fatal("expected the overflow pushes to be counted")
	}
}

func TestBridgeWrapsAround(t *testing.T) {
	br := NewBridge(3)
	stream := br.Stream()

	var got []byte
	for i := 0; i < 10; i++ {
		br.Push(byte(i))
		br.Push(byte(i + 100))
		got = append(got, drain(stream)...)
	}

	if len(got) != 20 {
		t.Fatalf("expected 20 bytes; got %d", len(got))
	}
	for i := 0; i < 10; i++ {
		if got[2*i] != byte(i) || got[2*i+1] != byte(i+100) {
			t.Fatalf("unexpected byte order: %v", got)
		}
	}
}

func TestBridgePushBeforeStream(t *testing.T) {
	out := captureOutput(t)

	br := NewBridge(4)
	br.Push(1)

	if got := out.String(); got != "WARNING: scancode queue uninitialized\n" {
		t.Fatalf("unexpected output %q", got)
	}

	if got := drain(br.Stream()); len(got) != 0 {
		t.Fatalf("expected bytes pushed before the stream existed to be dropped; got %v", got)
	}
}

func TestBridgeSecondStreamPanics(t *testing.T) {
	defer func(orig func(interface{})) { panicFn = orig }(panicFn)

	var panicErr interface{}
	panicFn = func(e interface{}) { panicErr = e }

	br := NewBridge(4)
	if br.Stream() == nil {
		t.Fatal("expected the first call to Stream to succeed")
	}

	if s := br.Stream(); s != nil {
		t.Fatal("expected the second call to Stream to fail")
	}

	if panicErr != errStreamExists {
		t.Fatalf("expected errStreamExists; got %v", panicErr)
	}
}

func TestBridgeWakesConsumer(t *testing.T) {
	var (
		core   = cpu.NewCore()
		exec   = task.NewExecutor(core, 4)
		br     = NewBridge(4)
		stream = br.Stream()
		polls  int
		got    []byte
	)

	exec.Spawn(task.Func(func(ctx *task.Context) task.Poll {
		polls++
		for {
			b, ok := stream.PollNext(ctx.Waker())
			if !ok {
				return task.Pending
			}
			got = append(got, b)
		}
	}))

	exec.RunUntilIdle()
	exec.RunUntilIdle()
	if polls != 1 {
		t.Fatalf("expected the consumer to stay suspended; got %d polls", polls)
	}

	br.Push('a')
	br.Push('b')
	exec.RunUntilIdle()

	if polls != 2 || string(got) != "ab" {
		t.Fatalf("expected a single poll receiving \"ab\"; got %d polls and %q", polls, got)
	}
}

func TestPollNextRechecksAfterRegistering(t *testing.T) {
	defer func(orig func()) { beforeRegisterFn = orig }(beforeRegisterFn)

	var (
		exec   = task.NewExecutor(cpu.NewCore(), 4)
		br     = NewBridge(4)
		stream = br.Stream()
		waker  *task.Waker
		got    []byte
		ok     bool
	)

	// A byte arriving after the first pop failed but before the waker
	// was registered would not wake anyone.
	beforeRegisterFn = func() {
		beforeRegisterFn = func() {}
		br.Push(7)
	}

	exec.Spawn(task.Func(func(ctx *task.Context) task.Poll {
		waker = ctx.Waker()

		var b byte
		if b, ok = stream.PollNext(waker); ok {
			got = append(got, b)
		}
		return task.Ready
	}))
	exec.RunUntilIdle()

	if !ok || !bytes.Equal(got, []byte{7}) {
		t.Fatalf("expected the re-check to return the racing byte; got %v", got)
	}

	if br.waker.Take() != nil {
		t.Fatal("expected the registration to be taken back after a successful re-check")
	}

	// Without data the waker stays registered.
	if _, ok := stream.PollNext(waker); ok {
		t.Fatal("expected an empty stream")
	}
	if br.waker.Take() != waker {
		t.Fatal("expected the waker to be registered")
	}
}
