package keyboard

import (
	"strings"
	"testing"

	"github.com/Mine4x/unsafeOS/kernel/cpu"
	"github.com/Mine4x/unsafeOS/kernel/irq"
	"github.com/Mine4x/unsafeOS/kernel/task"
)

func TestKeyboardTask(t *testing.T) {
	var (
		core     = cpu.NewCore()
		table    irq.Table
		ctrl     = NewController(core)
		bridge   = NewBridge(0)
		registry Registry
		exec     = task.NewExecutor(core, 4)
		typed    strings.Builder
	)

	table.Install(core)
	if err := NewDriver(ctrl, &table, bridge).DriverInit(nil); err != nil {
		t.Fatal(err)
	}

	registry.Register(func(k DecodedKey) {
		if !k.Raw {
			typed.WriteRune(k.Rune)
		}
	})

	exec.Spawn(NewTask(bridge, &registry))
	exec.RunUntilIdle()

	if exec.Len() != 1 {
		t.Fatal("expected the keyboard task to stay alive")
	}

	for _, r := range "Hi there\n" {
		ctrl.Feed(EncodeRune(r)...)
	}
	exec.RunUntilIdle()

	if got := typed.String(); got != "Hi there\n" {
		t.Fatalf("expected callbacks to receive %q; got %q", "Hi there\n", got)
	}

	if bridge.Dropped() != 0 {
		t.Fatalf("expected no dropped scancodes; got %d", bridge.Dropped())
	}
}

func TestKeyboardTaskStreamAlreadyTaken(t *testing.T) {
	defer func(orig func(interface{})) { panicFn = orig }(panicFn)
	panicFn = func(interface{}) {}

	var (
		bridge = NewBridge(4)
		exec   = task.NewExecutor(cpu.NewCore(), 4)
	)
	bridge.Stream()

	exec.Spawn(NewTask(bridge, &Registry{}))
	exec.RunUntilIdle()

	if exec.Len() != 0 {
		t.Fatal("expected the keyboard task to exit when it cannot obtain the stream")
	}
}
