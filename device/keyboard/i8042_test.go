package keyboard

import (
	"bytes"
	"testing"

	"github.com/Mine4x/unsafeOS/device"
	"github.com/Mine4x/unsafeOS/kernel/cpu"
	"github.com/Mine4x/unsafeOS/kernel/irq"
)

func TestControllerRaisesUntilDrained(t *testing.T) {
	var (
		core = cpu.NewCore()
		ctrl = NewController(core)
	)

	ctrl.Feed()
	if core.Pending() {
		t.Fatal("expected feeding nothing not to raise an interrupt")
	}

	ctrl.Feed(1, 2, 3)
	if !core.Pending() {
		t.Fatal("expected Feed to raise the keyboard interrupt")
	}

	var got []byte
	core.SetDispatcher(func(line uint8) {
		if line != uint8(irq.Keyboard) {
			t.Errorf("unexpected interrupt on line %d", line)
			return
		}

		if b, ok := ctrl.ReadData(); ok {
			got = append(got, b)
		}
	})
	core.EnableInterrupts()

	if exp := []byte{1, 2, 3}; !bytes.Equal(got, exp) {
		t.Fatalf("expected the handler to read %v; got %v", exp, got)
	}

	if ctrl.Buffered() != 0 || core.Pending() {
		t.Fatal("expected the controller to be drained")
	}

	if _, ok := ctrl.ReadData(); ok {
		t.Fatal("expected ReadData on an empty controller to fail")
	}
}

func TestDriverInit(t *testing.T) {
	var (
		core   = cpu.NewCore()
		table  irq.Table
		ctrl   = NewController(core)
		bridge = NewBridge(8)
		stream = bridge.Stream()
		buf    bytes.Buffer
	)

	if drv := Probe(nil, &table, bridge)(); drv != nil {
		t.Fatal("expected probe to fail without a data port")
	}

	drv := Probe(ctrl, &table, bridge)()
	if drv == nil {
		t.Fatal("expected probe to return a driver")
	}

	if err := drv.DriverInit(&buf); err != nil {
		t.Fatal(err)
	}

	if exp, got := "keyboard on IRQ1, scancode queue capacity 8\n", buf.String(); got != exp {
		t.Fatalf("expected init output %q; got %q", exp, got)
	}

	table.Install(core)
	ctrl.Feed(0x1e, 0x9e)
	core.EnableInterrupts()

	if exp, got := []byte{0x1e, 0x9e}, drain(stream); !bytes.Equal(got, exp) {
		t.Fatalf("expected the interrupt handler to queue %v; got %v", exp, got)
	}

	if err := NewDriver(ctrl, nil, bridge).DriverInit(&buf); err != errNoIRQTable {
		t.Fatalf("expected errNoIRQTable; got %v", err)
	}
}

func TestDriverInterface(t *testing.T) {
	var dev device.Driver = NewDriver(nil, nil, NewBridge(1))

	if dev.DriverName() == "" {
		t.Fatal("DriverName() returned an empty string")
	}

	if major, minor, patch := dev.DriverVersion(); major+minor+patch == 0 {
		t.Fatal("DriverVersion() returned an invalid version number")
	}
}
