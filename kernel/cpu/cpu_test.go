package cpu

import (
	"testing"
	"time"
)

func TestInterruptFlag(t *testing.T) {
	c := NewCore()
	if c.InterruptsEnabled() {
		t.Fatal("expected a new core to start with interrupts disabled")
	}

	c.EnableInterrupts()
	if !c.InterruptsEnabled() {
		t.Fatal("expected EnableInterrupts to set the interrupt flag")
	}

	if prev := c.SaveAndDisableInterrupts(); !prev {
		t.Fatal("expected SaveAndDisableInterrupts to report the previous flag value")
	}

	if c.InterruptsEnabled() {
		t.Fatal("expected SaveAndDisableInterrupts to clear the interrupt flag")
	}

	c.RestoreInterrupts(false)
	if c.InterruptsEnabled() {
		t.Fatal("expected RestoreInterrupts(false) to leave interrupts disabled")
	}
}

func TestRaiseIsLatchedWhileDisabled(t *testing.T) {
	var serviced []uint8

	c := NewCore()
	c.SetDispatcher(func(line uint8) { serviced = append(serviced, line) })

	c.Raise(4)
	c.Raise(1)
	c.Raise(1)
	c.Raise(MaxLines) // out of range; ignored

	if len(serviced) != 0 {
		t.Fatalf("expected no lines to be serviced while interrupts are disabled; got %v", serviced)
	}

	if !c.Pending() {
		t.Fatal("expected raised lines to be latched")
	}

	c.EnableInterrupts()

	exp := []uint8{1, 4}
	if len(serviced) != len(exp) {
		t.Fatalf("expected lines %v to be serviced; got %v", exp, serviced)
	}
	for i := range exp {
		if serviced[i] != exp[i] {
			t.Errorf("[spec %d] expected line %d; got %d", i, exp[i], serviced[i])
		}
	}

	if c.Pending() {
		t.Fatal("expected no latched lines after servicing")
	}
}

func TestDispatcherRunsWithInterruptsDisabled(t *testing.T) {
	c := NewCore()

	var (
		flagInHandler, nested bool
		calls                 int
	)
	c.SetDispatcher(func(line uint8) {
		calls++
		if calls > 1 {
			return
		}

		flagInHandler = c.InterruptsEnabled()

		// Nested sections inside a handler must not re-enter the dispatcher.
		c.WithoutInterrupts(func() {
			c.Raise(line)
		})
		nested = c.Pending()
	})

	c.Raise(1)
	c.EnableInterrupts()

	if flagInHandler {
		t.Fatal("expected the interrupt flag to be cleared while the dispatcher runs")
	}

	if !nested {
		t.Fatal("expected a line raised inside the handler to stay latched until the handler returns")
	}

	if calls != 2 {
		t.Fatalf("expected the re-raised line to be serviced after the handler returned; got %d calls", calls)
	}

	if !c.InterruptsEnabled() {
		t.Fatal("expected the interrupt flag to be restored after the dispatcher returns")
	}
}

func TestEnableInterruptsAndHaltWithLatchedLine(t *testing.T) {
	var serviced int

	c := NewCore()
	c.SetDispatcher(func(uint8) { serviced++ })

	// The line arrives after interrupts were disabled but before the halt.
	c.DisableInterrupts()
	c.Raise(1)

	done := make(chan struct{})
	go func() {
		c.EnableInterruptsAndHalt()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out: halt missed a line latched before it")
	}

	if serviced != 1 {
		t.Fatalf("expected the latched line to be serviced once; got %d", serviced)
	}
}

func TestHaltResumesOnRaise(t *testing.T) {
	serviced := make(chan uint8, 1)

	c := NewCore()
	c.SetDispatcher(func(line uint8) { serviced <- line })
	c.EnableInterrupts()

	done := make(chan struct{})
	go func() {
		c.Halt()
		close(done)
	}()

	// Give the core a chance to halt; Raise works either way.
	time.Sleep(10 * time.Millisecond)
	c.Raise(3)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the core to resume")
	}

	if got := <-serviced; got != 3 {
		t.Fatalf("expected line 3 to be serviced; got %d", got)
	}
}

func TestKickBeforeHalt(t *testing.T) {
	c := NewCore()
	c.Kick()

	done := make(chan struct{})
	go func() {
		c.EnableInterruptsAndHalt()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out: halt missed a kick that arrived before it")
	}
}
