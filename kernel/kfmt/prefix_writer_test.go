package kfmt

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrefixWriter(t *testing.T) {
	const prefix = "[hal] i8042(0.1.0): "

	specs := []struct {
		writes []string
		exp    string
	}{
		{nil, ""},
		{[]string{""}, ""},
		{[]string{"\n"}, prefix + "\n"},
		{[]string{"keyboard on IRQ1"}, prefix + "keyboard on IRQ1"},
		{[]string{"initialized\n"}, prefix + "initialized\n"},
		{
			[]string{"keyboard on IRQ1, ", "scancode queue capacity 100\n", "initialized\n"},
			prefix + "keyboard on IRQ1, scancode queue capacity 100\n" + prefix + "initialized\n",
		},
		{
			[]string{"\nfirst\nsecond\nthird"},
			prefix + "\n" + prefix + "first\n" + prefix + "second\n" + prefix + "third",
		},
	}

	for specIndex, spec := range specs {
		var (
			buf bytes.Buffer
			w   = PrefixWriter{Sink: &buf, Prefix: []byte(prefix)}
		)

		for _, input := range spec.writes {
			wrote, err := w.Write([]byte(input))
			if err != nil {
				t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
			}
			if wrote != len(input) {
				t.Errorf("[spec %d] expected writer to report %d bytes; got %d", specIndex, len(input), wrote)
			}
		}

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected output:\n%q\ngot:\n%q", specIndex, spec.exp, got)
		}
	}
}

// failingWriter accepts budget bytes and fails every write after that.
type failingWriter struct {
	budget int
	err    error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.budget {
		n := w.budget
		w.budget = 0
		return n, w.err
	}
	w.budget -= len(p)
	return len(p), nil
}

func TestPrefixWriterErrors(t *testing.T) {
	expErr := errors.New("console gone")

	specs := []struct {
		budget int
		input  string
		expLen int
	}{
		// The prefix itself cannot be written.
		{0, "initialized\n", 0},
		// The prefix fits, the line is cut short.
		{4 + 3, "initialized\n", 3},
		// The second prefix fails.
		{4 + 6, "first\nsecond\n", 6},
	}

	for specIndex, spec := range specs {
		w := PrefixWriter{
			Sink:   &failingWriter{budget: spec.budget, err: expErr},
			Prefix: []byte("vt: "),
		}

		wrote, err := w.Write([]byte(spec.input))
		if err != expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, expErr, err)
		}
		if wrote != spec.expLen {
			t.Errorf("[spec %d] expected %d bytes to be reported; got %d", specIndex, spec.expLen, wrote)
		}
	}
}

func TestPrefixWriterWithoutSink(t *testing.T) {
	earlyPrintBuffer.rIndex, earlyPrintBuffer.wIndex = 0, 0
	defer func() { earlyPrintBuffer.rIndex, earlyPrintBuffer.wIndex = 0, 0 }()

	w := PrefixWriter{Prefix: []byte("[hal] vt: ")}
	Fprintf(&w, "initialized\n")

	var buf bytes.Buffer
	buf.ReadFrom(&earlyPrintBuffer)

	if exp, got := "[hal] vt: initialized\n", buf.String(); got != exp {
		t.Fatalf("expected output to be buffered as %q; got %q", exp, got)
	}
}
