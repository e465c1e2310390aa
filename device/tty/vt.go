package tty

import (
	"io"

	"github.com/Mine4x/unsafeOS/device/video/console"
	"github.com/Mine4x/unsafeOS/kernel"
	"github.com/Mine4x/unsafeOS/kernel/cpu"
	"github.com/Mine4x/unsafeOS/kernel/sync"
)

// unprintable replaces bytes outside the printable ASCII range.
const unprintable = 0xfe

type glyph struct {
	ch     byte
	fg, bg uint8
}

// VT implements a terminal supporting scrollback. The terminal interprets the
// following special characters:
//   - \r (carriage-return)
//   - \n (line-feed)
//   - \b (backspace; erases the previous character on the current line)
//   - \t (tab; expanded to tabWidth spaces)
//
// Every other byte outside the printable ASCII range is displayed as a block.
//
// Interrupt handlers print through the terminal, so all access goes through
// an IRQLock.
type VT struct {
	lock *sync.IRQLock
	cons console.Device

	viewportWidth  uint32
	viewportHeight uint32

	// The number of additional lines of output that are buffered by the
	// terminal to support scrolling up.
	scrollback uint32
	termHeight uint32

	// The terminal contents, one row after the other.
	glyphs []glyph

	tabWidth         uint8
	defaultFg, curFg uint8
	defaultBg, curBg uint8

	// The cursor position is relative to the viewport which starts at
	// row viewportY of the terminal contents.
	cursorX   uint32
	cursorY   uint32
	viewportY uint32

	state State
}

// NewVT creates a new virtual terminal device whose lock disables interrupts
// on core. The tabWidth parameter controls tab expansion whereas the
// scrollback parameter defines the line count that gets buffered by the
// terminal to provide scrolling beyond the console height.
func NewVT(core *cpu.Core, tabWidth uint8, scrollback uint32) *VT {
	return &VT{
		lock:       sync.NewIRQLock(core),
		tabWidth:   tabWidth,
		scrollback: scrollback,
		cursorX:    1,
		cursorY:    1,
	}
}

// AttachTo connects a TTY to a console instance.
func (t *VT) AttachTo(cons console.Device) {
	if cons == nil {
		return
	}

	t.lock.Acquire()
	defer t.lock.Release()

	t.cons = cons
	t.viewportWidth, t.viewportHeight = cons.Dimensions()
	t.termHeight = t.viewportHeight + t.scrollback
	t.defaultFg, t.defaultBg = cons.DefaultColors()
	t.curFg, t.curBg = t.defaultFg, t.defaultBg
	t.glyphs = make([]glyph, t.viewportWidth*t.termHeight)
	t.reset()
}

// State returns the TTY's state.
func (t *VT) State() State {
	t.lock.Acquire()
	defer t.lock.Release()
	return t.state
}

// SetState updates the TTY's state. Activating the terminal copies the
// visible contents to the attached console.
func (t *VT) SetState(newState State) {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.state == newState {
		return
	}

	t.state = newState
	if t.state == StateActive && t.cons != nil {
		t.syncViewport()
		t.syncCursor()
	}
}

// CursorPosition returns the current cursor position.
func (t *VT) CursorPosition() (uint32, uint32) {
	t.lock.Acquire()
	defer t.lock.Release()
	return t.cursorX, t.cursorY
}

// SetCursorPosition sets the current cursor position to (x,y).
func (t *VT) SetCursorPosition(x, y uint32) {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return
	}

	t.cursorX = clip(x, t.viewportWidth)
	t.cursorY = clip(y, t.viewportHeight)
	t.syncCursor()
}

// Clear blanks the terminal, scrollback included, and moves the cursor to
// the top-left corner.
func (t *VT) Clear() {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return
	}

	t.reset()
	if t.state == StateActive {
		t.cons.Fill(1, 1, t.viewportWidth, t.viewportHeight, t.defaultFg, t.defaultBg)
		t.syncCursor()
	}
}

// Write implements io.Writer.
func (t *VT) Write(data []byte) (int, error) {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return 0, io.ErrClosedPipe
	}

	for _, b := range data {
		t.writeByte(b)
	}
	t.syncCursor()

	return len(data), nil
}

// WriteByte implements io.ByteWriter.
func (t *VT) WriteByte(b byte) error {
	t.lock.Acquire()
	defer t.lock.Release()

	if t.cons == nil {
		return io.ErrClosedPipe
	}

	t.writeByte(b)
	t.syncCursor()
	return nil
}

func (t *VT) writeByte(b byte) {
	switch {
	case b == '\r':
		t.cursorX = 1
	case b == '\n':
		t.lf()
	case b == '\b':
		if t.cursorX > 1 {
			t.cursorX--
			t.put(' ')
		}
	case b == '\t':
		for i := uint8(0); i < t.tabWidth; i++ {
			t.putAndAdvance(' ')
		}
	case b < 0x20 || b > 0x7e:
		t.putAndAdvance(unprintable)
	default:
		t.putAndAdvance(b)
	}
}

// put stores b at the cursor position using the current colors.
func (t *VT) put(b byte) {
	g := glyph{ch: b, fg: t.curFg, bg: t.curBg}
	t.glyphs[t.offset()] = g

	if t.state == StateActive {
		t.cons.Write(g.ch, g.fg, g.bg, t.cursorX, t.cursorY)
	}
}

// putAndAdvance stores b at the cursor position and moves the cursor right,
// wrapping to the next line at the end of the viewport.
func (t *VT) putAndAdvance(b byte) {
	t.put(b)

	if t.cursorX++; t.cursorX > t.viewportWidth {
		t.lf()
	}
}

// lf moves the cursor to the beginning of the next line scrolling the
// terminal contents if the cursor is on the last line of the viewport.
func (t *VT) lf() {
	t.cursorX = 1

	if t.cursorY < t.viewportHeight {
		t.cursorY++
		return
	}

	if t.viewportY+t.viewportHeight < t.termHeight {
		// The next line is still part of the scrollback buffer.
		t.viewportY++
	} else {
		// Discard the oldest line.
		stride := int(t.viewportWidth)
		copy(t.glyphs, t.glyphs[stride:])
		t.blank(t.termHeight - 1)
	}

	if t.state == StateActive {
		t.cons.Scroll(console.ScrollDirUp, 1)
		t.cons.Fill(1, t.cursorY, t.viewportWidth, 1, t.defaultFg, t.defaultBg)
	}
}

// reset blanks all terminal rows and resets the cursor and viewport.
func (t *VT) reset() {
	for row := uint32(0); row < t.termHeight; row++ {
		t.blank(row)
	}
	t.curFg, t.curBg = t.defaultFg, t.defaultBg
	t.cursorX, t.cursorY, t.viewportY = 1, 1, 0
}

// blank clears the specified row of the terminal contents.
func (t *VT) blank(row uint32) {
	start := row * t.viewportWidth
	for i := start; i < start+t.viewportWidth; i++ {
		t.glyphs[i] = glyph{ch: ' ', fg: t.defaultFg, bg: t.defaultBg}
	}
}

func (t *VT) syncViewport() {
	for y := uint32(1); y <= t.viewportHeight; y++ {
		offset := (t.viewportY + y - 1) * t.viewportWidth
		for x := uint32(1); x <= t.viewportWidth; x, offset = x+1, offset+1 {
			g := t.glyphs[offset]
			t.cons.Write(g.ch, g.fg, g.bg, x, y)
		}
	}
}

func (t *VT) syncCursor() {
	if t.state != StateActive {
		return
	}

	if mover, ok := t.cons.(console.CursorMover); ok {
		mover.MoveCursor(t.cursorX, t.cursorY)
	}
}

// offset returns the index of the glyph under the cursor.
func (t *VT) offset() uint32 {
	return (t.viewportY+t.cursorY-1)*t.viewportWidth + t.cursorX - 1
}

func clip(v, limit uint32) uint32 {
	switch {
	case v < 1:
		return 1
	case v > limit:
		return limit
	default:
		return v
	}
}

// DriverName returns the name of this driver.
func (t *VT) DriverName() string {
	return "vt"
}

// DriverVersion returns the version of this driver.
func (t *VT) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit initializes this driver.
func (t *VT) DriverInit(_ io.Writer) *kernel.Error { return nil }
