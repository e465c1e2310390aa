package console

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Mine4x/unsafeOS/kernel"
	"github.com/Mine4x/unsafeOS/kernel/kfmt"
	"github.com/charmbracelet/x/ansi"
)

const (
	// DefaultColumns is the console width used when none is configured.
	DefaultColumns = 80

	// DefaultRows is the console height used when none is configured.
	DefaultRows = 25

	// blockChar is displayed in place of bytes the console cannot render.
	blockChar = '■'
)

var errNoOutput = &kernel.Error{Module: "ansi_console", Message: "no output stream"}

type cell struct {
	ch     byte
	fg, bg uint8
}

// ANSI implements a text console on top of a terminal that understands ANSI
// escape sequences. The console keeps a copy of every cell so scrolling can
// be replayed without reading back from the terminal.
//
// Colors are indices into the 16-color ANSI palette. Cells that use the
// console's default colors are drawn with the terminal's own defaults.
type ANSI struct {
	out io.Writer

	width  uint32
	height uint32
	cells  []cell

	defaultFg uint8
	defaultBg uint8

	// curX, curY track the terminal cursor so that sequential writes do
	// not need a cursor positioning sequence.
	curX, curY uint32

	// penFg, penBg are the colors selected by the last SGR sequence.
	penFg, penBg uint8

	buf []byte
}

// NewANSI creates a console with the given dimensions that renders to out.
func NewANSI(out io.Writer, columns, rows uint32) *ANSI {
	if columns == 0 {
		columns = DefaultColumns
	}
	if rows == 0 {
		rows = DefaultRows
	}

	cons := &ANSI{
		out:       out,
		width:     columns,
		height:    rows,
		cells:     make([]cell, columns*rows),
		defaultFg: 7,
		defaultBg: 0,
		penFg:     7,
		penBg:     0,
	}

	for i := range cons.cells {
		cons.cells[i] = cell{ch: ' ', fg: cons.defaultFg, bg: cons.defaultBg}
	}

	return cons
}

// Dimensions returns the console width and height in characters.
func (cons *ANSI) Dimensions() (uint32, uint32) {
	return cons.width, cons.height
}

// DefaultColors returns the default foreground and background colors
// used by this console.
func (cons *ANSI) DefaultColors() (fg uint8, bg uint8) {
	return cons.defaultFg, cons.defaultBg
}

// Fill clears the specified rectangular region. Regions that extend past the
// console edges are clipped.
func (cons *ANSI) Fill(x, y, width, height uint32, fg, bg uint8) {
	if x == 0 {
		x = 1
	}
	if y == 0 {
		y = 1
	}
	if x > cons.width || y > cons.height || width == 0 || height == 0 {
		return
	}

	if x+width-1 > cons.width {
		width = cons.width - x + 1
	}
	if y+height-1 > cons.height {
		height = cons.height - y + 1
	}

	for row := y; row < y+height; row++ {
		offset := (row-1)*cons.width + (x - 1)
		for col := uint32(0); col < width; col++ {
			cons.cells[offset+col] = cell{ch: ' ', fg: fg, bg: bg}
		}
		cons.redraw(x, row, width)
	}
	cons.flush()
}

// Scroll the console contents to the specified direction.
func (cons *ANSI) Scroll(dir ScrollDir, lines uint32) {
	if lines == 0 || lines > cons.height {
		return
	}

	offset := int(lines * cons.width)
	switch dir {
	case ScrollDirUp:
		copy(cons.cells, cons.cells[offset:])
	case ScrollDirDown:
		copy(cons.cells[offset:], cons.cells)
	}

	cons.Redraw()
}

// Write a char to the specified location.
func (cons *ANSI) Write(ch byte, fg, bg uint8, x, y uint32) {
	if x < 1 || x > cons.width || y < 1 || y > cons.height {
		return
	}

	cons.cells[(y-1)*cons.width+(x-1)] = cell{ch: ch, fg: fg, bg: bg}
	cons.redraw(x, y, 1)
	cons.flush()
}

// MoveCursor places the terminal cursor at (x, y).
func (cons *ANSI) MoveCursor(x, y uint32) {
	if x < 1 || x > cons.width || y < 1 || y > cons.height {
		return
	}

	if x != cons.curX || y != cons.curY {
		cons.buf = append(cons.buf, ansi.CursorPosition(int(x), int(y))...)
		cons.curX, cons.curY = x, y
	}
	cons.flush()
}

// Rows returns the text shown on each console row without trailing blanks.
func (cons *ANSI) Rows() []string {
	rows := make([]string, cons.height)
	for y := range rows {
		var line []byte
		for _, c := range cons.cells[uint32(y)*cons.width : uint32(y+1)*cons.width] {
			line = appendCell(line, c.ch)
		}
		rows[y] = strings.TrimRight(string(line), " ")
	}
	return rows
}

// Redraw clears the terminal and repaints every cell.
func (cons *ANSI) Redraw() {
	cons.setPen(cons.defaultFg, cons.defaultBg)
	cons.buf = append(cons.buf, ansi.EraseDisplay(2)...)
	cons.curX, cons.curY = 0, 0
	for y := uint32(1); y <= cons.height; y++ {
		cons.redraw(1, y, cons.width)
	}
	cons.flush()
}

// redraw appends the output for count cells starting at (x, y) to the
// pending output buffer.
func (cons *ANSI) redraw(x, y, count uint32) {
	if x != cons.curX || y != cons.curY {
		cons.buf = append(cons.buf, ansi.CursorPosition(int(x), int(y))...)
	}

	offset := (y-1)*cons.width + (x - 1)
	for _, c := range cons.cells[offset : offset+count] {
		cons.setPen(c.fg, c.bg)
		cons.buf = appendCell(cons.buf, c.ch)
	}

	// Terminals keep the cursor on the last column after writing to it.
	cons.curX, cons.curY = x+count, y
	if cons.curX > cons.width {
		cons.curX = 0
	}
}

// setPen appends the SGR sequence selecting fg and bg unless they are
// already active. The defaults map to a plain reset.
func (cons *ANSI) setPen(fg, bg uint8) {
	if fg == cons.penFg && bg == cons.penBg {
		return
	}

	if fg == cons.defaultFg && bg == cons.defaultBg {
		cons.buf = append(cons.buf, ansi.ResetStyle...)
	} else {
		style := ansi.Style{}.
			ForegroundColor(ansi.BasicColor(fg & 0x0f)).
			BackgroundColor(ansi.BasicColor(bg & 0x0f))
		cons.buf = append(cons.buf, style.String()...)
	}
	cons.penFg, cons.penBg = fg, bg
}

func (cons *ANSI) flush() {
	if len(cons.buf) == 0 {
		return
	}

	// Output errors cannot be reported to anyone; the kernel console is
	// the terminal.
	if cons.out != nil {
		_, _ = cons.out.Write(cons.buf)
	}
	cons.buf = cons.buf[:0]
}

func appendCell(buf []byte, ch byte) []byte {
	if ch < 0x20 || ch > 0x7e {
		return utf8.AppendRune(buf, blockChar)
	}
	return append(buf, ch)
}

// DriverName returns the name of this driver.
func (cons *ANSI) DriverName() string {
	return "ansi_console"
}

// DriverVersion returns the version of this driver.
func (cons *ANSI) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit clears the terminal.
func (cons *ANSI) DriverInit(w io.Writer) *kernel.Error {
	if cons.out == nil {
		return errNoOutput
	}

	cons.Redraw()
	cons.MoveCursor(1, 1)
	kfmt.Fprintf(w, "%dx%d character grid\n", cons.width, cons.height)
	return nil
}
