package main

import (
	"unicode/utf8"

	"github.com/Mine4x/unsafeOS/device/keyboard"
)

const (
	ctrlC = 0x03
	ctrlD = 0x04
	esc   = 0x1b
	del   = 0x7f

	// maxEscapeLen bounds the parameter bytes of a CSI sequence. Longer
	// sequences are discarded.
	maxEscapeLen = 8
)

// escapeKeys maps the escape sequences sent by common terminals, without the
// leading ESC, to the keys that produce them.
var escapeKeys = map[string]keyboard.KeyCode{
	"[A":  keyboard.KeyArrowUp,
	"[B":  keyboard.KeyArrowDown,
	"[C":  keyboard.KeyArrowRight,
	"[D":  keyboard.KeyArrowLeft,
	"[H":  keyboard.KeyHome,
	"[F":  keyboard.KeyEnd,
	"[1~": keyboard.KeyHome,
	"[2~": keyboard.KeyInsert,
	"[3~": keyboard.KeyDelete,
	"[4~": keyboard.KeyEnd,
	"[5~": keyboard.KeyPageUp,
	"[6~": keyboard.KeyPageDown,
	"OA":  keyboard.KeyArrowUp,
	"OB":  keyboard.KeyArrowDown,
	"OC":  keyboard.KeyArrowRight,
	"OD":  keyboard.KeyArrowLeft,
	"OH":  keyboard.KeyHome,
	"OF":  keyboard.KeyEnd,
	"OP":  keyboard.KeyF1,
	"OQ":  keyboard.KeyF2,
	"OR":  keyboard.KeyF3,
	"OS":  keyboard.KeyF4,
}

// inputDecoder turns the bytes read from a raw host terminal into the
// scancodes a PS/2 keyboard would send. Escape sequences and UTF-8 runes
// split across reads are carried over to the next call.
type inputDecoder struct {
	pending []byte
}

// Translate returns the scancodes for input. It reports quit when the user
// pressed Ctrl-C or Ctrl-D; input following the quit key is ignored.
func (d *inputDecoder) Translate(input []byte) (scancodes []byte, quit bool) {
	buf := append(d.pending, input...)
	d.pending = nil

	for len(buf) > 0 {
		switch b := buf[0]; b {
		case ctrlC, ctrlD:
			return scancodes, true
		case esc:
			n, code, complete := parseEscape(buf)
			if !complete {
				d.pending = append([]byte(nil), buf...)
				return scancodes, false
			}
			if code != keyboard.KeyUnknown {
				scancodes = append(scancodes, keyboard.EncodeKey(code)...)
			}
			buf = buf[n:]
		case '\r':
			scancodes = append(scancodes, keyboard.EncodeKey(keyboard.KeyEnter)...)
			buf = buf[1:]
		case del:
			// Terminals send DEL for the backspace key.
			scancodes = append(scancodes, keyboard.EncodeKey(keyboard.KeyBackspace)...)
			buf = buf[1:]
		default:
			if !utf8.FullRune(buf) {
				d.pending = append([]byte(nil), buf...)
				return scancodes, false
			}

			r, size := utf8.DecodeRune(buf)
			scancodes = append(scancodes, keyboard.EncodeRune(r)...)
			buf = buf[size:]
		}
	}

	return scancodes, false
}

// parseEscape decodes the escape sequence at the start of buf. It returns the
// sequence length and the key it stands for, or complete=false if more input
// is needed. A lone ESC is the escape key.
func parseEscape(buf []byte) (n int, code keyboard.KeyCode, complete bool) {
	if len(buf) == 1 || (buf[1] != '[' && buf[1] != 'O') {
		return 1, keyboard.KeyEscape, true
	}

	if buf[1] == 'O' {
		if len(buf) < 3 {
			return 0, keyboard.KeyUnknown, false
		}
		return 3, escapeKeys[string(buf[1:3])], true
	}

	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			return i + 1, escapeKeys[string(buf[1:i+1])], true
		}
		if i-1 > maxEscapeLen {
			return i + 1, keyboard.KeyUnknown, true
		}
	}

	return 0, keyboard.KeyUnknown, false
}
