package keyboard

import "github.com/Mine4x/unsafeOS/kernel"

const (
	prefixExtended = 0xe0
	prefixPause    = 0xe1

	// breakBit is set on the scancode of a released key.
	breakBit = 0x80
)

var (
	// ErrUnknownScancode is returned for scancodes without a key mapping.
	ErrUnknownScancode = &kernel.Error{Module: "keyboard", Message: "unknown scancode"}

	// ErrInvalidSequence is returned when a multi-byte sequence is
	// interrupted by an unexpected byte.
	ErrInvalidSequence = &kernel.Error{Module: "keyboard", Message: "invalid scancode sequence"}
)

// set1 maps single byte make codes of scancode set 1 to key codes.
var set1 = [0x59]KeyCode{
	0x01: KeyEscape,
	0x02: Key1, 0x03: Key2, 0x04: Key3, 0x05: Key4, 0x06: Key5,
	0x07: Key6, 0x08: Key7, 0x09: Key8, 0x0a: Key9, 0x0b: Key0,
	0x0c: KeyMinus, 0x0d: KeyEquals, 0x0e: KeyBackspace, 0x0f: KeyTab,
	0x10: KeyQ, 0x11: KeyW, 0x12: KeyE, 0x13: KeyR, 0x14: KeyT,
	0x15: KeyY, 0x16: KeyU, 0x17: KeyI, 0x18: KeyO, 0x19: KeyP,
	0x1a: KeyBracketLeft, 0x1b: KeyBracketRight, 0x1c: KeyEnter, 0x1d: KeyLControl,
	0x1e: KeyA, 0x1f: KeyS, 0x20: KeyD, 0x21: KeyF, 0x22: KeyG,
	0x23: KeyH, 0x24: KeyJ, 0x25: KeyK, 0x26: KeyL,
	0x27: KeySemicolon, 0x28: KeyQuote, 0x29: KeyBacktick, 0x2a: KeyLShift, 0x2b: KeyBackslash,
	0x2c: KeyZ, 0x2d: KeyX, 0x2e: KeyC, 0x2f: KeyV, 0x30: KeyB, 0x31: KeyN, 0x32: KeyM,
	0x33: KeyComma, 0x34: KeyPeriod, 0x35: KeySlash, 0x36: KeyRShift,
	0x37: KeyNumpadMultiply, 0x38: KeyLAlt, 0x39: KeySpacebar, 0x3a: KeyCapsLock,
	0x3b: KeyF1, 0x3c: KeyF2, 0x3d: KeyF3, 0x3e: KeyF4, 0x3f: KeyF5,
	0x40: KeyF6, 0x41: KeyF7, 0x42: KeyF8, 0x43: KeyF9, 0x44: KeyF10,
	0x45: KeyNumLock, 0x46: KeyScrollLock,
	0x47: KeyNumpad7, 0x48: KeyNumpad8, 0x49: KeyNumpad9, 0x4a: KeyNumpadSubtract,
	0x4b: KeyNumpad4, 0x4c: KeyNumpad5, 0x4d: KeyNumpad6, 0x4e: KeyNumpadAdd,
	0x4f: KeyNumpad1, 0x50: KeyNumpad2, 0x51: KeyNumpad3,
	0x52: KeyNumpad0, 0x53: KeyNumpadPeriod,
	0x57: KeyF11, 0x58: KeyF12,
}

// set1Extended maps make codes that follow the 0xE0 prefix to key codes.
var set1Extended = map[byte]KeyCode{
	0x1c: KeyNumpadEnter,
	0x1d: KeyRControl,
	0x35: KeyNumpadDivide,
	0x37: KeyPrintScreen,
	0x38: KeyRAltGr,
	0x47: KeyHome,
	0x48: KeyArrowUp,
	0x49: KeyPageUp,
	0x4b: KeyArrowLeft,
	0x4d: KeyArrowRight,
	0x4f: KeyEnd,
	0x50: KeyArrowDown,
	0x51: KeyPageDown,
	0x52: KeyInsert,
	0x53: KeyDelete,
	0x5b: KeyLWin,
	0x5c: KeyRWin,
	0x5d: KeyApps,
}

// pauseSequence is sent after the 0xE1 prefix when Pause is pressed. The
// release sequence that follows immediately is the same with the break bit
// set on both bytes.
var pauseSequence = [2]byte{0x1d, 0x45}

type decodeState uint8

const (
	stateStart decodeState = iota
	stateExtended
	statePause
)

// ScancodeSet1 turns the byte stream of an XT-compatible keyboard into key
// events. It keeps state between calls since a single event may span
// several bytes.
type ScancodeSet1 struct {
	state decodeState

	// pauseIndex and pauseBreak track progress through a pause sequence.
	pauseIndex int
	pauseBreak bool
}

// AddByte feeds a byte to the decoder. It returns true and the decoded event
// once a complete sequence has been received. On error, the decoder resets
// and the partially received sequence is discarded.
func (s *ScancodeSet1) AddByte(b byte) (KeyEvent, bool, error) {
	switch s.state {
	case stateExtended:
		s.state = stateStart
		code, ok := set1Extended[b&^breakBit]
		if !ok {
			if b&^breakBit == 0x2a || b&^breakBit == 0x36 {
				// Fake shifts sent around PrintScreen and the
				// navigation cluster.
				return KeyEvent{}, false, nil
			}
			return KeyEvent{}, false, ErrUnknownScancode
		}
		return KeyEvent{Code: code, State: stateFor(b)}, true, nil

	case statePause:
		isBreak := b&breakBit != 0
		if b&^breakBit != pauseSequence[s.pauseIndex] || (s.pauseIndex != 0 && isBreak != s.pauseBreak) {
			s.state = stateStart
			return KeyEvent{}, false, ErrInvalidSequence
		}

		s.pauseBreak = isBreak
		if s.pauseIndex++; s.pauseIndex < len(pauseSequence) {
			return KeyEvent{}, false, nil
		}

		s.state = stateStart
		if isBreak {
			return KeyEvent{}, false, nil
		}
		return KeyEvent{Code: KeyPauseBreak, State: SingleShot}, true, nil
	}

	switch b {
	case prefixExtended:
		s.state = stateExtended
		return KeyEvent{}, false, nil
	case prefixPause:
		s.state, s.pauseIndex = statePause, 0
		return KeyEvent{}, false, nil
	}

	if makeCode := b &^ breakBit; int(makeCode) < len(set1) && set1[makeCode] != KeyUnknown {
		return KeyEvent{Code: set1[makeCode], State: stateFor(b)}, true, nil
	}

	return KeyEvent{}, false, ErrUnknownScancode
}

func stateFor(b byte) KeyState {
	if b&breakBit != 0 {
		return KeyUp
	}
	return KeyDown
}

// encodeScancode returns the set 1 sequence that reports a transition of
// code. It returns nil for keys that cannot be encoded.
func encodeScancode(code KeyCode, state KeyState) []byte {
	var suffix byte
	if state == KeyUp {
		suffix = breakBit
	}

	if code == KeyPauseBreak {
		return []byte{
			prefixPause, pauseSequence[0], pauseSequence[1],
			prefixPause, pauseSequence[0] | breakBit, pauseSequence[1] | breakBit,
		}
	}

	for makeCode, c := range set1 {
		if c == code && code != KeyUnknown {
			return []byte{byte(makeCode) | suffix}
		}
	}

	for makeCode, c := range set1Extended {
		if c == code {
			return []byte{prefixExtended, makeCode | suffix}
		}
	}

	return nil
}
