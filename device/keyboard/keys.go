package keyboard

// KeyCode identifies a physical key independently of the scancode set.
type KeyCode uint8

// The keys of a US 104-key keyboard.
const (
	KeyUnknown KeyCode = iota
	KeyEscape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyBacktick
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0
	KeyMinus
	KeyEquals
	KeyBackspace
	KeyTab
	KeyQ
	KeyW
	KeyE
	KeyR
	KeyT
	KeyY
	KeyU
	KeyI
	KeyO
	KeyP
	KeyBracketLeft
	KeyBracketRight
	KeyBackslash
	KeyCapsLock
	KeyA
	KeyS
	KeyD
	KeyF
	KeyG
	KeyH
	KeyJ
	KeyK
	KeyL
	KeySemicolon
	KeyQuote
	KeyEnter
	KeyLShift
	KeyZ
	KeyX
	KeyC
	KeyV
	KeyB
	KeyN
	KeyM
	KeyComma
	KeyPeriod
	KeySlash
	KeyRShift
	KeyLControl
	KeyLWin
	KeyLAlt
	KeySpacebar
	KeyRAltGr
	KeyRWin
	KeyApps
	KeyRControl
	KeyPrintScreen
	KeyScrollLock
	KeyPauseBreak
	KeyInsert
	KeyHome
	KeyPageUp
	KeyDelete
	KeyEnd
	KeyPageDown
	KeyArrowUp
	KeyArrowLeft
	KeyArrowDown
	KeyArrowRight
	KeyNumLock
	KeyNumpadDivide
	KeyNumpadMultiply
	KeyNumpadSubtract
	KeyNumpad7
	KeyNumpad8
	KeyNumpad9
	KeyNumpadAdd
	KeyNumpad4
	KeyNumpad5
	KeyNumpad6
	KeyNumpad1
	KeyNumpad2
	KeyNumpad3
	KeyNumpad0
	KeyNumpadPeriod
	KeyNumpadEnter

	numKeyCodes
)

var keyNames = [numKeyCodes]string{
	"Unknown", "Escape",
	"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12",
	"Backtick", "1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "Minus", "Equals", "Backspace",
	"Tab", "Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P", "BracketLeft", "BracketRight", "Backslash",
	"CapsLock", "A", "S", "D", "F", "G", "H", "J", "K", "L", "Semicolon", "Quote", "Enter",
	"LShift", "Z", "X", "C", "V", "B", "N", "M", "Comma", "Period", "Slash", "RShift",
	"LControl", "LWin", "LAlt", "Spacebar", "RAltGr", "RWin", "Apps", "RControl",
	"PrintScreen", "ScrollLock", "PauseBreak",
	"Insert", "Home", "PageUp", "Delete", "End", "PageDown",
	"ArrowUp", "ArrowLeft", "ArrowDown", "ArrowRight",
	"NumLock", "NumpadDivide", "NumpadMultiply", "NumpadSubtract",
	"Numpad7", "Numpad8", "Numpad9", "NumpadAdd", "Numpad4", "Numpad5", "Numpad6",
	"Numpad1", "Numpad2", "Numpad3", "Numpad0", "NumpadPeriod", "NumpadEnter",
}

// String implements fmt.Stringer.
func (k KeyCode) String() string {
	if k >= numKeyCodes {
		return keyNames[KeyUnknown]
	}
	return keyNames[k]
}

// KeyState describes what happened to a key.
type KeyState uint8

const (
	// KeyUp is reported when a key is released.
	KeyUp KeyState = iota

	// KeyDown is reported when a key is pressed or auto-repeats.
	KeyDown

	// SingleShot is reported by keys that only send a press sequence.
	SingleShot
)

// KeyEvent is a single raw key transition.
type KeyEvent struct {
	Code  KeyCode
	State KeyState
}

// DecodedKey is the result of applying the keyboard layout and modifier
// state to a key press. It holds either a character or, for keys that do not
// produce one, the key code.
type DecodedKey struct {
	// Rune is the produced character. Only valid if Raw is false.
	Rune rune

	// Code identifies the pressed key. Only valid if Raw is true.
	Code KeyCode

	// Raw is set for keys that do not produce a character.
	Raw bool
}

// Unicode returns a DecodedKey holding the character r.
func Unicode(r rune) DecodedKey {
	return DecodedKey{Rune: r}
}

// RawKey returns a DecodedKey holding the key code k.
func RawKey(k KeyCode) DecodedKey {
	return DecodedKey{Code: k, Raw: true}
}

// String implements fmt.Stringer.
func (k DecodedKey) String() string {
	if k.Raw {
		return k.Code.String()
	}
	return string(k.Rune)
}
