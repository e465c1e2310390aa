package keyboard

// Modifiers tracks the state of the modifier and lock keys.
type Modifiers struct {
	LShift   bool
	RShift   bool
	LControl bool
	RControl bool
	Alt      bool
	AltGr    bool
	CapsLock bool
	NumLock  bool
}

// IsShifted returns true if either shift key is held.
func (m Modifiers) IsShifted() bool { return m.LShift || m.RShift }

// IsCaps returns true if letters should be upper case.
func (m Modifiers) IsCaps() bool { return m.IsShifted() != m.CapsLock }

type keyChars struct {
	lower, upper rune

	// letter keys follow CapsLock.
	letter bool
}

// us104 holds the characters produced by the keys of the main block.
var us104 = map[KeyCode]keyChars{
	KeyBacktick: {'`', '~', false},
	Key1:        {'1', '!', false},
	Key2:        {'2', '@', false},
	Key3:        {'3', '#', false},
	Key4:        {'4', '$', false},
	Key5:        {'5', '%', false},
	Key6:        {'6', '^', false},
	Key7:        {'7', '&', false},
	Key8:        {'8', '*', false},
	Key9:        {'9', '(', false},
	Key0:        {'0', ')', false},
	KeyMinus:    {'-', '_', false},
	KeyEquals:   {'=', '+', false},

	KeyBracketLeft:  {'[', '{', false},
	KeyBracketRight: {']', '}', false},
	KeyBackslash:    {'\\', '|', false},
	KeySemicolon:    {';', ':', false},
	KeyQuote:        {'\'', '"', false},
	KeyComma:        {',', '<', false},
	KeyPeriod:       {'.', '>', false},
	KeySlash:        {'/', '?', false},
	KeySpacebar:     {' ', ' ', false},

	KeyQ: {'q', 'Q', true}, KeyW: {'w', 'W', true}, KeyE: {'e', 'E', true},
	KeyR: {'r', 'R', true}, KeyT: {'t', 'T', true}, KeyY: {'y', 'Y', true},
	KeyU: {'u', 'U', true}, KeyI: {'i', 'I', true}, KeyO: {'o', 'O', true},
	KeyP: {'p', 'P', true}, KeyA: {'a', 'A', true}, KeyS: {'s', 'S', true},
	KeyD: {'d', 'D', true}, KeyF: {'f', 'F', true}, KeyG: {'g', 'G', true},
	KeyH: {'h', 'H', true}, KeyJ: {'j', 'J', true}, KeyK: {'k', 'K', true},
	KeyL: {'l', 'L', true}, KeyZ: {'z', 'Z', true}, KeyX: {'x', 'X', true},
	KeyC: {'c', 'C', true}, KeyV: {'v', 'V', true}, KeyB: {'b', 'B', true},
	KeyN: {'n', 'N', true}, KeyM: {'m', 'M', true},
}

// controlChars holds keys that always produce the same control character.
var controlChars = map[KeyCode]rune{
	KeyEscape:      0x1b,
	KeyBackspace:   0x08,
	KeyTab:         '\t',
	KeyEnter:       '\n',
	KeyNumpadEnter: '\n',
	KeyDelete:      0x7f,

	KeyNumpadDivide:   '/',
	KeyNumpadMultiply: '*',
	KeyNumpadSubtract: '-',
	KeyNumpadAdd:      '+',
}

type numpadKey struct {
	digit rune
	nav   DecodedKey
}

// numpad maps the keypad keys whose meaning depends on NumLock.
var numpad = map[KeyCode]numpadKey{
	KeyNumpad0:      {'0', RawKey(KeyInsert)},
	KeyNumpad1:      {'1', RawKey(KeyEnd)},
	KeyNumpad2:      {'2', RawKey(KeyArrowDown)},
	KeyNumpad3:      {'3', RawKey(KeyPageDown)},
	KeyNumpad4:      {'4', RawKey(KeyArrowLeft)},
	KeyNumpad5:      {'5', Unicode('5')},
	KeyNumpad6:      {'6', RawKey(KeyArrowRight)},
	KeyNumpad7:      {'7', RawKey(KeyHome)},
	KeyNumpad8:      {'8', RawKey(KeyArrowUp)},
	KeyNumpad9:      {'9', RawKey(KeyPageUp)},
	KeyNumpadPeriod: {'.', Unicode(0x7f)},
}

// mapUS104 applies the US 104-key layout to a pressed key. Control chords
// are not translated: Ctrl+C produces 'c'.
func mapUS104(code KeyCode, mods Modifiers) DecodedKey {
	if chars, ok := us104[code]; ok {
		shifted := mods.IsShifted()
		if chars.letter {
			shifted = mods.IsCaps()
		}

		if shifted {
			return Unicode(chars.upper)
		}
		return Unicode(chars.lower)
	}

	if ch, ok := controlChars[code]; ok {
		return Unicode(ch)
	}

	if key, ok := numpad[code]; ok {
		if mods.NumLock {
			return Unicode(key.digit)
		}
		return key.nav
	}

	return RawKey(code)
}

// EncodeRune returns the set 1 scancode sequence that a US 104-key keyboard
// sends when r is typed with the modifiers in their default state (CapsLock
// off). Shift is pressed and released around characters that need it. It
// returns nil if no key produces r.
func EncodeRune(r rune) []byte {
	for code, ch := range controlChars {
		// The main block keys take precedence over the keypad.
		if ch == r && code != KeyNumpadEnter && !isKeypad(code) {
			return EncodeKey(code)
		}
	}

	for code, chars := range us104 {
		switch r {
		case chars.lower:
			return EncodeKey(code)
		case chars.upper:
			seq := encodeScancode(KeyLShift, KeyDown)
			seq = append(seq, EncodeKey(code)...)
			return append(seq, encodeScancode(KeyLShift, KeyUp)...)
		}
	}

	return nil
}

// EncodeKey returns the set 1 sequence for pressing and releasing code.
func EncodeKey(code KeyCode) []byte {
	if code == KeyPauseBreak {
		return encodeScancode(code, KeyDown)
	}

	down := encodeScancode(code, KeyDown)
	if down == nil {
		return nil
	}
	return append(down, encodeScancode(code, KeyUp)...)
}

func isKeypad(code KeyCode) bool {
	return code >= KeyNumpadDivide && code <= KeyNumpadEnter
}
