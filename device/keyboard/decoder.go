package keyboard

// Decoder combines a ScancodeSet1 state machine with the US 104-key layout
// and tracks the modifier state needed to turn key events into characters.
type Decoder struct {
	scancodes ScancodeSet1
	modifiers Modifiers
}

// NewDecoder returns a decoder with NumLock on and every other modifier
// released.
func NewDecoder() *Decoder {
	return &Decoder{modifiers: Modifiers{NumLock: true}}
}

// Modifiers returns the current modifier state.
func (d *Decoder) Modifiers() Modifiers {
	return d.modifiers
}

// AddByte feeds a scancode byte to the decoder and returns the key event it
// completes, if any.
func (d *Decoder) AddByte(b byte) (KeyEvent, bool, error) {
	return d.scancodes.AddByte(b)
}

// Process updates the modifier state for ev and returns the key it
// produces. Key releases produce nothing. Modifier and lock key presses are
// reported as raw keys.
func (d *Decoder) Process(ev KeyEvent) (DecodedKey, bool) {
	down := ev.State != KeyUp

	switch ev.Code {
	case KeyLShift:
		d.modifiers.LShift = down
	case KeyRShift:
		d.modifiers.RShift = down
	case KeyLControl:
		d.modifiers.LControl = down
	case KeyRControl:
		d.modifiers.RControl = down
	case KeyLAlt:
		d.modifiers.Alt = down
	case KeyRAltGr:
		d.modifiers.AltGr = down
	case KeyCapsLock:
		if down {
			d.modifiers.CapsLock = !d.modifiers.CapsLock
		}
	case KeyNumLock:
		if down {
			d.modifiers.NumLock = !d.modifiers.NumLock
		}
	default:
		if !down {
			return DecodedKey{}, false
		}
		return mapUS104(ev.Code, d.modifiers), true
	}

	if !down {
		return DecodedKey{}, false
	}
	return RawKey(ev.Code), true
}

// Decode feeds b to the decoder and returns the key it completes, if any.
// Bytes that fail to decode are discarded.
func (d *Decoder) Decode(b byte) (DecodedKey, bool) {
	ev, ok, err := d.AddByte(b)
	if err != nil || !ok {
		return DecodedKey{}, false
	}
	return d.Process(ev)
}
