package terminal

import "unicode/utf8"

// keyDecoder assembles raw input bytes into key events
// Partial sequences stay buffered until the next read completes them
type keyDecoder struct {
	buf []byte
}

// feed appends freshly read bytes
func (d *keyDecoder) feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// next decodes one key from the buffer
// With flush set, a trailing lone ESC is reported as KeyEscape instead of waiting for more bytes
func (d *keyDecoder) next(flush bool) (KeyEvent, bool) {
	for len(d.buf) > 0 {
		n, ev := parseKey(d.buf)
		if n == 0 {
			if flush && len(d.buf) == 1 && d.buf[0] == 0x1b {
				d.buf = d.buf[:0]
				return KeyEvent{Key: KeyEscape}, true
			}
			return KeyEvent{}, false
		}
		d.buf = d.buf[:copy(d.buf, d.buf[n:])]
		if ev.Key != KeyNone {
			return ev, true
		}
		// Unknown sequence swallowed, keep scanning
	}
	return KeyEvent{}, false
}

// parseKey parses the first key in data and returns bytes consumed, 0 on incomplete input
func parseKey(data []byte) (int, KeyEvent) {
	b := data[0]

	switch {
	case b >= 0x20 && b < 0x7f:
		if b == ' ' {
			return 1, KeyEvent{Key: KeySpace, Rune: ' '}
		}
		return 1, KeyEvent{Key: KeyRune, Rune: rune(b)}
	case b == 0x1b:
		return parseEscape(data)
	case b < 0x20:
		return 1, parseControl(b)
	case b == 0x7f:
		return 1, KeyEvent{Key: KeyBackspace}
	}

	// UTF-8 multibyte
	if !utf8.FullRune(data) {
		return 0, KeyEvent{}
	}
	r, size := utf8.DecodeRune(data)
	if r == utf8.RuneError {
		return size, KeyEvent{Key: KeyNone}
	}
	return size, KeyEvent{Key: KeyRune, Rune: r}
}

// parseEscape attempts to parse an escape sequence, returns 0 on incomplete
func parseEscape(data []byte) (int, KeyEvent) {
	if len(data) < 2 {
		return 0, KeyEvent{}
	}

	switch next := data[1]; {
	case next == 0x1b:
		return 2, KeyEvent{Key: KeyEscape, Modifiers: ModAlt}
	case next == '[':
		return parseCSI(data)
	case next == 'O':
		if len(data) < 3 {
			return 0, KeyEvent{}
		}
		key, mod, _ := lookupSS3(data[2])
		return 3, KeyEvent{Key: key, Modifiers: mod}
	case next < 0x20:
		ev := parseControl(next)
		ev.Modifiers |= ModAlt
		return 2, ev
	case next < 0x7f:
		return 2, KeyEvent{Key: KeyRune, Rune: rune(next), Modifiers: ModAlt}
	}
	return 1, KeyEvent{Key: KeyEscape}
}

// parseCSI parses CSI sequence without allocation
func parseCSI(data []byte) (int, KeyEvent) {
	const maxScan = 16

	start := 2
	// Linux console F1-F5: ESC [ [ X
	if len(data) > 2 && data[2] == '[' {
		if len(data) < 4 {
			return 0, KeyEvent{}
		}
		key, mod, _ := lookupCSI(data[2:4])
		return 4, KeyEvent{Key: key, Modifiers: mod}
	}

	for end := start; end < len(data) && end < maxScan; end++ {
		b := data[end]
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
			key, mod, _ := lookupCSI(data[start : end+1])
			return end + 1, KeyEvent{Key: key, Modifiers: mod}
		}
		if b < 0x20 || b > 0x7e {
			// Malformed, drop the introducer
			return 2, KeyEvent{Key: KeyNone}
		}
	}
	if len(data) >= maxScan {
		return maxScan, KeyEvent{Key: KeyNone}
	}
	return 0, KeyEvent{}
}

// parseControl maps control characters to keys
func parseControl(b byte) KeyEvent {
	switch b {
	case 0x00:
		return KeyEvent{Key: KeyCtrlSpace}
	case 0x08:
		return KeyEvent{Key: KeyBackspace}
	case 0x09:
		return KeyEvent{Key: KeyTab}
	case 0x0a, 0x0d:
		return KeyEvent{Key: KeyEnter}
	case 0x1b:
		return KeyEvent{Key: KeyEscape}
	case 0x1c:
		return KeyEvent{Key: KeyCtrlBackslash}
	case 0x1d:
		return KeyEvent{Key: KeyCtrlBracketRight}
	case 0x1e:
		return KeyEvent{Key: KeyCtrlCaret}
	case 0x1f:
		return KeyEvent{Key: KeyCtrlUnderscore}
	}
	if b >= 0x01 && b <= 0x1a {
		// Ctrl+A (0x01) .. Ctrl+Z (0x1A) are contiguous in the Key enum
		return KeyEvent{Key: KeyCtrlA + Key(b-0x01)}
	}
	return KeyEvent{Key: KeyNone}
}
