package terminal

// Key represents a parsed input key
type Key uint16

// Key constants - designed for expansion
const (
	KeyNone Key = iota
	KeyRune     // Printable character (check Event.Rune)

	// Control keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab // Shift+Tab
	KeyBackspace
	KeyDelete
	KeySpace

	// Navigation
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert

	// Function keys
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

	// Ctrl+letter (Ctrl+A = 0x01, Ctrl+Z = 0x1A)
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlH // Often same as Backspace
	KeyCtrlI // Often same as Tab
	KeyCtrlJ // Often same as Enter
	KeyCtrlK
	KeyCtrlL
	KeyCtrlM // Often same as Enter
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ

	// Ctrl+special
	KeyCtrlSpace
	KeyCtrlBackslash
	KeyCtrlBracketLeft
	KeyCtrlBracketRight
	KeyCtrlCaret
	KeyCtrlUnderscore
)

// Modifier flags
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
)

// csiFinalKeys are CSI sequences ending in a letter: ESC [ X or ESC [ 1 ; mod X
var csiFinalKeys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
	'P': KeyF1,
	'Q': KeyF2,
	'R': KeyF3,
	'S': KeyF4,
}

// csiTildeKeys are CSI sequences of the form ESC [ N ~ or ESC [ N ; mod ~
var csiTildeKeys = map[int]Key{
	1:  KeyHome,
	2:  KeyInsert,
	3:  KeyDelete,
	4:  KeyEnd,
	5:  KeyPageUp,
	6:  KeyPageDown,
	7:  KeyHome,
	8:  KeyEnd,
	11: KeyF1,
	12: KeyF2,
	13: KeyF3,
	14: KeyF4,
	15: KeyF5,
	17: KeyF6,
	18: KeyF7,
	19: KeyF8,
	20: KeyF9,
	21: KeyF10,
	23: KeyF11,
	24: KeyF12,
}

// Linux console function keys: ESC [ [ A..E
var csiLinuxFKeys = map[byte]Key{
	'A': KeyF1,
	'B': KeyF2,
	'C': KeyF3,
	'D': KeyF4,
	'E': KeyF5,
}

// SS3 sequences (ESC O X)
var ss3Keys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
	'P': KeyF1,
	'Q': KeyF2,
	'R': KeyF3,
	'S': KeyF4,
	'M': KeyEnter, // Keypad Enter
}

// xterm modifier parameter: 1 + (shift=1 | alt=2 | ctrl=4)
func modifierFromParam(p int) Modifier {
	if p < 2 || p > 8 {
		return ModNone
	}
	return Modifier(p - 1)
}

// lookupCSI resolves the parameter/final bytes of a CSI sequence (after ESC [)
func lookupCSI(seq []byte) (Key, Modifier, bool) {
	if len(seq) == 0 {
		return KeyNone, ModNone, false
	}
	final := seq[len(seq)-1]
	params := seq[:len(seq)-1]

	if final == 'Z' && len(params) == 0 {
		return KeyBacktab, ModShift, true
	}
	if len(params) == 1 && params[0] == '[' {
		k, ok := csiLinuxFKeys[final]
		return k, ModNone, ok
	}

	first, second, ok := parseCSIParams(params)
	if !ok {
		return KeyNone, ModNone, false
	}

	if final == '~' {
		k, ok := csiTildeKeys[first]
		return k, modifierFromParam(second), ok
	}

	k, ok := csiFinalKeys[final]
	if !ok {
		return KeyNone, ModNone, false
	}
	// Bare form (ESC [ A) or modified form (ESC [ 1 ; mod A)
	if first > 1 {
		return KeyNone, ModNone, false
	}
	return k, modifierFromParam(second), true
}

// parseCSIParams parses "", "N" or "N;M" without allocation
func parseCSIParams(p []byte) (first, second int, ok bool) {
	field := &first
	seen := false
	for _, b := range p {
		switch {
		case b >= '0' && b <= '9':
			*field = *field*10 + int(b-'0')
			seen = true
		case b == ';' && field == &first:
			field = &second
		default:
			return 0, 0, false
		}
	}
	if !seen && len(p) > 0 {
		return 0, 0, false
	}
	return first, second, true
}

// lookupSS3 resolves the final byte of an SS3 sequence
func lookupSS3(b byte) (Key, Modifier, bool) {
	k, ok := ss3Keys[b]
	return k, ModNone, ok
}
