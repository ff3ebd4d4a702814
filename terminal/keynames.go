package terminal

import (
	"strconv"
	"strings"
)

// keyToName maps Key constants to names usable in config files and logs
// Function and Ctrl+letter names are filled in by init
var keyToName = map[Key]string{
	KeyEscape:    "escape",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBacktab:   "backtab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeySpace:     "space",

	KeyUp:       "up",
	KeyDown:     "down",
	KeyLeft:     "left",
	KeyRight:    "right",
	KeyHome:     "home",
	KeyEnd:      "end",
	KeyPageUp:   "page_up",
	KeyPageDown: "page_down",
	KeyInsert:   "insert",

	KeyCtrlSpace:        "ctrl_space",
	KeyCtrlBackslash:    "ctrl_backslash",
	KeyCtrlBracketLeft:  "ctrl_bracket_left",
	KeyCtrlBracketRight: "ctrl_bracket_right",
	KeyCtrlCaret:        "ctrl_caret",
	KeyCtrlUnderscore:   "ctrl_underscore",
}

var nameToKey = make(map[string]Key)

func init() {
	for i := 0; i < 12; i++ {
		keyToName[KeyF1+Key(i)] = "f" + strconv.Itoa(i+1)
	}
	for c := 'a'; c <= 'z'; c++ {
		keyToName[KeyCtrlA+Key(c-'a')] = "ctrl_" + string(c)
	}
	for k, v := range keyToName {
		nameToKey[v] = k
	}
	nameToKey["shift_tab"] = KeyBacktab
	nameToKey["esc"] = KeyEscape
}

// KeyName returns the canonical string name for a Key constant
// Returns empty string for KeyNone and KeyRune
func KeyName(k Key) string {
	return keyToName[k]
}

// KeyByName resolves a name to a Key constant, ignoring case
// Returns KeyNone and false if name is unknown
func KeyByName(name string) (Key, bool) {
	k, ok := nameToKey[strings.ToLower(name)]
	return k, ok
}

// String renders the event as a config-style name: "q", "enter", "alt+x", "ctrl_c"
func (e KeyEvent) String() string {
	var sb strings.Builder
	if e.Modifiers&ModCtrl != 0 {
		sb.WriteString("ctrl+")
	}
	if e.Modifiers&ModAlt != 0 {
		sb.WriteString("alt+")
	}
	if e.Modifiers&ModShift != 0 {
		sb.WriteString("shift+")
	}
	switch e.Key {
	case KeyRune:
		sb.WriteRune(e.Rune)
	case KeyNone:
		sb.WriteString("none")
	default:
		sb.WriteString(KeyName(e.Key))
	}
	return sb.String()
}
