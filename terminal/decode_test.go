package terminal

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  KeyEvent
	}{
		{"printable", "q", 1, KeyEvent{Key: KeyRune, Rune: 'q'}},
		{"space", " ", 1, KeyEvent{Key: KeySpace, Rune: ' '}},
		{"enter cr", "\r", 1, KeyEvent{Key: KeyEnter}},
		{"enter lf", "\n", 1, KeyEvent{Key: KeyEnter}},
		{"tab", "\t", 1, KeyEvent{Key: KeyTab}},
		{"delete byte", "\x7f", 1, KeyEvent{Key: KeyBackspace}},
		{"ctrl c", "\x03", 1, KeyEvent{Key: KeyCtrlC}},
		{"ctrl z", "\x1a", 1, KeyEvent{Key: KeyCtrlZ}},
		{"utf8", "é", 2, KeyEvent{Key: KeyRune, Rune: 'é'}},
		{"arrow up", "\x1b[A", 3, KeyEvent{Key: KeyUp}},
		{"ctrl right", "\x1b[1;5C", 6, KeyEvent{Key: KeyRight, Modifiers: ModCtrl}},
		{"shift alt up", "\x1b[1;4A", 6, KeyEvent{Key: KeyUp, Modifiers: ModShift | ModAlt}},
		{"delete", "\x1b[3~", 4, KeyEvent{Key: KeyDelete}},
		{"page down", "\x1b[6~", 4, KeyEvent{Key: KeyPageDown}},
		{"f5 tilde", "\x1b[15~", 5, KeyEvent{Key: KeyF5}},
		{"f12", "\x1b[24~", 5, KeyEvent{Key: KeyF12}},
		{"backtab", "\x1b[Z", 3, KeyEvent{Key: KeyBacktab, Modifiers: ModShift}},
		{"linux f1", "\x1b[[A", 4, KeyEvent{Key: KeyF1}},
		{"ss3 f2", "\x1bOQ", 3, KeyEvent{Key: KeyF2}},
		{"ss3 home", "\x1bOH", 3, KeyEvent{Key: KeyHome}},
		{"alt x", "\x1bx", 2, KeyEvent{Key: KeyRune, Rune: 'x', Modifiers: ModAlt}},
		{"alt escape", "\x1b\x1b", 2, KeyEvent{Key: KeyEscape, Modifiers: ModAlt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ev := parseKey([]byte(tt.input))
			if n != tt.n {
				t.Errorf("Expected %d bytes consumed, got %d", tt.n, n)
			}
			if diff := cmp.Diff(tt.want, ev); diff != "" {
				t.Errorf("Key mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseKeyIncomplete(t *testing.T) {
	for _, input := range []string{"\x1b", "\x1b[", "\x1b[1;5", "\x1bO", "\xc3"} {
		if n, _ := parseKey([]byte(input)); n != 0 {
			t.Errorf("Expected %q to be incomplete, consumed %d", input, n)
		}
	}
}

func TestDecoderSplitSequence(t *testing.T) {
	var d keyDecoder

	d.feed([]byte("a\x1b["))
	ev, ok := d.next(false)
	if !ok || ev.Rune != 'a' {
		t.Fatalf("Expected 'a', got %+v, %v", ev, ok)
	}
	if _, ok := d.next(true); ok {
		t.Fatal("Expected partial CSI to stay buffered")
	}

	d.feed([]byte("B"))
	ev, ok = d.next(false)
	if !ok || ev.Key != KeyDown {
		t.Errorf("Expected KeyDown after completion, got %+v, %v", ev, ok)
	}
}

func TestDecoderLoneEscape(t *testing.T) {
	var d keyDecoder
	d.feed([]byte{0x1b})

	if _, ok := d.next(false); ok {
		t.Fatal("Expected lone ESC to wait without flush")
	}
	ev, ok := d.next(true)
	if !ok || ev.Key != KeyEscape {
		t.Errorf("Expected KeyEscape on flush, got %+v, %v", ev, ok)
	}
}

func TestDecoderSkipsUnknownSequence(t *testing.T) {
	var d keyDecoder
	d.feed([]byte("\x1b[99~z"))

	ev, ok := d.next(false)
	if !ok || ev.Key != KeyRune || ev.Rune != 'z' {
		t.Errorf("Expected unknown sequence swallowed then 'z', got %+v, %v", ev, ok)
	}
}

func TestANSIReadKey(t *testing.T) {
	term := NewANSI(strings.NewReader("hi\x1b[A\x1b"), io.Discard, ColorModeTrueColor)

	var got []KeyEvent
	for {
		ev, err := term.ReadKey()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadKey failed: %v", err)
		}
		got = append(got, ev)
	}

	want := []KeyEvent{
		{Key: KeyRune, Rune: 'h'},
		{Key: KeyRune, Rune: 'i'},
		{Key: KeyUp},
		{Key: KeyEscape},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Key sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyEventString(t *testing.T) {
	tests := []struct {
		ev   KeyEvent
		want string
	}{
		{KeyEvent{Key: KeyRune, Rune: 'q'}, "q"},
		{KeyEvent{Key: KeyEnter}, "enter"},
		{KeyEvent{Key: KeyRune, Rune: 'x', Modifiers: ModAlt}, "alt+x"},
		{KeyEvent{Key: KeyUp, Modifiers: ModCtrl | ModShift}, "ctrl+shift+up"},
		{KeyEvent{Key: KeyCtrlC}, "ctrl_c"},
		{KeyEvent{}, "none"},
	}

	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("String() = %q, expected %q", got, tt.want)
		}
	}
}

func TestKeyByName(t *testing.T) {
	for _, k := range []Key{KeyEscape, KeyF1, KeyCtrlC, KeyPageUp} {
		name := KeyName(k)
		if name == "" {
			t.Errorf("Expected name for key %d", k)
			continue
		}
		got, ok := KeyByName(name)
		if !ok || got != k {
			t.Errorf("KeyByName(%q) = %d, %v; expected %d", name, got, ok, k)
		}
	}
	if k, ok := KeyByName("shift_tab"); !ok || k != KeyBacktab {
		t.Errorf("Expected shift_tab alias for KeyBacktab, got %d, %v", k, ok)
	}
}
