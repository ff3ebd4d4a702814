package terminal

import (
	"errors"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/framediff/frame"
)

// ErrScreenClosed is returned by Tcell.ReadKey once the screen is finalized
var ErrScreenClosed = errors.New("tcell screen closed")

// Tcell drives a tcell.Screen
// tcell keeps its own front buffer; writes become visible on Flush (Screen.Show)
type Tcell struct {
	screen tcell.Screen

	mu      sync.Mutex
	cursorX int
	cursorY int
	style   tcell.Style
}

// NewTcell wraps an initialized screen
func NewTcell(screen tcell.Screen) *Tcell {
	return &Tcell{
		screen: screen,
		style:  tcell.StyleDefault,
	}
}

// OpenTcell creates and initializes the platform tcell screen
func OpenTcell() (*Tcell, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return NewTcell(s), nil
}

// Screen returns the wrapped screen
func (t *Tcell) Screen() tcell.Screen {
	return t.screen
}

// Fini restores the terminal
func (t *Tcell) Fini() {
	t.screen.Fini()
}

// tcellColor maps frame colors to tcell true colors
func tcellColor(c frame.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// SetCursor positions the cursor (0-indexed)
func (t *Tcell) SetCursor(x, y int) error {
	t.mu.Lock()
	t.cursorX, t.cursorY = x, y
	t.mu.Unlock()
	return nil
}

// SetForeground sets the foreground color for subsequent writes
func (t *Tcell) SetForeground(c frame.RGB) error {
	t.mu.Lock()
	t.style = t.style.Foreground(tcellColor(c))
	t.mu.Unlock()
	return nil
}

// SetBackground sets the background color for subsequent writes
func (t *Tcell) SetBackground(c frame.RGB) error {
	t.mu.Lock()
	t.style = t.style.Background(tcellColor(c))
	t.mu.Unlock()
	return nil
}

// WriteChar stores r at the cursor and advances the cursor
func (t *Tcell) WriteChar(r rune) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetContent(t.cursorX, t.cursorY, printable(r), nil, t.style)
	t.cursorX++
	return nil
}

// Clear fills the screen with the current background
func (t *Tcell) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetStyle(t.style)
	t.screen.Clear()
	t.cursorX, t.cursorY = 0, 0
	return nil
}

// SetWindowSize asks the screen to resize; simulation screens always comply
func (t *Tcell) SetWindowSize(w, h int) error {
	t.screen.SetSize(w, h)
	return nil
}

// SetCursorVisible shows the cursor at its tracked position or hides it
func (t *Tcell) SetCursorVisible(visible bool) error {
	if visible {
		t.mu.Lock()
		x, y := t.cursorX, t.cursorY
		t.mu.Unlock()
		t.screen.ShowCursor(x, y)
		return nil
	}
	t.screen.HideCursor()
	return nil
}

// Size returns current screen dimensions
func (t *Tcell) Size() (int, int) {
	return t.screen.Size()
}

// ReadKey blocks until the next key event, skipping resize and mouse events
func (t *Tcell) ReadKey() (KeyEvent, error) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return KeyEvent{}, ErrScreenClosed
		}
		if kev, ok := ev.(*tcell.EventKey); ok {
			return keyFromTcell(kev), nil
		}
	}
}

// Flush makes pending writes visible
func (t *Tcell) Flush() error {
	t.screen.Show()
	return nil
}

// tcellKeys maps tcell special keys to Key constants
var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBacktab:    KeyBacktab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyInsert:     KeyInsert,
	tcell.KeyF1:         KeyF1,
	tcell.KeyF2:         KeyF2,
	tcell.KeyF3:         KeyF3,
	tcell.KeyF4:         KeyF4,
	tcell.KeyF5:         KeyF5,
	tcell.KeyF6:         KeyF6,
	tcell.KeyF7:         KeyF7,
	tcell.KeyF8:         KeyF8,
	tcell.KeyF9:         KeyF9,
	tcell.KeyF10:        KeyF10,
	tcell.KeyF11:        KeyF11,
	tcell.KeyF12:        KeyF12,
}

// keyFromTcell converts a tcell key event
func keyFromTcell(ev *tcell.EventKey) KeyEvent {
	var mod Modifier
	m := ev.Modifiers()
	if m&tcell.ModShift != 0 {
		mod |= ModShift
	}
	if m&tcell.ModAlt != 0 {
		mod |= ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		mod |= ModCtrl
	}

	key := ev.Key()
	if key == tcell.KeyRune {
		if ev.Rune() == ' ' {
			return KeyEvent{Key: KeySpace, Rune: ' ', Modifiers: mod}
		}
		return KeyEvent{Key: KeyRune, Rune: ev.Rune(), Modifiers: mod}
	}
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		switch key {
		case tcell.KeyTab, tcell.KeyEnter, tcell.KeyBackspace:
			// tcell aliases Ctrl+I, Ctrl+M, Ctrl+H
		default:
			return KeyEvent{Key: KeyCtrlA + Key(key-tcell.KeyCtrlA), Modifiers: mod &^ ModCtrl}
		}
	}
	if k, ok := tcellKeys[key]; ok {
		return KeyEvent{Key: k, Modifiers: mod}
	}
	return KeyEvent{Key: KeyNone, Modifiers: mod}
}
