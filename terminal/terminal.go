package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/lixenwraith/framediff/frame"
)

// ANSI drives an xterm-compatible terminal with direct escape sequences
//
// Output is buffered; nothing reaches the terminal until Flush. Color and cursor
// state is tracked so redundant SGR/CUP sequences are elided.
// Writing (SetCursor, WriteChar, ...) and ReadKey may run on different goroutines;
// each side is single-user.
type ANSI struct {
	backend   Backend
	writer    *bufio.Writer
	colorMode ColorMode
	decoder   keyDecoder
	readBuf   []byte

	// Requested window size, used to track the cursor at the right edge
	width  int
	height int

	cursorX     int
	cursorY     int
	cursorValid bool

	fg, bg   frame.RGB
	fgValid  bool
	bgValid  bool
	cursorOn bool

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// Open initializes the process terminal: raw mode, alternate screen, no auto-wrap
func Open(colorMode ColorMode) (*ANSI, error) {
	t := newANSI(newBackend(), colorMode)
	if err := t.Init(); err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}
	return t, nil
}

// NewANSI creates an ANSI driver over arbitrary streams
// in may be nil when no key input is needed. Init is not called.
func NewANSI(in io.Reader, out io.Writer, colorMode ColorMode) *ANSI {
	return newANSI(newStreamBackend(in, out), colorMode)
}

func newANSI(b Backend, colorMode ColorMode) *ANSI {
	w, h := b.Size()
	return &ANSI{
		backend:   b,
		writer:    bufio.NewWriterSize(b, 65536),
		colorMode: colorMode,
		readBuf:   make([]byte, 256),
		width:     w,
		height:    h,
		cursorOn:  true,
	}
}

// Init enters raw mode, alternate screen buffer, disables auto-wrap
func (t *ANSI) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}
	if err := t.backend.Init(); err != nil {
		return err
	}

	w := t.writer
	w.Write(csiAltScreenEnter)
	// Prevents terminal scroll/wrap on bottom-right corner write
	w.Write(csiAutoWrapOff)
	t.invalidate()

	t.initialized = true
	return w.Flush()
}

// Fini restores terminal state. Safe to call multiple times
func (t *ANSI) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}

	w := t.writer
	w.Write(csiSGR0)
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	// Re-enable Auto-Wrap AFTER exiting alt screen to ensure the main buffer has wrap enabled
	w.Write(csiAutoWrapOn)
	w.Flush()

	t.backend.Fini()
	t.finalized = true
}

// ColorMode returns the color encoding in use
func (t *ANSI) ColorMode() ColorMode {
	return t.colorMode
}

// SetCursor positions the cursor (0-indexed)
func (t *ANSI) SetCursor(x, y int) error {
	if t.cursorValid && t.cursorX == x && t.cursorY == y {
		return nil
	}
	writeCursorPos(t.writer, x, y)
	t.cursorX, t.cursorY = x, y
	t.cursorValid = true
	return t.err()
}

// SetForeground sets the foreground color for subsequent writes
func (t *ANSI) SetForeground(c frame.RGB) error {
	if t.fgValid && t.fg == c {
		return nil
	}
	t.writeColor(c, false)
	t.fg, t.fgValid = c, true
	return t.err()
}

// SetBackground sets the background color for subsequent writes
func (t *ANSI) SetBackground(c frame.RGB) error {
	if t.bgValid && t.bg == c {
		return nil
	}
	t.writeColor(c, true)
	t.bg, t.bgValid = c, true
	return t.err()
}

// WriteChar writes one rune at the cursor
// Control runes are painted as blanks so they never reach the terminal raw
func (t *ANSI) WriteChar(r rune) error {
	r = printable(r)
	var err error
	if r < 0x80 {
		err = t.writer.WriteByte(byte(r))
	} else {
		_, err = t.writer.WriteRune(r)
	}
	if err != nil {
		return err
	}
	t.cursorX++
	// Auto-wrap is off: the cursor sticks at the right edge in a pending state
	if t.cursorX >= t.width {
		t.cursorValid = false
	}
	return nil
}

// printable maps C0, DEL and C1 control runes to a space
func printable(r rune) rune {
	if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
		return ' '
	}
	return r
}

// Clear fills the screen with the current background and homes the cursor
func (t *ANSI) Clear() error {
	t.writer.Write(csiClear)
	t.cursorX, t.cursorY = 0, 0
	t.cursorValid = true
	return t.err()
}

// SetWindowSize requests a cols x rows text area (XTWINOPS)
// Terminals that disallow window operations ignore the request
func (t *ANSI) SetWindowSize(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("invalid window size %dx%d", cols, rows)
	}
	writeWindowSize(t.writer, cols, rows)
	t.width, t.height = cols, rows
	if sb, ok := t.backend.(*streamBackend); ok {
		sb.resize(cols, rows)
	}
	t.cursorValid = false
	return t.err()
}

// SetCursorVisible shows/hides cursor
func (t *ANSI) SetCursorVisible(visible bool) error {
	if visible {
		t.writer.Write(csiCursorShow)
	} else {
		t.writer.Write(csiCursorHide)
	}
	t.cursorOn = visible
	return t.err()
}

// Size returns current terminal dimensions
func (t *ANSI) Size() (int, int) {
	return t.backend.Size()
}

// ReadKey blocks until a complete key is decoded or the input fails
func (t *ANSI) ReadKey() (KeyEvent, error) {
	if ev, ok := t.decoder.next(false); ok {
		return ev, nil
	}
	for {
		n, err := t.backend.Read(t.readBuf)
		if n > 0 {
			t.decoder.feed(t.readBuf[:n])
			// A read ending on a lone ESC is a standalone Escape press
			if ev, ok := t.decoder.next(true); ok {
				return ev, nil
			}
		}
		if err != nil {
			if ev, ok := t.decoder.next(true); ok {
				return ev, nil
			}
			return KeyEvent{}, err
		}
	}
}

// Flush writes buffered output to the terminal
func (t *ANSI) Flush() error {
	return t.writer.Flush()
}

// invalidate forgets tracked cursor and color state
func (t *ANSI) invalidate() {
	t.cursorValid = false
	t.fgValid = false
	t.bgValid = false
}

// err reports a sticky write error from the buffered writer
func (t *ANSI) err() error {
	// bufio.Writer keeps the first error and returns it from every later call
	_, err := t.writer.Write(nil)
	return err
}

// writeColor emits an SGR color sequence in the active color mode
func (t *ANSI) writeColor(c frame.RGB, background bool) {
	w := t.writer
	if t.colorMode == ColorModeTrueColor {
		if background {
			w.Write(csiBgRGB)
		} else {
			w.Write(csiFgRGB)
		}
		writeInt(w, int(c.R))
		w.WriteByte(';')
		writeInt(w, int(c.G))
		w.WriteByte(';')
		writeInt(w, int(c.B))
		w.WriteByte('m')
		return
	}
	if background {
		w.Write(csiBg256)
	} else {
		w.Write(csiFg256)
	}
	writeInt(w, int(RGBTo256(c)))
	w.WriteByte('m')
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiSGR0)
	w.Write(csiAutoWrapOn)
	w.Write(csiRIS)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
