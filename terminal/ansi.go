package terminal

import (
	"bufio"

	"github.com/charmbracelet/x/ansi"
)

// Pre-allocated ANSI sequence fragments (avoid allocations during render)
var (
	csi      = []byte("\x1b[")
	csiSGR0  = []byte(ansi.ResetStyle)
	csiClear = []byte(ansi.EraseEntireScreen + ansi.CursorHomePosition)
	csiRIS   = []byte("\x1bc") // Reset to Initial State (emergency)

	// Cursor control
	csiCursorHide = []byte(ansi.HideCursor)
	csiCursorShow = []byte(ansi.ShowCursor)

	// Screen modes
	csiAltScreenEnter = []byte(ansi.SetAltScreenSaveCursorMode)
	csiAltScreenExit  = []byte(ansi.ResetAltScreenSaveCursorMode)
	// DECAWM: Auto-Wrap Mode
	// ?7l disables wrapping (cursor sticks at right edge), preventing scroll when writing to bottom-right corner
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")

	// Color prefixes
	csiFg256 = []byte("\x1b[38;5;") // followed by N m
	csiBg256 = []byte("\x1b[48;5;") // followed by N m
	csiFgRGB = []byte("\x1b[38;2;") // followed by R;G;B m
	csiBgRGB = []byte("\x1b[48;2;") // followed by R;G;B m
)

// writeInt writes an integer without allocation
// Optimized for terminal values (0-255 common, 0-999 typical max)
func writeInt(w *bufio.Writer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		w.WriteByte(byte(n/10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	if n < 1000 {
		w.WriteByte(byte(n/100) + '0')
		w.WriteByte(byte(n/10%10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	var buf [20]byte
	i := len(buf) - 1
	for n > 0 {
		buf[i] = byte(n%10) + '0'
		n /= 10
		i--
	}
	w.Write(buf[i+1:])
}

// writeCursorPos writes CUP (0-indexed input)
func writeCursorPos(w *bufio.Writer, x, y int) {
	w.Write(csi)
	writeInt(w, y+1)
	w.WriteByte(';')
	writeInt(w, x+1)
	w.WriteByte('H')
}

// writeWindowSize writes XTWINOPS 8: resize text area to rows x cols
func writeWindowSize(w *bufio.Writer, cols, rows int) {
	w.Write(csi)
	w.WriteByte('8')
	w.WriteByte(';')
	writeInt(w, rows)
	w.WriteByte(';')
	writeInt(w, cols)
	w.WriteByte('t')
}
