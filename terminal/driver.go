package terminal

import "github.com/lixenwraith/framediff/frame"

// Driver is the terminal surface consumed by the render engine
// Coordinates are 0-indexed; (x, y) is (column, row)
type Driver interface {
	// SetCursor moves the output position
	SetCursor(x, y int) error

	// SetForeground and SetBackground change the current color attributes
	SetForeground(c frame.RGB) error
	SetBackground(c frame.RGB) error

	// WriteChar writes r at the cursor in the current colors and advances the cursor
	WriteChar(r rune) error

	// Clear fills the screen with the current background color
	Clear() error

	// SetWindowSize requests a window/buffer of w columns and h rows
	SetWindowSize(w, h int) error

	// SetCursorVisible shows or hides the cursor
	SetCursorVisible(visible bool) error

	// Size returns the current window dimensions
	Size() (w, h int)

	// ReadKey blocks until a key is available
	ReadKey() (KeyEvent, error)

	// Flush pushes buffered output to the terminal
	Flush() error
}

// KeyEvent is a decoded key press
type KeyEvent struct {
	Key       Key
	Rune      rune // For KeyRune
	Modifiers Modifier
}

var (
	_ Driver = (*ANSI)(nil)
	_ Driver = (*Tcell)(nil)
	_ Driver = (*Recorder)(nil)
)
