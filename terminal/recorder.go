package terminal

import (
	"fmt"
	"io"
	"sync"

	"github.com/lixenwraith/framediff/frame"
)

// OpKind identifies a recorded driver call
type OpKind uint8

const (
	OpCursor OpKind = iota
	OpForeground
	OpBackground
	OpWrite
	OpClear
	OpWindowSize
	OpCursorVisible
	OpFlush
)

// Op is one recorded driver call
type Op struct {
	Kind  OpKind
	X, Y  int // OpCursor, OpWindowSize (X=cols, Y=rows), OpWrite position
	Color frame.RGB
	Rune  rune
	On    bool // OpCursorVisible
}

// Recorder is a headless Driver that keeps a virtual screen and counts writes
type Recorder struct {
	mu sync.Mutex

	screen        []frame.Cell
	width, height int

	cursorX, cursorY int
	fg, bg           frame.RGB
	cursorVisible    bool

	writes  int
	ops     []Op
	record  bool
	keys    []KeyEvent
	failErr error
}

// NewRecorder creates a recorder whose window starts at width x height
func NewRecorder(width, height int) *Recorder {
	r := &Recorder{
		fg:            frame.White,
		bg:            frame.Black,
		cursorVisible: true,
		record:        true,
	}
	r.resize(width, height)
	return r
}

// SetRecording toggles the op log; write counting is unaffected
func (r *Recorder) SetRecording(on bool) {
	r.mu.Lock()
	r.record = on
	r.mu.Unlock()
}

// FailWrites makes every following WriteChar and Flush return err; nil clears it
func (r *Recorder) FailWrites(err error) {
	r.mu.Lock()
	r.failErr = err
	r.mu.Unlock()
}

// QueueKeys appends keys for ReadKey to return in order
func (r *Recorder) QueueKeys(keys ...KeyEvent) {
	r.mu.Lock()
	r.keys = append(r.keys, keys...)
	r.mu.Unlock()
}

func (r *Recorder) resize(width, height int) {
	r.width, r.height = width, height
	r.screen = make([]frame.Cell, width*height)
	for i := range r.screen {
		r.screen[i] = frame.Blank(r.fg, r.bg)
	}
}

func (r *Recorder) log(op Op) {
	if r.record {
		r.ops = append(r.ops, op)
	}
}

// SetCursor positions the cursor (0-indexed)
func (r *Recorder) SetCursor(x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursorX, r.cursorY = x, y
	r.log(Op{Kind: OpCursor, X: x, Y: y})
	return nil
}

// SetForeground sets the current foreground
func (r *Recorder) SetForeground(c frame.RGB) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fg = c
	r.log(Op{Kind: OpForeground, Color: c})
	return nil
}

// SetBackground sets the current background
func (r *Recorder) SetBackground(c frame.RGB) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bg = c
	r.log(Op{Kind: OpBackground, Color: c})
	return nil
}

// WriteChar stores ch at the cursor in the current colors and advances the cursor
func (r *Recorder) WriteChar(ch rune) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	x, y := r.cursorX, r.cursorY
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return fmt.Errorf("write at (%d,%d) outside %dx%d screen", x, y, r.width, r.height)
	}
	r.screen[y*r.width+x] = frame.Cell{Rune: ch, Fg: r.fg, Bg: r.bg}
	r.writes++
	r.cursorX++
	r.log(Op{Kind: OpWrite, X: x, Y: y, Rune: ch, Color: r.fg})
	return nil
}

// Clear fills the screen with spaces in the current colors
func (r *Recorder) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.screen {
		r.screen[i] = frame.Blank(r.fg, r.bg)
	}
	r.cursorX, r.cursorY = 0, 0
	r.log(Op{Kind: OpClear})
	return nil
}

// SetWindowSize resizes the virtual screen, discarding its content
func (r *Recorder) SetWindowSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid window size %dx%d", w, h)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resize(w, h)
	r.log(Op{Kind: OpWindowSize, X: w, Y: h})
	return nil
}

// SetCursorVisible records cursor visibility
func (r *Recorder) SetCursorVisible(visible bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursorVisible = visible
	r.log(Op{Kind: OpCursorVisible, On: visible})
	return nil
}

// Size returns the virtual window size
func (r *Recorder) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// ReadKey returns the next queued key, io.EOF when none remain
func (r *Recorder) ReadKey() (KeyEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.keys) == 0 {
		return KeyEvent{}, io.EOF
	}
	ev := r.keys[0]
	r.keys = r.keys[1:]
	return ev, nil
}

// Flush records a flush
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.log(Op{Kind: OpFlush})
	return nil
}

// Writes returns the number of characters written since creation or ResetWrites
func (r *Recorder) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// ResetWrites zeroes the write counter and clears the op log
func (r *Recorder) ResetWrites() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = 0
	r.ops = r.ops[:0]
}

// Ops returns a copy of the op log
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Cursor returns the cursor position and visibility
func (r *Recorder) Cursor() (x, y int, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursorX, r.cursorY, r.cursorVisible
}

// Colors returns the current foreground and background
func (r *Recorder) Colors() (fg, bg frame.RGB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fg, r.bg
}

// Region snapshots the top-left width x height area of the virtual screen
func (r *Recorder) Region(width, height int) *frame.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := frame.New(width, height, frame.Cell{})
	for y := 0; y < height && y < r.height; y++ {
		for x := 0; x < width && x < r.width; x++ {
			f.Set(frame.Pt(x, y), r.screen[y*r.width+x])
		}
	}
	return f
}
