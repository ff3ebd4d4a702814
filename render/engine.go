package render

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/lixenwraith/framediff/frame"
	"github.com/lixenwraith/framediff/terminal"
)

// ErrClosed is returned by render calls after Close
var ErrClosed = errors.New("render engine closed")

// Options configures an Engine
type Options struct {
	Width      int
	Height     int
	Foreground frame.RGB
	Background frame.RGB
}

// Stats counts engine activity
type Stats struct {
	Renders     int // RenderIncremental calls that succeeded
	FullRenders int // RenderFull calls that succeeded, including invalidated incrementals
	Writes      int // Cells written in total
	LastWrites  int // Cells written by the most recent successful render
}

// Engine renders frames through a terminal driver, writing only cells that
// differ from the last rendered frame.
//
// Row Height of the window is reserved as the park row: the cursor rests at
// (0, Height) between writes so it never sits inside rendered content.
//
// An Engine is single-writer: render calls must come from one goroutine.
type Engine struct {
	drv    terminal.Driver
	width  int
	height int
	fg, bg frame.RGB
	blank  frame.Cell

	// Exclusively owned; replaced by copy after every successful render
	last    *frame.Frame
	changes []frame.Point
	stale   bool

	savedW, savedH int
	closed         bool
	stats          Stats
}

// New sets up the terminal for a width x height grid and returns the engine
// The window is sized to Height+1 rows, the cursor hidden and the screen cleared
// to the default background
func New(drv terminal.Driver, opts Options) (*Engine, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid engine size %dx%d", opts.Width, opts.Height)
	}

	e := &Engine{
		drv:    drv,
		width:  opts.Width,
		height: opts.Height,
		fg:     opts.Foreground,
		bg:     opts.Background,
		blank:  frame.Blank(opts.Foreground, opts.Background),
	}
	e.savedW, e.savedH = drv.Size()

	if err := e.setup(); err != nil {
		return nil, fmt.Errorf("engine setup: %w", err)
	}
	e.last = frame.New(e.width, e.height, e.blank)

	log.Printf("[render] engine %dx%d ready (window was %dx%d)", e.width, e.height, e.savedW, e.savedH)
	return e, nil
}

func (e *Engine) setup() error {
	if err := e.drv.SetCursorVisible(false); err != nil {
		return err
	}
	if err := e.drv.SetWindowSize(e.width, e.height+1); err != nil {
		return err
	}
	if err := e.resetColors(); err != nil {
		return err
	}
	// The retained blank frame is only truthful once the screen shows it
	if err := e.drv.Clear(); err != nil {
		return err
	}
	if err := e.drv.SetCursor(0, e.height); err != nil {
		return err
	}
	return e.drv.Flush()
}

// Width returns the number of addressable columns
func (e *Engine) Width() int {
	return e.width
}

// Height returns the number of addressable rows, excluding the park row
func (e *Engine) Height() int {
	return e.height
}

// Blank returns a new engine-sized frame of spaces in the default colors
func (e *Engine) Blank() *frame.Frame {
	return frame.New(e.width, e.height, e.blank)
}

// Last returns a copy of the last rendered frame
func (e *Engine) Last() *frame.Frame {
	return e.last.Clone()
}

// Stats returns activity counters
func (e *Engine) Stats() Stats {
	return e.stats
}

// WriteCellAt writes a single cell at p and parks the cursor
// The retained frame is not updated; the next incremental render diffs against
// what the engine last rendered, not against this write
func (e *Engine) WriteCellAt(c frame.Cell, p frame.Point) error {
	if e.closed {
		return ErrClosed
	}
	if p.X < 0 || p.X >= e.width || p.Y < 0 || p.Y >= e.height {
		return fmt.Errorf("write (%d,%d) in %dx%d engine: %w", p.X, p.Y, e.width, e.height, frame.ErrOutOfBounds)
	}
	if err := e.writeCell(c, p); err != nil {
		return err
	}
	return e.drv.Flush()
}

// writeCell positions, colors and writes one cell, then parks the cursor and
// restores default colors so no write depends on state left by another
func (e *Engine) writeCell(c frame.Cell, p frame.Point) error {
	if err := e.drv.SetCursor(p.X, p.Y); err != nil {
		return err
	}
	if err := e.drv.SetForeground(c.Fg); err != nil {
		return err
	}
	if err := e.drv.SetBackground(c.Bg); err != nil {
		return err
	}
	if err := e.drv.WriteChar(c.Rune); err != nil {
		return err
	}
	if err := e.drv.SetCursor(0, e.height); err != nil {
		return err
	}
	return e.resetColors()
}

func (e *Engine) resetColors() error {
	if err := e.drv.SetForeground(e.fg); err != nil {
		return err
	}
	return e.drv.SetBackground(e.bg)
}

// prepare checks f against the engine bounds and returns an engine-sized frame
// Smaller frames are anchored at the origin and padded with blank cells
func (e *Engine) prepare(f *frame.Frame) (*frame.Frame, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if f.Width() > e.width || f.Height() > e.height {
		return nil, fmt.Errorf("frame %dx%d exceeds engine %dx%d: %w", f.Width(), f.Height(), e.width, e.height, frame.ErrOutOfBounds)
	}
	if f.Width() == e.width && f.Height() == e.height {
		return f, nil
	}
	return f.Pad(e.width, e.height, e.blank)
}

// Diff returns the positions the next RenderIncremental of f would write:
// the change set against the last rendered frame, or every cell after Invalidate
func (e *Engine) Diff(f *frame.Frame) ([]frame.Point, error) {
	next, err := e.prepare(f)
	if err != nil {
		return nil, err
	}
	if e.stale {
		all := make([]frame.Point, 0, e.width*e.height)
		for y := 0; y < e.height; y++ {
			for x := 0; x < e.width; x++ {
				all = append(all, frame.Pt(x, y))
			}
		}
		return all, nil
	}
	return ChangeSet(e.last, next), nil
}

// RenderIncremental writes the cells of f that differ from the last rendered
// frame, in row-major order, then retains a copy of f
//
// On a driver error the render is abandoned and the retained frame is left
// unchanged, so the next call diffs against the old baseline again
func (e *Engine) RenderIncremental(f *frame.Frame) error {
	if e.stale {
		return e.RenderFull(f)
	}

	next, err := e.prepare(f)
	if err != nil {
		return err
	}

	e.changes = appendChanges(e.changes[:0], e.last, next)
	for _, p := range e.changes {
		if err := e.writeCell(next.At(p.X, p.Y), p); err != nil {
			return fmt.Errorf("write (%d,%d): %w", p.X, p.Y, err)
		}
	}
	if err := e.drv.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	e.commit(next, len(e.changes))
	e.stats.Renders++
	return nil
}

// RenderFull writes every cell of f regardless of the last rendered frame
// Used after the terminal was cleared or altered externally; never per tick
func (e *Engine) RenderFull(f *frame.Frame) error {
	next, err := e.prepare(f)
	if err != nil {
		return err
	}

	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			if err := e.writeCell(next.At(x, y), frame.Point{X: x, Y: y}); err != nil {
				return fmt.Errorf("write (%d,%d): %w", x, y, err)
			}
		}
	}
	if err := e.drv.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	e.commit(next, e.width*e.height)
	e.stale = false
	e.stats.FullRenders++
	return nil
}

// commit replaces the retained frame with a copy of next
func (e *Engine) commit(next *frame.Frame, writes int) {
	if err := next.CopyInto(e.last); err != nil {
		// prepare guarantees engine-sized frames
		panic(err)
	}
	e.stats.Writes += writes
	e.stats.LastWrites = writes
}

// Invalidate marks the terminal content as unknown
// The next RenderIncremental rewrites every cell
func (e *Engine) Invalidate() {
	e.stale = true
}

// LoadFrame decodes a text frame of the given size in the engine's default colors
func (e *Engine) LoadFrame(r io.Reader, size frame.Point) (*frame.Frame, error) {
	return frame.Decode(r, size.X, size.Y, e.blank)
}

// LoadFrameFile decodes the text frame stored at path
func (e *Engine) LoadFrameFile(path string, size frame.Point) (*frame.Frame, error) {
	return frame.LoadFile(path, size.X, size.Y, e.blank)
}

// WaitForKey blocks for a key press, then re-parks the cursor
func (e *Engine) WaitForKey() (terminal.KeyEvent, error) {
	ev, err := e.drv.ReadKey()
	if err != nil {
		return ev, err
	}
	if e.closed {
		return ev, nil
	}
	if err := e.drv.SetCursor(0, e.height); err != nil {
		return ev, err
	}
	if err := e.resetColors(); err != nil {
		return ev, err
	}
	return ev, e.drv.Flush()
}

// Close restores the window size seen at construction, clears the screen and
// shows the cursor. Safe to call multiple times
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	if e.savedW > 0 && e.savedH > 0 {
		errs = append(errs, e.drv.SetWindowSize(e.savedW, e.savedH))
	}
	errs = append(errs,
		e.resetColors(),
		e.drv.Clear(),
		e.drv.SetCursorVisible(true),
		e.drv.Flush(),
	)

	log.Printf("[render] engine closed after %d incremental, %d full renders, %d writes",
		e.stats.Renders, e.stats.FullRenders, e.stats.Writes)
	return errors.Join(errs...)
}
