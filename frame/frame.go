package frame

import (
	"errors"
	"fmt"

	"github.com/mattn/go-runewidth"
)

var (
	// ErrOutOfBounds reports a position or frame size outside the addressable grid
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrDimensionMismatch reports a copy between differently sized frames
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrTruncatedInput reports a text frame source ending in the middle of a row
	ErrTruncatedInput = errors.New("truncated input")
)

// Point is a cell coordinate, X is the column and Y the row
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{x, y}
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Cell is one character with its foreground and background color
// Cells are plain values and compare with ==
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
}

// Blank returns a space cell in the given colors
func Blank(fg, bg RGB) Cell {
	return Cell{Rune: ' ', Fg: fg, Bg: bg}
}

// Frame is a fixed-size grid of cells
// Storage is row-major: cells[y*width + x], owned exclusively by the frame
type Frame struct {
	cells  []Cell
	width  int
	height int
}

// New creates a width x height frame with every cell set to fill
func New(width, height int, fill Cell) *Frame {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("frame: negative size %dx%d", width, height))
	}
	f := &Frame{
		cells:  make([]Cell, width*height),
		width:  width,
		height: height,
	}
	f.Fill(fill)
	return f
}

// Width returns the number of columns
func (f *Frame) Width() int {
	return f.width
}

// Height returns the number of rows
func (f *Frame) Height() int {
	return f.height
}

// Size returns the frame dimensions as a point
func (f *Frame) Size() Point {
	return Point{X: f.width, Y: f.height}
}

// InBounds reports whether p addresses a cell of the frame
func (f *Frame) InBounds(p Point) bool {
	return p.X >= 0 && p.X < f.width && p.Y >= 0 && p.Y < f.height
}

// Get returns the cell at p
func (f *Frame) Get(p Point) (Cell, error) {
	if !f.InBounds(p) {
		return Cell{}, fmt.Errorf("get (%d,%d) in %dx%d frame: %w", p.X, p.Y, f.width, f.height, ErrOutOfBounds)
	}
	return f.cells[p.Y*f.width+p.X], nil
}

// Set stores c at p
func (f *Frame) Set(p Point, c Cell) error {
	if !f.InBounds(p) {
		return fmt.Errorf("set (%d,%d) in %dx%d frame: %w", p.X, p.Y, f.width, f.height, ErrOutOfBounds)
	}
	f.cells[p.Y*f.width+p.X] = c
	return nil
}

// At returns the cell at (x, y) without a bounds check; caller guarantees range
func (f *Frame) At(x, y int) Cell {
	return f.cells[y*f.width+x]
}

// Fill sets every cell to c using exponential copy
func (f *Frame) Fill(c Cell) {
	if len(f.cells) == 0 {
		return
	}
	f.cells[0] = c
	for filled := 1; filled < len(f.cells); filled *= 2 {
		copy(f.cells[filled:], f.cells[:filled])
	}
}

// CopyInto copies every cell into dst, which must have the same dimensions
// dst shares no storage with f afterwards
func (f *Frame) CopyInto(dst *Frame) error {
	if dst.width != f.width || dst.height != f.height {
		return fmt.Errorf("copy %dx%d into %dx%d: %w", f.width, f.height, dst.width, dst.height, ErrDimensionMismatch)
	}
	copy(dst.cells, f.cells)
	return nil
}

// Clone returns an independent copy of the frame
func (f *Frame) Clone() *Frame {
	dst := &Frame{
		cells:  make([]Cell, len(f.cells)),
		width:  f.width,
		height: f.height,
	}
	copy(dst.cells, f.cells)
	return dst
}

// Equal reports whether both frames have the same size and identical cells
// Frames of different size are unequal, never an error
func (f *Frame) Equal(other *Frame) bool {
	if other == nil || f.width != other.width || f.height != other.height {
		return false
	}
	for i := range f.cells {
		if f.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Pad returns a width x height frame with f placed at the origin and fill elsewhere
// When f already has that size the result is a clone
func (f *Frame) Pad(width, height int, fill Cell) (*Frame, error) {
	if f.width > width || f.height > height {
		return nil, fmt.Errorf("pad %dx%d to %dx%d: %w", f.width, f.height, width, height, ErrOutOfBounds)
	}
	if f.width == width && f.height == height {
		return f.Clone(), nil
	}
	dst := New(width, height, fill)
	for y := 0; y < f.height; y++ {
		copy(dst.cells[y*width:y*width+f.width], f.cells[y*f.width:(y+1)*f.width])
	}
	return dst, nil
}

// DrawString writes s left to right starting at p, clipped at the right edge
// Runes that do not occupy exactly one column are stored as '?' so each rune maps to one cell
// Returns the number of cells written
func (f *Frame) DrawString(p Point, s string, fg, bg RGB) int {
	if p.Y < 0 || p.Y >= f.height {
		return 0
	}
	n := 0
	x := p.X
	for _, r := range s {
		if x >= f.width {
			break
		}
		if x >= 0 {
			if runewidth.RuneWidth(r) != 1 {
				r = '?'
			}
			f.cells[p.Y*f.width+x] = Cell{Rune: r, Fg: fg, Bg: bg}
			n++
		}
		x++
	}
	return n
}

// String returns the runes of the frame, one line per row
func (f *Frame) String() string {
	buf := make([]rune, 0, (f.width+1)*f.height)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			buf = append(buf, f.cells[y*f.width+x].Rune)
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
