// Package dashboard produces animated frames for exercising the render engine
package dashboard

import (
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/framediff/frame"
)

// Source yields the frame to show at a given tick
type Source interface {
	Frame(tick int) *frame.Frame
}

// Plot draws a scrolling sine series as an asciigraph line plot
type Plot struct {
	width, height int
	fg, bg        frame.RGB
	caption       string
	data          []float64
}

// NewPlot creates a plot filling a width x height frame
func NewPlot(width, height int, fg, bg frame.RGB) *Plot {
	return &Plot{
		width:   width,
		height:  height,
		fg:      fg,
		bg:      bg,
		caption: "sin(t)",
	}
}

// Frame renders the series shifted by tick samples
func (p *Plot) Frame(tick int) *frame.Frame {
	f := frame.New(p.width, p.height, frame.Blank(p.fg, p.bg))

	// Axis labels take roughly 8 columns; caption takes one row
	graphW := max(p.width-10, 4)
	graphH := max(p.height-2, 1)

	if cap(p.data) < graphW {
		p.data = make([]float64, graphW)
	}
	p.data = p.data[:graphW]
	for i := range p.data {
		p.data[i] = math.Sin(float64(i+tick) * 0.2)
	}

	graph := asciigraph.Plot(p.data,
		asciigraph.Height(graphH),
		asciigraph.Width(graphW),
		asciigraph.Caption(p.caption),
	)
	for y, line := range strings.Split(graph, "\n") {
		if y >= p.height {
			break
		}
		f.DrawString(frame.Pt(0, y), line, p.fg, p.bg)
	}
	return f
}

// Banner bounces a line of text around the frame, cycling its hue
type Banner struct {
	width, height int
	text          string
	bg            frame.RGB
}

// NewBanner creates a banner source
func NewBanner(width, height int, text string, bg frame.RGB) *Banner {
	return &Banner{width: width, height: height, text: text, bg: bg}
}

// Frame places the text at its tick position
func (b *Banner) Frame(tick int) *frame.Frame {
	f := frame.New(b.width, b.height, frame.Blank(frame.White, b.bg))
	x, y := b.Position(tick)
	f.DrawString(frame.Pt(x, y), b.text, Hue(tick), b.bg)
	return f
}

// Position returns the top-left text position at tick
func (b *Banner) Position(tick int) (x, y int) {
	return bounce(tick, b.width-len([]rune(b.text))), bounce(tick, b.height-1)
}

// Hue returns a saturated color rotating 6 degrees per tick
func Hue(tick int) frame.RGB {
	r, g, bl := colorful.Hsv(float64((tick*6)%360), 0.7, 1).RGB255()
	return frame.RGB{R: r, G: g, B: bl}
}

// bounce maps tick onto 0..n and back
func bounce(tick, n int) int {
	if n <= 0 {
		return 0
	}
	m := tick % (2 * n)
	if m > n {
		return 2*n - m
	}
	return m
}

// Cycle repeats a fixed list of frames
type Cycle struct {
	frames []*frame.Frame
}

// NewCycle creates a source over frames; it must not be empty
func NewCycle(frames ...*frame.Frame) *Cycle {
	return &Cycle{frames: frames}
}

// Frame returns frames[tick mod len]
func (c *Cycle) Frame(tick int) *frame.Frame {
	return c.frames[tick%len(c.frames)]
}

// Len returns the number of frames in the cycle
func (c *Cycle) Len() int {
	return len(c.frames)
}

// Overlay draws the non-space cells of Top over Base
type Overlay struct {
	Base, Top Source
}

// Frame composes Top over Base; Base determines the frame size
func (o Overlay) Frame(tick int) *frame.Frame {
	dst := o.Base.Frame(tick).Clone()
	top := o.Top.Frame(tick)
	w, h := min(dst.Width(), top.Width()), min(dst.Height(), top.Height())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c := top.At(x, y); c.Rune != ' ' {
				dst.Set(frame.Pt(x, y), c)
			}
		}
	}
	return dst
}
