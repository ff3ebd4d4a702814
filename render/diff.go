package render

import (
	"fmt"

	"github.com/lixenwraith/framediff/frame"
)

// ChangeSet returns the positions where next differs from prev in row-major order
// (y outer, x inner). Both frames must have the same dimensions.
// Write order is observable on the terminal, so the order is part of the contract
func ChangeSet(prev, next *frame.Frame) []frame.Point {
	if prev.Width() != next.Width() || prev.Height() != next.Height() {
		panic(fmt.Sprintf("render: change set of %dx%d against %dx%d", next.Width(), next.Height(), prev.Width(), prev.Height()))
	}
	return appendChanges(nil, prev, next)
}

// appendChanges appends the change set to dst, reusing its capacity
func appendChanges(dst []frame.Point, prev, next *frame.Frame) []frame.Point {
	w, h := next.Width(), next.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if next.At(x, y) != prev.At(x, y) {
				dst = append(dst, frame.Point{X: x, Y: y})
			}
		}
	}
	return dst
}
