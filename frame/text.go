package frame

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Decode builds a width x height frame from a plain-text source
//
// Each row consumes exactly width bytes positionally, one cell per byte, colored
// like blank. The rest of the line up to and including the next '\n' is then
// skipped. A source that ends on a row boundary leaves the remaining rows blank.
// A source that ends partway through a row fails with ErrTruncatedInput.
func Decode(r io.Reader, width, height int, blank Cell) (*Frame, error) {
	f := New(width, height, blank)
	if width == 0 {
		return f, nil
	}
	br := bufio.NewReader(r)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b, err := br.ReadByte()
			if err != nil {
				if errors.Is(err, io.EOF) {
					if x == 0 {
						return f, nil
					}
					return nil, fmt.Errorf("row %d ended after %d of %d bytes: %w", y, x, width, ErrTruncatedInput)
				}
				return nil, fmt.Errorf("read row %d: %w", y, err)
			}
			f.cells[y*width+x] = Cell{Rune: rune(b), Fg: blank.Fg, Bg: blank.Bg}
		}

		// Skip unconsumed row content through the terminator
		if _, err := br.ReadSlice('\n'); err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return f, nil
			case errors.Is(err, bufio.ErrBufferFull):
				if err := skipLine(br); err != nil {
					if errors.Is(err, io.EOF) {
						return f, nil
					}
					return nil, fmt.Errorf("skip row %d: %w", y, err)
				}
			default:
				return nil, fmt.Errorf("skip row %d: %w", y, err)
			}
		}
	}
	return f, nil
}

// skipLine discards bytes through the next '\n' for lines longer than the reader buffer
func skipLine(br *bufio.Reader) error {
	for {
		_, err := br.ReadSlice('\n')
		if err == nil {
			return nil
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

// LoadFile decodes the text frame stored at path
func LoadFile(path string, width, height int, blank Cell) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := Decode(file, width, height, blank)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return f, nil
}
