package terminal

import "io"

// Backend abstracts the byte streams and platform controls behind the ANSI driver
type Backend interface {
	// Lifecycle
	Init() error
	Fini()

	// Size returns the current window dimensions
	Size() (width, height int)

	// Write writes raw bytes to the terminal output
	Write(p []byte) (int, error)

	// Read blocks until input is available, the backend is finalized, or an error occurs
	Read(p []byte) (int, error)
}

// streamBackend drives arbitrary reader/writer pairs (pipes, files, test buffers)
type streamBackend struct {
	in            io.Reader
	out           io.Writer
	width, height int
}

func newStreamBackend(in io.Reader, out io.Writer) *streamBackend {
	return &streamBackend{in: in, out: out, width: 80, height: 24}
}

func (b *streamBackend) Init() error { return nil }

func (b *streamBackend) Fini() {}

func (b *streamBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *streamBackend) Write(p []byte) (int, error) {
	return b.out.Write(p)
}

func (b *streamBackend) Read(p []byte) (int, error) {
	if b.in == nil {
		return 0, io.EOF
	}
	return b.in.Read(p)
}

// resize records the size requested through the stream, which has no window of its own
func (b *streamBackend) resize(width, height int) {
	b.width, b.height = width, height
}
