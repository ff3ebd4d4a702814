//go:build unix

package terminal

import (
	"fmt"
	"os"
	"sync"

	"github.com/muesli/cancelreader"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type unixBackend struct {
	inMu    sync.Mutex // in is swapped by Init/Fini while the key goroutine reads
	in      cancelreader.CancelReader
	out     *os.File
	inFd    int
	outFd   int
	oldTerm *term.State
}

func newBackend() Backend {
	return &unixBackend{
		out:   os.Stdout,
		inFd:  int(os.Stdin.Fd()),
		outFd: int(os.Stdout.Fd()),
	}
}

func (b *unixBackend) Init() error {
	if !term.IsTerminal(b.inFd) {
		return fmt.Errorf("stdin is not a terminal")
	}

	old, err := term.MakeRaw(b.inFd)
	if err != nil {
		return err
	}
	b.oldTerm = old

	in, err := cancelreader.NewReader(os.Stdin)
	if err != nil {
		term.Restore(b.inFd, old)
		b.oldTerm = nil
		return fmt.Errorf("stdin reader: %w", err)
	}
	b.inMu.Lock()
	b.in = in
	b.inMu.Unlock()
	return nil
}

func (b *unixBackend) Fini() {
	b.inMu.Lock()
	in := b.in
	b.in = nil
	b.inMu.Unlock()
	if in != nil {
		// Unblocks a pending ReadKey with cancelreader.ErrCanceled
		in.Cancel()
		in.Close()
	}
	if b.oldTerm != nil {
		term.Restore(b.inFd, b.oldTerm)
		b.oldTerm = nil
	}
}

func (b *unixBackend) Size() (int, int) {
	return getTerminalSize(b.outFd)
}

func (b *unixBackend) Write(p []byte) (int, error) {
	return b.out.Write(p)
}

func (b *unixBackend) Read(p []byte) (int, error) {
	b.inMu.Lock()
	in := b.in
	b.inMu.Unlock()
	if in == nil {
		return 0, cancelreader.ErrCanceled
	}
	for {
		n, err := in.Read(p)
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		return n, err
	}
}

// getTerminalSize returns the terminal size for a given fd
func getTerminalSize(fd int) (int, int) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 80, 24 // Fallback
	}
	return int(ws.Col), int(ws.Row)
}

// resetTerminalMode attempts to restore terminal to cooked mode
// Best-effort for crash recovery; errors ignored
func resetTerminalMode() {
	// Try to restore via /dev/tty (works even if stdin redirected)
	if tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		defer tty.Close()
		fd := int(tty.Fd())
		if termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios); err == nil {
			termios.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
			termios.Iflag |= unix.ICRNL
			unix.IoctlSetTermios(fd, ioctlSetTermios, termios)
		}
	}
}
