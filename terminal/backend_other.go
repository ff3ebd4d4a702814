//go:build !unix

package terminal

import "os"

func newBackend() Backend {
	return newStreamBackend(os.Stdin, os.Stdout)
}

func resetTerminalMode() {}
