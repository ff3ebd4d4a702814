// Package terminal provides the terminal drivers used by the frame renderer.
//
// Drivers:
//   - ANSI: direct escape sequences on a raw tty (or any stream), true color or 256-color
//   - Tcell: a tcell.Screen, including tcell's simulation screen
//   - Recorder: headless virtual screen that counts writes
//
// The ANSI driver bypasses terminfo/termcap and emits xterm-compatible sequences.
// Target environments: Linux, macOS, BSDs.
package terminal
