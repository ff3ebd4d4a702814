package frame

import "strings"

// RGB represents a 24-bit color
type RGB struct {
	R, G, B uint8
}

// Classic 16-color console palette
var (
	Black       = RGB{0, 0, 0}
	DarkBlue    = RGB{0, 0, 128}
	DarkGreen   = RGB{0, 128, 0}
	DarkCyan    = RGB{0, 128, 128}
	DarkRed     = RGB{128, 0, 0}
	DarkMagenta = RGB{128, 0, 128}
	DarkYellow  = RGB{128, 128, 0}
	Gray        = RGB{192, 192, 192}
	DarkGray    = RGB{128, 128, 128}
	Blue        = RGB{0, 0, 255}
	Green       = RGB{0, 255, 0}
	Cyan        = RGB{0, 255, 255}
	Red         = RGB{255, 0, 0}
	Magenta     = RGB{255, 0, 255}
	Yellow      = RGB{255, 255, 0}
	White       = RGB{255, 255, 255}
)

var namedColors = map[string]RGB{
	"black":       Black,
	"darkblue":    DarkBlue,
	"darkgreen":   DarkGreen,
	"darkcyan":    DarkCyan,
	"darkred":     DarkRed,
	"darkmagenta": DarkMagenta,
	"darkyellow":  DarkYellow,
	"gray":        Gray,
	"grey":        Gray,
	"darkgray":    DarkGray,
	"darkgrey":    DarkGray,
	"blue":        Blue,
	"green":       Green,
	"cyan":        Cyan,
	"red":         Red,
	"magenta":     Magenta,
	"yellow":      Yellow,
	"white":       White,
}

// NamedColor looks up a console palette color by name.
// Matching ignores case, spaces, dashes and underscores ("dark-blue" == "DarkBlue").
func NamedColor(name string) (RGB, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(name))
	c, ok := namedColors[key]
	return c, ok
}
