package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/framediff/frame"
	"github.com/lixenwraith/framediff/terminal"
)

const (
	DefaultWidth      = 80
	DefaultHeight     = 24
	DefaultFPS        = 20
	DefaultForeground = "white"
	DefaultBackground = "black"
	DefaultColorMode  = "auto"
	DefaultDriver     = DriverANSI

	MaxFPS = 240
)

// Driver names
const (
	DriverANSI  = "ansi"
	DriverTcell = "tcell"
)

type Config struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Foreground string `yaml:"foreground"`
	Background string `yaml:"background"`
	ColorMode  string `yaml:"color_mode"`
	Driver     string `yaml:"driver"`
	FPS        int    `yaml:"fps"`
	Debug      bool   `yaml:"debug"`

	// Keys lists key names per action; actions missing from a file keep their defaults
	Keys map[string][]string `yaml:"keys"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Foreground: DefaultForeground,
		Background: DefaultBackground,
		ColorMode:  DefaultColorMode,
		Driver:     DefaultDriver,
		FPS:        DefaultFPS,
		Keys:       DefaultKeys(),
	}
}

// Load reads path over the defaults; keys missing from the file keep their default
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as yaml; a saved file loads back to the same config
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode writes cfg as yaml to w
func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 || c.FPS > MaxFPS {
		return fmt.Errorf("fps %d out of range 1..%d", c.FPS, MaxFPS)
	}
	if _, ok := terminal.ParseColorMode(c.ColorMode); !ok {
		return fmt.Errorf("unknown color mode %q", c.ColorMode)
	}
	switch strings.ToLower(c.Driver) {
	case DriverANSI, DriverTcell:
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if _, _, err := c.Colors(); err != nil {
		return err
	}
	if _, err := c.KeyBindings(); err != nil {
		return err
	}
	return nil
}

// Colors resolves the default foreground and background
func (c *Config) Colors() (fg, bg frame.RGB, err error) {
	if fg, err = ParseColor(c.Foreground); err != nil {
		return fg, bg, fmt.Errorf("foreground: %w", err)
	}
	if bg, err = ParseColor(c.Background); err != nil {
		return fg, bg, fmt.Errorf("background: %w", err)
	}
	return fg, bg, nil
}

// Mode resolves the configured color mode, detecting from the environment for "auto"
func (c *Config) Mode() terminal.ColorMode {
	mode, _ := terminal.ParseColorMode(c.ColorMode)
	return mode
}

// ParseColor accepts a console color name ("darkcyan") or a hex triplet ("#1e90ff")
func ParseColor(s string) (frame.RGB, error) {
	if rgb, ok := frame.NamedColor(s); ok {
		return rgb, nil
	}
	hex := strings.TrimSpace(s)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	col, err := colorful.Hex(hex)
	if err != nil {
		return frame.RGB{}, fmt.Errorf("unknown color %q", s)
	}
	r, g, b := col.RGB255()
	return frame.RGB{R: r, G: g, B: b}, nil
}
