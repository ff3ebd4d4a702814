package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/framediff/config"
	"github.com/lixenwraith/framediff/dashboard"
	"github.com/lixenwraith/framediff/frame"
	"github.com/lixenwraith/framediff/render"
	"github.com/lixenwraith/framediff/terminal"
)

// session owns an initialized terminal driver and the engine drawing on it
type session struct {
	drv  terminal.Driver
	eng  *render.Engine
	fini func()
}

// openSession takes over the terminal with the configured driver
func openSession(cfg *config.Config) (*session, error) {
	fg, bg, err := cfg.Colors()
	if err != nil {
		return nil, err
	}

	var (
		drv  terminal.Driver
		fini func()
	)
	switch strings.ToLower(cfg.Driver) {
	case config.DriverTcell:
		t, err := terminal.OpenTcell()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tcell: %w", err)
		}
		drv, fini = t, t.Fini
	default:
		t, err := terminal.Open(cfg.Mode())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize terminal: %w", err)
		}
		log.Printf("[main] ansi driver, color mode %s", t.ColorMode())
		drv, fini = t, t.Fini
	}

	eng, err := render.New(drv, render.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Foreground: fg,
		Background: bg,
	})
	if err != nil {
		fini()
		return nil, err
	}
	return &session{drv: drv, eng: eng, fini: fini}, nil
}

// Close restores the terminal; the engine first, then the driver
func (s *session) Close() error {
	err := s.eng.Close()
	s.fini()
	return err
}

// loadFrames reads each path as an engine-sized text frame
func (s *session) loadFrames(paths []string) ([]*frame.Frame, error) {
	size := frame.Pt(s.eng.Width(), s.eng.Height())
	frames := make([]*frame.Frame, 0, len(paths))
	for _, p := range paths {
		f, err := s.eng.LoadFrameFile(p, size)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// runInteractive animates src until quit, interrupt or input failure
// Keys are read on their own goroutine; only the render loop touches the engine
func runInteractive(ctx context.Context, s *session, src dashboard.Source, cfg *config.Config) error {
	bindings, err := cfg.KeyBindings()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := terminal.NewKeyService(s.drv)
	keys.Start()
	defer keys.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case err := <-keys.Err():
			cancel()
			if errors.Is(err, io.EOF) || errors.Is(err, terminal.ErrScreenClosed) {
				return nil
			}
			return fmt.Errorf("read key: %w", err)
		case <-ctx.Done():
			return nil
		}
	})
	g.Go(func() error {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				crash("RENDER LOOP CRASHED", r)
			}
		}()
		return renderLoop(ctx, s.eng, src, cfg.FPS, bindings, keys.Events())
	})
	return g.Wait()
}

// resetTerminal is the panic-path restore
func resetTerminal() {
	terminal.EmergencyReset(os.Stdout)
}
