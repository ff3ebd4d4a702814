package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lixenwraith/framediff/config"
	"github.com/lixenwraith/framediff/dashboard"
	"github.com/lixenwraith/framediff/render"
	"github.com/lixenwraith/framediff/terminal"
)

// loopAction is what a key press asks the render loop to do
type loopAction int

const (
	actionNone loopAction = iota
	actionQuit
	actionRedraw
	actionPause
)

// keyAction maps a key press to a loop action through the configured bindings
// Ctrl+C quits when nothing else claims it
func keyAction(keys config.Bindings, ev terminal.KeyEvent) loopAction {
	switch keys.Action(ev) {
	case config.ActionQuit:
		return actionQuit
	case config.ActionRedraw:
		return actionRedraw
	case config.ActionPause:
		return actionPause
	case "":
		if ev.Key == terminal.KeyCtrlC {
			return actionQuit
		}
	}
	return actionNone
}

// renderLoop renders src at fps until ctx ends or a quit key arrives
// Redraw invalidates the engine so the next tick rewrites every cell
func renderLoop(ctx context.Context, eng *render.Engine, src dashboard.Source, fps int, bindings config.Bindings, keys <-chan terminal.KeyEvent) error {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	tick := 0
	paused := false
	if err := eng.RenderIncremental(src.Frame(tick)); err != nil {
		return fmt.Errorf("frame %d: %w", tick, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-keys:
			switch keyAction(bindings, ev) {
			case actionQuit:
				log.Printf("[main] quit on %s after %d frames", ev, tick)
				return nil
			case actionRedraw:
				eng.Invalidate()
				if err := eng.RenderIncremental(src.Frame(tick)); err != nil {
					return fmt.Errorf("redraw frame %d: %w", tick, err)
				}
			case actionPause:
				paused = !paused
			}

		case <-ticker.C:
			if paused {
				continue
			}
			tick++
			if err := eng.RenderIncremental(src.Frame(tick)); err != nil {
				return fmt.Errorf("frame %d: %w", tick, err)
			}
		}
	}
}
