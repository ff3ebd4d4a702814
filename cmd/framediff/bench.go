package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/framediff/config"
	"github.com/lixenwraith/framediff/dashboard"
	"github.com/lixenwraith/framediff/frame"
	"github.com/lixenwraith/framediff/render"
	"github.com/lixenwraith/framediff/terminal"
)

var (
	benchHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).Padding(0, 1)
	benchCellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	benchBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	benchNoteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// benchResult summarizes one render mode over the same frame sequence
type benchResult struct {
	Mode    string
	Frames  int
	Cells   int
	Bytes   int64
	Elapsed time.Duration
	PerTick []float64
	Screen  *frame.Frame
}

// countingWriter counts bytes the ANSI driver would send to a terminal
type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

func runBench(cmd *cobra.Command, args []string) error {
	if ticks < 0 {
		return fmt.Errorf("invalid --ticks %d", ticks)
	}
	src, err := benchSource(cfg, args)
	if err != nil {
		return err
	}

	var results []benchResult
	for _, full := range []bool{false, true} {
		r, err := benchMode(cfg, src, ticks, full)
		if err != nil {
			return err
		}
		results = append(results, r)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderBenchTable(results))
	fmt.Fprintln(out, benchSummary(results[0], results[1]))
	if len(results[0].PerTick) > 1 {
		fmt.Fprintln(out, asciigraph.Plot(results[0].PerTick,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("cells written per frame (incremental)"),
		))
	}
	return nil
}

// benchSource cycles the given frame files, or the demo dashboard without files
func benchSource(cfg *config.Config, paths []string) (dashboard.Source, error) {
	if len(paths) == 0 {
		return demoSource(cfg), nil
	}
	fg, bg, err := cfg.Colors()
	if err != nil {
		return nil, err
	}
	frames := make([]*frame.Frame, 0, len(paths))
	for _, p := range paths {
		f, err := frame.LoadFile(p, cfg.Width, cfg.Height, frame.Blank(fg, bg))
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return dashboard.NewCycle(frames...), nil
}

// benchMode renders n ticks of src twice in lockstep: through a Recorder for
// cell counts and final screen content, and through the ANSI encoder for bytes
func benchMode(cfg *config.Config, src dashboard.Source, n int, full bool) (benchResult, error) {
	fg, bg, err := cfg.Colors()
	if err != nil {
		return benchResult{}, err
	}
	opts := render.Options{Width: cfg.Width, Height: cfg.Height, Foreground: fg, Background: bg}

	rec := terminal.NewRecorder(cfg.Width, cfg.Height+1)
	rec.SetRecording(false)
	recEng, err := render.New(rec, opts)
	if err != nil {
		return benchResult{}, err
	}

	var cw countingWriter
	ansiEng, err := render.New(terminal.NewANSI(nil, &cw, cfg.Mode()), opts)
	if err != nil {
		return benchResult{}, err
	}
	setupBytes := cw.n

	res := benchResult{Mode: "incremental", PerTick: make([]float64, 0, n)}
	if full {
		res.Mode = "full"
	}

	var elapsed time.Duration
	for tick := 0; tick < n; tick++ {
		f := src.Frame(tick)
		before := rec.Writes()

		start := time.Now()
		if full {
			err = ansiEng.RenderFull(f)
		} else {
			err = ansiEng.RenderIncremental(f)
		}
		elapsed += time.Since(start)
		if err != nil {
			return res, fmt.Errorf("%s frame %d: %w", res.Mode, tick, err)
		}

		if full {
			err = recEng.RenderFull(f)
		} else {
			err = recEng.RenderIncremental(f)
		}
		if err != nil {
			return res, fmt.Errorf("%s frame %d: %w", res.Mode, tick, err)
		}
		res.PerTick = append(res.PerTick, float64(rec.Writes()-before))
	}

	res.Frames = n
	res.Cells = ansiEng.Stats().Writes
	res.Bytes = cw.n - setupBytes
	res.Elapsed = elapsed
	res.Screen = rec.Region(cfg.Width, cfg.Height)
	return res, nil
}

func renderBenchTable(results []benchResult) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(benchBorderStyle).
		Headers("mode", "frames", "cells", "cells/frame", "bytes", "time").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return benchHeaderStyle
			}
			return benchCellStyle
		})

	for _, r := range results {
		perFrame := 0.0
		if r.Frames > 0 {
			perFrame = float64(r.Cells) / float64(r.Frames)
		}
		t.Row(
			r.Mode,
			strconv.Itoa(r.Frames),
			strconv.Itoa(r.Cells),
			strconv.FormatFloat(perFrame, 'f', 1, 64),
			strconv.FormatInt(r.Bytes, 10),
			r.Elapsed.Round(time.Microsecond).String(),
		)
	}
	return t.String()
}

// benchSummary reports the write savings and whether both modes ended on the same screen
func benchSummary(inc, full benchResult) string {
	saved := 0.0
	if full.Cells > 0 {
		saved = 100 * (1 - float64(inc.Cells)/float64(full.Cells))
	}
	match := "screens match"
	if !inc.Screen.Equal(full.Screen) {
		match = "SCREENS DIFFER"
	}
	return benchNoteStyle.Render(fmt.Sprintf("incremental wrote %.1f%% fewer cells; %s", saved, match))
}
