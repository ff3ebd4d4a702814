package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/framediff/config"
	"github.com/lixenwraith/framediff/dashboard"
	"github.com/lixenwraith/framediff/frame"
)

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := s.eng.LoadFrameFile(args[0], frame.Pt(cfg.Width, cfg.Height))
	if err != nil {
		return err
	}
	if err := s.eng.RenderFull(f); err != nil {
		return err
	}
	_, err = s.eng.WaitForKey()
	return err
}

func runPlay(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	frames, err := s.loadFrames(args)
	if err != nil {
		return err
	}
	return runInteractive(cmd.Context(), s, dashboard.NewCycle(frames...), cfg)
}

func runDemo(cmd *cobra.Command, args []string) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	return runInteractive(cmd.Context(), s, demoSource(cfg), cfg)
}

// demoSource layers a bouncing banner over a scrolling plot
func demoSource(cfg *config.Config) dashboard.Source {
	fg, bg, _ := cfg.Colors()
	return dashboard.Overlay{
		Base: dashboard.NewPlot(cfg.Width, cfg.Height, fg, bg),
		Top:  dashboard.NewBanner(cfg.Width, cfg.Height, "framediff", bg),
	}
}

func runConfig(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return config.Encode(cmd.OutOrStdout(), cfg)
	}
	if err := config.Save(args[0], cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
	return nil
}
