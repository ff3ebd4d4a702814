package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/framediff/config"
)

var (
	configFile string
	width      int
	height     int
	colorMode  string
	driverName string
	fps        int
	debugLog   bool
	ticks      int

	cfg     *config.Config
	logFile *os.File
)

func main() {
	// Panic Recovery: Ensure terminal is reset even if rendering crashes
	defer func() {
		if r := recover(); r != nil {
			crash("FRAMEDIFF CRASHED", r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "framediff",
		Short:        "frame-diffing terminal renderer",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = loadConfig(cmd); err != nil {
				return err
			}
			logFile = setupLogging(cfg.Debug)
			log.Printf("[main] %s: %dx%d driver=%s color=%s fps=%d",
				cmd.Name(), cfg.Width, cfg.Height, cfg.Driver, cfg.ColorMode, cfg.FPS)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
				logFile = nil
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.IntVar(&width, "width", config.DefaultWidth, "render width in columns")
	pf.IntVar(&height, "height", config.DefaultHeight, "render height in rows")
	pf.StringVar(&colorMode, "color", config.DefaultColorMode, "color mode: auto, truecolor, 256")
	pf.StringVar(&driverName, "driver", config.DefaultDriver, "terminal driver: ansi, tcell")
	pf.IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	pf.BoolVar(&debugLog, "debug", false, "write debug log to "+logDir+"/"+logFileName)

	showCmd := &cobra.Command{
		Use:   "show [file]",
		Short: "render a text frame and wait for a key",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	playCmd := &cobra.Command{
		Use:   "play [file...]",
		Short: "cycle text frames incrementally until q",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPlay,
	}

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "animated dashboard",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [file...]",
		Short: "compare incremental and full render cost headlessly",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&ticks, "ticks", 200, "frames to render per mode")

	configCmd := &cobra.Command{
		Use:   "config [file]",
		Short: "print the effective config, or save it to file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfig,
	}

	rootCmd.AddCommand(showCmd, playCmd, demoCmd, benchCmd, configCmd)
	return rootCmd
}

// loadConfig reads --config over the defaults, then applies explicitly set flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("color") {
		cfg.ColorMode = colorMode
	}
	if flags.Changed("driver") {
		cfg.Driver = driverName
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("debug") {
		cfg.Debug = debugLog
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// crash restores the terminal and exits after an unrecovered panic
func crash(what string, r any) {
	resetTerminal()
	// \r\n for raw mode compatibility
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31m%s: %v\x1b[0m\r\n", what, r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Exit(1)
}
