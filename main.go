// termcanvas runs a shell in a pseudo-terminal and paints its screen,
// either inside the hosting terminal or, with --capture, straight to an
// image file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"

	"termcanvas/config"
	"termcanvas/fontmetrics"
	"termcanvas/palette"
	"termcanvas/raster"
	"termcanvas/render"
	"termcanvas/resize"
	"termcanvas/session"
	"termcanvas/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath   string
	shell        string
	theme        string
	fontPath     string
	fontSize     float64
	logOutput    string
	debug        bool
	capture      bool
	captureAfter time.Duration
}

func run() error {
	var f flags
	flagSet := pflag.NewFlagSet("termcanvas", pflag.ContinueOnError)
	flagSet.StringVar(&f.configPath, "config", config.ConfigPath(), "settings file")
	flagSet.StringVar(&f.shell, "shell", "", "shell to run (default: $SHELL)")
	flagSet.StringVar(&f.theme, "theme", "", "color theme (gruvbox, dracula, nord, solarized-dark)")
	flagSet.StringVar(&f.fontPath, "font", "", "TrueType/OpenType font file (default: embedded Go Mono)")
	flagSet.Float64Var(&f.fontSize, "font-size", 0, "font size in points")
	flagSet.StringVar(&f.logOutput, "log-output", "", "write JSON log records to this file")
	flagSet.BoolVar(&f.debug, "debug", false, "log at debug level")
	flagSet.BoolVar(&f.capture, "capture", false, "render to an image file instead of the terminal")
	flagSet.DurationVar(&f.captureAfter, "capture-after", time.Second, "how long the shell runs before a capture")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := config.LoadFile(f.configPath)
	if err != nil {
		return err
	}
	f.apply(cfg)

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	font, err := fontmetrics.Load(cfg.FontPath, cfg.FontSize)
	if err != nil {
		return err
	}
	defer font.Close()

	pal, err := palette.New(cfg.GetTheme())
	if err != nil {
		return err
	}
	sess, err := session.Start(ctx, session.Options{
		Shell:   cfg.Shell,
		Rows:    cfg.Rows,
		Cols:    cfg.Cols,
		Palette: &pal,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("start %s: %w", cfg.Shell, err)
	}
	defer sess.Close()

	store := session.NewStore()
	go func() {
		err := session.ReadLoop(ctx, sess, store, session.LoopOptions{
			BufSize:  cfg.ReadBufSize,
			Interval: cfg.ReadInterval(),
			Logger:   logger,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Info("read loop stopped", "error", err)
		}
	}()

	coord := resize.New(sess, font.Metrics(), resize.Options{
		Interval:     cfg.ResizeInterval(),
		ColumnFactor: cfg.ColumnFactor,
		Initial:      resize.Geometry{Width: cfg.WindowWidth, Height: cfg.WindowHeight},
		Logger:       logger,
	})
	go coord.Run(ctx)

	if f.capture {
		return captureOnce(ctx, cfg, font, pal, store, coord, f.captureAfter)
	}

	var updates <-chan *config.Config
	if f.configPath != "" {
		if ch, err := config.Watch(ctx, f.configPath, logger, f.apply); err != nil {
			logger.Warn("settings reload disabled", "error", err)
		} else {
			updates = ch
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	app, err := ui.New(ui.Options{
		Screen:  screen,
		Session: sess,
		Store:   store,
		Font:    font,
		Sizes:   coord,
		Config:  cfg,
		Updates: updates,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

// apply lets command line flags override the settings file.
func (f *flags) apply(cfg *config.Config) {
	if f.shell != "" {
		cfg.Shell = f.shell
	}
	if f.theme != "" {
		cfg.Theme = f.theme
	}
	if f.fontPath != "" {
		cfg.FontPath = f.fontPath
	}
	if f.fontSize > 0 {
		cfg.FontSize = f.fontSize
	}
	if f.logOutput != "" {
		cfg.LogOutput = f.logOutput
	}
	if f.debug {
		cfg.Debug = true
	}
	cfg.Validate()
}

func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.LogOutput == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	file, err := os.OpenFile(cfg.LogOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log output: %w", err)
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
	return logger, func() { file.Close() }, nil
}

// captureOnce lets the shell run for a while, then paints the latest frame
// onto a window-sized canvas and writes it to the capture directory.
func captureOnce(ctx context.Context, cfg *config.Config, font *fontmetrics.Font, pal palette.Palette,
	store *session.Store, sizes render.SizeReporter, after time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(after):
	}

	w := int(math.Ceil(cfg.WindowWidth * cfg.DPIScale))
	h := int(math.Ceil(cfg.WindowHeight * cfg.DPIScale))
	canvas := raster.NewCanvas(w, h, font.Face(), pal.Background())
	painter := &render.Painter{
		Frames: store,
		Sizes:  sizes,
		Font:   font,
		Layout: render.LayoutFromConfig(cfg),
	}
	img := raster.Capture(painter, canvas)
	path, err := raster.SaveCapture(cfg.CaptureDir, img, cfg.CaptureFormat, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, path)
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `termcanvas runs your shell and paints its screen.

Keys: Ctrl+Q quits, F12 saves a capture, Shift+PgUp/PgDn and the mouse
wheel scroll through history.

Usage:
  termcanvas [flags]

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
