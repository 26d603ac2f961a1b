// Package ui hosts the terminal canvas inside a tcell screen.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"termcanvas/config"
	"termcanvas/fontmetrics"
	"termcanvas/palette"
	"termcanvas/raster"
	"termcanvas/render"
	"termcanvas/session"
)

const (
	messageTTL  = 5 * time.Second
	wheelLines  = 3
	modeLive    = "TERM"
	modeScroll  = "SCROLL"
	modeEnded   = "ENDED"
	endedNotice = "session ended, press any key to quit"
)

type Options struct {
	Screen  tcell.Screen // initialized by the caller
	Session *session.Session
	Store   *session.Store
	Font    *fontmetrics.Font
	Sizes   render.SizeReporter
	Config  *config.Config
	Updates <-chan *config.Config // settings reloads, may be nil
	Logger  *slog.Logger
}

// App is the host window: it paints published frames, forwards keys to the
// shell and shows a status line.
type App struct {
	screen  tcell.Screen
	sess    *session.Session
	store   *session.Store
	font    *fontmetrics.Font
	painter *render.Painter
	cfg     *config.Config
	pal     palette.Palette
	status  *StatusBar
	help    *HelpOverlay
	updates <-chan *config.Config
	logger  *slog.Logger

	quit              bool
	ended             bool
	statusMessageTime time.Time
}

func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	pal, err := palette.New(cfg.GetTheme())
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	status := NewStatusBar()
	status.Theme = cfg.GetTheme()
	status.Shell = cfg.Shell

	opts.Session.SetPalette(pal)
	return &App{
		screen: opts.Screen,
		sess:   opts.Session,
		store:  opts.Store,
		font:   opts.Font,
		painter: &render.Painter{
			Frames: opts.Store,
			Sizes:  opts.Sizes,
			Font:   opts.Font,
			Layout: render.LayoutFromConfig(cfg),
		},
		cfg:     cfg,
		pal:     pal,
		status:  status,
		help:    &HelpOverlay{Theme: cfg.GetTheme()},
		updates: opts.Updates,
		logger:  logger,
	}, nil
}

// Run processes events until the user quits or ctx is done. The caller
// finalizes the screen.
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse()
	a.screen.SetStyle(tcell.StyleDefault)
	a.screen.Clear()

	fwdCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.forward(fwdCtx)

	for !a.quit {
		a.clearExpiredMessage()
		a.render()

		ev := a.screen.PollEvent()
		if ev == nil {
			// Screen finalized
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			a.handleKey(ev)
		case *tcell.EventMouse:
			a.handleMouse(ev)
		case *FrameEvent:
		case *SessionEndedEvent:
			a.sessionEnded(ev.Err)
		case *ConfigEvent:
			a.applyConfig(ev.Config)
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				a.quit = true
			}
		}
	}
	return nil
}

// forward turns channel activity into screen events so that all state is
// touched from the event loop only.
func (a *App) forward(ctx context.Context) {
	done := a.sess.Done()
	updates := a.updates
	for {
		select {
		case <-ctx.Done():
			a.screen.PostEvent(tcell.NewEventInterrupt(nil))
			return
		case <-a.store.Updated():
			ev := &FrameEvent{}
			ev.SetEventNow()
			// A dropped frame event is fine; the next one repaints anyway.
			a.screen.PostEvent(ev)
		case <-done:
			done = nil
			ev := &SessionEndedEvent{Err: a.sess.Err()}
			ev.SetEventNow()
			a.screen.PostEvent(ev)
		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			ev := &ConfigEvent{Config: cfg}
			ev.SetEventNow()
			a.screen.PostEvent(ev)
		}
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	if a.ended {
		a.quit = true
		return
	}
	if a.help.HandleKey(ev) {
		return
	}
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		a.quit = true
		return
	case tcell.KeyF1:
		a.help.Visible = true
		return
	case tcell.KeyF12:
		a.capture()
		return
	case tcell.KeyPgUp:
		if ev.Modifiers()&tcell.ModShift != 0 {
			a.scroll(a.pageSize())
			return
		}
	case tcell.KeyPgDn:
		if ev.Modifiers()&tcell.ModShift != 0 {
			a.scroll(-a.pageSize())
			return
		}
	}

	key := keyFromEvent(ev)
	if key.Kind != render.KeyOther {
		// Typing returns the view to the live screen
		if off := a.sess.DisplayOffset(); off > 0 {
			a.scroll(-off)
		}
	}
	if err := render.Route(a.sess, key); err != nil {
		a.logger.Warn("input write failed", "error", err)
		a.setTemporaryError("Error: " + err.Error())
	}
}

func keyFromEvent(ev *tcell.EventKey) render.Key {
	switch ev.Key() {
	case tcell.KeyRune:
		return render.Char(ev.Rune())
	case tcell.KeyEnter:
		return render.Enter()
	}
	return render.Other()
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	btn := ev.Buttons()
	if btn&tcell.WheelUp != 0 {
		a.scroll(wheelLines)
	} else if btn&tcell.WheelDown != 0 {
		a.scroll(-wheelLines)
	}
}

func (a *App) pageSize() int {
	_, h := a.screen.Size()
	if h > 2 {
		return h - 2
	}
	return 1
}

// scroll moves the view and republishes so the change shows without waiting
// for shell output.
func (a *App) scroll(delta int) {
	a.sess.Scroll(delta)
	a.store.Publish(a.sess.Snapshot())
}

func (a *App) termArea() (w, h int) {
	w, h = a.screen.Size()
	h-- // status bar
	if h < 0 {
		h = 0
	}
	return w, h
}

func (a *App) render() {
	w, h := a.termArea()
	frame := a.store.Load()

	surf := NewSurface(a.screen, 0, 0, w, h, a.font.Metrics(), a.painter.Layout.LineSpacing, a.pal.Background())
	rw, rh := surf.Region(a.painter.Layout, a.cfg.ColumnFactor)
	a.painter.Paint(surf, rw, rh)

	if frame.CursorVisible && !a.ended && !a.help.Visible && frame.CursorLine < h && frame.CursorColumn < w {
		a.screen.ShowCursor(frame.CursorColumn, frame.CursorLine)
	} else {
		a.screen.HideCursor()
	}

	a.status.Title = frame.Title
	a.status.Rows = frame.Rows
	a.status.Cols = frame.Cols
	a.status.Offset = frame.DisplayOffset
	switch {
	case a.ended:
		a.status.Mode = modeEnded
	case frame.DisplayOffset > 0:
		a.status.Mode = modeScroll
	default:
		a.status.Mode = modeLive
	}
	a.help.Render(a.screen, 0, 0, w, h)
	_, sh := a.screen.Size()
	if sh > 0 {
		a.status.Render(a.screen, 0, sh-1, w, 1)
	}
	a.screen.Show()
}

// capture paints the current frame at full pixel resolution and saves it.
func (a *App) capture() {
	w, h := a.termArea()
	m := a.font.Metrics()
	pw := int(math.Ceil(float64(w) * m.CellWidth))
	ph := int(math.Ceil(float64(h) * m.CellHeight * a.painter.Layout.LineSpacing))
	if pw <= 0 || ph <= 0 {
		return
	}
	canvas := raster.NewCanvas(pw, ph, a.font.Face(), a.pal.Background())
	p := *a.painter
	p.Sizes = nil
	img := raster.Capture(&p, canvas)
	path, err := raster.SaveCapture(a.cfg.CaptureDir, img, a.cfg.CaptureFormat, time.Now())
	if err != nil {
		a.logger.Warn("capture failed", "error", err)
		a.setTemporaryError("Capture failed: " + err.Error())
		return
	}
	a.logger.Info("frame captured", "path", path)
	a.setTemporaryMessage("Saved " + path)
}

func (a *App) sessionEnded(err error) {
	a.ended = true
	a.logger.Info("session ended", "error", err)
	msg := endedNotice
	if err != nil {
		msg = fmt.Sprintf("session ended (%v), press any key to quit", err)
	}
	a.setStatusMessage(msg)
}

// applyConfig takes over a reloaded settings file. Theme and layout apply
// immediately; shell and font changes need a restart.
func (a *App) applyConfig(cfg *config.Config) {
	pal, err := palette.New(cfg.GetTheme())
	if err != nil {
		a.setTemporaryError("Error: " + err.Error())
		return
	}
	a.pal = pal
	a.sess.SetPalette(pal)
	a.status.Theme = cfg.GetTheme()
	a.help.Theme = cfg.GetTheme()
	a.painter.Layout = render.LayoutFromConfig(cfg)
	if cfg.Shell != a.cfg.Shell || cfg.FontPath != a.cfg.FontPath || cfg.FontSize != a.cfg.FontSize {
		a.logger.Info("shell and font changes apply on restart")
	}
	a.cfg = cfg
	a.store.Publish(a.sess.Snapshot())
	a.setTemporaryMessage("Settings reloaded")
}

func (a *App) setStatusMessage(msg string) {
	a.status.Message = msg
	a.status.IsError = false
	a.statusMessageTime = time.Time{} // zero time = permanent
}

func (a *App) setTemporaryMessage(msg string) {
	if a.ended {
		return
	}
	a.status.Message = msg
	a.status.IsError = false
	a.statusMessageTime = time.Now()
}

func (a *App) setTemporaryError(msg string) {
	if a.ended {
		return
	}
	a.status.Message = msg
	a.status.IsError = true
	a.statusMessageTime = time.Now()
}

func (a *App) clearExpiredMessage() {
	if !a.statusMessageTime.IsZero() && time.Since(a.statusMessageTime) > messageTTL {
		a.status.Message = ""
		a.status.IsError = false
		a.statusMessageTime = time.Time{}
	}
}
