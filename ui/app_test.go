package ui

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"termcanvas/config"
	"termcanvas/fontmetrics"
	"termcanvas/render"
	"termcanvas/resize"
	"termcanvas/session"
)

type stubPty struct {
	mu   sync.Mutex
	in   bytes.Buffer
	exit chan struct{}
	once sync.Once
}

func newStubPty() *stubPty { return &stubPty{exit: make(chan struct{})} }

func (p *stubPty) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.in.Write(b)
}

func (p *stubPty) Resize(rows, cols int) error { return nil }

func (p *stubPty) DupReader() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (p *stubPty) Wait() error {
	<-p.exit
	return nil
}

func (p *stubPty) Close() error {
	p.once.Do(func() { close(p.exit) })
	return nil
}

func (p *stubPty) input() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.in.String()
}

func newTestApp(t *testing.T, w, h int) (*App, *stubPty, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)

	font, err := fontmetrics.Load("", 20)
	if err != nil {
		t.Fatalf("load font: %v", err)
	}
	p := newStubPty()
	sess := session.New(p, session.Options{Rows: h - 1, Cols: w})
	t.Cleanup(func() { sess.Close() })
	store := session.NewStore()

	cfg := config.Default()
	cfg.CaptureDir = t.TempDir()
	app, err := New(Options{Screen: screen, Session: sess, Store: store, Font: font, Config: cfg})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app, p, screen
}

func TestHandleKeyRoutesCharsAndEnter(t *testing.T) {
	app, p, _ := newTestApp(t, 20, 5)
	app.handleKey(tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone))
	app.handleKey(tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone))
	app.handleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	app.handleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if got := p.input(); got != "ls\n" {
		t.Fatalf("expected %q written, got %q", "ls\n", got)
	}
	if app.quit {
		t.Fatal("did not expect to quit")
	}
}

func TestCtrlQQuitsWithoutWriting(t *testing.T) {
	app, p, _ := newTestApp(t, 20, 5)
	app.handleKey(tcell.NewEventKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl))
	if !app.quit {
		t.Fatal("expected Ctrl+Q to quit")
	}
	if p.input() != "" {
		t.Fatalf("expected nothing sent to the shell, got %q", p.input())
	}
}

func TestSessionEndedAnyKeyQuits(t *testing.T) {
	app, p, screen := newTestApp(t, 40, 5)
	app.sessionEnded(nil)
	app.render()
	if app.status.Mode != modeEnded || !strings.Contains(app.status.Message, "session ended") {
		t.Fatalf("expected ended status, got %q %q", app.status.Mode, app.status.Message)
	}
	r, _, _, _ := screen.GetContent(1, 4)
	if r != 'E' {
		t.Fatalf("expected ENDED badge in the status line, got %q", r)
	}
	app.handleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	if !app.quit {
		t.Fatal("expected any key to quit after the session ended")
	}
	if p.input() != "" {
		t.Fatalf("expected nothing sent after exit, got %q", p.input())
	}
}

func TestRenderPaintsPublishedFrame(t *testing.T) {
	app, _, screen := newTestApp(t, 20, 5)
	app.sess.Feed([]byte("hi"))
	app.store.Publish(app.sess.Snapshot())
	app.render()
	for i, want := range "hi" {
		r, _, _, _ := screen.GetContent(i, 0)
		if r != want {
			t.Fatalf("expected %q at column %d, got %q", want, i, r)
		}
	}
}

func TestMouseWheelScrollsView(t *testing.T) {
	app, _, _ := newTestApp(t, 20, 3)
	app.sess.Feed([]byte("1\r\n2\r\n3\r\n4\r\n5"))
	app.handleMouse(tcell.NewEventMouse(0, 0, tcell.WheelUp, tcell.ModNone))
	if app.sess.DisplayOffset() == 0 {
		t.Fatal("expected wheel up to scroll back")
	}
	if app.store.Load().DisplayOffset == 0 {
		t.Fatal("expected a republished frame after scrolling")
	}
	app.handleKey(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone))
	if app.sess.DisplayOffset() != 0 {
		t.Fatal("expected typing to return to the live screen")
	}
}

func TestApplyConfigSwitchesTheme(t *testing.T) {
	app, _, _ := newTestApp(t, 20, 5)
	cfg := config.Default()
	cfg.Theme = "nord"
	app.applyConfig(cfg)
	if app.status.Theme.Name != "Nord" {
		t.Fatalf("expected Nord theme, got %s", app.status.Theme.Name)
	}
	want := color.NRGBA{R: 0x2e, G: 0x34, B: 0x40, A: 255}
	if bg := app.store.Load().Cells[0].BG; bg != want {
		t.Fatalf("expected nord background in the new frame, got %v", bg)
	}
}

func TestCaptureWritesImage(t *testing.T) {
	app, _, _ := newTestApp(t, 10, 3)
	app.capture()
	entries, err := os.ReadDir(app.cfg.CaptureDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".png" {
		t.Fatalf("expected one png capture, got %v", entries)
	}
}

func TestRunQuitsOnCtrlQ(t *testing.T) {
	app, p, screen := newTestApp(t, 20, 5)
	errc := make(chan error, 1)
	go func() { errc <- app.Run(context.Background()) }()

	screen.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	screen.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl)
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event loop did not quit")
	}
	if p.input() != "a" {
		t.Fatalf("expected %q written, got %q", "a", p.input())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app, _, _ := newTestApp(t, 20, 5)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- app.Run(ctx) }()
	cancel()
	select {
	case <-errc:
	case <-time.After(5 * time.Second):
		t.Fatal("event loop ignored cancellation")
	}
}

func TestSurfaceRegionYieldsHostGrid(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	defer screen.Fini()
	m := fontmetrics.Metrics{CellWidth: 10, CellHeight: 20}
	s := NewSurface(screen, 0, 0, 80, 24, m, 2, color.NRGBA{A: 255})
	w, h := s.Region(render.DefaultLayout(), 2)
	rows, cols := resize.CellGeometry(resize.Geometry{Width: w / 2, Height: h / 2}, m, 2)
	if rows != 24 || cols != 80 {
		t.Fatalf("expected the coordinator to size the grid to 24x80, got %dx%d", rows, cols)
	}
}

func TestSurfaceBlendsDimGlyph(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	defer screen.Fini()
	m := fontmetrics.Metrics{CellWidth: 10, CellHeight: 20}
	s := NewSurface(screen, 0, 0, 4, 2, m, 2, color.NRGBA{A: 255})
	s.FillRect(render.Rect{X: 10, Y: 40, W: 10, H: 20}, render.Paint{Color: color.NRGBA{A: 255}, AntiAlias: true})
	s.DrawGlyph('d', 10, 40+28, render.Paint{Color: color.NRGBA{R: 255, G: 255, B: 255, A: 66}, AntiAlias: true})

	r, _, style, _ := screen.GetContent(1, 1)
	if r != 'd' {
		t.Fatalf("expected glyph at host cell (1,1), got %q", r)
	}
	fg, _, _ := style.Decompose()
	cr, cg, cb := fg.RGB()
	if cr <= 0 || cr >= 255 || cr != cg || cg != cb {
		t.Fatalf("expected a gray blend of white over black, got %d,%d,%d", cr, cg, cb)
	}
}

func TestHelpOverlaySwallowsKeys(t *testing.T) {
	app, p, screen := newTestApp(t, 60, 20)
	app.handleKey(tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone))
	if !app.help.Visible {
		t.Fatal("expected F1 to open help")
	}
	app.render()
	found := false
	for y := 0; y < 19 && !found; y++ {
		var b strings.Builder
		for x := 0; x < 60; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			b.WriteRune(r)
		}
		found = strings.Contains(b.String(), "Ctrl+Q")
	}
	if !found {
		t.Fatal("expected key bindings on screen")
	}

	app.handleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	if p.input() != "" {
		t.Fatalf("expected keys swallowed while help is open, got %q", p.input())
	}
	app.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if app.help.Visible {
		t.Fatal("expected Esc to close help")
	}
	app.handleKey(tcell.NewEventKey(tcell.KeyRune, 'y', tcell.ModNone))
	if p.input() != "y" {
		t.Fatalf("expected typing to reach the shell again, got %q", p.input())
	}
}

func TestSurfaceRegionOddWidthFitsHost(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	defer screen.Fini()
	font, err := fontmetrics.Load("", 20)
	if err != nil {
		t.Fatalf("load font: %v", err)
	}
	m := font.Metrics()
	layout := render.DefaultLayout()
	for _, width := range []int{81, 99, 121} {
		s := NewSurface(screen, 0, 0, width, 24, m, layout.LineSpacing, color.NRGBA{A: 255})
		w, h := s.Region(layout, 2)
		rows, cols := resize.CellGeometry(resize.Geometry{Width: w / layout.DPIScale, Height: h / layout.DPIScale}, m, 2)
		if cols > width || cols < width-1 {
			t.Fatalf("host width %d: expected at most %d columns, got %d", width, width, cols)
		}
		if rows != 24 {
			t.Fatalf("host width %d: expected 24 rows, got %d", width, rows)
		}
	}
}

func TestScrollSurvivesLateReadLoopFrame(t *testing.T) {
	app, _, _ := newTestApp(t, 20, 3)
	app.sess.Feed([]byte("1\r\n2\r\n3\r\n4\r\n5"))
	pending := app.sess.Snapshot() // taken by the read loop before the wheel event

	app.handleMouse(tcell.NewEventMouse(0, 0, tcell.WheelUp, tcell.ModNone))
	app.store.Publish(pending)
	if off := app.store.Load().DisplayOffset; off == 0 {
		t.Fatal("expected the scrolled frame to stay published")
	}
}
