package render

import (
	"errors"
	"image/color"
	"testing"

	"termcanvas/fontmetrics"
	"termcanvas/session"
)

type op struct {
	fill    bool
	rect    Rect
	r       rune
	x, base float64
	paint   Paint
}

type recordingSurface struct{ ops []op }

func (s *recordingSurface) FillRect(r Rect, p Paint) {
	s.ops = append(s.ops, op{fill: true, rect: r, paint: p})
}

func (s *recordingSurface) DrawGlyph(r rune, x, baseline float64, p Paint) {
	s.ops = append(s.ops, op{r: r, x: x, base: baseline, paint: p})
}

type staticFrames struct{ f *session.Frame }

func (s staticFrames) Load() *session.Frame { return s.f }

type sizeLog struct{ w, h []float64 }

func (l *sizeLog) Report(w, h float64) {
	l.w = append(l.w, w)
	l.h = append(l.h, h)
}

type fixedFont struct{}

func (fixedFont) Metrics() fontmetrics.Metrics {
	return fontmetrics.Metrics{CellWidth: 10, CellHeight: 20}
}

func (fixedFont) Measure(r rune) (float64, float64) { return 12, 24 }

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestPaintReportsDescaledRegion(t *testing.T) {
	sizes := &sizeLog{}
	p := &Painter{Frames: staticFrames{&session.Frame{}}, Sizes: sizes, Font: fixedFont{}, Layout: DefaultLayout()}
	p.Paint(&recordingSurface{}, 1600, 1200)
	if len(sizes.w) != 1 || sizes.w[0] != 800 || sizes.h[0] != 600 {
		t.Fatalf("expected one report of 800x600, got %v x %v", sizes.w, sizes.h)
	}
}

func TestPaintPlacesCells(t *testing.T) {
	frame := &session.Frame{Cells: []session.Cell{
		{Column: 3, Line: 2, Content: 'x', FG: red, BG: blue},
	}}
	s := &recordingSurface{}
	p := &Painter{Frames: staticFrames{frame}, Font: fixedFont{}, Layout: DefaultLayout()}
	p.Paint(s, 100, 100)

	if len(s.ops) != 2 {
		t.Fatalf("expected fill then glyph, got %d ops", len(s.ops))
	}
	fill, glyph := s.ops[0], s.ops[1]
	if !fill.fill || glyph.fill {
		t.Fatal("expected the background fill before the glyph")
	}
	// x = 3*10, top = 2*20*2, box from the measured glyph
	if fill.rect != (Rect{X: 30, Y: 80, W: 12, H: 24}) {
		t.Fatalf("unexpected background rect %+v", fill.rect)
	}
	if fill.paint.Color != blue || !fill.paint.AntiAlias {
		t.Fatalf("unexpected background paint %+v", fill.paint)
	}
	// baseline = top + 0.7*20*2
	if glyph.r != 'x' || glyph.x != 30 || glyph.base < 107.99 || glyph.base > 108.01 {
		t.Fatalf("unexpected glyph op %+v", glyph)
	}
	if glyph.paint.Color != red || !glyph.paint.AntiAlias {
		t.Fatalf("unexpected glyph paint %+v", glyph.paint)
	}
}

func TestPaintAppliesDisplayOffset(t *testing.T) {
	frame := &session.Frame{Cells: []session.Cell{
		{Column: 0, Line: -2, Content: 'a', DisplayOffset: 2},
	}}
	s := &recordingSurface{}
	p := &Painter{Frames: staticFrames{frame}, Font: fixedFont{}, Layout: DefaultLayout()}
	p.Paint(s, 100, 100)
	if s.ops[0].rect.Y != 0 {
		t.Fatalf("expected scrolled-back line at the top, got y=%v", s.ops[0].rect.Y)
	}
}

func TestPaintWithNilSizesAndEmptyFrame(t *testing.T) {
	s := &recordingSurface{}
	p := &Painter{Frames: session.NewStore(), Font: fixedFont{}, Layout: DefaultLayout()}
	p.Paint(s, 10, 10)
	if len(s.ops) != 0 {
		t.Fatalf("expected nothing drawn, got %d ops", len(s.ops))
	}
}

type inputLog struct {
	written []rune
	err     error
}

func (l *inputLog) WriteInput(r rune) error {
	if l.err != nil {
		return l.err
	}
	l.written = append(l.written, r)
	return nil
}

func TestRouteEnterWritesNewline(t *testing.T) {
	l := &inputLog{}
	if err := Route(l, Enter()); err != nil {
		t.Fatal(err)
	}
	if len(l.written) != 1 || l.written[0] != '\n' {
		t.Fatalf("expected a single newline, got %q", l.written)
	}
}

func TestRouteCharWritesExactlyThatChar(t *testing.T) {
	l := &inputLog{}
	if err := Route(l, Char('q')); err != nil {
		t.Fatal(err)
	}
	if len(l.written) != 1 || l.written[0] != 'q' {
		t.Fatalf("expected only 'q', got %q", l.written)
	}
}

func TestRouteIgnoresOtherKeys(t *testing.T) {
	l := &inputLog{}
	if err := Route(l, Other()); err != nil {
		t.Fatal(err)
	}
	if len(l.written) != 0 {
		t.Fatalf("expected nothing written, got %q", l.written)
	}
}

func TestRoutePropagatesWriteErrors(t *testing.T) {
	want := errors.New("shell gone")
	l := &inputLog{err: want}
	if err := Route(l, Char('a')); !errors.Is(err, want) {
		t.Fatalf("expected write error, got %v", err)
	}
}
