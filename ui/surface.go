package ui

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"termcanvas/fontmetrics"
	"termcanvas/render"
)

// Surface is a render.Surface that lands on host terminal cells. Pixel
// positions are mapped back to cells using the font metrics, so each painted
// cell occupies one host cell. Translucent colors are blended over whatever
// this pass has already put under them.
type Surface struct {
	screen     tcell.Screen
	x, y, w, h int
	cellW      float64
	cellH      float64
	rowH       float64
	under      []colorful.Color
}

// NewSurface covers the host area at (x, y) of w × h cells, cleared to base.
func NewSurface(screen tcell.Screen, x, y, w, h int, m fontmetrics.Metrics, lineSpacing float64, base color.NRGBA) *Surface {
	s := &Surface{
		screen: screen,
		x:      x,
		y:      y,
		w:      w,
		h:      h,
		cellW:  m.CellWidth,
		cellH:  m.CellHeight,
		rowH:   m.CellHeight * lineSpacing,
		under:  make([]colorful.Color, max(w*h, 0)),
	}
	bg := blend(base, colorful.Color{})
	style := tcell.StyleDefault.Background(tcellColor(bg))
	for i := range s.under {
		s.under[i] = bg
	}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			screen.SetContent(x+col, y+row, ' ', nil, style)
		}
	}
	return s
}

// Region returns the pixel size a paint pass should report so that the
// coordinator sizes the grid to this surface's cells. Columns are reported
// in whole multiples of columnFactor, so an odd host width leaves its last
// column unused instead of giving the shell a column it cannot see.
func (s *Surface) Region(layout render.Layout, columnFactor int) (w, h float64) {
	if columnFactor <= 0 {
		columnFactor = 1
	}
	scale := layout.DPIScale
	if scale <= 0 {
		scale = 1
	}
	w = float64(s.w/columnFactor) * s.cellW * scale
	h = float64(s.h) * s.cellH * scale
	return w, h
}

func (s *Surface) cellAt(px, py float64) (int, bool) {
	if s.cellW <= 0 || s.rowH <= 0 {
		return 0, false
	}
	col := int(math.Floor(px/s.cellW + 1e-6))
	row := int(math.Floor(py/s.rowH + 1e-6))
	if col < 0 || col >= s.w || row < 0 || row >= s.h {
		return 0, false
	}
	return row*s.w + col, true
}

func (s *Surface) FillRect(r render.Rect, p render.Paint) {
	idx, ok := s.cellAt(r.X, r.Y)
	if !ok {
		return
	}
	c := blend(p.Color, s.under[idx])
	s.under[idx] = c
	col, row := idx%s.w, idx/s.w
	s.screen.SetContent(s.x+col, s.y+row, ' ', nil, tcell.StyleDefault.Background(tcellColor(c)))
}

func (s *Surface) DrawGlyph(r rune, x, baseline float64, p render.Paint) {
	// The baseline lies inside its row, at most on the row's bottom edge.
	idx, ok := s.cellAt(x, baseline-1e-3)
	if !ok {
		return
	}
	bg := s.under[idx]
	fg := blend(p.Color, bg)
	col, row := idx%s.w, idx/s.w
	style := tcell.StyleDefault.Background(tcellColor(bg)).Foreground(tcellColor(fg))
	s.screen.SetContent(s.x+col, s.y+row, r, nil, style)
}

// blend composites c over under.
func blend(c color.NRGBA, under colorful.Color) colorful.Color {
	top, ok := colorful.MakeColor(c)
	if !ok {
		return under
	}
	if c.A == 0xff {
		return top
	}
	return under.BlendRgb(top, float64(c.A)/255)
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
