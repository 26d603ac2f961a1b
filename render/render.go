// Package render paints session frames onto a drawing surface and routes
// key presses back to the shell.
package render

import (
	"image/color"

	"termcanvas/config"
	"termcanvas/fontmetrics"
	"termcanvas/session"
)

// Rect is an axis-aligned rectangle in surface pixels.
type Rect struct {
	X, Y float64
	W, H float64
}

type Paint struct {
	Color     color.NRGBA
	AntiAlias bool
}

// Surface is the 2-D drawing target of a paint pass.
type Surface interface {
	FillRect(r Rect, p Paint)
	// DrawGlyph draws r with its origin at (x, baseline).
	DrawGlyph(r rune, x, baseline float64, p Paint)
}

// FrameSource yields the most recently published frame.
type FrameSource interface {
	Load() *session.Frame
}

// SizeReporter receives the paintable area in unscaled pixels.
type SizeReporter interface {
	Report(width, height float64)
}

// Measurer provides cell metrics and per-glyph boxes.
type Measurer interface {
	Metrics() fontmetrics.Metrics
	Measure(r rune) (w, h float64)
}

// Layout holds the placement conventions. Rows are LineSpacing times the
// cell height apart and the baseline sits BaselineRatio down a row.
// Reported sizes are divided by DPIScale.
type Layout struct {
	DPIScale      float64
	LineSpacing   float64
	BaselineRatio float64
}

func DefaultLayout() Layout {
	return Layout{
		DPIScale:      config.DefaultDPIScale,
		LineSpacing:   config.DefaultLineSpacing,
		BaselineRatio: config.DefaultBaselineRatio,
	}
}

// LayoutFromConfig reads the layout conventions from settings.
func LayoutFromConfig(c *config.Config) Layout {
	return Layout{
		DPIScale:      c.DPIScale,
		LineSpacing:   c.LineSpacing,
		BaselineRatio: c.BaselineRatio,
	}
}

type Painter struct {
	Frames FrameSource
	Sizes  SizeReporter // may be nil
	Font   Measurer
	Layout Layout
}

// Paint reports the region size and draws the latest frame: a background box
// per cell, then its glyph.
func (p *Painter) Paint(s Surface, regionW, regionH float64) {
	scale := p.Layout.DPIScale
	if scale <= 0 {
		scale = 1
	}
	if p.Sizes != nil {
		p.Sizes.Report(regionW/scale, regionH/scale)
	}

	m := p.Font.Metrics()
	rowHeight := m.CellHeight * p.Layout.LineSpacing
	for _, c := range p.Frames.Load().Cells {
		x, top := p.CellOrigin(c, m)
		w, h := p.Font.Measure(c.Content)
		s.FillRect(Rect{X: x, Y: top, W: w, H: h}, Paint{Color: c.BG, AntiAlias: true})
		s.DrawGlyph(c.Content, x, top+p.Layout.BaselineRatio*rowHeight, Paint{Color: c.FG, AntiAlias: true})
	}
}

// CellOrigin returns the top-left corner of a cell's box.
func (p *Painter) CellOrigin(c session.Cell, m fontmetrics.Metrics) (x, top float64) {
	x = float64(c.Column) * m.CellWidth
	top = float64(c.Line+c.DisplayOffset) * m.CellHeight * p.Layout.LineSpacing
	return x, top
}
