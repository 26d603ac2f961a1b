// Package fontmetrics loads the terminal font and measures its monospace
// cell.
package fontmetrics

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ReferenceGlyph is measured to size a cell.
const ReferenceGlyph = "W"

// Metrics is the pixel size of one cell.
type Metrics struct {
	CellWidth  float64
	CellHeight float64
}

// Font is a loaded face plus its cell metrics. A Font is not safe for
// concurrent use.
type Font struct {
	face    font.Face
	metrics Metrics
	ascent  float64
	extent  float64
}

// Load reads a TrueType/OpenType file. An empty path selects the embedded Go
// Mono font.
func Load(path string, size float64) (*Font, error) {
	data := gomono.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		data = b
	}
	return Parse(data, size)
}

// Parse builds a Font from raw font data at size points (72 DPI, so one
// point is one pixel).
func Parse(data []byte, size float64) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	bounds, _ := font.BoundString(face, ReferenceGlyph)
	m := face.Metrics()
	return &Font{
		face: face,
		metrics: Metrics{
			CellWidth:  toFloat(bounds.Max.X - bounds.Min.X),
			CellHeight: toFloat(bounds.Max.Y - bounds.Min.Y),
		},
		ascent: toFloat(m.Ascent),
		extent: toFloat(m.Ascent + m.Descent),
	}, nil
}

func (f *Font) Metrics() Metrics { return f.metrics }

func (f *Font) Face() font.Face { return f.face }

// Ascent is the distance from the top of a line box to the baseline.
func (f *Font) Ascent() float64 { return f.ascent }

// Measure returns the box a single rune occupies: its advance by the
// font's line extent. Blank runes still get a box so their background is
// painted.
func (f *Font) Measure(r rune) (w, h float64) {
	adv, ok := f.face.GlyphAdvance(r)
	if !ok {
		adv, _ = f.face.GlyphAdvance('?')
	}
	return toFloat(adv), f.extent
}

func (f *Font) Close() error { return f.face.Close() }

func toFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
