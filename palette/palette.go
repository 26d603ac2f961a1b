// Package palette turns the colors the terminal engine records into the
// concrete colors that get painted.
package palette

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"termcanvas/config"
	"termcanvas/vt"
)

// DimAlpha is the foreground opacity of dimmed text.
const DimAlpha = 66

// Palette maps each named slot to a color. It is a value; copies are
// independent.
type Palette struct {
	slots [vt.NumNamedColors]color.NRGBA
}

// New builds a palette from a color scheme.
func New(cs *config.ColorScheme) (Palette, error) {
	var p Palette
	for i, hex := range cs.Slots() {
		c, err := colorful.Hex(hex)
		if err != nil {
			return Palette{}, fmt.Errorf("theme %s slot %d: %w", cs.Name, i, err)
		}
		r, g, b := c.RGB255()
		p.slots[i] = color.NRGBA{R: r, G: g, B: b, A: 0xff}
	}
	return p, nil
}

// Default is the built-in gruvbox palette.
func Default() Palette {
	p, err := New(config.Themes["gruvbox"])
	if err != nil {
		panic(err)
	}
	return p
}

// Slot returns the color of a named slot, or the background for a tag
// outside the table.
func (p Palette) Slot(n vt.NamedColor) color.NRGBA {
	if int(n) >= len(p.slots) {
		return p.slots[vt.Background]
	}
	return p.slots[n]
}

func (p Palette) Foreground() color.NRGBA { return p.slots[vt.Foreground] }

func (p Palette) Background() color.NRGBA { return p.slots[vt.Background] }

// Resolve maps an engine color to a concrete opaque color. Unknown colors
// resolve to the background.
func (p Palette) Resolve(c vt.Color) color.NRGBA {
	switch c.Kind {
	case vt.ColorRGB:
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	case vt.ColorNamed:
		return p.Slot(c.Name)
	default:
		return p.Background()
	}
}

// CellColors resolves a cell's foreground and background and applies its
// attributes: dim fades the foreground, then inverse swaps the two.
func (p Palette) CellColors(fg, bg vt.Color, flags vt.Flags) (color.NRGBA, color.NRGBA) {
	f := p.Resolve(fg)
	b := p.Resolve(bg)
	if flags.Has(vt.FlagDim) {
		f.A = DimAlpha
	}
	if flags.Has(vt.FlagInverse) {
		f, b = b, f
	}
	return f, b
}
