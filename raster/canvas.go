// Package raster paints frames into an in-memory image and saves them.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"termcanvas/render"
)

// Canvas is a render.Surface backed by an RGBA image.
type Canvas struct {
	img  *image.RGBA
	face font.Face
	z    *vector.Rasterizer
}

// NewCanvas returns a w × h canvas cleared to bg.
func NewCanvas(w, h int, face font.Face, bg color.Color) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	return &Canvas{img: img, face: face, z: z}
}

func (c *Canvas) Image() *image.RGBA { return c.img }

// FillRect composites a rectangle over the canvas. Anti-aliased fills cover
// partial pixels at fractional edges; otherwise edges snap to whole pixels.
func (c *Canvas) FillRect(r render.Rect, p render.Paint) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	src := image.NewUniform(p.Color)
	if !p.AntiAlias {
		rect := image.Rect(
			int(math.Round(r.X)), int(math.Round(r.Y)),
			int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)),
		)
		draw.Draw(c.img, rect.Intersect(c.img.Bounds()), src, image.Point{}, draw.Over)
		return
	}

	b := c.img.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
	c.z.DrawOp = draw.Over
	x0, y0 := float32(r.X), float32(r.Y)
	x1, y1 := float32(r.X+r.W), float32(r.Y+r.H)
	c.z.MoveTo(x0, y0)
	c.z.LineTo(x1, y0)
	c.z.LineTo(x1, y1)
	c.z.LineTo(x0, y1)
	c.z.ClosePath()
	c.z.Draw(c.img, b, src, image.Point{})
}

// DrawGlyph draws r with its origin at (x, baseline). The face renders
// anti-aliased coverage masks.
func (c *Canvas) DrawGlyph(r rune, x, baseline float64, p render.Paint) {
	if r == ' ' || r == 0 {
		return
	}
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(p.Color),
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(baseline * 64)},
	}
	d.DrawString(string(r))
}
