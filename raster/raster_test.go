package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"termcanvas/fontmetrics"
	"termcanvas/render"
	"termcanvas/session"
)

var bg = color.NRGBA{R: 40, G: 39, B: 39, A: 255}

func newTestCanvas(t *testing.T, w, h int) (*Canvas, *fontmetrics.Font) {
	t.Helper()
	f, err := fontmetrics.Load("", 20)
	if err != nil {
		t.Fatalf("load font: %v", err)
	}
	return NewCanvas(w, h, f.Face(), bg), f
}

func TestFillRectCoversPixels(t *testing.T) {
	c, _ := newTestCanvas(t, 20, 20)
	c.FillRect(render.Rect{X: 2, Y: 2, W: 10, H: 10}, render.Paint{Color: color.NRGBA{R: 255, A: 255}, AntiAlias: true})
	if got := c.Image().RGBAAt(5, 5); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("expected red inside the rect, got %v", got)
	}
	if got := c.Image().RGBAAt(15, 15); got != (color.RGBA{R: 40, G: 39, B: 39, A: 255}) {
		t.Fatalf("expected background outside the rect, got %v", got)
	}
}

func TestFillRectAntiAliasesFractionalEdge(t *testing.T) {
	c, _ := newTestCanvas(t, 10, 10)
	c.FillRect(render.Rect{X: 0, Y: 0, W: 2.5, H: 10}, render.Paint{Color: color.NRGBA{R: 255, A: 255}, AntiAlias: true})
	edge := c.Image().RGBAAt(2, 5)
	if edge.R <= 40 || edge.R >= 255 {
		t.Fatalf("expected a partially covered edge pixel, got %v", edge)
	}
}

func TestFillRectTranslucentBlends(t *testing.T) {
	c, _ := newTestCanvas(t, 4, 4)
	c.FillRect(render.Rect{W: 4, H: 4}, render.Paint{Color: color.NRGBA{R: 255, G: 255, B: 255, A: 66}})
	got := c.Image().RGBAAt(1, 1)
	if got.R <= 40 || got.R >= 255 || got.A != 255 {
		t.Fatalf("expected a blend of white over the background, got %v", got)
	}
}

func TestDrawGlyphMarksPixels(t *testing.T) {
	c, f := newTestCanvas(t, 40, 40)
	asc := f.Ascent()
	c.DrawGlyph('W', 2, asc+2, render.Paint{Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}, AntiAlias: true})
	lit := 0
	b := c.Image().Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c.Image().RGBAAt(x, y).R > 200 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatal("expected glyph pixels to be drawn")
	}
}

func TestCapturePaintsFrame(t *testing.T) {
	c, f := newTestCanvas(t, 64, 64)
	store := session.NewStore()
	store.Publish(&session.Frame{Cells: []session.Cell{
		{Column: 0, Line: 0, Content: ' ', BG: color.NRGBA{B: 255, A: 255}},
	}})
	p := &render.Painter{Frames: store, Font: f, Layout: render.DefaultLayout()}
	img := Capture(p, c).(*image.RGBA)
	if got := img.RGBAAt(1, 1); got.B != 255 || got.R != 0 {
		t.Fatalf("expected the cell background at the origin, got %v", got)
	}
}

func TestEncodeFormats(t *testing.T) {
	c, _ := newTestCanvas(t, 8, 6)
	decoders := map[string]func(*bytes.Reader) (image.Image, error){
		"png":  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		"gif":  func(r *bytes.Reader) (image.Image, error) { return gif.Decode(r) },
		"bmp":  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
		"tiff": func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
	}
	for _, format := range Formats {
		var buf bytes.Buffer
		if err := Encode(&buf, c.Image(), format); err != nil {
			t.Fatalf("%s: encode: %v", format, err)
		}
		img, err := decoders[format](bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("%s: decode: %v", format, err)
		}
		if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
			t.Fatalf("%s: unexpected bounds %v", format, img.Bounds())
		}
	}
	if err := Encode(&bytes.Buffer{}, c.Image(), "jpeg2000"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestSaveCaptureWritesFile(t *testing.T) {
	c, _ := newTestCanvas(t, 4, 4)
	dir := filepath.Join(t.TempDir(), "shots")
	path, err := SaveCapture(dir, c.Image(), "png", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(path, "termcanvas-20240102-030405.000.png") {
		t.Fatalf("unexpected path %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("capture not written: %v", err)
	}
}
