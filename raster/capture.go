package raster

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/soniakeys/quant/median"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"termcanvas/render"
)

// Formats lists the capture encodings by file extension.
var Formats = []string{"png", "gif", "bmp", "tiff"}

// Encode writes img in the named format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "gif":
		// Median cut palette, then map pixels onto it
		q := median.Quantizer(256)
		paletted := q.Paletted(img)
		draw.Draw(paletted, img.Bounds(), img, img.Bounds().Min, draw.Src)
		return gif.Encode(w, paletted, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported capture format %q", format)
	}
}

// Capture paints the latest frame onto c and returns the image. The whole
// canvas is the paint region.
func Capture(painter *render.Painter, c *Canvas) image.Image {
	b := c.Image().Bounds()
	painter.Paint(c, float64(b.Dx()), float64(b.Dy()))
	return c.Image()
}

// SaveCapture encodes img into dir under a timestamped name and returns the
// path.
func SaveCapture(dir string, img image.Image, format string, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("termcanvas-%s.%s", now.Format("20060102-150405.000"), format)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
