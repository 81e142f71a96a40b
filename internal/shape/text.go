package shape

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrEmptyText is returned when asked to rasterize an empty string.
var ErrEmptyText = errors.New("shape: empty text")

// Text raster geometry.
const (
	CanvasWidth  = 500
	CanvasHeight = 150

	// Font sizes in pixels by text length.
	FontSizeShort  = 80
	FontSizeMedium = 65
	FontSizeLong   = 50

	// RasterStride is the pixel step used when scanning the canvas.
	RasterStride = 2
	// RasterThreshold is the gray level a pixel must exceed to be kept.
	RasterThreshold = 128
	// RasterScale converts canvas pixels to world units.
	RasterScale = 0.12
)

// Rasterizer renders text centered, white on black, onto a
// CanvasWidth×CanvasHeight image.
type Rasterizer interface {
	Rasterize(text string, size float64) (image.Image, error)
}

// FontSize returns the pixel size used for text: smaller for longer strings
// so they fit the canvas.
func FontSize(text string) float64 {
	switch n := utf8.RuneCountInString(text); {
	case n > 8:
		return FontSizeLong
	case n > 5:
		return FontSizeMedium
	default:
		return FontSizeShort
	}
}

// TextCloud rasterizes text and returns one world-space point per lit pixel
// on the scan grid, centered on the origin with Y up. The number of points
// depends on the text and the rasterizer.
func TextCloud(r Rasterizer, text string) ([]r3.Vec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	img, err := r.Rasterize(text, FontSize(text))
	if err != nil {
		return nil, fmt.Errorf("rasterize %q: %w", text, err)
	}
	return scan(img), nil
}

func scan(img image.Image) []r3.Vec {
	b := img.Bounds()
	cx := float64(b.Dx()) / 2
	cy := float64(b.Dy()) / 2

	gray, _ := img.(*image.Gray)
	var points []r3.Vec
	for y := 0; y < b.Dy(); y += RasterStride {
		for x := 0; x < b.Dx(); x += RasterStride {
			var lum uint8
			if gray != nil {
				lum = gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			} else {
				lum = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			}
			if lum > RasterThreshold {
				points = append(points, r3.Vec{
					X: (float64(x) - cx) * RasterScale,
					Y: -(float64(y) - cy) * RasterScale,
				})
			}
		}
	}
	return points
}

// FontRasterizer draws text with the bundled Go Bold typeface. It needs no
// system fonts or native libraries.
type FontRasterizer struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFontRasterizer parses the bundled typeface.
func NewFontRasterizer() (*FontRasterizer, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &FontRasterizer{font: f, faces: make(map[float64]font.Face)}, nil
}

// Rasterize implements Rasterizer.
func (r *FontRasterizer) Rasterize(text string, size float64) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	face, ok := r.faces[size]
	if !ok {
		var err error
		face, err = opentype.NewFace(r.font, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("font face %.0fpx: %w", size, err)
		}
		r.faces[size] = face
	}

	img := image.NewGray(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	d := &font.Drawer{Dst: img, Src: image.White, Face: face}

	m := face.Metrics()
	d.Dot = fixed.Point26_6{
		X: (fixed.I(CanvasWidth) - d.MeasureString(text)) / 2,
		Y: fixed.I(CanvasHeight)/2 + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(text)
	return img, nil
}

// Close releases cached font faces.
func (r *FontRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for size, face := range r.faces {
		if err := face.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.faces, size)
	}
	return errors.Join(errs...)
}
