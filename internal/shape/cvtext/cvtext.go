// Package cvtext rasterizes shape text with OpenCV's Hershey fonts. It is
// kept apart from package shape so the simulation core builds without cgo.
package cvtext

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/particlehands/internal/shape"
	"gocv.io/x/gocv"
)

// hersheyPixels is roughly the cap height in pixels of a Hershey font at
// scale 1.
const hersheyPixels = 30.0

// Rasterizer draws text onto a single-channel OpenCV canvas.
type Rasterizer struct {
	Font      gocv.HersheyFont
	Thickness int
}

var _ shape.Rasterizer = (*Rasterizer)(nil)

// New returns a rasterizer using a bold duplex Hershey font.
func New() *Rasterizer {
	return &Rasterizer{Font: gocv.FontHersheyDuplex, Thickness: 3}
}

// Rasterize implements shape.Rasterizer.
func (r *Rasterizer) Rasterize(text string, size float64) (image.Image, error) {
	canvas := gocv.Zeros(shape.CanvasHeight, shape.CanvasWidth, gocv.MatTypeCV8UC1)
	defer canvas.Close()

	scale := size / hersheyPixels
	extent := gocv.GetTextSize(text, r.Font, scale, r.Thickness)
	origin := image.Pt((shape.CanvasWidth-extent.X)/2, (shape.CanvasHeight+extent.Y)/2)
	gocv.PutText(&canvas, text, origin, r.Font, scale, color.RGBA{R: 255, G: 255, B: 255, A: 255}, r.Thickness)

	img, err := canvas.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert canvas: %w", err)
	}
	return img, nil
}
