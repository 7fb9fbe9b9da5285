// Package canvas provides the bitmap backing store of <canvas> elements.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"github.com/mazznoer/csscolorparser"
)

// Default dimensions of a canvas without width/height attributes.
const (
	DefaultWidth  = 300
	DefaultHeight = 150
)

// Surface is a 2D drawing surface. The zero value is not usable; create
// surfaces with NewSurface.
type Surface struct {
	ctx    *gg.Context
	stroke csscolorparser.Color
}

// NewSurface creates a transparent surface. Negative dimensions are
// clamped to zero.
func NewSurface(width, height int) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Surface{ctx: gg.NewContext(width, height), stroke: csscolorparser.Color{A: 1}}
}

// Width returns the bitmap width in pixels.
func (s *Surface) Width() int { return s.ctx.Width() }

// Height returns the bitmap height in pixels.
func (s *Surface) Height() int { return s.ctx.Height() }

// Image returns the backing bitmap. Callers must not retain it across
// a Resize.
func (s *Surface) Image() *image.RGBA {
	return s.ctx.Image().(*image.RGBA)
}

// Resize replaces the bitmap with a cleared one of the given size, the way
// assigning canvas.width does.
func (s *Surface) Resize(width, height int) {
	*s = *NewSurface(width, height)
}

// SetFillStyle sets the colour used by FillRect.
func (s *Surface) SetFillStyle(value string) error {
	c, err := csscolorparser.Parse(value)
	if err != nil {
		return fmt.Errorf("canvas: fill style %q: %w", value, err)
	}
	s.ctx.SetRGBA(c.R, c.G, c.B, c.A)
	return nil
}

// FillRect paints a rectangle with the current fill style.
func (s *Surface) FillRect(x, y, w, h float64) {
	s.ctx.DrawRectangle(x, y, w, h)
	s.ctx.Fill()
}

// SetStrokeStyle sets the colour used by StrokeRect.
func (s *Surface) SetStrokeStyle(value string) error {
	c, err := csscolorparser.Parse(value)
	if err != nil {
		return fmt.Errorf("canvas: stroke style %q: %w", value, err)
	}
	s.stroke = c
	return nil
}

func (s *Surface) SetLineWidth(w float64) {
	if w > 0 {
		s.ctx.SetLineWidth(w)
	}
}

// StrokeRect outlines a rectangle with the current stroke style.
func (s *Surface) StrokeRect(x, y, w, h float64) {
	s.ctx.Push()
	s.ctx.SetRGBA(s.stroke.R, s.stroke.G, s.stroke.B, s.stroke.A)
	s.ctx.DrawRectangle(x, y, w, h)
	s.ctx.Stroke()
	s.ctx.Pop()
}

// ClearRect resets a rectangle to transparent black.
func (s *Surface) ClearRect(x, y, w, h float64) {
	r := image.Rect(int(x), int(y), int(x+w), int(y+h))
	draw.Draw(s.Image(), r, image.Transparent, image.Point{}, draw.Src)
}

// DrawImage composites img with its top-left corner at (x, y).
func (s *Surface) DrawImage(img image.Image, x, y int) {
	if img == nil {
		return
	}
	s.ctx.DrawImage(img, x, y)
}

// At returns the colour of a single pixel.
func (s *Surface) At(x, y int) color.Color {
	return s.Image().At(x, y)
}
