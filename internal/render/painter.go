package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Painter draws single line text onto a canvas.
type Painter struct {
	Face font.Face
}

// Measure returns the advance width of s in whole pixels.
func (p Painter) Measure(s string) int {
	return font.MeasureString(p.Face, s).Ceil()
}

// Text draws s at x with the line vertically centred.
func (p Painter) Text(c *Canvas, x int, s string, col color.RGBA) {
	if s == "" {
		return
	}

	m := p.Face.Metrics()
	height := fixed.I(c.Rect.Dy())
	baseline := (height + m.Ascent - m.Descent) / 2

	d := font.Drawer{
		Dst:  c,
		Src:  image.NewUniform(col),
		Face: p.Face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: baseline},
	}
	d.DrawString(s)
}
