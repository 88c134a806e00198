package render

import (
	"image"
	"image/color"

	"github.com/ItsNotGoodName/riverbar/internal/output"
)

// Canvas is a draw.Image over pixels in the little endian ARGB8888 format, B G R A in memory.
type Canvas struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

func NewCanvas(pix []byte, width, height int) *Canvas {
	return &Canvas{
		Pix:    pix,
		Stride: width * output.BytesPerPixel,
		Rect:   image.Rect(0, 0, width, height),
	}
}

func (c *Canvas) ColorModel() color.Model {
	return color.RGBAModel
}

func (c *Canvas) Bounds() image.Rectangle {
	return c.Rect
}

func (c *Canvas) offset(x, y int) int {
	return y*c.Stride + x*output.BytesPerPixel
}

func (c *Canvas) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(c.Rect)) {
		return color.RGBA{}
	}
	i := c.offset(x, y)
	p := c.Pix[i : i+4 : i+4]
	return color.RGBA{R: p[2], G: p[1], B: p[0], A: p[3]}
}

func (c *Canvas) Set(x, y int, col color.Color) {
	if !(image.Point{x, y}.In(c.Rect)) {
		return
	}
	c.setRGBA(c.offset(x, y), color.RGBAModel.Convert(col).(color.RGBA))
}

func (c *Canvas) setRGBA(i int, col color.RGBA) {
	p := c.Pix[i : i+4 : i+4]
	p[0] = col.B
	p[1] = col.G
	p[2] = col.R
	p[3] = col.A
}

// Fill paints rect, clipped to the canvas.
func (c *Canvas) Fill(rect image.Rectangle, col color.RGBA) {
	rect = rect.Intersect(c.Rect)
	if rect.Empty() {
		return
	}

	row := c.offset(rect.Min.X, rect.Min.Y)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for i := row; i < row+rect.Dx()*output.BytesPerPixel; i += output.BytesPerPixel {
			c.setRGBA(i, col)
		}
		row += c.Stride
	}
}
