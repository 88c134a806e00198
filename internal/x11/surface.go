package x11

import (
	"errors"
	"image"

	"github.com/ItsNotGoodName/riverbar/internal/output"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// putImageHeader is the size of a PutImage request without its data.
const putImageHeader = 24

// surface copies frames to a window with PutImage. Buffers are the frame pixels.
type surface struct {
	conn   *xgb.Conn
	window xproto.Window
	gc     xproto.Gcontext
	depth  byte
	width  int
	// maxData is the largest PutImage payload in bytes.
	maxData int

	attached []byte
	damage   image.Rectangle
}

func (s *surface) Attach(b output.Buffer) error {
	pix, ok := b.([]byte)
	if !ok {
		return errors.New("not a pixel buffer")
	}
	s.attached = pix
	return nil
}

func (s *surface) Damage(rect image.Rectangle) error {
	s.damage = s.damage.Union(rect)
	return nil
}

func (s *surface) Commit() error {
	defer func() { s.damage = image.Rectangle{} }()
	if s.attached == nil || s.damage.Empty() {
		return nil
	}

	stride := s.width * output.BytesPerPixel
	for _, band := range bands(s.damage, s.maxData) {
		data := crop(s.attached, stride, band)
		err := xproto.PutImageChecked(s.conn, xproto.ImageFormatZPixmap, xproto.Drawable(s.window), s.gc,
			uint16(band.Dx()), uint16(band.Dy()), int16(band.Min.X), int16(band.Min.Y),
			0, s.depth, data).Check()
		if err != nil {
			return err
		}
	}
	return nil
}

// bands splits rect into horizontal strips that each fit in maxData bytes.
func bands(rect image.Rectangle, maxData int) []image.Rectangle {
	row := rect.Dx() * output.BytesPerPixel
	if row == 0 {
		return nil
	}

	rows := max(1, maxData/row)
	var strips []image.Rectangle
	for y := rect.Min.Y; y < rect.Max.Y; y += rows {
		strips = append(strips, image.Rect(rect.Min.X, y, rect.Max.X, min(y+rows, rect.Max.Y)))
	}
	return strips
}

// crop copies rect out of pixels into a tightly packed buffer.
func crop(pix []byte, stride int, rect image.Rectangle) []byte {
	row := rect.Dx() * output.BytesPerPixel
	data := make([]byte, 0, row*rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		start := y*stride + rect.Min.X*output.BytesPerPixel
		data = append(data, pix[start:start+row]...)
	}
	return data
}
