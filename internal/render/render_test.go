package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

// Every glyph of basicfont.Face7x13 is 7 pixels wide.
var painter = Painter{Face: basicfont.Face7x13}

var white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func newCanvas(width, height int) *Canvas {
	return NewCanvas(make([]byte, width*height*4), width, height)
}

func TestCanvasByteOrder(t *testing.T) {
	c := newCanvas(2, 1)
	c.Set(1, 0, color.RGBA{R: 1, G: 2, B: 3, A: 0xff})

	assert.Equal(t, []byte{0, 0, 0, 0, 3, 2, 1, 0xff}, c.Pix)
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 0xff}, c.At(1, 0))
	assert.Equal(t, color.RGBA{}, c.At(5, 5))
}

func TestCanvasFillClips(t *testing.T) {
	c := newCanvas(2, 2)
	c.Fill(image.Rect(1, -5, 10, 1), white)

	assert.Equal(t, []byte{
		0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff,
		0, 0, 0, 0, 0, 0, 0, 0,
	}, c.Pix)
}

func TestDrawBlocks(t *testing.T) {
	theme := DefaultTheme()
	layout := DefaultLayout()
	c := newCanvas(100, 13)
	c.Fill(c.Rect, white)

	left, damage := DrawBlocks(c, painter, theme, layout, []string{"ab", "c"}, c.Rect.Dx())
	assert.Equal(t, 100-14-10-7-10, left)
	assert.Equal(t, image.Rect(59, 0, 100, 13), damage)
	// Padding left of a block is background
	assert.Equal(t, theme.Background, c.At(60, 6))
	assert.Equal(t, white, c.At(58, 6))

	c.Fill(image.Rect(0, 0, 76, 13), white)
	left, damage = DrawBlocks(c, painter, theme, layout, []string{"ab"}, left)
	assert.Equal(t, 76, left)
	assert.Equal(t, image.Rect(59, 0, 100, 13), damage, "shrinking line damages the old extent")
	assert.Equal(t, theme.Background, c.At(60, 6))
	assert.Equal(t, white, c.At(58, 6))
}

func TestBarStateRendered(t *testing.T) {
	s := NewBarState("")
	s.SetViewTags([]uint32{4, 1, 4, 0})
	s.Focused = 2

	assert.Equal(t, []uint32{1, 4}, s.Tags)
	assert.Equal(t, []uint32{1, 2, 4}, s.Rendered())
	assert.Equal(t, []uint32{1, 4}, s.Tags)

	s.Focused = 4
	assert.Equal(t, []uint32{1, 4}, s.Rendered())
}

func TestTagPosition(t *testing.T) {
	assert.Equal(t, 0, TagPosition(0))
	assert.Equal(t, 1, TagPosition(0b1))
	assert.Equal(t, 3, TagPosition(0b100))
	assert.Equal(t, 32, TagPosition(1<<31))
}

func TestDrawState(t *testing.T) {
	theme := DefaultTheme()
	layout := Layout{TagWidthPercent: 0.05}
	c := newCanvas(200, 13)
	c.Fill(c.Rect, white)

	s := NewBarState("AB")
	s.SetViewTags([]uint32{1, 4})
	s.Focused = 2

	damage := DrawState(c, painter, theme, layout, s)
	assert.Equal(t, c.Rect, damage, "first draw damages the whole output")
	assert.Equal(t, theme.Background, c.At(199, 6), "first draw clears the whole output")
	assert.Equal(t, 3*10+14, s.PrevWidth)

	assert.Equal(t, theme.Tag, c.At(0, 6))
	assert.Equal(t, theme.TagFocused, c.At(10, 6))
	assert.Equal(t, theme.Tag, c.At(20, 6))

	s.Title = "A"
	damage = DrawState(c, painter, theme, layout, s)
	assert.Equal(t, image.Rect(0, 0, 44, 13), damage, "never narrower than the previous draw")
	assert.Equal(t, 37, s.PrevWidth)

	s.Title = "ABCD"
	damage = DrawState(c, painter, theme, layout, s)
	assert.Equal(t, image.Rect(0, 0, 58, 13), damage)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x80, A: 0xff}, c)

	_, err = ParseColor("orange")
	assert.Error(t, err)
}

func TestLayout(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, 16, l.BarHeight(1080))
	assert.Equal(t, 1, l.BarHeight(10))
	assert.Equal(t, 28, l.TagWidth(1920))
}

func TestLoadFont(t *testing.T) {
	f, err := LoadFont("", 12, 72)
	require.NoError(t, err)

	face, err := f.NewFace()
	require.NoError(t, err)
	defer face.Close()

	assert.Positive(t, Painter{Face: face}.Measure("riverbar"))

	_, err = LoadFont("/nonexistent/font.ttf", 12, 72)
	assert.Error(t, err)
}
