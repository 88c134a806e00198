package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

type Theme struct {
	Background color.RGBA
	Block      color.RGBA
	Title      color.RGBA
	Tag        color.RGBA
	TagFocused color.RGBA
	TagText    color.RGBA
}

func DefaultTheme() Theme {
	return Theme{
		Background: color.RGBA{A: 0xff},
		Block:      color.RGBA{R: 0xff, A: 0xff},
		Title:      color.RGBA{G: 0xff, A: 0xff},
		Tag:        color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		TagFocused: color.RGBA{B: 0xff, A: 0xff},
		TagText:    color.RGBA{A: 0xff},
	}
}

// ParseColor parses an opaque "#rrggbb" color.
func ParseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Layout is the geometry policy of the bar.
type Layout struct {
	// HeightPercent is the bar height as a fraction of the output height.
	HeightPercent float64
	// TagWidthPercent is the tag cell width as a fraction of the output width.
	TagWidthPercent float64
	// BlockPadding is the space in pixels left of every block.
	BlockPadding int
}

func DefaultLayout() Layout {
	return Layout{
		HeightPercent:   0.015,
		TagWidthPercent: 0.015,
		BlockPadding:    10,
	}
}

func (l Layout) TagWidth(outputWidth int) int {
	return int(float64(outputWidth) * l.TagWidthPercent)
}

// BarHeight is never less than a pixel.
func (l Layout) BarHeight(outputHeight int) int {
	return max(1, int(float64(outputHeight)*l.HeightPercent))
}
