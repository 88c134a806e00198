package render

import (
	"image"
	"math/bits"
	"slices"
	"strconv"
)

// BarState is the window manager state shown on the left of the bar.
type BarState struct {
	// Tags are the occupied tag masks in ascending order.
	Tags    []uint32
	Focused uint32
	Title   string
	// PrevWidth is the width painted by the last draw, -1 before the first draw.
	PrevWidth int
}

func NewBarState(title string) *BarState {
	return &BarState{
		Tags:      []uint32{1},
		Focused:   1,
		Title:     title,
		PrevWidth: -1,
	}
}

// SetViewTags replaces the occupied tags.
func (s *BarState) SetViewTags(tags []uint32) {
	s.Tags = slices.DeleteFunc(slices.Clone(tags), func(t uint32) bool { return t == 0 })
	slices.Sort(s.Tags)
	s.Tags = slices.Compact(s.Tags)
}

// Rendered returns the tags to draw, the focused tag is always included.
func (s *BarState) Rendered() []uint32 {
	tags := slices.Clone(s.Tags)
	if s.Focused != 0 && !slices.Contains(tags, s.Focused) {
		tags = append(tags, s.Focused)
		slices.Sort(tags)
	}
	return tags
}

// TagPosition is the 1 based position of the highest set bit of a tag mask, 0 for no bits.
func TagPosition(mask uint32) int {
	return bits.Len32(mask)
}

// DrawState paints tag cells followed by the title and returns the region that changed.
func DrawState(c *Canvas, p Painter, theme Theme, layout Layout, state *BarState) image.Rectangle {
	width, height := c.Rect.Dx(), c.Rect.Dy()
	cell := layout.TagWidth(width)
	tags := state.Rendered()
	titleX := cell * len(tags)
	newWidth := titleX + p.Measure(state.Title)

	first := state.PrevWidth < 0
	if first {
		c.Fill(c.Rect, theme.Background)
	}

	erase := max(state.PrevWidth, newWidth)
	c.Fill(image.Rect(0, 0, erase, height), theme.Background)

	p.Text(c, titleX, state.Title, theme.Title)

	for i, tag := range tags {
		fill := theme.Tag
		if tag == state.Focused {
			fill = theme.TagFocused
		}
		x := cell * i
		c.Fill(image.Rect(x, 0, x+cell, height), fill)

		label := strconv.Itoa(TagPosition(tag))
		p.Text(c, x+(cell-p.Measure(label))/2, label, theme.TagText)
	}

	state.PrevWidth = newWidth

	if first {
		return c.Rect
	}
	return image.Rect(0, 0, min(erase, width), height)
}
