package render

import "image"

// DrawBlocks paints labels right to left, the first label rightmost.
// prevLeft is the left edge returned by the previous call.
// It returns the new left edge and the region that changed.
func DrawBlocks(c *Canvas, p Painter, theme Theme, layout Layout, labels []string, prevLeft int) (int, image.Rectangle) {
	width, height := c.Rect.Dx(), c.Rect.Dy()

	offset := width
	for _, label := range labels {
		next := offset - p.Measure(label) - layout.BlockPadding
		c.Fill(image.Rect(next, 0, offset, height), theme.Background)
		p.Text(c, next+layout.BlockPadding, label, theme.Block)
		offset = next
	}

	left := offset
	if prevLeft < left {
		// The line got shorter
		c.Fill(image.Rect(prevLeft, 0, left, height), theme.Background)
		left = prevLeft
	}

	return offset, image.Rect(max(left, 0), 0, width, height)
}
