// Package output holds the double buffered drawing state of every bar surface.
package output

import (
	"errors"
	"fmt"
	"image"
)

// BytesPerPixel of the 32 bit BGRA pixel format shared with the display server.
const BytesPerPixel = 4

var ErrNotReady = errors.New("output is not ready")

// Buffer is a display server handle for one frame of pixels.
type Buffer any

// Surface presents buffers on the display server.
type Surface interface {
	Attach(buffer Buffer) error
	Damage(rect image.Rectangle) error
	Commit() error
}

// Context is one bar surface with two frames of pixels.
// The front frame is what the display server last received, drawing happens on the back frame.
type Context struct {
	name    string
	width   int
	height  int
	surface Surface
	pixels  [2][]byte
	buffers [2]Buffer
	front   int
	ready   bool
	// stale is the region of the back frame that is older than the front frame.
	stale image.Rectangle

	// BlocksLeft is the left edge of the block line drawn last.
	BlocksLeft int
}

func NewContext(name string, width, height int, surface Surface, pixels [2][]byte, buffers [2]Buffer) (*Context, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid output size %dx%d", width, height)
	}

	size := width * height * BytesPerPixel
	for i := range pixels {
		if len(pixels[i]) != size {
			return nil, fmt.Errorf("frame %d has %d bytes, want %d", i, len(pixels[i]), size)
		}
	}

	return &Context{
		name:    name,
		width:   width,
		height:  height,
		surface: surface,
		pixels:  pixels,
		buffers: buffers,
		// First draw goes to frame 0
		front:      1,
		BlocksLeft: width,
	}, nil
}

func (c *Context) Name() string {
	return c.name
}

func (c *Context) Width() int {
	return c.width
}

func (c *Context) Height() int {
	return c.height
}

func (c *Context) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

func (c *Context) Stride() int {
	return c.width * BytesPerPixel
}

func (c *Context) Ready() bool {
	return c.ready
}

// MarkReady returns true only the first time it is called.
func (c *Context) MarkReady() bool {
	if c.ready {
		return false
	}
	c.ready = true
	return true
}

// Front is the index of the frame last committed.
func (c *Context) Front() int {
	return c.front
}

func (c *Context) Back() int {
	return 1 - c.front
}

func (c *Context) FrontPixels() []byte {
	return c.pixels[c.front]
}

// BackPixels returns the frame to draw on.
// Pixels the display server received after this frame was last used are copied over first.
func (c *Context) BackPixels() []byte {
	back, front := c.pixels[c.Back()], c.pixels[c.front]
	if !c.stale.Empty() {
		stride := c.Stride()
		for y := c.stale.Min.Y; y < c.stale.Max.Y; y++ {
			start := y*stride + c.stale.Min.X*BytesPerPixel
			end := y*stride + c.stale.Max.X*BytesPerPixel
			copy(back[start:end], front[start:end])
		}
		c.stale = image.Rectangle{}
	}
	return back
}

// Commit presents the back frame with damage and swaps the frames.
func (c *Context) Commit(damage image.Rectangle) error {
	if !c.ready {
		return ErrNotReady
	}

	damage = damage.Intersect(c.Bounds())
	back := c.Back()

	if err := c.surface.Attach(c.buffers[back]); err != nil {
		return fmt.Errorf("attach: %w", err)
	}
	if err := c.surface.Damage(damage); err != nil {
		return fmt.Errorf("damage: %w", err)
	}
	if err := c.surface.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	c.front = back
	c.stale = damage
	return nil
}

// Repaint presents the front frame again without swapping.
func (c *Context) Repaint(rect image.Rectangle) error {
	if !c.ready {
		return ErrNotReady
	}

	rect = rect.Intersect(c.Bounds())
	if rect.Empty() {
		return nil
	}

	if err := c.surface.Attach(c.buffers[c.front]); err != nil {
		return fmt.Errorf("attach: %w", err)
	}
	if err := c.surface.Damage(rect); err != nil {
		return fmt.Errorf("damage: %w", err)
	}
	if err := c.surface.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
