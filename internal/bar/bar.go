// Package bar draws blocks and window manager state onto the registered outputs.
package bar

import (
	"image"
	"log/slog"

	"github.com/ItsNotGoodName/riverbar/internal/block"
	"github.com/ItsNotGoodName/riverbar/internal/output"
	"github.com/ItsNotGoodName/riverbar/internal/render"
)

type Options struct {
	Faces  render.Faces
	Theme  render.Theme
	Layout render.Layout
}

type Bar struct {
	registry *output.Registry
	blocks   block.Set
	cache    *block.Cache
	faces    render.Faces
	theme    render.Theme
	layout   render.Layout
}

func New(registry *output.Registry, blocks block.Set, cache *block.Cache, opts Options) *Bar {
	return &Bar{
		registry: registry,
		blocks:   blocks,
		cache:    cache,
		faces:    opts.Faces,
		theme:    opts.Theme,
		layout:   opts.Layout,
	}
}

func (b *Bar) Layout() render.Layout {
	return b.layout
}

func (b *Bar) Outputs() []output.Info {
	return b.registry.Snapshot()
}

// AddOutput registers a new output and returns its index.
func (b *Bar) AddOutput(c *output.Context) (int, error) {
	index, err := b.registry.Add(c)
	if err != nil {
		return -1, err
	}
	slog.Info("Added output", "package", "bar", "output", index, "name", c.Name(), "width", c.Width(), "height", c.Height())
	return index, nil
}

// DrawBlocks redraws the block line on every ready output.
func (b *Bar) DrawBlocks(outputs []string) {
	labels := b.blocks.Labels(outputs)
	err := b.registry.Each(func(_ int, c *output.Context) error {
		return b.drawBlocks(c, labels)
	})
	if err != nil {
		slog.Error("Failed to draw blocks", "package", "bar", "error", err)
	}
}

// OutputReady marks the output as configured and draws it for the first time.
func (b *Bar) OutputReady(index int, state *render.BarState) error {
	labels := b.blocks.Labels(b.cache.Snapshot())
	return b.registry.WithOutput(index, func(c *output.Context) error {
		if !c.MarkReady() {
			return nil
		}
		slog.Debug("Output ready", "package", "bar", "output", index)

		if err := b.drawState(c, state); err != nil {
			return err
		}
		return b.drawBlocks(c, labels)
	})
}

// DrawState redraws the tags and title of an output.
func (b *Bar) DrawState(index int, state *render.BarState) error {
	if index < 0 {
		return nil
	}
	return b.registry.WithOutput(index, func(c *output.Context) error {
		return b.drawState(c, state)
	})
}

// Repaint presents rect of the last frame again.
func (b *Bar) Repaint(index int, rect image.Rectangle) error {
	return b.registry.WithOutput(index, func(c *output.Context) error {
		if !c.Ready() {
			return nil
		}
		return c.Repaint(rect)
	})
}

func (b *Bar) drawBlocks(c *output.Context, labels []string) error {
	if !c.Ready() {
		return nil
	}

	painter, done, err := b.painter()
	if err != nil {
		return err
	}
	defer done()

	canvas := render.NewCanvas(c.BackPixels(), c.Width(), c.Height())
	left, damage := render.DrawBlocks(canvas, painter, b.theme, b.layout, labels, c.BlocksLeft)
	c.BlocksLeft = left

	return c.Commit(damage)
}

func (b *Bar) drawState(c *output.Context, state *render.BarState) error {
	if !c.Ready() {
		return nil
	}

	painter, done, err := b.painter()
	if err != nil {
		return err
	}
	defer done()

	canvas := render.NewCanvas(c.BackPixels(), c.Width(), c.Height())
	damage := render.DrawState(canvas, painter, b.theme, b.layout, state)

	return c.Commit(damage)
}

func (b *Bar) painter() (render.Painter, func(), error) {
	face, err := b.faces.NewFace()
	if err != nil {
		return render.Painter{}, nil, err
	}
	return render.Painter{Face: face}, func() { face.Close() }, nil
}
