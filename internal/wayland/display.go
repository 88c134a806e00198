package wayland

import (
	"errors"
	"fmt"
	"image"

	"github.com/ItsNotGoodName/riverbar/internal/output"
	"github.com/ItsNotGoodName/riverbar/internal/protocol/layershell"
	"github.com/ItsNotGoodName/riverbar/internal/protocol/riverstatus"
	"github.com/ItsNotGoodName/riverbar/internal/render"
	"github.com/ItsNotGoodName/riverbar/internal/shm"
	"github.com/yaslama/go-wayland/wayland/client"
)

// display is a wl_output and the bar surface on it.
type display struct {
	global uint32
	output *client.Output
	status *riverstatus.OutputStatus
	state  *render.BarState

	// Size of the bar, zero until the current mode is known
	width  int
	height int

	// Registry index, -1 until the surface exists
	index   int
	memory  *shm.Memory
	pool    *client.ShmPool
	surface *client.Surface
	layer   *layershell.Surface
}

func (d *display) name() string {
	return fmt.Sprintf("wl_output-%d", d.global)
}

func (d *display) hasMode() bool {
	return d.width > 0 && d.height > 0
}

func (d *display) isSetUp() bool {
	return d.index >= 0
}

// surface adapts a wl_surface to output.Surface.
type surface struct {
	s *client.Surface
}

func (s surface) Attach(b output.Buffer) error {
	buffer, ok := b.(*client.Buffer)
	if !ok {
		return errors.New("not a wl_buffer")
	}
	return s.s.Attach(buffer, 0, 0)
}

func (s surface) Damage(rect image.Rectangle) error {
	return s.s.Damage(int32(rect.Min.X), int32(rect.Min.Y), int32(rect.Dx()), int32(rect.Dy()))
}

func (s surface) Commit() error {
	return s.s.Commit()
}

// createSurface allocates two frames in one pool and creates the layer surface.
func (l *Link) createSurface(d *discovery, dp *display) (*output.Context, error) {
	frame := dp.width * dp.height * output.BytesPerPixel

	memory, err := shm.Allocate(2 * frame)
	if err != nil {
		return nil, fmt.Errorf("allocate shared memory: %w", err)
	}
	dp.memory = memory

	pool, err := d.shm.CreatePool(memory.Fd(), int32(2*frame))
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	dp.pool = pool

	var buffers [2]output.Buffer
	var pixels [2][]byte
	for i := range buffers {
		buffer, err := pool.CreateBuffer(int32(i*frame), int32(dp.width), int32(dp.height), int32(dp.width*output.BytesPerPixel), uint32(client.ShmFormatArgb8888))
		if err != nil {
			return nil, fmt.Errorf("create buffer %d: %w", i, err)
		}
		buffers[i] = buffer
		pixels[i] = memory.Slice(i*frame, frame)
	}

	wlSurface, err := d.compositor.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	dp.surface = wlSurface

	layer, err := d.layerShell.GetLayerSurface(wlSurface, dp.output, layershell.LayerTop, "statusbar")
	if err != nil {
		return nil, fmt.Errorf("get layer surface: %w", err)
	}
	dp.layer = layer

	if err := errors.Join(
		layer.SetAnchor(layershell.AnchorTop),
		layer.SetExclusiveZone(int32(dp.height)),
		layer.SetKeyboardInteractivity(layershell.KeyboardInteractivityNone),
		layer.SetSize(uint32(dp.width), uint32(dp.height)),
		wlSurface.Commit(),
	); err != nil {
		return nil, fmt.Errorf("configure layer surface: %w", err)
	}

	return output.NewContext(dp.name(), dp.width, dp.height, surface{s: wlSurface}, pixels, buffers)
}
