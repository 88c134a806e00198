// Package layershell is a client for the wlr-layer-shell-unstable-v1 protocol.
package layershell

import (
	"github.com/ItsNotGoodName/riverbar/internal/protocol/wire"
	"github.com/yaslama/go-wayland/wayland/client"
)

const ShellInterface = "zwlr_layer_shell_v1"

type Layer uint32

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

type Anchor uint32

const (
	AnchorTop    Anchor = 1
	AnchorBottom Anchor = 2
	AnchorLeft   Anchor = 4
	AnchorRight  Anchor = 8
)

type KeyboardInteractivity uint32

const (
	KeyboardInteractivityNone      KeyboardInteractivity = 0
	KeyboardInteractivityExclusive KeyboardInteractivity = 1
	KeyboardInteractivityOnDemand  KeyboardInteractivity = 2
)

// Shell creates layer surfaces.
type Shell struct {
	client.BaseProxy
}

func NewShell(ctx *client.Context) *Shell {
	s := &Shell{}
	ctx.Register(s)
	return s
}

// GetLayerSurface assigns the layer role to surface. A nil output lets the compositor choose.
func (s *Shell) GetLayerSurface(surface *client.Surface, output *client.Output, layer Layer, namespace string) (*Surface, error) {
	id := NewSurface(s.Context())

	var outputID uint32
	if output != nil {
		outputID = output.ID()
	}

	req := wire.NewRequest(s.ID(), 0).
		Uint32(id.ID()).
		Uint32(surface.ID()).
		Uint32(outputID).
		Uint32(uint32(layer)).
		String(namespace)
	return id, s.Context().WriteMsg(req.Bytes(), nil)
}

func (s *Shell) Destroy() error {
	defer s.Context().Unregister(s)
	return s.Context().WriteMsg(wire.NewRequest(s.ID(), 1).Bytes(), nil)
}

func (s *Shell) Dispatch(opcode uint32, fd int, data []byte) {}

type ConfigureEvent struct {
	Serial uint32
	Width  uint32
	Height uint32
}

// Surface is a layer surface.
type Surface struct {
	client.BaseProxy
	configureHandler func(ConfigureEvent)
	closedHandler    func()
}

func NewSurface(ctx *client.Context) *Surface {
	s := &Surface{}
	ctx.Register(s)
	return s
}

func (s *Surface) write(req *wire.Request) error {
	return s.Context().WriteMsg(req.Bytes(), nil)
}

func (s *Surface) SetSize(width, height uint32) error {
	return s.write(wire.NewRequest(s.ID(), 0).Uint32(width).Uint32(height))
}

func (s *Surface) SetAnchor(anchor Anchor) error {
	return s.write(wire.NewRequest(s.ID(), 1).Uint32(uint32(anchor)))
}

func (s *Surface) SetExclusiveZone(zone int32) error {
	return s.write(wire.NewRequest(s.ID(), 2).Int32(zone))
}

func (s *Surface) SetMargin(top, right, bottom, left int32) error {
	return s.write(wire.NewRequest(s.ID(), 3).Int32(top).Int32(right).Int32(bottom).Int32(left))
}

func (s *Surface) SetKeyboardInteractivity(k KeyboardInteractivity) error {
	return s.write(wire.NewRequest(s.ID(), 4).Uint32(uint32(k)))
}

func (s *Surface) AckConfigure(serial uint32) error {
	return s.write(wire.NewRequest(s.ID(), 6).Uint32(serial))
}

func (s *Surface) Destroy() error {
	defer s.Context().Unregister(s)
	return s.write(wire.NewRequest(s.ID(), 7))
}

func (s *Surface) SetConfigureHandler(f func(ConfigureEvent)) {
	s.configureHandler = f
}

func (s *Surface) SetClosedHandler(f func()) {
	s.closedHandler = f
}

func (s *Surface) Dispatch(opcode uint32, fd int, data []byte) {
	switch opcode {
	case 0:
		if s.configureHandler == nil {
			return
		}
		d := wire.NewDecoder(data)
		e := ConfigureEvent{Serial: d.Uint32(), Width: d.Uint32(), Height: d.Uint32()}
		if d.Err() != nil {
			return
		}
		s.configureHandler(e)
	case 1:
		if s.closedHandler != nil {
			s.closedHandler()
		}
	}
}
