// Package wayland shows the bar on river through wlr-layer-shell and river-status.
package wayland

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/riverbar/internal/bar"
	"github.com/ItsNotGoodName/riverbar/internal/protocol/layershell"
	"github.com/ItsNotGoodName/riverbar/internal/protocol/riverstatus"
	"github.com/ItsNotGoodName/riverbar/internal/render"
	"github.com/yaslama/go-wayland/wayland/client"
	"golang.org/x/sys/unix"
)

var ErrQuit = errors.New("quit key pressed")

// Linux evdev code of the escape key.
const keyEscape = 1

type Options struct {
	Title  string
	Layout render.Layout
}

type Link struct {
	bar    *bar.Bar
	title  string
	layout render.Layout
}

func New(b *bar.Bar, opts Options) *Link {
	return &Link{bar: b, title: opts.Title, layout: opts.Layout}
}

func (l *Link) String() string {
	return "wayland.Link"
}

// Flush is a no-op, requests are written as they are made.
func (l *Link) Flush() error {
	return nil
}

// Serve connects to the compositor named by WAYLAND_DISPLAY and dispatches events until an error.
func (l *Link) Serve(ctx context.Context) error {
	display, err := client.Connect("")
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	s := &session{
		link:      l,
		ctx:       display.Context(),
		title:     l.title,
		discovery: &discovery{},
	}

	display.SetErrorHandler(func(e client.DisplayErrorEvent) {
		s.fail(fmt.Errorf("display error %d: %s", e.Code, e.Message))
	})

	registry, err := display.GetRegistry()
	if err != nil {
		s.ctx.Close()
		return fmt.Errorf("get registry: %w", err)
	}
	s.registry = registry
	registry.SetGlobalHandler(s.global)
	registry.SetGlobalRemoveHandler(s.globalRemove)

	callback, err := display.Sync()
	if err != nil {
		s.ctx.Close()
		return fmt.Errorf("sync: %w", err)
	}
	callback.SetDoneHandler(func(client.CallbackDoneEvent) {
		s.initialGlobals()
	})

	errC := make(chan error, 1)
	go func() { errC <- s.dispatch() }()

	select {
	case <-ctx.Done():
		s.ctx.Close()
		<-errC
		return ctx.Err()
	case err := <-errC:
		s.ctx.Close()
		return err
	}
}

// session is the state of one connection, only touched by the dispatch goroutine.
type session struct {
	link      *Link
	ctx       *client.Context
	registry  *client.Registry
	title     string
	discovery *discovery
	err       error
	quit      bool
}

func (s *session) dispatch() error {
	for {
		if err := s.ctx.Dispatch(); err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
		if s.err != nil {
			return s.err
		}
		if s.quit {
			return ErrQuit
		}
	}
}

func (s *session) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *session) global(e client.RegistryGlobalEvent) {
	d := s.discovery

	var err error
	switch e.Interface {
	case "wl_compositor":
		d.compositor = client.NewCompositor(s.ctx)
		err = s.registry.Bind(e.Name, e.Interface, min(e.Version, 4), d.compositor)
	case "wl_shm":
		d.shm = client.NewShm(s.ctx)
		err = s.registry.Bind(e.Name, e.Interface, 1, d.shm)
	case "wl_output":
		dp := &display{
			global: e.Name,
			output: client.NewOutput(s.ctx),
			state:  render.NewBarState(s.title),
			index:  -1,
		}
		dp.output.SetModeHandler(func(ev client.OutputModeEvent) { s.mode(dp, ev) })
		d.displays = append(d.displays, dp)
		err = s.registry.Bind(e.Name, e.Interface, min(e.Version, 3), dp.output)
		s.outputStatus(dp)
	case "wl_seat":
		if d.seat != nil {
			return
		}
		d.seat = client.NewSeat(s.ctx)
		d.seat.SetCapabilitiesHandler(s.capabilities)
		err = s.registry.Bind(e.Name, e.Interface, min(e.Version, 5), d.seat)
	case layershell.ShellInterface:
		d.layerShell = layershell.NewShell(s.ctx)
		err = s.registry.Bind(e.Name, e.Interface, 1, d.layerShell)
	case riverstatus.ManagerInterface:
		d.statusManager = riverstatus.NewManager(s.ctx)
		err = s.registry.Bind(e.Name, e.Interface, min(e.Version, 2), d.statusManager)
	default:
		return
	}
	if err != nil {
		s.fail(fmt.Errorf("bind %s: %w", e.Interface, err))
		return
	}

	slog.Debug("Bound global", "package", "wayland", "interface", e.Interface, "version", e.Version)
	s.advance()
}

func (s *session) globalRemove(e client.RegistryGlobalRemoveEvent) {
	if dp, i := s.discovery.displayByGlobal(e.Name); dp != nil {
		slog.Warn("Output removed, its bar is left as is", "package", "wayland", "display", i, "output", dp.index)
	}
}

func (s *session) initialGlobals() {
	if err := s.discovery.ready(); err != nil {
		s.fail(err)
		return
	}
	slog.Debug("Initial globals bound", "package", "wayland", "displays", len(s.discovery.displays))
	s.advance()
}

// advance runs whatever the current phase allows.
func (s *session) advance() {
	d := s.discovery

	if d.bound() {
		slog.Debug("Required globals bound", "package", "wayland")

		seatStatus, err := d.statusManager.GetSeatStatus(d.seat)
		if err != nil {
			s.fail(fmt.Errorf("get seat status: %w", err))
			return
		}
		seatStatus.SetFocusedViewHandler(s.focusedView)
		seatStatus.SetFocusedOutputHandler(func(id uint32) {
			slog.Debug("Focused output", "package", "wayland", "id", id)
		})
		d.seatStatus = seatStatus

		for _, dp := range d.displays {
			s.outputStatus(dp)
		}
	}

	if d.phase != PhaseReady {
		return
	}
	for _, dp := range d.displays {
		s.setup(dp)
	}
}

func (s *session) outputStatus(dp *display) {
	d := s.discovery
	if d.phase == PhaseDiscovering || dp.status != nil {
		return
	}

	status, err := d.statusManager.GetOutputStatus(dp.output)
	if err != nil {
		s.fail(fmt.Errorf("get output status: %w", err))
		return
	}
	status.SetFocusedTagsHandler(func(tags uint32) {
		dp.state.Focused = tags
		s.drawState(dp)
	})
	status.SetViewTagsHandler(func(tags []uint32) {
		dp.state.SetViewTags(tags)
		s.drawState(dp)
	})
	dp.status = status
}

func (s *session) mode(dp *display, e client.OutputModeEvent) {
	if e.Flags&uint32(client.OutputModeCurrent) == 0 || dp.hasMode() {
		return
	}

	dp.width = int(e.Width)
	dp.height = s.link.layout.BarHeight(int(e.Height))
	slog.Debug("Output mode", "package", "wayland", "output", dp.name(), "width", e.Width, "height", e.Height, "bar-height", dp.height)

	s.advance()
}

func (s *session) setup(dp *display) {
	if dp.isSetUp() || !dp.hasMode() || s.err != nil {
		return
	}

	c, err := s.link.createSurface(s.discovery, dp)
	if err != nil {
		s.fail(fmt.Errorf("%s: %w", dp.name(), err))
		return
	}

	index, err := s.link.bar.AddOutput(c)
	if err != nil {
		s.fail(err)
		return
	}
	dp.index = index

	dp.layer.SetConfigureHandler(func(e layershell.ConfigureEvent) {
		if err := dp.layer.AckConfigure(e.Serial); err != nil {
			s.fail(fmt.Errorf("ack configure: %w", err))
			return
		}
		if err := s.link.bar.OutputReady(dp.index, dp.state); err != nil {
			s.fail(fmt.Errorf("%s: %w", dp.name(), err))
		}
	})
	dp.layer.SetClosedHandler(func() {
		slog.Warn("Layer surface closed", "package", "wayland", "output", dp.index)
	})
}

func (s *session) focusedView(title string) {
	s.title = title
	for _, dp := range s.discovery.displays {
		dp.state.Title = title
		s.drawState(dp)
	}
}

func (s *session) drawState(dp *display) {
	if !dp.isSetUp() {
		return
	}
	if err := s.link.bar.DrawState(dp.index, dp.state); err != nil {
		s.fail(fmt.Errorf("%s: %w", dp.name(), err))
	}
}

func (s *session) capabilities(e client.SeatCapabilitiesEvent) {
	d := s.discovery
	if e.Capabilities&uint32(client.SeatCapabilityKeyboard) == 0 || d.keyboard != nil {
		return
	}

	keyboard, err := d.seat.GetKeyboard()
	if err != nil {
		s.fail(fmt.Errorf("get keyboard: %w", err))
		return
	}
	keyboard.SetKeymapHandler(func(e client.KeyboardKeymapEvent) {
		unix.Close(e.Fd)
	})
	keyboard.SetKeyHandler(func(e client.KeyboardKeyEvent) {
		if e.Key == keyEscape && e.State == uint32(client.KeyboardKeyStatePressed) {
			slog.Debug("exit: quit key pressed", "package", "wayland")
			s.quit = true
		}
	})
	d.keyboard = keyboard
}
