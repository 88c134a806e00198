// Package x11 shows the bar as EWMH dock windows on X11 window managers.
package x11

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/ItsNotGoodName/riverbar/internal/bar"
	"github.com/ItsNotGoodName/riverbar/internal/output"
	"github.com/ItsNotGoodName/riverbar/internal/render"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

var (
	ErrQuit             = errors.New("quit key pressed")
	ErrConnectionClosed = errors.New("x11 connection closed")
)

// X keycode of the escape key with the evdev keymap.
const keyEscape = 9

type Options struct {
	Title  string
	Layout render.Layout
}

type Link struct {
	bar    *bar.Bar
	title  string
	layout render.Layout
	conn   atomic.Pointer[xgb.Conn]
}

func New(b *bar.Bar, opts Options) *Link {
	return &Link{bar: b, title: opts.Title, layout: opts.Layout}
}

func (l *Link) String() string {
	return "x11.Link"
}

// Flush waits until the server has processed every request.
func (l *Link) Flush() error {
	conn := l.conn.Load()
	if conn == nil {
		return nil
	}
	_, err := xproto.GetInputFocus(conn).Reply()
	return err
}

// Serve connects to the server named by DISPLAY and handles events until an error.
func (l *Link) Serve(ctx context.Context) error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	l.conn.Store(conn)
	defer l.conn.Store(nil)

	s, err := newSession(l, conn)
	if err != nil {
		return err
	}

	eventC := make(chan any)
	go ReceiveEvents(ctx, conn, eventC)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventC:
			if !ok {
				return ErrConnectionClosed
			}
			if err := s.handle(ev); err != nil {
				return err
			}
		}
	}
}

// ReceiveEvents sends X events to eventC until the connection closes.
func ReceiveEvents(ctx context.Context, conn *xgb.Conn, eventC chan<- any) {
	defer close(eventC)

	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			slog.Debug("exit: no event or error", "package", "x11")
			return
		}

		if err != nil {
			// Errors of unchecked requests
			slog.Error("Failed request", "package", "x11", "error", err)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case eventC <- ev:
		}
	}
}

type dock struct {
	window  xproto.Window
	monitor image.Rectangle
	index   int
	state   *render.BarState
	exposed image.Rectangle
}

type session struct {
	link   *Link
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	atoms  atoms
	docks  []*dock
	active xproto.Window
}

func newSession(l *Link, conn *xgb.Conn) (*session, error) {
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	if err := checkFormat(setup, screen.RootDepth); err != nil {
		return nil, err
	}

	a, err := internAtoms(conn)
	if err != nil {
		return nil, err
	}

	s := &session{link: l, conn: conn, screen: screen, atoms: a}

	cursor, err := createCursor(conn, cursorLeftPtr)
	if err != nil {
		return nil, fmt.Errorf("create cursor: %w", err)
	}

	if err := xproto.ChangeWindowAttributesChecked(conn, screen.Root, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, fmt.Errorf("select root events: %w", err)
	}

	for _, monitor := range monitors(conn, screen) {
		d, err := s.createDock(monitor, cursor, int(setup.MaximumRequestLength)*4-putImageHeader)
		if err != nil {
			return nil, err
		}
		s.docks = append(s.docks, d)
	}

	s.refreshFocused()
	s.refreshViewTags()
	s.refreshActive()

	for _, d := range s.docks {
		if err := xproto.MapWindowChecked(conn, d.window).Check(); err != nil {
			return nil, fmt.Errorf("map window: %w", err)
		}
	}

	return s, nil
}

// checkFormat requires 32 bit little endian pixels so frames can be sent as is.
func checkFormat(setup *xproto.SetupInfo, depth byte) error {
	if setup.ImageByteOrder != xproto.ImageOrderLSBFirst {
		return errors.New("x11 server is not little endian")
	}
	if depth != 24 && depth != 32 {
		return fmt.Errorf("unsupported root depth %d", depth)
	}
	for _, f := range setup.PixmapFormats {
		if f.Depth == depth && f.BitsPerPixel == 32 {
			return nil
		}
	}
	return fmt.Errorf("no 32 bits per pixel format for depth %d", depth)
}

// monitors returns the active CRTCs, or the whole screen without RandR.
func monitors(conn *xgb.Conn, screen *xproto.ScreenInfo) []image.Rectangle {
	whole := []image.Rectangle{image.Rect(0, 0, int(screen.WidthInPixels), int(screen.HeightInPixels))}

	if err := randr.Init(conn); err != nil {
		slog.Debug("RandR not available", "package", "x11", "error", err)
		return whole
	}

	resources, err := randr.GetScreenResourcesCurrent(conn, screen.Root).Reply()
	if err != nil {
		slog.Warn("Failed to get screen resources", "package", "x11", "error", err)
		return whole
	}

	var rects []image.Rectangle
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			slog.Warn("Failed to get crtc info", "package", "x11", "crtc", crtc, "error", err)
			continue
		}
		if info.Width == 0 || info.Height == 0 || info.NumOutputs == 0 {
			continue
		}
		rects = append(rects, image.Rect(int(info.X), int(info.Y), int(info.X)+int(info.Width), int(info.Y)+int(info.Height)))
	}

	if len(rects) == 0 {
		return whole
	}
	return rects
}

func (s *session) createDock(monitor image.Rectangle, cursor xproto.Cursor, maxData int) (*dock, error) {
	conn, screen := s.conn, s.screen
	width, height := monitor.Dx(), s.link.layout.BarHeight(monitor.Dy())

	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	if err := xproto.CreateWindowChecked(conn, screen.RootDepth,
		window, screen.Root,
		int16(monitor.Min.X), int16(monitor.Min.Y), uint16(width), uint16(height), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask|xproto.CwCursor, // 1, 2, 3
		[]uint32{
			screen.BlackPixel, // 1
			xproto.EventMaskExposure |
				xproto.EventMaskStructureNotify |
				xproto.EventMaskKeyPress, // 2
			uint32(cursor), // 3
		}).Check(); err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	a := s.atoms
	if err := errors.Join(
		changeAtoms(conn, window, a.wmWindowType, a.wmWindowTypeDock),
		changeAtoms(conn, window, a.wmState, a.wmStateSticky, a.wmStateAbove),
		changeProperty32(conn, window, a.wmDesktop, xproto.AtomCardinal, desktopAll),
		changeProperty32(conn, window, a.wmStrut, xproto.AtomCardinal, 0, 0, uint32(monitor.Min.Y+height), 0),
		changeProperty32(conn, window, a.wmStrutPartial, xproto.AtomCardinal, strutPartial(monitor.Min.Y, height, monitor.Min.X, width)...),
	); err != nil {
		return nil, fmt.Errorf("set dock properties: %w", err)
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(window), 0, nil).Check(); err != nil {
		return nil, fmt.Errorf("create gc: %w", err)
	}

	size := width * height * output.BytesPerPixel
	pixels := [2][]byte{make([]byte, size), make([]byte, size)}
	c, err := output.NewContext(fmt.Sprintf("x11-%d", window), width, height, &surface{
		conn:    conn,
		window:  window,
		gc:      gc,
		depth:   screen.RootDepth,
		width:   width,
		maxData: maxData,
	}, pixels, [2]output.Buffer{pixels[0], pixels[1]})
	if err != nil {
		return nil, err
	}

	index, err := s.link.bar.AddOutput(c)
	if err != nil {
		return nil, err
	}

	return &dock{
		window:  window,
		monitor: monitor,
		index:   index,
		state:   render.NewBarState(s.link.title),
	}, nil
}

func (s *session) dock(window xproto.Window) *dock {
	for _, d := range s.docks {
		if d.window == window {
			return d
		}
	}
	return nil
}

func (s *session) handle(ev any) error {
	switch ev := ev.(type) {
	case xproto.MapNotifyEvent:
		if d := s.dock(ev.Window); d != nil {
			return s.link.bar.OutputReady(d.index, d.state)
		}
	case xproto.ExposeEvent:
		d := s.dock(ev.Window)
		if d == nil {
			return nil
		}
		d.exposed = d.exposed.Union(image.Rect(int(ev.X), int(ev.Y), int(ev.X)+int(ev.Width), int(ev.Y)+int(ev.Height)))
		if ev.Count > 0 {
			return nil
		}
		rect := d.exposed
		d.exposed = image.Rectangle{}
		return s.link.bar.Repaint(d.index, rect)
	case xproto.PropertyNotifyEvent:
		if s.property(ev) {
			return s.drawState()
		}
	case xproto.KeyPressEvent:
		if ev.Detail == keyEscape {
			slog.Debug("exit: quit key pressed", "package", "x11")
			return ErrQuit
		}
	case xproto.DestroyNotifyEvent:
		if s.dock(ev.Window) != nil {
			return errors.New("dock window destroyed")
		}
	}
	return nil
}

// property refreshes the state a property change affects and reports whether it changed.
func (s *session) property(ev xproto.PropertyNotifyEvent) bool {
	a, root := s.atoms, s.screen.Root
	switch {
	case ev.Window == root && ev.Atom == a.currentDesktop:
		s.refreshFocused()
	case ev.Window == root && ev.Atom == a.clientList:
		s.refreshViewTags()
	case ev.Window == root && ev.Atom == a.activeWindow:
		s.refreshActive()
	case ev.Window != root && ev.Atom == a.wmDesktop:
		s.refreshViewTags()
	case ev.Window == s.active && (ev.Atom == a.wmName || ev.Atom == xproto.AtomWmName):
		s.refreshTitle()
	default:
		return false
	}
	return true
}

func (s *session) drawState() error {
	for _, d := range s.docks {
		if err := s.link.bar.DrawState(d.index, d.state); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) refreshFocused() {
	desktop, ok, err := cardinal(s.conn, s.screen.Root, s.atoms.currentDesktop)
	if err != nil {
		slog.Warn("Failed to get current desktop", "package", "x11", "error", err)
		return
	}
	if !ok {
		return
	}
	for _, d := range s.docks {
		d.state.Focused = desktopMask(desktop)
	}
}

func (s *session) refreshViewTags() {
	clients, err := cardinals(s.conn, s.screen.Root, s.atoms.clientList)
	if err != nil {
		slog.Warn("Failed to get client list", "package", "x11", "error", err)
		return
	}

	var tags []uint32
	for _, c := range clients {
		window := xproto.Window(c)
		if s.dock(window) != nil {
			continue
		}
		// Follow desktop changes of every client
		xproto.ChangeWindowAttributes(s.conn, window, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange})

		desktop, ok, err := cardinal(s.conn, window, s.atoms.wmDesktop)
		if err != nil || !ok {
			continue
		}
		tags = append(tags, desktopMask(desktop))
	}

	for _, d := range s.docks {
		d.state.SetViewTags(tags)
	}
}

func (s *session) refreshActive() {
	active, ok, err := cardinal(s.conn, s.screen.Root, s.atoms.activeWindow)
	if err != nil {
		slog.Warn("Failed to get active window", "package", "x11", "error", err)
		return
	}
	if !ok {
		active = 0
	}
	s.active = xproto.Window(active)
	if s.active != 0 {
		xproto.ChangeWindowAttributes(s.conn, s.active, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange})
	}
	s.refreshTitle()
}

func (s *session) refreshTitle() {
	title := s.link.title
	if s.active != 0 {
		name, err := text(s.conn, s.active, s.atoms.wmName)
		if err == nil && name == "" {
			name, err = text(s.conn, s.active, xproto.AtomWmName)
		}
		if err != nil {
			slog.Debug("Failed to get window title", "package", "x11", "window", s.active, "error", err)
		}
		if name != "" {
			title = name
		}
	}

	for _, d := range s.docks {
		d.state.Title = title
	}
}
