// Package riverstatus is a client for the river-status-unstable-v1 protocol.
package riverstatus

import (
	"github.com/ItsNotGoodName/riverbar/internal/protocol/wire"
	"github.com/yaslama/go-wayland/wayland/client"
)

const ManagerInterface = "zriver_status_manager_v1"

type Manager struct {
	client.BaseProxy
}

func NewManager(ctx *client.Context) *Manager {
	m := &Manager{}
	ctx.Register(m)
	return m
}

func (m *Manager) Destroy() error {
	defer m.Context().Unregister(m)
	return m.Context().WriteMsg(wire.NewRequest(m.ID(), 0).Bytes(), nil)
}

func (m *Manager) GetOutputStatus(output *client.Output) (*OutputStatus, error) {
	id := NewOutputStatus(m.Context())
	req := wire.NewRequest(m.ID(), 1).Uint32(id.ID()).Uint32(output.ID())
	return id, m.Context().WriteMsg(req.Bytes(), nil)
}

func (m *Manager) GetSeatStatus(seat *client.Seat) (*SeatStatus, error) {
	id := NewSeatStatus(m.Context())
	req := wire.NewRequest(m.ID(), 2).Uint32(id.ID()).Uint32(seat.ID())
	return id, m.Context().WriteMsg(req.Bytes(), nil)
}

func (m *Manager) Dispatch(opcode uint32, fd int, data []byte) {}

// OutputStatus reports the tags of one output.
type OutputStatus struct {
	client.BaseProxy
	focusedTagsHandler     func(tags uint32)
	viewTagsHandler        func(tags []uint32)
	urgentTagsHandler      func(tags uint32)
	layoutNameHandler      func(name string)
	layoutNameClearHandler func()
}

func NewOutputStatus(ctx *client.Context) *OutputStatus {
	s := &OutputStatus{}
	ctx.Register(s)
	return s
}

func (s *OutputStatus) Destroy() error {
	defer s.Context().Unregister(s)
	return s.Context().WriteMsg(wire.NewRequest(s.ID(), 0).Bytes(), nil)
}

// SetFocusedTagsHandler is called with the mask of focused tags.
func (s *OutputStatus) SetFocusedTagsHandler(f func(tags uint32)) {
	s.focusedTagsHandler = f
}

// SetViewTagsHandler is called with the tag mask of every view on the output.
func (s *OutputStatus) SetViewTagsHandler(f func(tags []uint32)) {
	s.viewTagsHandler = f
}

func (s *OutputStatus) SetUrgentTagsHandler(f func(tags uint32)) {
	s.urgentTagsHandler = f
}

func (s *OutputStatus) SetLayoutNameHandler(f func(name string)) {
	s.layoutNameHandler = f
}

func (s *OutputStatus) SetLayoutNameClearHandler(f func()) {
	s.layoutNameClearHandler = f
}

func (s *OutputStatus) Dispatch(opcode uint32, fd int, data []byte) {
	d := wire.NewDecoder(data)
	switch opcode {
	case 0:
		if tags := d.Uint32(); s.focusedTagsHandler != nil && d.Err() == nil {
			s.focusedTagsHandler(tags)
		}
	case 1:
		if tags := d.Uint32Array(); s.viewTagsHandler != nil && d.Err() == nil {
			s.viewTagsHandler(tags)
		}
	case 2:
		if tags := d.Uint32(); s.urgentTagsHandler != nil && d.Err() == nil {
			s.urgentTagsHandler(tags)
		}
	case 3:
		if name := d.String(); s.layoutNameHandler != nil && d.Err() == nil {
			s.layoutNameHandler(name)
		}
	case 4:
		if s.layoutNameClearHandler != nil {
			s.layoutNameClearHandler()
		}
	}
}

// SeatStatus reports the focus of one seat.
type SeatStatus struct {
	client.BaseProxy
	focusedOutputHandler   func(outputID uint32)
	unfocusedOutputHandler func(outputID uint32)
	focusedViewHandler     func(title string)
	modeHandler            func(name string)
}

func NewSeatStatus(ctx *client.Context) *SeatStatus {
	s := &SeatStatus{}
	ctx.Register(s)
	return s
}

func (s *SeatStatus) Destroy() error {
	defer s.Context().Unregister(s)
	return s.Context().WriteMsg(wire.NewRequest(s.ID(), 0).Bytes(), nil)
}

// SetFocusedOutputHandler is called with the object id of the wl_output that gained focus.
func (s *SeatStatus) SetFocusedOutputHandler(f func(outputID uint32)) {
	s.focusedOutputHandler = f
}

func (s *SeatStatus) SetUnfocusedOutputHandler(f func(outputID uint32)) {
	s.unfocusedOutputHandler = f
}

// SetFocusedViewHandler is called with the title of the focused view.
func (s *SeatStatus) SetFocusedViewHandler(f func(title string)) {
	s.focusedViewHandler = f
}

func (s *SeatStatus) SetModeHandler(f func(name string)) {
	s.modeHandler = f
}

func (s *SeatStatus) Dispatch(opcode uint32, fd int, data []byte) {
	d := wire.NewDecoder(data)
	switch opcode {
	case 0:
		if id := d.Uint32(); s.focusedOutputHandler != nil && d.Err() == nil {
			s.focusedOutputHandler(id)
		}
	case 1:
		if id := d.Uint32(); s.unfocusedOutputHandler != nil && d.Err() == nil {
			s.unfocusedOutputHandler(id)
		}
	case 2:
		if title := d.String(); s.focusedViewHandler != nil && d.Err() == nil {
			s.focusedViewHandler(title)
		}
	case 3:
		if name := d.String(); s.modeHandler != nil && d.Err() == nil {
			s.modeHandler(name)
		}
	}
}
