package wayland

import (
	"fmt"

	"github.com/ItsNotGoodName/riverbar/internal/protocol/layershell"
	"github.com/ItsNotGoodName/riverbar/internal/protocol/riverstatus"
	"github.com/yaslama/go-wayland/wayland/client"
)

// Phase is the initialization state of the connection.
type Phase int

const (
	// PhaseDiscovering is waiting for the required globals.
	PhaseDiscovering Phase = iota
	// PhaseCoreBound has every required global bound.
	PhaseCoreBound
	// PhaseReady has seen the initial globals and sets up outputs as they appear.
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseDiscovering:
		return "discovering"
	case PhaseCoreBound:
		return "core-bound"
	case PhaseReady:
		return "ready"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// discovery holds every global bound from the registry.
type discovery struct {
	phase         Phase
	compositor    *client.Compositor
	shm           *client.Shm
	layerShell    *layershell.Shell
	statusManager *riverstatus.Manager
	seat          *client.Seat
	seatStatus    *riverstatus.SeatStatus
	keyboard      *client.Keyboard
	displays      []*display
}

// missing returns the interfaces of required globals that are not bound.
func (d *discovery) missing() []string {
	var missing []string
	if d.compositor == nil {
		missing = append(missing, "wl_compositor")
	}
	if d.shm == nil {
		missing = append(missing, "wl_shm")
	}
	if d.layerShell == nil {
		missing = append(missing, layershell.ShellInterface)
	}
	if d.statusManager == nil {
		missing = append(missing, riverstatus.ManagerInterface)
	}
	if d.seat == nil {
		missing = append(missing, "wl_seat")
	}
	return missing
}

// bound moves from discovering to core bound once nothing is missing.
func (d *discovery) bound() bool {
	if d.phase != PhaseDiscovering || len(d.missing()) > 0 {
		return false
	}
	d.phase = PhaseCoreBound
	return true
}

// ready moves from core bound to ready.
func (d *discovery) ready() error {
	if d.phase == PhaseReady {
		return nil
	}
	if d.phase != PhaseCoreBound {
		return fmt.Errorf("compositor is missing %v", d.missing())
	}
	d.phase = PhaseReady
	return nil
}

func (d *discovery) displayByGlobal(name uint32) (*display, int) {
	for i, dp := range d.displays {
		if dp.global == name {
			return dp, i
		}
	}
	return nil, -1
}
