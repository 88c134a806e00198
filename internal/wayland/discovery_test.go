package wayland

import (
	"testing"

	"github.com/ItsNotGoodName/riverbar/internal/protocol/layershell"
	"github.com/ItsNotGoodName/riverbar/internal/protocol/riverstatus"
	"github.com/stretchr/testify/assert"
	"github.com/yaslama/go-wayland/wayland/client"
)

func TestDiscoveryPhases(t *testing.T) {
	d := &discovery{}
	assert.Equal(t, []string{"wl_compositor", "wl_shm", layershell.ShellInterface, riverstatus.ManagerInterface, "wl_seat"}, d.missing())
	assert.False(t, d.bound())
	assert.Error(t, d.ready(), "ready before core bound")

	d.compositor = &client.Compositor{}
	d.shm = &client.Shm{}
	d.layerShell = &layershell.Shell{}
	d.statusManager = &riverstatus.Manager{}
	assert.Equal(t, []string{"wl_seat"}, d.missing())
	assert.False(t, d.bound())

	d.seat = &client.Seat{}
	assert.True(t, d.bound())
	assert.False(t, d.bound(), "only once")
	assert.Equal(t, PhaseCoreBound, d.phase)

	assert.NoError(t, d.ready())
	assert.NoError(t, d.ready())
	assert.Equal(t, PhaseReady, d.phase)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "discovering", PhaseDiscovering.String())
	assert.Equal(t, "core-bound", PhaseCoreBound.String())
	assert.Equal(t, "ready", PhaseReady.String())
	assert.Equal(t, "Phase(7)", Phase(7).String())
}

func TestDisplay(t *testing.T) {
	dp := &display{global: 42, index: -1}
	assert.Equal(t, "wl_output-42", dp.name())
	assert.False(t, dp.hasMode())
	assert.False(t, dp.isSetUp())

	dp.width, dp.height = 1920, 16
	assert.True(t, dp.hasMode())

	d := &discovery{displays: []*display{dp}}
	found, i := d.displayByGlobal(42)
	assert.Same(t, dp, found)
	assert.Equal(t, 0, i)

	found, i = d.displayByGlobal(1)
	assert.Nil(t, found)
	assert.Equal(t, -1, i)
}
