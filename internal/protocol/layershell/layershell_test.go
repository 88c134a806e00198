package layershell

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSurfaceDispatch(t *testing.T) {
	var (
		configure ConfigureEvent
		closed    bool
	)
	s := &Surface{}
	s.SetConfigureHandler(func(e ConfigureEvent) { configure = e })
	s.SetClosedHandler(func() { closed = true })

	var data []byte
	for _, v := range []uint32{3, 1920, 16} {
		data = binary.NativeEndian.AppendUint32(data, v)
	}
	s.Dispatch(0, -1, data)
	s.Dispatch(1, -1, nil)

	assert.Equal(t, ConfigureEvent{Serial: 3, Width: 1920, Height: 16}, configure)
	assert.True(t, closed)
}

func TestAnchorMask(t *testing.T) {
	assert.Equal(t, Anchor(15), AnchorTop|AnchorBottom|AnchorLeft|AnchorRight)
}
