package x11

import (
	"image"
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardinals(t *testing.T) {
	values := []uint32{0, 1, desktopAll}
	assert.Equal(t, values, decodeCardinals(encodeCardinals(values)))
	assert.Equal(t, []uint32{7}, decodeCardinals([]byte{7, 0, 0, 0, 1}))
}

func TestDesktopMask(t *testing.T) {
	assert.Equal(t, uint32(1), desktopMask(0))
	assert.Equal(t, uint32(0b1000), desktopMask(3))
	assert.Zero(t, desktopMask(desktopAll))
}

func TestStrutPartial(t *testing.T) {
	assert.Equal(t, []uint32{0, 0, 16, 0, 0, 0, 0, 0, 1920, 3839, 0, 0}, strutPartial(0, 16, 1920, 1920))
}

func TestBands(t *testing.T) {
	rect := image.Rect(2, 0, 4, 5)

	// Two rows of 8 bytes fit
	assert.Equal(t, []image.Rectangle{
		image.Rect(2, 0, 4, 2),
		image.Rect(2, 2, 4, 4),
		image.Rect(2, 4, 4, 5),
	}, bands(rect, 16))

	assert.Equal(t, []image.Rectangle{rect}, bands(rect, 1<<20))
	assert.Len(t, bands(rect, 1), 5, "at least a row per band")
	assert.Empty(t, bands(image.Rectangle{}, 16))
}

func TestCrop(t *testing.T) {
	// 3x2 frame, pixel value is its index
	pix := make([]byte, 3*2*4)
	for i := range 6 {
		pix[i*4] = byte(i)
	}

	data := crop(pix, 3*4, image.Rect(1, 0, 3, 2))
	require.Len(t, data, 16)
	assert.Equal(t, []byte{1, 2, 4, 5}, []byte{data[0], data[4], data[8], data[12]})
}

func TestSurfaceNothingToCommit(t *testing.T) {
	s := &surface{width: 2}
	assert.NoError(t, s.Commit())

	assert.Error(t, s.Attach("not pixels"))
	require.NoError(t, s.Attach(make([]byte, 16)))
	require.NoError(t, s.Damage(image.Rect(0, 0, 1, 1)))
	require.NoError(t, s.Damage(image.Rect(1, 1, 2, 2)))
	assert.Equal(t, image.Rect(0, 0, 2, 2), s.damage)
}

func TestCheckFormat(t *testing.T) {
	setup := &xproto.SetupInfo{
		ImageByteOrder: xproto.ImageOrderLSBFirst,
		PixmapFormats: []xproto.Format{
			{Depth: 1, BitsPerPixel: 1},
			{Depth: 24, BitsPerPixel: 32},
		},
	}
	assert.NoError(t, checkFormat(setup, 24))
	assert.Error(t, checkFormat(setup, 32))
	assert.Error(t, checkFormat(setup, 16))

	setup.ImageByteOrder = xproto.ImageOrderMSBFirst
	assert.Error(t, checkFormat(setup, 24))
}
