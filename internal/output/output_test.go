package output

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ItsNotGoodName/riverbar/pkg/sutureext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	attached []Buffer
	damaged  []image.Rectangle
	commits  int
	err      error
}

func (s *fakeSurface) Attach(buffer Buffer) error {
	s.attached = append(s.attached, buffer)
	return s.err
}

func (s *fakeSurface) Damage(rect image.Rectangle) error {
	s.damaged = append(s.damaged, rect)
	return nil
}

func (s *fakeSurface) Commit() error {
	s.commits++
	return nil
}

func newTestContext(t *testing.T, w, h int) (*Context, *fakeSurface) {
	t.Helper()
	surface := &fakeSurface{}
	size := w * h * BytesPerPixel
	c, err := NewContext("test", w, h, surface, [2][]byte{make([]byte, size), make([]byte, size)}, [2]Buffer{"buffer0", "buffer1"})
	require.NoError(t, err)
	return c, surface
}

func TestNewContextValidates(t *testing.T) {
	_, err := NewContext("bad", 0, 10, &fakeSurface{}, [2][]byte{}, [2]Buffer{})
	assert.Error(t, err)

	_, err = NewContext("bad", 2, 2, &fakeSurface{}, [2][]byte{make([]byte, 16), make([]byte, 15)}, [2]Buffer{})
	assert.Error(t, err)
}

func TestContextCommitSwapsFrames(t *testing.T) {
	c, surface := newTestContext(t, 4, 2)
	assert.Equal(t, 4, c.BlocksLeft)
	assert.Equal(t, 0, c.Back())

	assert.ErrorIs(t, c.Commit(c.Bounds()), ErrNotReady)

	assert.True(t, c.MarkReady())
	assert.False(t, c.MarkReady())

	require.NoError(t, c.Commit(image.Rect(2, 0, 10, 2)))
	assert.Equal(t, 0, c.Front())
	assert.Equal(t, []Buffer{"buffer0"}, surface.attached)
	assert.Equal(t, []image.Rectangle{image.Rect(2, 0, 4, 2)}, surface.damaged)

	require.NoError(t, c.Commit(c.Bounds()))
	assert.Equal(t, 1, c.Front())
	assert.Equal(t, []Buffer{"buffer0", "buffer1"}, surface.attached)
	assert.Equal(t, 2, surface.commits)
}

func TestContextCommitError(t *testing.T) {
	c, surface := newTestContext(t, 1, 1)
	c.MarkReady()
	surface.err = errors.New("gone")

	assert.Error(t, c.Commit(c.Bounds()))
	assert.Equal(t, 1, c.Front())
}

func TestContextBackPixelsRepairsStaleRegion(t *testing.T) {
	c, _ := newTestContext(t, 2, 2)
	c.MarkReady()

	back := c.BackPixels()
	for i := range back {
		back[i] = 0xff
	}
	// Only the right column was damaged
	require.NoError(t, c.Commit(image.Rect(1, 0, 2, 2)))

	back = c.BackPixels()
	assert.Equal(t, []byte{
		0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff,
		0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff,
	}, back)

	// Repaired once per commit
	back[0] = 7
	assert.Equal(t, byte(7), c.BackPixels()[0])
}

func TestContextRepaint(t *testing.T) {
	c, surface := newTestContext(t, 2, 2)
	assert.ErrorIs(t, c.Repaint(c.Bounds()), ErrNotReady)

	c.MarkReady()
	require.NoError(t, c.Repaint(image.Rect(5, 5, 6, 6)))
	assert.Zero(t, surface.commits)

	require.NoError(t, c.Repaint(c.Bounds()))
	assert.Equal(t, []Buffer{"buffer1"}, surface.attached)
	assert.Equal(t, 1, c.Front())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(1)
	c, _ := newTestContext(t, 2, 2)

	index, err := r.Add(c)
	require.NoError(t, err)
	assert.Equal(t, 0, index)
	assert.Equal(t, 1, r.Len())

	_, err = r.Add(c)
	assert.ErrorIs(t, err, ErrRegistryFull)

	assert.ErrorIs(t, r.WithOutput(1, func(*Context) error { return nil }), ErrNoOutput)

	var width int
	require.NoError(t, r.WithOutput(0, func(c *Context) error {
		width = c.Width()
		return nil
	}))
	assert.Equal(t, 2, width)

	assert.Equal(t, []Info{{Index: 0, Name: "test", Width: 2, Height: 2, Front: 1}}, r.Snapshot())
}

func TestRegistryEachJoinsErrors(t *testing.T) {
	r := NewRegistry(2)
	for range 2 {
		c, _ := newTestContext(t, 1, 1)
		_, err := r.Add(c)
		require.NoError(t, err)
	}

	var visited []int
	err := r.Each(func(index int, c *Context) error {
		visited = append(visited, index)
		return c.Commit(c.Bounds())
	})
	assert.Equal(t, []int{0, 1}, visited)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestRegistryEachReleasesLockBetweenOutputs(t *testing.T) {
	r := NewRegistry(3)
	for range 3 {
		c, _ := newTestContext(t, 1, 1)
		_, err := r.Add(c)
		require.NoError(t, err)
	}

	lenC := make(chan int, 1)
	err := r.Each(func(index int, c *Context) error {
		switch index {
		case 0:
			// Blocks on the lock held for output 0
			go func() { lenC <- r.Len() }()
			time.Sleep(20 * time.Millisecond)
		case 1:
			time.Sleep(20 * time.Millisecond)
		case 2:
			select {
			case n := <-lenC:
				assert.Equal(t, 3, n)
			case <-time.After(time.Second):
				t.Error("lock was not released between outputs")
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestRegistryPoisonedByPanic(t *testing.T) {
	r := NewRegistry(1)
	c, _ := newTestContext(t, 1, 1)
	_, err := r.Add(c)
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = r.WithOutput(0, func(*Context) error { panic("boom") })
	})
	assert.PanicsWithValue(t, ErrPoisoned, func() { r.Len() })
}

func TestPoisonedRegistryEndsSupervisorTree(t *testing.T) {
	r := NewRegistry(1)
	c, _ := newTestContext(t, 1, 1)
	_, err := r.Add(c)
	require.NoError(t, err)
	assert.Panics(t, func() {
		_ = r.WithOutput(0, func(*Context) error { panic("boom") })
	})

	var cause sutureext.Cause
	var calls atomic.Int32
	super := sutureext.New("test")
	sutureext.Add(super, sutureext.NewFatalService(sutureext.NewServiceFunc("drawing", func(ctx context.Context) error {
		calls.Add(1)
		r.Len()
		return nil
	}), &cause))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = super.Serve(ctx)
	require.NoError(t, ctx.Err(), "tree terminated before the timeout")
	assert.Equal(t, int32(1), calls.Load())
	assert.ErrorIs(t, cause.Err(), ErrPoisoned)
}
