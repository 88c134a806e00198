// Package scheduler runs block commands on a shared timer and on notifications.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ItsNotGoodName/riverbar/internal/block"
	"github.com/ItsNotGoodName/riverbar/internal/core"
)

var (
	ErrTerminated     = errors.New("scheduler terminated")
	ErrAlreadyRunning = errors.New("scheduler already running")
)

// Renderer draws the block line on every output.
type Renderer interface {
	DrawBlocks(outputs []string)
}

// Flusher pushes pending display requests to the server.
type Flusher interface {
	Flush() error
}

// Timer is a one shot timer that is re-armed after every tick.
type Timer interface {
	C() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}

type realTimer struct {
	*time.Timer
}

func (t realTimer) C() <-chan time.Time {
	return t.Timer.C
}

func (t realTimer) Reset(d time.Duration) {
	t.Timer.Reset(d)
}

func (t realTimer) Stop() {
	t.Timer.Stop()
}

type Options struct {
	Runner   block.Runner
	Renderer Renderer
	Flusher  Flusher
	// OnUpdate is called with the outputs after every redraw.
	OnUpdate func(outputs []string)
	// NewTimer defaults to a time.Timer.
	NewTimer func(d time.Duration) Timer
	// Unit is the length of one interval step, defaults to a second.
	Unit time.Duration
}

type Scheduler struct {
	blocks   block.Set
	cache    *block.Cache
	runner   block.Runner
	renderer Renderer
	flusher  Flusher
	onUpdate func([]string)
	newTimer func(time.Duration) Timer
	unit     time.Duration
	period   uint

	running atomic.Bool
	// pending has one flag per block with a notification not yet handled.
	pending    []atomic.Bool
	notifyC    chan struct{}
	terminateC chan struct{}
}

func New(blocks block.Set, cache *block.Cache, opts Options) *Scheduler {
	s := &Scheduler{
		blocks:     blocks,
		cache:      cache,
		runner:     opts.Runner,
		renderer:   opts.Renderer,
		flusher:    opts.Flusher,
		onUpdate:   opts.OnUpdate,
		newTimer:   opts.NewTimer,
		unit:       opts.Unit,
		period:     Period(blocks),
		pending:    make([]atomic.Bool, blocks.Len()),
		notifyC:    make(chan struct{}, 1),
		terminateC: make(chan struct{}, 1),
	}
	if s.runner == nil {
		s.runner = block.ExecRunner{}
	}
	if s.newTimer == nil {
		s.newTimer = func(d time.Duration) Timer { return realTimer{time.NewTimer(d)} }
	}
	if s.unit == 0 {
		s.unit = time.Second
	}
	return s
}

func (s *Scheduler) String() string {
	return "scheduler.Scheduler"
}

// Period is the tick period in units, 0 when there is no periodic block.
func (s *Scheduler) Period() uint {
	return s.period
}

// Deliver queues an event without blocking.
// Notifications for a block that already has one pending are merged into it.
func (s *Scheduler) Deliver(ev Event) {
	switch ev.Kind {
	case KindTerminate:
		core.FlagChannel(s.terminateC)
	case KindNotify:
		if ev.Block < 0 || ev.Block >= len(s.pending) {
			slog.Warn("Notification for unknown block", "package", "scheduler", "block", ev.Block)
			return
		}
		if !s.pending[ev.Block].Swap(true) {
			core.FlagChannel(s.notifyC)
		}
	default:
		slog.Debug("Ignored event", "package", "scheduler", "event", ev.Kind)
	}
}

// Notify queues an update of a single block.
func (s *Scheduler) Notify(index int) error {
	if index < 0 || index >= s.blocks.Len() {
		return errors.New("block index out of range")
	}
	s.Deliver(Notify(index))
	return nil
}

// Terminate stops Serve with ErrTerminated.
func (s *Scheduler) Terminate() {
	core.FlagChannel(s.terminateC)
}

// Serve runs the scheduler until terminated or the context is canceled.
// It can only be called once.
func (s *Scheduler) Serve(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	for i := range s.blocks.Len() {
		s.update(i)
	}
	s.redraw()

	elapsed := s.period
	var tickC <-chan time.Time
	var timer Timer
	if s.period > 0 {
		timer = s.newTimer(s.tickDuration())
		defer timer.Stop()
		tickC = timer.C()
	}

	for {
		// Termination wins over anything else that is pending
		select {
		case <-s.terminateC:
			return ErrTerminated
		default:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.terminateC:
			return ErrTerminated
		case <-tickC:
			timer.Reset(s.tickDuration())
			s.tick(elapsed)
			elapsed += s.period
			s.redraw()
		case <-s.notifyC:
			if s.notified() {
				s.redraw()
			}
		}
	}
}

func (s *Scheduler) tickDuration() time.Duration {
	return time.Duration(s.period) * s.unit
}

// notified updates every block with a pending notification and reports whether there was one.
func (s *Scheduler) notified() bool {
	updated := false
	for i := range s.pending {
		if s.pending[i].Swap(false) {
			s.update(i)
			updated = true
		}
	}
	return updated
}

func (s *Scheduler) tick(elapsed uint) {
	for i, b := range s.blocks.All() {
		if b.Periodic() && elapsed%b.Interval == 0 {
			s.update(i)
		}
	}
}

func (s *Scheduler) update(index int) {
	b := s.blocks.At(index)
	out, err := s.runner.Run(b.Command)
	if err != nil {
		slog.Warn("Failed to run block", "package", "scheduler", "block", index, "command", b.Command.String(), "error", err)
		return
	}
	s.cache.Set(index, out)
}

func (s *Scheduler) redraw() {
	outputs := s.cache.Snapshot()
	if s.renderer != nil {
		s.renderer.DrawBlocks(outputs)
	}
	if s.flusher != nil {
		if err := s.flusher.Flush(); err != nil {
			slog.Error("Failed to flush display", "package", "scheduler", "error", err)
		}
	}
	if s.onUpdate != nil {
		s.onUpdate(outputs)
	}
}
