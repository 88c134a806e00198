package scheduler

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"syscall"

	"github.com/ItsNotGoodName/riverbar/internal/block"
)

type Kind int

const (
	KindTick Kind = iota + 1
	KindNotify
	KindTerminate
)

func (k Kind) String() string {
	switch k {
	case KindTick:
		return "tick"
	case KindNotify:
		return "notify"
	case KindTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is a single wake up of the scheduler.
type Event struct {
	Kind Kind
	// Block is the index of the block to update when Kind is KindNotify.
	Block int
}

func Tick() Event {
	return Event{Kind: KindTick}
}

func Notify(block int) Event {
	return Event{Kind: KindNotify, Block: block}
}

func Terminate() Event {
	return Event{Kind: KindTerminate}
}

const (
	sigRTMin = syscall.Signal(34)
	sigRTMax = syscall.Signal(64)

	// SignalTick is reserved for the periodic tick.
	SignalTick = syscall.SIGALRM
	// SignalTerminate stops the scheduler.
	SignalTerminate = syscall.SIGUSR1

	// MaxID is the largest block notification id.
	MaxID = uint(sigRTMax - sigRTMin)
)

var (
	ErrInvalidID   = errors.New("invalid notification id")
	ErrDuplicateID = errors.New("duplicate notification id")
)

// SignalFor returns the real-time signal that delivers notification id.
func SignalFor(id uint) syscall.Signal {
	return sigRTMin + syscall.Signal(id)
}

// Table maps notification ids from the block configuration to events.
type Table struct {
	blocks map[uint]int
}

func NewTable(blocks block.Set) (Table, error) {
	t := Table{blocks: make(map[uint]int)}
	for i, b := range blocks.All() {
		if !b.Notifiable() {
			continue
		}

		if b.Signal > MaxID {
			return Table{}, fmt.Errorf("block %d: %w: %d > %d", i, ErrInvalidID, b.Signal, MaxID)
		}
		if sig := SignalFor(b.Signal); sig == SignalTick || sig == SignalTerminate {
			return Table{}, fmt.Errorf("block %d: %w: %d is reserved", i, ErrInvalidID, b.Signal)
		}
		if other, ok := t.blocks[b.Signal]; ok {
			return Table{}, fmt.Errorf("block %d: %w: %d is used by block %d", i, ErrDuplicateID, b.Signal, other)
		}

		t.blocks[b.Signal] = i
	}
	return t, nil
}

// Lookup returns the event for notification id.
func (t Table) Lookup(id uint) (Event, bool) {
	index, ok := t.blocks[id]
	if !ok {
		return Event{}, false
	}
	return Notify(index), true
}

// IDs returns the configured notification ids in ascending order.
func (t Table) IDs() []uint {
	ids := make([]uint, 0, len(t.blocks))
	for id := range t.blocks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Signals returns every signal the table resolves.
func (t Table) Signals() []os.Signal {
	signals := []os.Signal{SignalTerminate}
	for _, id := range t.IDs() {
		signals = append(signals, SignalFor(id))
	}
	return signals
}

// Resolve maps a received signal to an event.
func (t Table) Resolve(sig os.Signal) (Event, bool) {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return Event{}, false
	}
	if s == SignalTerminate {
		return Terminate(), true
	}
	if s <= sigRTMin || s > sigRTMax {
		return Event{}, false
	}
	return t.Lookup(uint(s - sigRTMin))
}
