package output

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrRegistryFull = errors.New("output registry is full")
	ErrNoOutput     = errors.New("no such output")
	ErrPoisoned     = errors.New("output registry poisoned by a panic")
)

// Info describes an output.
type Info struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Ready  bool   `json:"ready"`
	Front  int    `json:"front"`
}

// Registry is the set of outputs shared by the scheduler and the display event loop.
// A single lock serializes all drawing.
type Registry struct {
	mu       sync.Mutex
	capacity int
	outputs  []*Context
	poisoned bool
}

func NewRegistry(capacity int) *Registry {
	return &Registry{capacity: capacity, outputs: make([]*Context, 0, capacity)}
}

func (r *Registry) Capacity() int {
	return r.capacity
}

func (r *Registry) Len() int {
	r.lock()
	defer r.mu.Unlock()
	return len(r.outputs)
}

// Add appends an output and returns its index.
func (r *Registry) Add(c *Context) (int, error) {
	r.lock()
	defer r.mu.Unlock()

	if len(r.outputs) >= r.capacity {
		return -1, fmt.Errorf("%w: capacity %d", ErrRegistryFull, r.capacity)
	}

	r.outputs = append(r.outputs, c)
	return len(r.outputs) - 1, nil
}

// WithOutput calls fn with the output at index while holding the registry lock.
func (r *Registry) WithOutput(index int, fn func(c *Context) error) error {
	r.lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.outputs) {
		return fmt.Errorf("%w: %d", ErrNoOutput, index)
	}

	return r.call(r.outputs[index], fn)
}

// Each calls fn for every output. The registry lock is taken for one output at a time.
func (r *Registry) Each(fn func(index int, c *Context) error) error {
	var errs []error
	for i := 0; i < r.Len(); i++ {
		if err := r.WithOutput(i, func(c *Context) error { return fn(i, c) }); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) Snapshot() []Info {
	r.lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.outputs))
	for i, c := range r.outputs {
		infos = append(infos, Info{
			Index:  i,
			Name:   c.name,
			Width:  c.width,
			Height: c.height,
			Ready:  c.ready,
			Front:  c.front,
		})
	}
	return infos
}

func (r *Registry) call(c *Context, fn func(c *Context) error) error {
	ok := false
	defer func() {
		if !ok {
			r.poisoned = true
		}
	}()
	err := fn(c)
	ok = true
	return err
}

func (r *Registry) lock() {
	r.mu.Lock()
	if r.poisoned {
		r.mu.Unlock()
		panic(ErrPoisoned)
	}
}
