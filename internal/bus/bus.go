// Package bus fans out values to subscribers.
package bus

import (
	"context"
	"log/slog"
	"sync"
)

// Hub broadcasts values to every subscriber. A subscriber that falls behind misses values.
type Hub[T any] struct {
	name   string
	buffer int

	mu   sync.Mutex
	subs map[*chan T]struct{}
}

func NewHub[T any](name string, buffer int) *Hub[T] {
	return &Hub[T]{
		name:   name,
		buffer: buffer,
		subs:   make(map[*chan T]struct{}),
	}
}

// Broadcast sends event to every subscriber without blocking.
func (h *Hub[T]) Broadcast(event T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case *sub <- event:
		default:
			slog.Debug("Dropped event for slow subscriber", "package", "bus", "name", h.name)
		}
	}
}

// Subscribe returns a channel of events until ctx is done or the returned function is called.
func (h *Hub[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	c := make(chan T, h.buffer)
	key := &c

	h.mu.Lock()
	h.subs[key] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, key)
			h.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return c, unsubscribe
}

// Len returns the number of subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
