package block

import "sync"

// Cache holds the last output of every block.
type Cache struct {
	mu      sync.RWMutex
	outputs []string
}

func NewCache(size int) *Cache {
	return &Cache{outputs: make([]string, size)}
}

func (c *Cache) Set(index int, output string) {
	c.mu.Lock()
	c.outputs[index] = output
	c.mu.Unlock()
}

func (c *Cache) Get(index int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.outputs[index]
}

// Snapshot returns a copy of all outputs.
func (c *Cache) Snapshot() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	outputs := make([]string, len(c.outputs))
	copy(outputs, c.outputs)
	return outputs
}
