package sutureext

import (
	"fmt"
	"sync"
)

// Cause records the first service that ended the tree.
type Cause struct {
	mu  sync.Mutex
	err error
}

func (c *Cause) Set(service string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = fmt.Errorf("%s: %w", service, err)
	}
}

func (c *Cause) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
