package app

import (
	"influencemap/engine"
)

// Commands funnels work from other goroutines (API handlers, tick scripts)
// onto the goroutine that owns the map. The owner calls Drain once per frame.
type Commands struct {
	queue chan command
	done  chan struct{}
}

type command struct {
	fn   func(*engine.Map)
	done chan struct{}
}

// NewCommands creates a queue holding up to size pending closures.
func NewCommands(size int) *Commands {
	if size <= 0 {
		size = 64
	}
	return &Commands{
		queue: make(chan command, size),
		done:  make(chan struct{}),
	}
}

// Do queues fn and blocks until the owner has run it. After Close, fn is
// dropped and Do returns immediately.
func (c *Commands) Do(fn func(*engine.Map)) {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case c.queue <- cmd:
	case <-c.done:
		return
	}
	select {
	case <-cmd.done:
	case <-c.done:
	}
}

// Drain runs every queued closure against m. It never blocks.
func (c *Commands) Drain(m *engine.Map) int {
	n := 0
	for {
		select {
		case cmd := <-c.queue:
			cmd.fn(m)
			close(cmd.done)
			n++
		default:
			return n
		}
	}
}

// Close releases all waiting callers. Closures still queued never run.
func (c *Commands) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// Done is closed once Close has been called.
func (c *Commands) Done() <-chan struct{} { return c.done }
