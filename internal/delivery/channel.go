// Package delivery provides the unbounded queue that carries backend output
// to the host.
//
// A Channel accepts lines from any number of producer goroutines without ever
// blocking them and hands the lines to a single consumer, in push order,
// through an ordinary Go channel. The consumer channel is closed once the
// Channel is closed and every pending line has been delivered.
package delivery

import (
	"sync"

	"github.com/wagiedev/backendshell-go/internal/message"
)

// Channel is an unbounded, ordered, multi-producer single-consumer queue of
// output lines.
type Channel struct {
	mu      sync.Mutex
	pending []message.OutputLine
	closed  bool
	pushed  uint64

	notify chan struct{}
	out    chan message.OutputLine
}

// New creates a Channel and starts its delivery goroutine.
func New() *Channel {
	c := &Channel{
		notify: make(chan struct{}, 1),
		out:    make(chan message.OutputLine),
	}

	go c.pump()

	return c
}

// Push queues a line for delivery. It never blocks.
//
// Push reports false, dropping the line, if the Channel was already closed.
func (c *Channel) Push(line message.OutputLine) bool {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()

		return false
	}

	c.pending = append(c.pending, line)
	c.pushed++
	c.mu.Unlock()

	c.wake()

	return true
}

// Close retires the producer side. Lines already pushed are still delivered;
// the consumer channel closes after the last one. Close is idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wake()
}

// Lines returns the consumer side of the queue.
//
// An open channel with nothing to receive means "nothing yet", not "done".
func (c *Channel) Lines() <-chan message.OutputLine {
	return c.out
}

// Pending returns the number of lines not yet picked up by the delivery
// goroutine.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

// Pushed returns the total number of lines accepted by Push.
func (c *Channel) Pushed() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pushed
}

func (c *Channel) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// pump moves pending lines to the consumer channel in batches.
func (c *Channel) pump() {
	defer close(c.out)

	for {
		c.mu.Lock()
		batch := c.pending
		c.pending = nil
		closed := c.closed
		c.mu.Unlock()

		if len(batch) == 0 {
			if closed {
				return
			}

			<-c.notify

			continue
		}

		for _, line := range batch {
			c.out <- line
		}
	}
}
