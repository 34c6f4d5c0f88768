package core

import (
	"sync"

	"github.com/vovakirdan/wirerelay/internal/utils"
)

// DefaultQueueSize is the outbound queue capacity used when none is given.
const DefaultQueueSize = 64

// Conn is a live connection as seen by the core layer.
// The transport drains Events and watches Done; the core never blocks on either.
type Conn struct {
	ID       string
	Identity Identity

	events    chan *Event
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	reason error
}

// NewConn constructs a connection handle with a bounded outbound queue.
func NewConn(identity Identity, queueSize int) *Conn {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Conn{
		ID:       utils.NewID(),
		Identity: identity,
		events:   make(chan *Event, queueSize),
		done:     make(chan struct{}),
	}
}

// Events returns the outbound queue.
func (c *Conn) Events() <-chan *Event {
	return c.events
}

// Done is closed once the connection has been closed by either side.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns why the connection was closed, or nil for a normal close.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Close marks the connection closed. Only the first call records a reason.
func (c *Conn) Close(reason error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.reason = reason
		c.mu.Unlock()
		close(c.done)
	})
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// enqueue never blocks. It returns false if the queue is full or the connection is closed.
func (c *Conn) enqueue(ev *Event) bool {
	if c.Closed() {
		return false
	}
	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}
