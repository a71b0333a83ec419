package queue

import (
	"context"
	"sync"

	"todo-bot/internal/models"
)

// Channel is an in-process queue backed by a buffered channel.
type Channel struct {
	mu     sync.RWMutex
	closed bool
	events chan models.Event
}

// NewChannel returns a queue holding up to size pending events.
func NewChannel(size int) *Channel {
	if size < 1 {
		size = 1
	}
	return &Channel{events: make(chan models.Event, size)}
}

// Publish enqueues ev without blocking; a full buffer returns ErrFull.
func (c *Channel) Publish(_ context.Context, ev models.Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.events <- ev:
		return nil
	default:
		return ErrFull
	}
}

// Consume drains events until ctx is done or the queue is closed and empty.
func (c *Channel) Consume(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-c.events:
			if !ok {
				return nil
			}
			h(ctx, ev)
		}
	}
}

// Close stops accepting events. Pending events are still delivered to Consume.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}
