// Package queue carries verified webhook events from the HTTP handlers to the
// single worker that applies them.
package queue

import (
	"context"
	"errors"

	"todo-bot/internal/models"
)

var (
	ErrFull   = errors.New("event queue full")
	ErrClosed = errors.New("event queue closed")
)

// Handler processes one event.
type Handler func(ctx context.Context, ev models.Event)

// Queue is an ordered event funnel. Consume calls the handler for one event at
// a time and returns when ctx is done or the queue is closed.
type Queue interface {
	Publish(ctx context.Context, ev models.Event) error
	Consume(ctx context.Context, h Handler) error
	Close() error
}
