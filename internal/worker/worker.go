package worker

import (
	"context"
	"errors"
	"fmt"

	"todo-bot/internal/models"
	"todo-bot/internal/queue"
	"todo-bot/pkg/logger"
)

// Run consumes events from q and hands them to h one at a time, so all store
// mutations happen on this goroutine. It returns nil on cancellation or when
// the queue is closed.
func Run(ctx context.Context, q queue.Queue, h queue.Handler) error {
	var processed int64
	logger.Info(ctx, "Event worker started")
	err := q.Consume(ctx, func(ctx context.Context, ev models.Event) {
		if err := safeHandle(ctx, h, ev); err != nil {
			logger.Error(ctx, "Event handler panicked", "error", err, "event", ev.Key())
		}
		processed++
	})
	logger.Info(ctx, "Event worker stopped", "processed", processed)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func safeHandle(ctx context.Context, h queue.Handler, ev models.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	h(ctx, ev)
	return nil
}
