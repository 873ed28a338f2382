package connection

import (
	"context"
	"errors"
)

var ErrQueueFull = errors.New("queue is full")

// Queue is a bounded FIFO handing work between workers. Put blocks while the
// queue is full, which is the server's only admission control.
type Queue[T any] struct {
	items chan T
}

func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{items: make(chan T, capacity)}
}

func (q *Queue[T]) Put(ctx context.Context, item T) error {
	select {
	case q.items <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPut enqueues without waiting and fails with ErrQueueFull instead.
func (q *Queue[T]) TryPut(item T) error {
	select {
	case q.items <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	select {
	case item := <-q.items:
		return item, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (q *Queue[T]) Len() int {
	return len(q.items)
}

func (q *Queue[T]) Cap() int {
	return cap(q.items)
}
