package buffer

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrIteratorDone is returned by Next when the queue is closed for writing
// and empty.
var ErrIteratorDone = errors.New("iterator done")

// Queue is a thread-safe growable FIFO queue. Add never blocks; Next blocks
// until an item is available or the queue is closed.
type Queue[T any] struct {
	writeNotify chan struct{}

	mu         sync.Mutex
	closeWrite bool
	closeErr   error
	items      []T
}

// NewQueue creates a Queue with an initial capacity hint of n.
func NewQueue[T any](n int) *Queue[T] {
	return &Queue[T]{
		writeNotify: make(chan struct{}, 1),
		items:       make([]T, 0, n),
	}
}

// Add appends t to the tail of the queue.
func (q *Queue[T]) Add(t T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closeErr != nil {
		return fmt.Errorf("buffer: add to closed queue: %w", q.closeErr)
	}
	if q.closeWrite {
		return fmt.Errorf("buffer: add to closed queue: %w", io.ErrClosedPipe)
	}
	q.items = append(q.items, t)
	select {
	case q.writeNotify <- struct{}{}:
	default:
	}
	return nil
}

// Next removes and returns the head of the queue.
//
// It returns ErrIteratorDone once the queue is closed for writing and every
// queued item has been returned.
func (q *Queue[T]) Next() (t T, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		if q.closeErr != nil {
			err = fmt.Errorf("buffer: read from closed queue: %w", q.closeErr)
			return
		}
		if q.closeWrite {
			err = ErrIteratorDone
			return
		}
		q.mu.Unlock()
		<-q.writeNotify
		q.mu.Lock()
	}
	if q.closeErr != nil {
		err = fmt.Errorf("buffer: read from closed queue: %w", q.closeErr)
		return
	}
	t = q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return t, nil
}

// CloseWrite stops further additions. Items already queued are still
// returned by Next.
func (q *Queue[T]) CloseWrite() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closeWrite {
		return nil
	}
	q.closeWrite = true
	close(q.writeNotify)
	return nil
}

// CloseWithError closes both ends and drops queued items. Next and Add
// return err from now on; a nil err means io.ErrClosedPipe.
func (q *Queue[T]) CloseWithError(err error) error {
	if err == nil {
		err = io.ErrClosedPipe
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closeErr != nil {
		return nil
	}
	q.closeErr = err
	q.items = nil
	if !q.closeWrite {
		q.closeWrite = true
		close(q.writeNotify)
	}
	return nil
}

// Close is CloseWithError(io.ErrClosedPipe).
func (q *Queue[T]) Close() error {
	return q.CloseWithError(io.ErrClosedPipe)
}

// Error returns the error the queue was closed with, if any.
func (q *Queue[T]) Error() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closeErr
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Reset drops every queued item without closing the queue.
func (q *Queue[T]) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.items)
	q.items = q.items[:0]
}
