package framemsg

import (
	"context"
	"iter"
	"slices"
	"sync"
)

// NewPipe creates a connected pair of links using channels. Packets sent on
// one end are received on the other. This is useful for testing and for
// in-process device simulators.
func NewPipe() (host, device *PipeLink) {
	toDevice := make(chan []byte, 256)
	toHost := make(chan []byte, 256)
	shared := &pipeSharedState{}

	host = &PipeLink{out: toDevice, in: toHost, done: make(chan struct{}), shared: shared, side: 0}
	device = &PipeLink{out: toHost, in: toDevice, done: make(chan struct{}), shared: shared, side: 1}
	return host, device
}

// pipeSharedState holds the close errors of both ends.
type pipeSharedState struct {
	mu   sync.Mutex
	errs [2]error
}

// PipeLink is one end of a pipe created by NewPipe.
type PipeLink struct {
	out  chan []byte
	in   chan []byte
	done chan struct{}

	shared *pipeSharedState
	side   int

	doneOnce sync.Once
	mu       sync.Mutex
	closed   bool
}

// Send implements Link. The packet is copied.
func (l *PipeLink) Send(ctx context.Context, packet []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	select {
	case l.out <- slices.Clone(packet):
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Packets implements Link.
func (l *PipeLink) Packets() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			select {
			case p, ok := <-l.in:
				if !ok {
					l.yieldPeerErr(yield)
					return
				}
				if !yield(p, nil) {
					return
				}
			case <-l.done:
				return
			}
		}
	}
}

func (l *PipeLink) yieldPeerErr(yield func([]byte, error) bool) {
	l.shared.mu.Lock()
	err := l.shared.errs[1-l.side]
	l.shared.mu.Unlock()
	if err != nil {
		yield(nil, err)
	}
}

// Close implements Link.
func (l *PipeLink) Close() error {
	return l.CloseWithError(nil)
}

// CloseWithError closes this end. Both iterators end; the peer's yields err
// if it is non-nil.
func (l *PipeLink) CloseWithError(err error) error {
	l.doneOnce.Do(func() { close(l.done) })
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	l.shared.mu.Lock()
	l.shared.errs[l.side] = err
	l.shared.mu.Unlock()

	close(l.out)
	return nil
}

var _ Link = (*PipeLink)(nil)
