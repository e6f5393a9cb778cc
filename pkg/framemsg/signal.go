package framemsg

import (
	"context"
	"errors"
	"time"
)

// ErrTimedOut is returned when a correlated reply does not arrive in time.
var ErrTimedOut = errors.New("framemsg: timed out waiting for reply")

// Signal is a reusable binary flag pairing a sent command with its reply.
//
// Clear the signal before sending a command that will be waited on, so a
// flag left over from an earlier exchange does not wake the waiter. Only one
// goroutine may wait on a Signal at a time.
type Signal struct {
	ch chan struct{}
}

// NewSignal returns a cleared Signal.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Set raises the flag. Setting a raised flag has no effect.
func (s *Signal) Set() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Clear lowers the flag.
func (s *Signal) Clear() {
	select {
	case <-s.ch:
	default:
	}
}

// IsSet reports whether the flag is raised without consuming it.
func (s *Signal) IsSet() bool {
	select {
	case <-s.ch:
		s.Set()
		return true
	default:
		return false
	}
}

// Wait blocks until the flag is raised and lowers it. A timeout of zero
// waits until ctx is done; otherwise ErrTimedOut is returned once timeout
// elapses.
func (s *Signal) Wait(ctx context.Context, timeout time.Duration) error {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}
	select {
	case <-s.ch:
		return nil
	case <-timer:
		return ErrTimedOut
	case <-ctx.Done():
		return ctx.Err()
	}
}
