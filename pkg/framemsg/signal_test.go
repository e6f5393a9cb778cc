package framemsg

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"
)

func TestSignal_SetClear(t *testing.T) {
	s := NewSignal()
	if s.IsSet() {
		t.Fatal("new signal is set")
	}
	s.Set()
	s.Set()
	if !s.IsSet() {
		t.Fatal("signal not set after Set")
	}
	s.Clear()
	if s.IsSet() {
		t.Fatal("signal set after Clear")
	}
}

func TestSignal_WaitConsumes(t *testing.T) {
	s := NewSignal()
	s.Set()
	if err := s.Wait(context.Background(), time.Second); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if s.IsSet() {
		t.Error("signal still set after Wait")
	}
}

func TestSignal_WaitTimeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := NewSignal()
		start := time.Now()
		err := s.Wait(context.Background(), 3*time.Second)
		if !errors.Is(err, ErrTimedOut) {
			t.Fatalf("Wait error = %v; want ErrTimedOut", err)
		}
		if d := time.Since(start); d != 3*time.Second {
			t.Errorf("waited %v; want 3s", d)
		}
	})
}

func TestSignal_WaitUnblockedBySet(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := NewSignal()
		go func() {
			time.Sleep(time.Second)
			s.Set()
		}()
		if err := s.Wait(context.Background(), 0); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	})
}
