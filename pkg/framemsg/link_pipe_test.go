package framemsg

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewPipe(t *testing.T) {
	host, device := NewPipe()
	if host == nil || device == nil {
		t.Fatal("NewPipe returned nil")
	}
	host.Close()
	device.Close()
}

func TestPipe_SendReceive(t *testing.T) {
	host, device := NewPipe()
	defer host.Close()
	defer device.Close()

	ctx := context.Background()
	packet := []byte{0x01, 0x30, 'x'}
	if err := host.Send(ctx, packet); err != nil {
		t.Fatalf("Send: %v", err)
	}
	packet[2] = 'y' // Send copies

	for p, err := range device.Packets() {
		if err != nil {
			t.Fatalf("Packets: %v", err)
		}
		if string(p) != "\x01\x30x" {
			t.Errorf("packet = %q", p)
		}
		break
	}
}

func TestPipe_SendAfterClose(t *testing.T) {
	host, device := NewPipe()
	defer device.Close()

	host.Close()
	if err := host.Send(context.Background(), []byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after close = %v; want ErrClosed", err)
	}
	// Double close is safe
	if err := host.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestPipe_CloseEndsOwnIterator(t *testing.T) {
	host, device := NewPipe()
	defer device.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range host.Packets() {
		}
	}()
	host.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Packets did not end after Close")
	}
}

func TestPipe_CloseWithError(t *testing.T) {
	host, device := NewPipe()
	defer host.Close()

	want := errors.New("link lost")
	device.CloseWithError(want)

	var got error
	for _, err := range host.Packets() {
		got = err
	}
	if !errors.Is(got, want) {
		t.Errorf("error = %v; want %v", got, want)
	}
}
