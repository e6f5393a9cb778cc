package framemsg

import (
	"context"
	"errors"
	"iter"
)

// ErrClosed is returned when sending on a closed link.
var ErrClosed = errors.New("framemsg: link closed")

// Link is a reliable, ordered packet channel to the device. Framing and
// delivery below the packet level are the link's concern.
type Link interface {
	// Send sends one packet.
	Send(ctx context.Context, packet []byte) error

	// Packets returns an iterator over inbound packets. It ends when the
	// link is closed; a non-nil error is yielded if the link failed.
	// Only one goroutine may range over Packets.
	Packets() iter.Seq2[[]byte, error]

	// Close closes the link.
	Close() error
}
