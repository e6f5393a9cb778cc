package framemsg

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketLink is a Link to a BLE bridge that relays each BLE packet as one
// WebSocket message. Outbound packets are sent as binary messages; inbound
// text and binary messages are both treated as packets.
type WebSocketLink struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

// DialWebSocket connects to the bridge at url.
func DialWebSocket(ctx context.Context, url string, header http.Header) (*WebSocketLink, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("framemsg: dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("framemsg: dial %s: %w", url, err)
	}
	return NewWebSocketLink(conn), nil
}

// NewWebSocketLink wraps an established connection.
func NewWebSocketLink(conn *websocket.Conn) *WebSocketLink {
	return &WebSocketLink{
		conn:   conn,
		closed: make(chan struct{}),
	}
}

// Send implements Link.
func (l *WebSocketLink) Send(ctx context.Context, packet []byte) error {
	select {
	case <-l.closed:
		return ErrClosed
	default:
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		l.conn.SetWriteDeadline(deadline)
		defer l.conn.SetWriteDeadline(time.Time{})
	}
	if err := l.conn.WriteMessage(websocket.BinaryMessage, packet); err != nil {
		return fmt.Errorf("framemsg: websocket write: %w", err)
	}
	return nil
}

// Packets implements Link.
func (l *WebSocketLink) Packets() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			_, data, err := l.conn.ReadMessage()
			if err != nil {
				select {
				case <-l.closed:
					return
				default:
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return
				}
				yield(nil, fmt.Errorf("framemsg: websocket read: %w", err))
				return
			}
			if !yield(data, nil) {
				return
			}
		}
	}
}

// Close implements Link. It sends a close message before closing the
// connection.
func (l *WebSocketLink) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closed)
		l.writeMu.Lock()
		werr := l.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		l.writeMu.Unlock()
		if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
			err = werr
		}
		if cerr := l.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	return err
}

var _ Link = (*WebSocketLink)(nil)
