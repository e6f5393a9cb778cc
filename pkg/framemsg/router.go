package framemsg

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Handler consumes the payload of a frame. Returned errors are logged by the
// router and never stop the remaining handlers.
type Handler interface {
	HandleFrame(payload []byte) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(payload []byte) error

// HandleFrame implements Handler.
func (f HandlerFunc) HandleFrame(payload []byte) error {
	return f(payload)
}

// PrintHandler consumes text printed by the device-side Lua runtime.
type PrintHandler func(text string)

// MessageSender sends a typed message to the device. Device implements it.
type MessageSender interface {
	SendMessage(ctx context.Context, t MsgType, payload []byte) error
}

// Router demultiplexes inbound packets to handlers registered per message
// type. A Router belongs to one session and lives as long as its link.
type Router struct {
	sender MessageSender

	mu       sync.RWMutex
	handlers map[MsgType][]Handler
	print    PrintHandler

	logger Logger
}

// NewRouter creates a Router that sends through sender.
func NewRouter(sender MessageSender) *Router {
	return &Router{
		sender:   sender,
		handlers: make(map[MsgType][]Handler),
		logger:   DefaultLogger(),
	}
}

// SetLogger replaces the router's logger.
func (r *Router) SetLogger(l Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// Register appends h to the handlers of t. The same handler may be
// registered for several types, or several times for one type.
func (r *Router) Register(t MsgType, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[t] = append(r.handlers[t], h)
}

// Unregister removes every handler of t.
func (r *Router) Unregister(t MsgType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, t)
}

// SetPrintHandler installs the handler for print text, replacing any
// previous one. Installing nil discards print text.
func (r *Router) SetPrintHandler(h PrintHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.print = h
}

// Dispatch invokes the handlers of f.Type in registration order. Frames of
// a type without handlers are dropped.
func (r *Router) Dispatch(f Frame) {
	r.mu.RLock()
	hs := slices.Clone(r.handlers[f.Type])
	logger := r.logger
	r.mu.RUnlock()

	if len(hs) == 0 {
		logger.DebugPrintf("drop frame type=%v len=%d: no handler", f.Type, len(f.Payload))
		return
	}
	for i, h := range hs {
		if err := invoke(h, f.Payload); err != nil {
			logger.ErrorPrintf("handler %d for type=%v: %v", i, f.Type, err)
		}
	}
}

// DispatchPacket decodes a link packet and dispatches it as a frame or as
// print text.
func (r *Router) DispatchPacket(packet []byte) {
	f, text, ok, err := DecodePacket(packet)
	if err != nil {
		r.mu.RLock()
		logger := r.logger
		r.mu.RUnlock()
		logger.WarnPrintf("%v", err)
		return
	}
	if ok {
		r.Dispatch(f)
		return
	}
	if text == "" {
		return
	}
	r.mu.RLock()
	h := r.print
	r.mu.RUnlock()
	if h != nil {
		h(text)
	}
}

// Serve reads packets from link and dispatches them one at a time, so
// handlers never run concurrently with each other. It returns when the link
// ends or ctx is done.
func (r *Router) Serve(ctx context.Context, link Link) error {
	for packet, err := range link.Packets() {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.DispatchPacket(packet)
	}
	return nil
}

// SendAndAwait clears sig, sends payload as type t and waits for sig. A
// timeout of zero waits until ctx is done.
func (r *Router) SendAndAwait(ctx context.Context, t MsgType, payload []byte, sig *Signal, timeout time.Duration) error {
	sig.Clear()
	if err := r.sender.SendMessage(ctx, t, payload); err != nil {
		return err
	}
	if err := sig.Wait(ctx, timeout); err != nil {
		return fmt.Errorf("framemsg: await reply to type=%v: %w", t, err)
	}
	return nil
}

func invoke(h Handler, payload []byte) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return h.HandleFrame(payload)
}
