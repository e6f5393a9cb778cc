// Package framemsg implements the host side of the glasses message link.
//
// A link carries packets. Data packets start with 0x01 followed by a message
// type byte and the application payload; every other packet is text printed
// by the device-side Lua runtime. The package provides:
//
//   - Router: dispatches inbound frames to handlers registered per type and
//     correlates a sent command with its asynchronous reply through a Signal.
//   - Device: the command vocabulary (break, reset, Lua source, file upload,
//     typed messages) built on a Link.
//   - Bootstrap: the fixed handshake that interrupts the firmware, uploads
//     the application and its libraries, and starts it.
//   - SyncTime: sends the host clock and quarter-hour time zone.
//
// Links are provided for in-process use (NewPipe) and for a BLE bridge
// reachable over WebSocket (DialWebSocket).
//
// Example usage:
//
//	link, err := framemsg.DialWebSocket(ctx, "ws://localhost:8765/frame", nil)
//	dev := framemsg.NewDevice(link)
//	router := framemsg.NewRouter(dev)
//	types := framemsg.TypesAt(framemsg.DefaultBase)
//	replied := framemsg.NewSignal()
//	router.Register(types.Reply, framemsg.HandlerFunc(func(p []byte) error {
//	    fmt.Print(string(p))
//	    replied.Set()
//	    return nil
//	}))
//	go router.Serve(ctx, link)
//	err = router.SendAndAwait(ctx, types.Command, []byte("print(1)"), replied, 10*time.Second)
package framemsg
