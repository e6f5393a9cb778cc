// Package session runs one host session with a Frame device.
//
// A Session registers the frame handlers (command replies, camera captures,
// microphone audio, Lua print output) on a framemsg.Router, feeds the
// microphone into the assistant pipeline, shows agent replies on the console,
// the speaker and the device screen, and carries out console commands.
//
//	link, _ := framemsg.DialWebSocket(ctx, url, nil)
//	s, _ := session.New(link, cfg)
//	if err := s.Start(ctx); err != nil { ... }
//	err := s.Run(ctx, console.New(os.Stdin, os.Stdout))
package session
