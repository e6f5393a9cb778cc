package session

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/haivivi/framegear/pkg/console"
	"github.com/haivivi/framegear/pkg/framemsg"
)

var _ console.Controller = (*Session)(nil)

// SendRaw sends line as a command frame and waits for the device reply.
func (s *Session) SendRaw(ctx context.Context, line string) error {
	timeout := s.cfg.ReplyTimeout
	if timeout < 0 {
		timeout = 0
	}
	return s.router.SendAndAwait(ctx, s.types.Command, []byte(line), s.replied, timeout)
}

// Break interrupts the running device application.
func (s *Session) Break(ctx context.Context) error {
	return s.device.SendBreak(ctx)
}

// Resend runs the bootstrap handshake with file as the application.
func (s *Session) Resend(ctx context.Context, file string) error {
	b := &framemsg.Bootstrap{
		Device:   s.device,
		Router:   s.router,
		Print:    s.print,
		Libs:     s.cfg.Libs,
		LibNames: s.cfg.LibNames,
		Settle:   s.cfg.Settle,
		OnStep: func(step framemsg.Step) {
			s.logger.Debug("bootstrap step", "step", step.String())
		},
		Logger: framemsg.SlogLogger(s.logger),
	}
	if err := b.Run(ctx, file); err != nil {
		return err
	}
	s.printf("Resent %s\n", file)
	return nil
}

// RunPython runs code with the host python3. It only works in developer
// mode.
func (s *Session) RunPython(ctx context.Context, code string) error {
	if !s.cfg.DevMode {
		return console.ErrDevModeDisabled
	}
	cmd := exec.CommandContext(ctx, "python3", "-c", code)
	cmd.Stdout = s.out
	cmd.Stderr = s.out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("session: python: %w", err)
	}
	return nil
}

// Reset interrupts the application and restarts the device.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.device.SendBreak(ctx); err != nil {
		return err
	}
	if err := s.settle(ctx); err != nil {
		return err
	}
	return s.device.SendReset(ctx)
}

// Resync sends the host clock to the device again.
func (s *Session) Resync(ctx context.Context) error {
	if err := framemsg.SyncTime(ctx, s.device, s.types.Reply); err != nil {
		return err
	}
	return s.device.SendStatus(ctx, s.types.Status, ColorConnected, StatusResynced)
}

// Ask sends text to the agent without the microphone.
func (s *Session) Ask(ctx context.Context, text string) error {
	_, err := s.listener.Ask(ctx, text)
	return err
}

func (s *Session) settle(ctx context.Context) error {
	d := s.cfg.Settle
	if d <= 0 {
		d = framemsg.DefaultSettle
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
