package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/haivivi/framegear/pkg/buffer"
	"github.com/haivivi/framegear/pkg/sentence"
)

// Speaker speaks sentences aloud. WriteSentence never waits for speech to
// finish; sentences are queued and spoken in order.
type Speaker interface {
	sentence.Sink
	io.Closer
}

// ProcessSpeaker feeds sentences, one per line, to the standard input of a
// long running synthesizer process such as espeak.
type ProcessSpeaker struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines *buffer.Queue[string]
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// StartProcess starts cmd and returns a speaker writing to its standard
// input. cmd must not have Stdin set.
func StartProcess(cmd *exec.Cmd) (*ProcessSpeaker, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("voice: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("voice: start %s: %w", cmd.Path, err)
	}
	p := &ProcessSpeaker{
		cmd:   cmd,
		stdin: stdin,
		lines: buffer.NewQueue[string](16),
		done:  make(chan struct{}),
	}
	go p.pump()
	return p, nil
}

func (p *ProcessSpeaker) pump() {
	defer close(p.done)
	for {
		line, err := p.lines.Next()
		if err != nil {
			return
		}
		if _, err := io.WriteString(p.stdin, line); err != nil {
			slog.Warn("voice: synthesizer write failed", "cmd", p.cmd.Path, "error", err)
			p.lines.CloseWithError(err)
			return
		}
	}
}

// WriteSentence implements sentence.Sink.
func (p *ProcessSpeaker) WriteSentence(_ context.Context, s string) error {
	s = strings.ReplaceAll(s, "\n", " ")
	if err := p.lines.Add(s + "\n"); err != nil {
		return fmt.Errorf("voice: speak: %w", err)
	}
	return nil
}

// Close lets queued sentences reach the process, closes its input and waits
// for it to exit.
func (p *ProcessSpeaker) Close() error {
	p.closeOnce.Do(func() {
		p.lines.CloseWrite()
		<-p.done
		p.stdin.Close()
		if err := p.cmd.Wait(); err != nil {
			var exit *exec.ExitError
			if !errors.As(err, &exit) {
				p.closeErr = fmt.Errorf("voice: wait %s: %w", p.cmd.Path, err)
			}
		}
	})
	return p.closeErr
}

// CommandSpeaker runs a command once per sentence with the sentence as its
// final argument, as "say" on macOS expects. Commands run one at a time.
type CommandSpeaker struct {
	name string
	args []string

	lines *buffer.Queue[string]
	done  chan struct{}
	once  sync.Once
}

// NewCommandSpeaker creates a CommandSpeaker for name with leading args.
func NewCommandSpeaker(name string, args ...string) *CommandSpeaker {
	c := &CommandSpeaker{
		name:  name,
		args:  args,
		lines: buffer.NewQueue[string](16),
		done:  make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *CommandSpeaker) run() {
	defer close(c.done)
	for {
		line, err := c.lines.Next()
		if err != nil {
			return
		}
		args := append(append([]string(nil), c.args...), line)
		if out, err := exec.Command(c.name, args...).CombinedOutput(); err != nil {
			slog.Warn("voice: speak command failed", "cmd", c.name, "error", err, "output", string(out))
		}
	}
}

// WriteSentence implements sentence.Sink.
func (c *CommandSpeaker) WriteSentence(_ context.Context, s string) error {
	if err := c.lines.Add(s); err != nil {
		return fmt.Errorf("voice: speak: %w", err)
	}
	return nil
}

// Close waits for queued sentences to be spoken.
func (c *CommandSpeaker) Close() error {
	c.once.Do(func() {
		c.lines.CloseWrite()
		<-c.done
	})
	return nil
}

var (
	_ Speaker = (*ProcessSpeaker)(nil)
	_ Speaker = (*CommandSpeaker)(nil)
)
