package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrExit is returned by Execute for the exit commands.
	ErrExit = errors.New("console: exit")

	// ErrDevModeDisabled is returned for developer commands while
	// developer mode is off.
	ErrDevModeDisabled = errors.New("console: developer mode is disabled")
)

// Controller carries out console commands on a device session.
type Controller interface {
	// SendRaw sends line as a command frame and waits for the reply.
	SendRaw(ctx context.Context, line string) error
	Break(ctx context.Context) error
	Resend(ctx context.Context, file string) error
	// RunPython runs code on the host. It is unsandboxed and must return
	// ErrDevModeDisabled unless developer mode is on.
	RunPython(ctx context.Context, code string) error
	Reset(ctx context.Context) error
	Resync(ctx context.Context) error
	Ask(ctx context.Context, text string) error
}

// LineReader reads one input line per call, showing prompt. ReadLine
// returns io.EOF at the end of input.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Console reads command lines and runs them against a Controller.
type Console struct {
	In     io.Reader
	Out    io.Writer
	Prompt string

	// Lines replaces In as the line source when set, for example with a
	// Terminal.
	Lines LineReader

	ErrorStyle lipgloss.Style
	HelpStyle  lipgloss.Style
}

// New creates a console on in and out with the default prompt and styles.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		In:         in,
		Out:        out,
		Prompt:     "> ",
		ErrorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		HelpStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681")),
	}
}

type lineResult struct {
	line string
	err  error
}

// Run executes lines until an exit command, the end of input, or ctx is
// done. Command failures are printed and do not stop the loop. The next
// line is read only after the previous command finished.
func (c *Console) Run(ctx context.Context, ctrl Controller) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := c.Lines
	if lines == nil {
		lines = &scannerLines{sc: bufio.NewScanner(c.In), out: c.Out}
	}
	next := make(chan struct{}, 1)
	results := make(chan lineResult, 1)
	go func() {
		for {
			select {
			case <-next:
			case <-ctx.Done():
				return
			}
			line, err := lines.ReadLine(c.Prompt)
			results <- lineResult{line, err}
			if err != nil {
				return
			}
		}
	}()

	for {
		next <- struct{}{}
		var r lineResult
		select {
		case r = <-results:
		case <-ctx.Done():
			return ctx.Err()
		}
		if r.err != nil {
			if errors.Is(r.err, io.EOF) {
				return nil
			}
			return fmt.Errorf("console: read: %w", r.err)
		}

		cmd, ok := Parse(r.line)
		if !ok {
			continue
		}
		err := c.Execute(ctx, ctrl, cmd)
		switch {
		case errors.Is(err, ErrExit):
			return nil
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			fmt.Fprintln(c.Out, c.ErrorStyle.Render(fmt.Sprintf("%s failed: %v", cmd.Kind, err)))
		}
	}
}

// scannerLines reads lines from a plain reader such as a pipe.
type scannerLines struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (r *scannerLines) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Execute runs one command. It returns ErrExit for the exit commands.
func (c *Console) Execute(ctx context.Context, ctrl Controller, cmd Command) error {
	switch cmd.Kind {
	case Exit:
		return ErrExit
	case ExitWithBreak:
		if err := ctrl.Break(ctx); err != nil {
			return err
		}
		return ErrExit
	case Resend:
		return ctrl.Resend(ctx, cmd.Arg)
	case Python:
		if strings.TrimSpace(cmd.Arg) == "" {
			return nil
		}
		return ctrl.RunPython(ctx, cmd.Arg)
	case Reset:
		return ctrl.Reset(ctx)
	case Resync:
		return ctrl.Resync(ctx)
	case Ask:
		if cmd.Arg == "" {
			return nil
		}
		return ctrl.Ask(ctx, cmd.Arg)
	case Help:
		fmt.Fprintf(c.Out, "Unknown command: %s\n", cmd.Arg)
		fmt.Fprintln(c.Out, c.HelpStyle.Render(HelpText))
		return nil
	case Raw:
		return ctrl.SendRaw(ctx, cmd.Arg)
	}
	return fmt.Errorf("console: unknown command %v", cmd.Kind)
}
