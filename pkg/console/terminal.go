package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// Terminal is a LineReader with line editing and history for an
// interactive terminal. Ctrl-C and Ctrl-D at the prompt end the input.
type Terminal struct {
	state       *liner.State
	historyPath string
}

// NewTerminal takes over the terminal on stdin. History is loaded from
// historyPath when it exists and saved there by Close; an empty path keeps
// no history.
func NewTerminal(historyPath string) *Terminal {
	t := &Terminal{state: liner.NewLiner(), historyPath: historyPath}
	t.state.SetCtrlCAborts(true)
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			t.state.ReadHistory(f)
			f.Close()
		}
	}
	return t
}

// ReadLine implements LineReader. Non-blank lines are added to the history.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	line, err := t.state.Prompt(prompt)
	switch {
	case errors.Is(err, liner.ErrPromptAborted):
		return "", io.EOF
	case err != nil:
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		t.state.AppendHistory(line)
	}
	return line, nil
}

// Close saves the history and restores the terminal.
func (t *Terminal) Close() error {
	var errs []error
	if t.historyPath != "" {
		errs = append(errs, t.saveHistory())
	}
	errs = append(errs, t.state.Close())
	return errors.Join(errs...)
}

func (t *Terminal) saveHistory() error {
	if err := os.MkdirAll(filepath.Dir(t.historyPath), 0755); err != nil {
		return fmt.Errorf("console: history: %w", err)
	}
	f, err := os.Create(t.historyPath)
	if err != nil {
		return fmt.Errorf("console: history: %w", err)
	}
	if _, err := t.state.WriteHistory(f); err != nil {
		f.Close()
		return fmt.Errorf("console: write history: %w", err)
	}
	return f.Close()
}

var _ LineReader = (*Terminal)(nil)
