package voice

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// SpokenColor is the console color of echoed sentences.
var SpokenColor = lipgloss.Color("2")

// Echo writes every sentence to a terminal, styled like the console shows
// speech.
type Echo struct {
	mu    sync.Mutex
	w     io.Writer
	style lipgloss.Style
}

// NewEcho creates an Echo writing to w.
func NewEcho(w io.Writer) *Echo {
	return &Echo{
		w:     w,
		style: lipgloss.NewStyle().Foreground(SpokenColor),
	}
}

// WriteSentence implements sentence.Sink.
func (e *Echo) WriteSentence(_ context.Context, s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := io.WriteString(e.w, e.style.Render(s)+"\n")
	return err
}
