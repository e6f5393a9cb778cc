package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme of the terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
	Error   lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Error:   lipgloss.Color("#ff5f5f"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Help  lipgloss.Style
	Error lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Help:  lipgloss.NewStyle().Foreground(t.Dim),
		Error: lipgloss.NewStyle().Foreground(t.Error),
	}
}

// Banner renders the session banner shown before the console prompt:
// the title, then one "label: value" line per pair.
func (s Styles) Banner(title string, pairs ...string) string {
	out := s.Title.Render(title)
	for i := 0; i+1 < len(pairs); i += 2 {
		out += "\n" + s.Label.Render(pairs[i]+":") + " " + pairs[i+1]
	}
	return out
}
