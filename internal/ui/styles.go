package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the lipgloss styles for terminal output
type Styles struct {
	enabled bool

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Path    lipgloss.Style
	Spinner lipgloss.Style

	IconSuccess string
	IconWarning string
	IconError   string
}

// NewStyles creates a new Styles instance
// When enabled is false, styles return text unchanged (for non-TTY output)
func NewStyles(enabled bool) *Styles {
	s := &Styles{enabled: enabled}

	if enabled {
		s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green
		s.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow
		s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))    // Red
		s.Path = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))     // Gray
		s.Spinner = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

		s.IconSuccess = "✓"
		s.IconWarning = "⚠"
		s.IconError = "✗"
	} else {
		s.Success = lipgloss.NewStyle()
		s.Warning = lipgloss.NewStyle()
		s.Error = lipgloss.NewStyle()
		s.Path = lipgloss.NewStyle()
		s.Spinner = lipgloss.NewStyle()

		s.IconSuccess = "OK:"
		s.IconWarning = "WARN:"
		s.IconError = "ERROR:"
	}

	return s
}

// Enabled returns whether styling is enabled
func (s *Styles) Enabled() bool {
	return s.enabled
}
