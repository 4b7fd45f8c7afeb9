package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Message types for updating the model
type (
	TotalMsg   int
	AdvanceMsg struct{}
	DoneMsg    struct{}
)

// Model is the Bubbletea model for the scoring progress bar
type Model struct {
	label    string
	spinner  spinner.Model
	progress progress.Model
	total    int
	done     int
	quitting bool
}

// NewModel creates a new progress model
func NewModel(label string, styles *Styles) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return Model{
		label:    label,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 30
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		if m.progress.Width < 10 {
			m.progress.Width = 10
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TotalMsg:
		m.total = int(msg)
		return m, nil

	case AdvanceMsg:
		if m.total == 0 || m.done < m.total {
			m.done++
		}
		return m, nil

	case DoneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// Percent returns the completed fraction.
func (m Model) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.spinner.View())
	sb.WriteString(" ")
	sb.WriteString(m.label)
	if m.total > 0 {
		sb.WriteString(" ")
		sb.WriteString(m.progress.ViewAs(m.Percent()))
		sb.WriteString(fmt.Sprintf(" %d/%d", m.done, m.total))
	}
	return sb.String()
}
