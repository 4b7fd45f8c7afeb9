package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ProgressController drives the bubbletea progress display. A nil controller
// is valid and ignores every call.
type ProgressController struct {
	program  *tea.Program
	finished chan struct{}
	stop     sync.Once
}

// StartProgress starts the progress display if in interactive mode
// Returns nil if not in interactive mode
func (ui *UI) StartProgress(label string) *ProgressController {
	if ui.Mode != OutputModeInteractive {
		return nil
	}

	p := tea.NewProgram(NewModel(label, ui.Styles), tea.WithOutput(ui.ErrWriter), tea.WithInput(nil))
	ctrl := &ProgressController{program: p, finished: make(chan struct{})}

	go func() {
		// Rendering errors only affect the display.
		_, _ = p.Run()
		close(ctrl.finished)
	}()

	return ctrl
}

// Start sets the number of prompts to score.
func (pc *ProgressController) Start(total int) {
	if pc != nil && pc.program != nil {
		pc.program.Send(TotalMsg(total))
	}
}

// Advance marks one prompt as scored.
func (pc *ProgressController) Advance() {
	if pc != nil && pc.program != nil {
		pc.program.Send(AdvanceMsg{})
	}
}

// Done stops the display and waits for the terminal to be restored. It is
// safe to call more than once.
func (pc *ProgressController) Done() {
	if pc == nil || pc.program == nil {
		return
	}
	pc.stop.Do(func() {
		pc.program.Send(DoneMsg{})
		<-pc.finished
	})
}
