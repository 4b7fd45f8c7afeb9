// Package ui renders terminal progress and status lines for the CLI.
package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// OutputMode determines how output should be formatted
type OutputMode int

const (
	// OutputModeInteractive enables colors and the progress bar
	OutputModeInteractive OutputMode = iota
	// OutputModePlain disables colors and progress (for piped output)
	OutputModePlain
)

// UI provides a unified interface for terminal output with TTY detection
type UI struct {
	Mode      OutputMode
	Writer    io.Writer
	ErrWriter io.Writer
	Styles    *Styles
}

// New creates a new UI instance. Progress is drawn on errW, so interactivity
// follows whether errW is a terminal. disable forces plain mode.
func New(w, errW io.Writer, disable bool) *UI {
	mode := OutputModePlain
	if !disable && isTerminal(errW) {
		mode = OutputModeInteractive
	}
	return &UI{
		Mode:      mode,
		Writer:    w,
		ErrWriter: errW,
		Styles:    NewStyles(mode == OutputModeInteractive),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// IsInteractive returns true if the output is interactive (TTY)
func (ui *UI) IsInteractive() bool {
	return ui.Mode == OutputModeInteractive
}

// Success renders a completion line such as "Results saved to output.json".
func (ui *UI) Success(msg string) string {
	return ui.Styles.Success.Render(ui.Styles.IconSuccess) + " " + msg
}

// Warning renders a warning line.
func (ui *UI) Warning(msg string) string {
	return ui.Styles.Warning.Render(ui.Styles.IconWarning) + " " + msg
}

// Path renders a file path.
func (ui *UI) Path(path string) string {
	return ui.Styles.Path.Render(path)
}
