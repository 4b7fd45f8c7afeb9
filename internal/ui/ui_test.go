package ui

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestNewNonTerminalIsPlain(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, false)
	require.False(t, u.IsInteractive())
	require.Nil(t, u.StartProgress("Scoring prompts"))

	require.Equal(t, "OK: Results saved to output.json", u.Success("Results saved to output.json"))
	require.Equal(t, "WARN: 2 prompts too long", u.Warning("2 prompts too long"))
	require.Equal(t, "output.json", u.Path("output.json"))
}

func TestNilControllerIsSafe(t *testing.T) {
	var pc *ProgressController
	pc.Start(3)
	pc.Advance()
	pc.Done()
}

func TestModel(t *testing.T) {
	m := NewModel("Scoring prompts", NewStyles(false))

	next, _ := m.Update(TotalMsg(4))
	m = next.(Model)
	for i := 0; i < 5; i++ {
		next, _ = m.Update(AdvanceMsg{})
		m = next.(Model)
	}
	require.Equal(t, 1.0, m.Percent(), "advance is capped at the total")
	require.Contains(t, m.View(), "4/4")
	require.Contains(t, m.View(), "Scoring prompts")

	next, cmd := m.Update(DoneMsg{})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.Empty(t, m.View())

	t.Run("CtrlCQuits", func(t *testing.T) {
		m := NewModel("x", NewStyles(false))
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		require.Empty(t, next.(Model).View())
	})

	t.Run("ZeroTotal", func(t *testing.T) {
		m := NewModel("x", NewStyles(false))
		require.Equal(t, 0.0, m.Percent())
		require.NotContains(t, m.View(), "/")
	})
}
