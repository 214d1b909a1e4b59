package tui

import "github.com/charmbracelet/bubbles/spinner"

// syncModel is the spinner shown while an operation runs.
type syncModel struct {
	spinner spinner.Model
	running string
}

func newSyncModel() syncModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return syncModel{spinner: s}
}

func (m syncModel) View() string {
	return m.spinner.View() + " " + m.running + "..."
}
