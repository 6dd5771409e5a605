// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the conversion progress view
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// StopMsg asks the conversion to drain and stop
type StopMsg struct{}

// QuitMsg asks the CLI to exit
type QuitMsg struct{}

// Controls holds channels the TUI uses to steer the conversion
type Controls struct {
	Stop chan StopMsg
	Quit chan QuitMsg
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Stop: make(chan StopMsg, 1),
		Quit: make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls) Model {
	return Model{
		state:    "converting",
		controls: controls,
	}
}

// Run creates the TUI program; the caller starts it with Run
func Run(controls *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(controls), tea.WithAltScreen())
	return p, nil
}
