// ABOUTME: Bubbletea model for conversion progress TUI
// ABOUTME: Defines job state, progress rendering and key handling
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Job
	input   string
	output  string
	title   string
	artist  string
	codec   string
	format  string
	bitRate int

	// Progress
	state     string
	submitted int64
	converted int64
	bytesOut  int64
	errors    int64
	lastError string
	elapsed   time.Duration
	encoded   time.Duration
	done      bool

	// Dimensions
	width  int
	height int

	controls *Controls
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case DoneMsg:
		m.done = true
		m.state = "stopped"
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderJob()
	s += m.renderProgress()
	s += m.renderHelp()

	return s
}

// renderHeader renders the conversion state
func (m Model) renderHeader() string {
	icon := "…"
	switch m.state {
	case "stopping":
		icon = "⏳"
	case "stopped":
		icon = "✓"
	}

	return fmt.Sprintf(`┌─ audiokit ───────────────────────────────────────────┐
│ Status: %s %-43s │
├──────────────────────────────────────────────────────┤
`, icon, m.state)
}

// renderJob renders source, target and metadata
func (m Model) renderJob() string {
	s := fmt.Sprintf("│ Input:  %-44s │\n", truncate(m.input, 44))
	if m.title != "" {
		s += fmt.Sprintf("│   Track:  %-42s │\n", truncate(m.title, 42))
		s += fmt.Sprintf("│   Artist: %-42s │\n", truncate(m.artist, 42))
	}
	s += fmt.Sprintf("│ Output: %-44s │\n", truncate(m.output, 44))
	s += fmt.Sprintf("│ Format: %-44s │\n", truncate(m.format, 44))
	if m.codec != "" {
		s += fmt.Sprintf("│ Codec:  %-44s │\n", truncate(fmt.Sprintf("%s @ %s", m.codec, formatBitRate(m.bitRate)), 44))
	}
	return s
}

// renderProgress renders packet accounting and throughput
func (m Model) renderProgress() string {
	bar := renderBar(int(m.converted), int(m.submitted), 30)
	s := "├──────────────────────────────────────────────────────┤\n"
	s += fmt.Sprintf("│ Packets: [%s] %d/%d%-8s │\n", bar, m.converted, m.submitted, "")
	s += fmt.Sprintf("│ Output:  %-43s │\n", formatBytes(m.bytesOut))
	s += fmt.Sprintf("│ Audio:   %-43s │\n", fmt.Sprintf("%.1fs in %.1fs", m.encoded.Seconds(), m.elapsed.Seconds()))
	s += fmt.Sprintf("│ Errors:  %-43d │\n", m.errors)
	if m.lastError != "" {
		s += fmt.Sprintf("│   Last:  %-43s │\n", truncate(m.lastError, 43))
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	if m.done {
		return `│ q:Quit                                               │
└──────────────────────────────────────────────────────┘
`
	}
	return `│ s:Stop (drain)  q:Quit                               │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.controls != nil {
			select {
			case m.controls.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "s":
		if m.controls != nil && !m.done && m.state == "converting" {
			select {
			case m.controls.Stop <- StopMsg{}:
			default:
			}
		}
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Input != "" {
		m.input = msg.Input
	}
	if msg.Output != "" {
		m.output = msg.Output
	}
	if msg.Title != "" {
		m.title = msg.Title
		m.artist = msg.Artist
	}
	if msg.Codec != "" {
		m.codec = msg.Codec
		m.bitRate = msg.BitRate
	}
	if msg.Format != "" {
		m.format = msg.Format
	}
	if msg.State != "" && !m.done {
		m.state = msg.State
	}
	if msg.Submitted != 0 {
		m.submitted = msg.Submitted
		m.converted = msg.Converted
	}
	if msg.BytesOut != 0 {
		m.bytesOut = msg.BytesOut
	}
	if msg.Errors != 0 {
		m.errors = msg.Errors
	}
	if msg.LastError != "" {
		m.lastError = msg.LastError
	}
	if msg.Elapsed != 0 {
		m.elapsed = msg.Elapsed
	}
	if msg.Encoded != 0 {
		m.encoded = msg.Encoded
	}
}

// StatusMsg updates TUI state. Zero fields leave the current value.
type StatusMsg struct {
	Input     string
	Output    string
	Title     string
	Artist    string
	Codec     string
	BitRate   int
	Format    string
	State     string
	Submitted int64
	Converted int64
	BytesOut  int64
	Errors    int64
	LastError string
	Elapsed   time.Duration
	Encoded   time.Duration
}

// DoneMsg marks the conversion as stopped
type DoneMsg struct{}

// Utility functions
func renderBar(value, max, width int) string {
	filled := 0
	if max > 0 {
		filled = (value * width) / max
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func formatBitRate(bps int) string {
	if bps == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d kbps", bps/1000)
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
