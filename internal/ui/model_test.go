// ABOUTME: Tests for the conversion progress TUI model
// ABOUTME: Covers status updates, key handling and rendering helpers
package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	controls := NewControls()
	m := NewModel(controls)

	if m.state != "converting" {
		t.Errorf("expected initial state converting, got %q", m.state)
	}
	if m.controls != controls {
		t.Error("expected controls to be stored")
	}
	if m.done {
		t.Error("expected model not done")
	}
}

func TestView_Loading(t *testing.T) {
	m := NewModel(nil)
	if got := m.View(); got != "Loading..." {
		t.Errorf("expected loading view before size, got %q", got)
	}
}

func TestStatusMsg_UpdatesJob(t *testing.T) {
	m := NewModel(nil)
	updated, _ := m.Update(StatusMsg{
		Input:   "song.flac",
		Output:  "song.opus",
		Title:   "Song",
		Artist:  "Artist",
		Codec:   "opus",
		BitRate: 128000,
		Format:  "pcm 48000Hz 2ch 16bit",
	})
	m = updated.(Model)

	if m.input != "song.flac" || m.output != "song.opus" {
		t.Errorf("unexpected paths %q -> %q", m.input, m.output)
	}
	if m.title != "Song" || m.artist != "Artist" {
		t.Errorf("unexpected metadata %q / %q", m.title, m.artist)
	}
	if m.codec != "opus" || m.bitRate != 128000 {
		t.Errorf("unexpected codec %q @ %d", m.codec, m.bitRate)
	}
}

func TestStatusMsg_UpdatesProgress(t *testing.T) {
	m := NewModel(nil)
	updated, _ := m.Update(StatusMsg{
		Submitted: 100,
		Converted: 40,
		BytesOut:  2048,
		Elapsed:   2 * time.Second,
		Encoded:   800 * time.Millisecond,
	})
	m = updated.(Model)

	if m.submitted != 100 || m.converted != 40 {
		t.Errorf("unexpected counts %d/%d", m.converted, m.submitted)
	}
	if m.bytesOut != 2048 {
		t.Errorf("expected 2048 bytes out, got %d", m.bytesOut)
	}

	// zero fields keep the current value
	updated, _ = m.Update(StatusMsg{Errors: 1, LastError: "opus: buffer too small"})
	m = updated.(Model)
	if m.submitted != 100 || m.bytesOut != 2048 || m.elapsed != 2*time.Second {
		t.Error("expected partial status to keep earlier values")
	}
	if m.errors != 1 || m.lastError != "opus: buffer too small" {
		t.Errorf("unexpected error state %d %q", m.errors, m.lastError)
	}
}

func TestDoneMsg(t *testing.T) {
	m := NewModel(nil)
	updated, _ := m.Update(DoneMsg{})
	m = updated.(Model)

	if !m.done || m.state != "stopped" {
		t.Errorf("expected done and stopped, got done=%v state=%q", m.done, m.state)
	}

	// late status must not resurrect the state
	updated, _ = m.Update(StatusMsg{State: "converting"})
	m = updated.(Model)
	if m.state != "stopped" {
		t.Errorf("expected state to stay stopped, got %q", m.state)
	}
}

func TestHandleKey_Stop(t *testing.T) {
	controls := NewControls()
	m := NewModel(controls)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})

	select {
	case <-controls.Stop:
	default:
		t.Fatal("expected stop request")
	}

	// a second press while the first is pending must not block
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
}

func TestHandleKey_StopIgnoredWhenDone(t *testing.T) {
	controls := NewControls()
	m := NewModel(controls)
	updated, _ := m.Update(DoneMsg{})
	m = updated.(Model)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})

	select {
	case <-controls.Stop:
		t.Error("expected no stop request after done")
	default:
	}
}

func TestHandleKey_Quit(t *testing.T) {
	controls := NewControls()
	m := NewModel(controls)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg from quit command")
	}

	select {
	case <-controls.Quit:
	default:
		t.Error("expected quit request")
	}
}

func TestView_Renders(t *testing.T) {
	m := NewModel(nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)
	updated, _ = m.Update(StatusMsg{
		Input:     "input.wav",
		Output:    "output.aac",
		Codec:     "aac",
		BitRate:   192000,
		Format:    "pcm 44100Hz 2ch 16bit",
		Submitted: 10,
		Converted: 5,
		BytesOut:  3 << 10,
	})
	m = updated.(Model)

	view := m.View()
	for _, want := range []string{"input.wav", "output.aac", "aac @ 192 kbps", "5/10", "3.0 KiB", "s:Stop"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, max, width int
		filled            int
	}{
		{0, 10, 10, 0},
		{5, 10, 10, 5},
		{10, 10, 10, 10},
		{3, 0, 10, 0},
	}

	for _, tt := range tests {
		bar := renderBar(tt.value, tt.max, tt.width)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("renderBar(%d, %d, %d): expected %d filled, got %d", tt.value, tt.max, tt.width, tt.filled, got)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
			t.Errorf("renderBar(%d, %d, %d): expected width %d, got %d", tt.value, tt.max, tt.width, tt.width, got)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a long string", 10, "this is..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.length); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.expected)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatBitRate(0); got != "n/a" {
		t.Errorf("formatBitRate(0) = %q", got)
	}
	if got := formatBitRate(64000); got != "64 kbps" {
		t.Errorf("formatBitRate(64000) = %q", got)
	}

	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
