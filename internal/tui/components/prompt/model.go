// Package prompt is a single-line input dialog.
package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/tui/styles"
)

// ConfirmedMsg is sent when the prompt is confirmed with a changed value.
type ConfirmedMsg struct {
	Target string
	Value  string
}

// CancelledMsg is sent when the prompt is dismissed.
type CancelledMsg struct{}

// Model is a titled text prompt bound to a target id.
type Model struct {
	title    string
	target   string
	original string
	input    textinput.Model
	errorMsg string
}

// New creates a prompt prefilled with current.
func New(title, target, current string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Enter new name..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.SetValue(current)
	ti.Focus()

	return &Model{title: title, target: target, original: current, input: ti}
}

// Update handles messages for the prompt
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				m.errorMsg = "Name cannot be empty"
				return m, nil
			}
			if value == m.original {
				return m, func() tea.Msg { return CancelledMsg{} }
			}
			target := m.target
			return m, func() tea.Msg { return ConfirmedMsg{Target: target, Value: value} }

		case "esc":
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.errorMsg = ""
	return m, cmd
}

// View renders the prompt
func (m *Model) View() string {
	lines := []string{
		styles.DialogTitle.Render(m.title),
		"",
		lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Primary).
			Padding(0, 1).
			Width(44).
			Render(m.input.View()),
	}
	if m.errorMsg != "" {
		lines = append(lines, styles.ErrorText.Render(m.errorMsg))
	}
	lines = append(lines, "", styles.KeyHint("Enter", "confirm", "Esc", "cancel"))
	return styles.Dialog.Render(strings.Join(lines, "\n"))
}

// Value returns the trimmed input.
func (m *Model) Value() string {
	return strings.TrimSpace(m.input.Value())
}
