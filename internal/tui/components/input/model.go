// Package input is the question box under the chat transcript.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"graphchat/internal/tui/styles"
)

// Model represents the input component
type Model struct {
	textarea    textarea.Model
	width       int
	history     []string
	histIdx     int
	suggestions []string
	suggestIdx  int
}

// New creates a new input model. Tab on an empty box cycles through
// suggestions.
func New(width int, suggestions []string) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about your data..."
	ta.Focus()
	ta.CharLimit = 4096
	ta.SetWidth(width - 4)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetKeys("shift+enter", "alt+enter")
	ta.FocusedStyle.Placeholder = ta.FocusedStyle.Placeholder.Foreground(styles.Muted)
	ta.BlurredStyle.Placeholder = ta.BlurredStyle.Placeholder.Foreground(styles.Muted)

	return Model{textarea: ta, width: width, histIdx: -1, suggestions: suggestions, suggestIdx: -1}
}

// Init initializes the input component
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the input component
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up":
			if m.textarea.Value() == "" || m.histIdx >= 0 {
				if m.histIdx < len(m.history)-1 {
					m.histIdx++
					m.textarea.SetValue(m.history[len(m.history)-1-m.histIdx])
					m.textarea.CursorEnd()
				}
				return m, nil
			}
		case "down":
			if m.histIdx >= 0 {
				m.histIdx--
				if m.histIdx >= 0 {
					m.textarea.SetValue(m.history[len(m.history)-1-m.histIdx])
				} else {
					m.textarea.SetValue("")
				}
				m.textarea.CursorEnd()
				return m, nil
			}
		case "tab":
			if len(m.suggestions) > 0 && (m.textarea.Value() == "" || m.suggestIdx >= 0) {
				m.suggestIdx = (m.suggestIdx + 1) % len(m.suggestions)
				m.textarea.SetValue(m.suggestions[m.suggestIdx])
				m.textarea.CursorEnd()
				return m, nil
			}
		default:
			m.suggestIdx = -1
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// View renders the input
func (m Model) View() string {
	if !m.textarea.Focused() {
		return styles.InputDisabled.Width(m.width - 2).Render(m.textarea.Value())
	}
	return styles.InputBorder.Width(m.width - 2).Render(m.textarea.View())
}

// Value returns the trimmed input text
func (m Model) Value() string {
	return strings.TrimSpace(m.textarea.Value())
}

// Submit records the current text in history and clears the box.
func (m *Model) Submit() string {
	v := m.Value()
	if v != "" {
		m.history = append(m.history, v)
	}
	m.histIdx, m.suggestIdx = -1, -1
	m.textarea.Reset()
	return v
}

// SetWidth sets the input width
func (m *Model) SetWidth(width int) {
	m.width = width
	m.textarea.SetWidth(width - 4)
}

// Focus focuses the input
func (m *Model) Focus() tea.Cmd {
	return m.textarea.Focus()
}

// Blur removes focus from the input
func (m *Model) Blur() {
	m.textarea.Blur()
}

// Height is the number of lines the input occupies.
func (m Model) Height() int {
	return m.textarea.Height() + 2
}
