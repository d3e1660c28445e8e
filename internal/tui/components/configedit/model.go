// Package configedit is the dual form and JSON editor for a
// visualization's configuration.
package configedit

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/editor"
	"graphchat/internal/tui/styles"
)

// SavedMsg carries the saved configuration.
type SavedMsg struct {
	ID     string
	Config map[string]any
}

// CancelledMsg is sent when the editor is closed without saving.
type CancelledMsg struct{}

// Model edits one configuration.
type Model struct {
	id      string
	title   string
	ed      *editor.Editor
	focus   int
	editing bool
	input   textinput.Model
	area    textarea.Model
	status  string
	width   int
	height  int
}

// New opens an editor for config.
func New(id, title string, config map[string]any, width, height int) *Model {
	ti := textinput.New()
	ti.CharLimit = 0

	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0

	m := &Model{id: id, title: title, ed: editor.New(config), input: ti, area: ta}
	m.SetSize(width, height)
	m.area.SetValue(m.ed.Text())
	return m
}

// SetSize fits the dialog into the given area.
func (m *Model) SetSize(width, height int) {
	m.width = clamp(width-8, 30, 100)
	m.height = clamp(height-8, 8, 40)
	m.input.Width = m.width - 8
	m.area.SetWidth(m.width - 4)
	m.area.SetHeight(m.height - 6)
}

// Editor exposes the underlying editor state.
func (m *Model) Editor() *editor.Editor { return m.ed }

// Update handles messages for the editor
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+e":
		m.editing = false
		m.ed.ToggleMode()
		if m.ed.Mode() == editor.ModeJSON {
			m.area.SetValue(m.ed.Text())
			m.area.Focus()
		} else {
			m.area.Blur()
		}
		return m, nil
	case "ctrl+r":
		m.editing = false
		m.ed.Reset()
		m.area.SetValue(m.ed.Text())
		m.status = ""
		return m, nil
	case "ctrl+s":
		cfg, err := m.ed.Save()
		if err != nil {
			m.status = "Fix the errors before saving"
			return m, nil
		}
		id := m.id
		return m, func() tea.Msg { return SavedMsg{ID: id, Config: cfg} }
	}

	if m.ed.Mode() == editor.ModeJSON {
		if key.String() == "esc" {
			return m, cancel
		}
		before := m.area.Value()
		var cmd tea.Cmd
		m.area, cmd = m.area.Update(msg)
		if after := m.area.Value(); after != before {
			m.ed.SetText(after)
		}
		return m, cmd
	}
	return m.updateForm(key)
}

func cancel() tea.Msg { return CancelledMsg{} }

func (m *Model) updateForm(key tea.KeyMsg) (*Model, tea.Cmd) {
	fields := m.ed.Fields()

	if m.editing {
		switch key.String() {
		case "esc":
			m.editing = false
			m.status = ""
			m.input.Blur()
			return m, nil
		case "enter":
			f := fields[m.focus]
			if err := m.ed.SetFieldInput(f.Key, m.input.Value()); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.editing = false
			m.status = ""
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(key)
		return m, cmd
	}

	switch key.String() {
	case "esc":
		return m, cancel
	case "up", "k", "shift+tab":
		if m.focus > 0 {
			m.focus--
		}
	case "down", "j", "tab":
		if m.focus < len(fields)-1 {
			m.focus++
		}
	case "enter", " ":
		if len(fields) == 0 {
			return m, nil
		}
		f := fields[m.focus]
		if f.Kind == editor.KindBool {
			b, _ := f.Value.(bool)
			m.ed.SetField(f.Key, !b)
			return m, nil
		}
		if key.String() == " " {
			return m, nil
		}
		m.editing = true
		m.input.SetValue(f.Display())
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

// View renders the editor
func (m *Model) View() string {
	mode := "Form"
	if m.ed.Mode() == editor.ModeJSON {
		mode = "JSON"
	}

	var b strings.Builder
	b.WriteString(styles.DialogTitle.Render("Edit Configuration: " + m.title))
	b.WriteString("\n")
	b.WriteString(styles.Hint.Render("Mode: " + mode))
	if m.ed.Dirty() {
		b.WriteString(styles.Hint.Render(" • modified"))
	}
	b.WriteString("\n\n")

	if m.ed.Mode() == editor.ModeJSON {
		b.WriteString(m.area.View())
	} else {
		b.WriteString(m.formView())
	}
	b.WriteString("\n")

	for _, e := range m.ed.Errors() {
		b.WriteString("\n" + styles.ErrorText.Render(e))
	}
	if m.status != "" {
		b.WriteString("\n" + styles.ErrorText.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.KeyHint("ctrl+e", "toggle mode", "ctrl+r", "reset", "ctrl+s", "save", "esc", "cancel"))

	return styles.Dialog.Width(m.width).Render(b.String())
}

func (m *Model) formView() string {
	fields := m.ed.Fields()
	if len(fields) == 0 {
		return styles.Hint.Render("No configuration options available")
	}

	labelW := 0
	for _, f := range fields {
		labelW = max(labelW, lipgloss.Width(f.Label))
	}

	rows := make([]string, 0, len(fields))
	for i, f := range fields {
		cursor := "  "
		if i == m.focus {
			cursor = styles.Key.Render("> ")
		}
		label := fmt.Sprintf("%-*s  ", labelW, f.Label)

		var value string
		switch {
		case i == m.focus && m.editing:
			value = m.input.View()
		case f.Kind == editor.KindBool:
			value = boolLabel(f.Value)
		case f.Kind == editor.KindLongString:
			value = lipgloss.NewStyle().Width(m.width - labelW - 10).Render(f.Display())
		default:
			value = f.Display()
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cursor, label, value))
	}
	return strings.Join(rows, "\n")
}

func boolLabel(v any) string {
	if b, _ := v.(bool); b {
		return "[x] Enabled"
	}
	return "[ ] Disabled"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
