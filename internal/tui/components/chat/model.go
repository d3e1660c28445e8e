package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"graphchat/internal/state"
	"graphchat/internal/viz"
)

// Model represents the chat component
type Model struct {
	viewport viewport.Model
	messages []state.ChatMessage
	selected int // index into messages of the selected visualization, or -1
	md       *markdown
	width    int
	height   int
}

// New creates a new chat model
func New(width, height int) Model {
	vp := viewport.New(width, height)
	vp.SetContent("")

	return Model{
		viewport: vp,
		selected: -1,
		md:       &markdown{},
		width:    width,
		height:   height,
	}
}

// Update handles scrolling
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "pgup":
			m.viewport.ViewUp()
			return m, nil
		case "pgdown":
			m.viewport.ViewDown()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the chat component
func (m Model) View() string {
	return m.viewport.View()
}

// SetMessages replaces the transcript. New messages scroll to the bottom
// and select the newest visualization.
func (m *Model) SetMessages(msgs []state.ChatMessage) {
	grew := len(msgs) != len(m.messages)
	m.messages = msgs
	if grew || m.selected >= len(msgs) {
		m.selected = m.lastVisualization()
	}
	m.updateContent(grew)
}

// SetSize updates the chat dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.updateContent(false)
}

// SelectPrev moves the selection to the previous visualization.
func (m *Model) SelectPrev() {
	for i := m.selected - 1; i >= 0; i-- {
		if m.messages[i].Visualization != nil {
			m.selected = i
			m.updateContent(false)
			return
		}
	}
}

// SelectNext moves the selection to the next visualization.
func (m *Model) SelectNext() {
	for i := m.selected + 1; i < len(m.messages); i++ {
		if m.messages[i].Visualization != nil {
			m.selected = i
			m.updateContent(false)
			return
		}
	}
}

// Selected returns the selected visualization.
func (m Model) Selected() (viz.Visualization, bool) {
	if m.selected < 0 || m.selected >= len(m.messages) || m.messages[m.selected].Visualization == nil {
		return viz.Visualization{}, false
	}
	return *m.messages[m.selected].Visualization, true
}

// IsEmpty returns true if there are no messages
func (m Model) IsEmpty() bool {
	return len(m.messages) == 0
}

func (m Model) lastVisualization() int {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Visualization != nil {
			return i
		}
	}
	return -1
}

func (m *Model) updateContent(toBottom bool) {
	var content strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString(renderMessage(msg, m.width, m.md, i == m.selected))
	}
	m.viewport.SetContent(content.String())
	if toBottom {
		m.viewport.GotoBottom()
	}
}
