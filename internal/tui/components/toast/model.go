// Package toast shows short-lived notices stacked above the view.
package toast

import (
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"graphchat/internal/tui/styles"
)

// Kind selects a notice's color and icon.
type Kind int

const (
	Info Kind = iota
	Success
	Error
)

// Lifetime is how long a notice stays up.
const Lifetime = 3 * time.Second

const maxVisible = 3

// Notice is one message on screen.
type Notice struct {
	ID    string
	Title string
	Body  string
	Kind  Kind
}

type expiredMsg struct{ id string }

var palette = map[Kind]struct {
	icon  string
	color lipgloss.Color
}{
	Info:    {"ℹ", styles.Primary},
	Success: {"✓", styles.Secondary},
	Error:   {"✗", styles.Error},
}

// Model holds the visible notices, newest last.
type Model struct {
	notices []Notice
	width   int
}

// New creates an empty stack.
func New() Model {
	return Model{width: 80}
}

// SetWidth sets the screen width notices are sized against.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Add shows a notice and returns the command that expires it. Only the
// newest few stay visible.
func (m *Model) Add(title, body string, kind Kind) tea.Cmd {
	n := Notice{ID: uuid.NewString(), Title: title, Body: body, Kind: kind}

	kept := m.notices
	if len(kept) >= maxVisible {
		kept = kept[len(kept)-maxVisible+1:]
	}
	m.notices = append(slices.Clone(kept), n)

	return tea.Tick(Lifetime, func(time.Time) tea.Msg { return expiredMsg{id: n.ID} })
}

// Update drops expired notices.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if e, ok := msg.(expiredMsg); ok {
		m.notices = slices.DeleteFunc(slices.Clone(m.notices), func(n Notice) bool {
			return n.ID == e.id
		})
	}
	return m, nil
}

// Notices returns the visible notices, oldest first.
func (m Model) Notices() []Notice {
	return slices.Clone(m.notices)
}

// Visible reports whether anything is on screen.
func (m Model) Visible() bool {
	return len(m.notices) > 0
}

// View renders the notices one under another.
func (m Model) View() string {
	out := make([]string, len(m.notices))
	for i, n := range m.notices {
		out[i] = m.render(n)
	}
	return strings.Join(out, "\n")
}

func (m Model) render(n Notice) string {
	look := palette[n.Kind]
	width := min(60, max(m.width*4/5, 20))

	text := lipgloss.NewStyle().Bold(true).Foreground(look.color).Render(look.icon + " " + n.Title)
	if n.Body != "" {
		text += "\n" + styles.Hint.Render(n.Body)
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(look.color).
		Padding(0, 1)
	return box.Width(width - box.GetHorizontalBorderSize()).Render(text)
}
