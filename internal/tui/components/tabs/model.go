package tabs

import (
	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/tui/styles"
)

// Tab represents a single tab
type Tab struct {
	ID    string
	Title string
	Badge string // Optional badge text (e.g., count)
}

// Model represents the tabs component
type Model struct {
	tabs        []Tab
	activeIndex int
}

// New creates a new tabs model
func New(tabs []Tab) Model {
	return Model{tabs: tabs}
}

// View renders the tabs
func (m Model) View() string {
	var out []string
	for i, tab := range m.tabs {
		var style lipgloss.Style
		if i == m.activeIndex {
			style = lipgloss.NewStyle().
				Foreground(styles.White).
				Background(styles.Primary).
				Padding(0, 2).
				MarginRight(1).
				Bold(true)
		} else {
			style = lipgloss.NewStyle().
				Foreground(styles.LightGray).
				Background(styles.Border).
				Padding(0, 2).
				MarginRight(1)
		}

		content := tab.Title
		if tab.Badge != "" {
			content += " " + lipgloss.NewStyle().Foreground(styles.Accent).Bold(true).Render(tab.Badge)
		}
		out = append(out, style.Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

// SelectByID activates the tab with the given id.
func (m *Model) SelectByID(id string) {
	for i, tab := range m.tabs {
		if tab.ID == id {
			m.activeIndex = i
			return
		}
	}
}

// Next returns the id of the tab after the active one, wrapping around.
func (m Model) Next() string {
	if len(m.tabs) == 0 {
		return ""
	}
	return m.tabs[(m.activeIndex+1)%len(m.tabs)].ID
}

// SetBadge sets the badge of the tab with the given id.
func (m *Model) SetBadge(id, badge string) {
	for i := range m.tabs {
		if m.tabs[i].ID == id {
			m.tabs[i].Badge = badge
		}
	}
}

// Badge returns the badge of the tab with the given id.
func (m Model) Badge(id string) string {
	for _, tab := range m.tabs {
		if tab.ID == id {
			return tab.Badge
		}
	}
	return ""
}
