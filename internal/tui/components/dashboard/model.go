// Package dashboard renders pinned visualizations on a responsive grid and
// turns key presses into layout and card actions.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/state"
	"graphchat/internal/tui/styles"
	"graphchat/internal/viz"
)

// LayoutChangedMsg carries the layouts after a move or resize.
type LayoutChangedMsg struct {
	Layouts state.Layouts
}

// EditMsg asks to open the configuration editor.
type EditMsg struct{ ID string }

// RenameMsg asks to rename a card.
type RenameMsg struct{ ID string }

// RemoveMsg asks to unpin a card.
type RemoveMsg struct{ ID string }

// ExportMsg asks to download one card.
type ExportMsg struct{ ID string }

// ExportAllMsg asks to download every card.
type ExportAllMsg struct{}

// Model represents the dashboard component
type Model struct {
	viewport viewport.Model
	items    []viz.Visualization
	layouts  state.Layouts
	rects    []state.Rect
	selected int
	width    int
	height   int
}

// New creates a new dashboard model
func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height), layouts: state.Layouts{}, width: width, height: height}
}

// SetSize updates the dashboard dimensions
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.viewport.Width, m.viewport.Height = width, height
	m.refresh()
}

// Breakpoint returns the breakpoint for the current width.
func (m Model) Breakpoint() state.Breakpoint {
	return BreakpointForCells(m.width)
}

// SetData replaces the items, stored layouts and the rectangles resolved
// for the current breakpoint.
func (m *Model) SetData(items []viz.Visualization, layouts state.Layouts, rects []state.Rect) {
	prev, _ := m.Selected()
	m.items, m.layouts, m.rects = items, layouts, rects
	m.selected = 0
	for i, v := range items {
		if v.ID == prev.ID {
			m.selected = i
		}
	}
	m.refresh()
}

// Selected returns the selected visualization.
func (m Model) Selected() (viz.Visualization, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return viz.Visualization{}, false
	}
	return m.items[m.selected], true
}

// Len returns the number of cards.
func (m Model) Len() int { return len(m.items) }

// Update handles key presses
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	v, has := m.Selected()
	switch key.String() {
	case "left", "h", "up", "k":
		m.selectDelta(-1)
	case "right", "l", "down", "j":
		m.selectDelta(1)
	case "H", "shift+left":
		return m, m.relayout(-1, 0, 0, 0)
	case "L", "shift+right":
		return m, m.relayout(1, 0, 0, 0)
	case "K", "shift+up":
		return m, m.relayout(0, -1, 0, 0)
	case "J", "shift+down":
		return m, m.relayout(0, 1, 0, 0)
	case "]":
		return m, m.relayout(0, 0, 1, 0)
	case "[":
		return m, m.relayout(0, 0, -1, 0)
	case "}":
		return m, m.relayout(0, 0, 0, 1)
	case "{":
		return m, m.relayout(0, 0, 0, -1)
	case "O":
		if len(m.items) > 0 {
			return m, emit(ExportAllMsg{})
		}
	case "e", "enter":
		if has {
			return m, emit(EditMsg{ID: v.ID})
		}
	case "r":
		if has {
			return m, emit(RenameMsg{ID: v.ID})
		}
	case "d", "x", "delete":
		if has {
			return m, emit(RemoveMsg{ID: v.ID})
		}
	case "o":
		if has {
			return m, emit(ExportMsg{ID: v.ID})
		}
	case "pgup":
		m.viewport.ViewUp()
	case "pgdown":
		m.viewport.ViewDown()
	}
	return m, nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m *Model) selectDelta(d int) {
	if len(m.items) == 0 {
		return
	}
	m.selected = clamp(m.selected+d, 0, len(m.items)-1)
	m.refresh()
}

// Relayout moves and resizes the selected card and returns the layouts to
// store, with every resolved rectangle at the current breakpoint made
// explicit. Cards in the way are pushed down. It reports false when
// nothing is selected.
func (m Model) Relayout(dx, dy, dw, dh int) (state.Layouts, bool) {
	v, ok := m.Selected()
	if !ok {
		return nil, false
	}
	cols := state.Columns(m.Breakpoint())
	rects := append([]state.Rect(nil), m.rects...)
	found := false
	for i := range rects {
		if rects[i].ItemID != v.ID {
			continue
		}
		r := resized(rects[i], dw, dh, cols)
		rects[i] = moved(r, dx, dy, cols)
		found = true
	}
	if !found {
		return nil, false
	}
	out := m.layouts.Clone()
	out[m.Breakpoint()] = state.Compact(rects, cols, v.ID)
	return out, true
}

func (m Model) relayout(dx, dy, dw, dh int) tea.Cmd {
	l, ok := m.Relayout(dx, dy, dw, dh)
	if !ok {
		return nil
	}
	return emit(LayoutChangedMsg{Layouts: l})
}

func (m *Model) refresh() {
	if len(m.items) == 0 {
		m.viewport.SetContent("")
		return
	}
	index := make(map[string]viz.Visualization, len(m.items))
	for _, v := range m.items {
		index[v.ID] = v
	}
	sel, _ := m.Selected()
	grid, offsets := renderGrid(m.rects, index, state.Columns(m.Breakpoint()), m.width, sel.ID)
	m.viewport.SetContent(grid)

	if top, ok := offsets[sel.ID]; ok {
		if top < m.viewport.YOffset || top >= m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(top)
		}
	}
}

// View renders the dashboard
func (m Model) View() string {
	if len(m.items) == 0 {
		return emptyView(m.width)
	}
	n := len(m.items)
	plural := "s"
	if n == 1 {
		plural = ""
	}
	header := lipgloss.JoinVertical(lipgloss.Left,
		styles.Header.Render("Dashboard")+styles.Hint.Render(fmt.Sprintf("%d visualization%s • %s", n, plural, m.Breakpoint())),
		styles.StatusBar.Render(styles.KeyHint(
			"←→", "select", "HJKL", "move", "[ ] { }", "resize",
			"e", "configure", "r", "rename", "d", "remove", "o", "download", "O", "download all",
		)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
}

// HeaderHeight is the number of lines View adds above the grid.
const HeaderHeight = 2

func emptyView(width int) string {
	body := strings.Join([]string{
		styles.CardTitle.Render("No Visualizations Yet"),
		"",
		"Start chatting with your data to generate visualizations.",
		"They'll appear here where you can arrange, resize, and customize them.",
		"",
		styles.Hint.Render("Dashboard features:"),
		styles.Hint.Render("• Move with H J K L"),
		styles.Hint.Render("• Resize with [ ] { }"),
		styles.Hint.Render("• Configure and download"),
	}, "\n")
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Padding(2, 0).Render(body)
}
