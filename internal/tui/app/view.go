package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/state"
	"graphchat/internal/tui/components/chat"
	"graphchat/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	bodyH := m.bodyHeight()
	body := m.renderBody()
	switch {
	case m.editor != nil:
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.editor.View())
	case m.rename != nil:
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.rename.View())
	}
	body = lipgloss.NewStyle().Height(bodyH).MaxHeight(bodyH).Render(body)

	if m.toast.Visible() {
		toasts := lipgloss.PlaceHorizontal(m.width, lipgloss.Right, m.toast.View())
		lines := strings.Split(body, "\n")
		if n := lipgloss.Height(toasts); n < len(lines) {
			body = toasts + "\n" + strings.Join(lines[n:], "\n")
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatusBar())
}

func (m Model) renderHeader() string {
	title := styles.Header.Render("Data Exploration Platform")
	if !m.snap.Uploaded {
		return title
	}
	file := styles.Hint.Render(m.snap.Filename + "  ")
	return lipgloss.JoinHorizontal(lipgloss.Top, title, file, m.tabs.View())
}

func (m Model) renderBody() string {
	if !m.snap.Uploaded {
		return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.upload.View())
	}
	if m.snap.ActiveView == state.ViewDashboard {
		return m.dash.View()
	}

	chatView := m.chat.View()
	if m.chat.IsEmpty() {
		chatView = chat.EmptyState.Width(m.width).Render(chat.WelcomeText)
	}

	inputView := m.input.View()
	if m.snap.QueryPending {
		inputView = styles.InputDisabled.Width(m.width - 2).
			Render(m.spinner.View() + " Analyzing your question... (esc to cancel)")
	}
	return lipgloss.JoinVertical(lipgloss.Left, chatView, inputView)
}

// renderStatusBar renders the status bar at the bottom
func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.snap.QueryPending:
		left = styles.StatusBarBusy.Render("Thinking...")
	case m.snap.UploadState == state.UploadUploading:
		left = styles.StatusBarBusy.Render("Uploading " + m.snap.UploadFile + "...")
	case m.snap.UploadError != "":
		left = styles.StatusBarError.Render(m.snap.UploadError)
	case m.snap.Uploaded:
		left = styles.StatusBar.Render("Ready")
	default:
		left = styles.StatusBar.Render("No database loaded")
	}

	var help string
	switch {
	case m.editor != nil || m.rename != nil:
		help = ""
	case m.snap.UploadState == state.UploadUploading:
		help = styles.KeyHint("esc", "cancel upload", "ctrl+c", "quit")
	case !m.snap.Uploaded:
		help = styles.KeyHint("enter", "upload", "ctrl+c", "quit")
	case m.snap.ActiveView == state.ViewDashboard:
		help = styles.KeyHint("tab", "chat", "ctrl+c", "quit")
	default:
		help = styles.KeyHint("enter", "send", "ctrl+p/n", "select chart", "ctrl+s", "to dashboard", "ctrl+o", "download", "ctrl+t", "dashboard")
	}
	help = styles.StatusBar.Render(help)

	spacer := m.width - lipgloss.Width(left) - lipgloss.Width(help)
	if spacer < 0 {
		spacer = 0
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", spacer), help)
}
