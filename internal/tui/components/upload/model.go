// Package upload is the database file picker shown before a session exists.
package upload

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/tui/styles"
)

// SubmitMsg asks to upload the file at Path.
type SubmitMsg struct {
	Path string
}

// Model is the upload form.
type Model struct {
	input     textinput.Model
	spinner   spinner.Model
	extension string
	busy      bool
	filename  string
	err       string
	width     int
}

// New creates an upload form accepting files with ext.
func New(ext string) Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/database" + ext
	ti.Prompt = "File: "
	ti.Width = 50
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return Model{input: ti, spinner: sp, extension: ext}
}

// SetWidth sets the available width.
func (m *Model) SetWidth(w int) {
	m.width = w
	m.input.Width = min(max(w-20, 20), 80)
}

// SetBusy marks an upload of filename in flight.
func (m *Model) SetBusy(filename string) tea.Cmd {
	m.busy, m.filename, m.err = true, filename, ""
	m.input.Blur()
	return m.spinner.Tick
}

// SetError ends the upload with an error shown under the input.
func (m *Model) SetError(msg string) tea.Cmd {
	m.busy, m.err = false, msg
	return m.input.Focus()
}

// Busy reports whether an upload is in flight.
func (m Model) Busy() bool { return m.busy }

// Update handles messages for the upload form
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if msg.String() == "enter" {
			path := ExpandPath(strings.TrimSpace(m.input.Value()))
			if path == "" {
				return m, nil
			}
			return m, func() tea.Msg { return SubmitMsg{Path: path} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the upload form
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.Header.Render("Data Exploration Platform"))
	b.WriteString("\n\n")
	b.WriteString("Upload your Neo4j database dump file to start exploring your data with AI.\n\n")

	if m.busy {
		b.WriteString(m.spinner.View() + " Uploading " + m.filename + "...")
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString(styles.ErrorText.Render(m.err) + "\n\n")
	}
	b.WriteString(styles.Hint.Render("Only " + m.extension + " files are supported"))
	b.WriteString("\n")
	b.WriteString(styles.KeyHint("enter", "upload", "ctrl+c", "quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// ExpandPath resolves a leading ~ to the home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
