package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"graphchat/internal/state"
	"graphchat/internal/tui/components/configedit"
	"graphchat/internal/tui/components/dashboard"
	"graphchat/internal/tui/components/prompt"
	"graphchat/internal/tui/components/toast"
	"graphchat/internal/tui/components/upload"
	"graphchat/internal/tui/messages"
)

// Update handles all application messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.toast, cmd = m.toast.Update(msg)
	cmds = append(cmds, cmd)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resize()
		m.sync()
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stopQuery()
			m.stopUpload()
			return m, tea.Quit
		}
		return m.handleKey(msg, cmds)

	case spinner.TickMsg:
		if m.snap.QueryPending {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.upload, cmd = m.upload.Update(msg)
		cmds = append(cmds, cmd)

	case upload.SubmitMsg:
		cmds = append(cmds, m.startUpload(msg.Path))

	case messages.UploadDoneMsg:
		cmds = append(cmds, m.finishUpload(msg))

	case messages.QueryDoneMsg:
		if errors.Is(msg.Err, state.ErrStaleTicket) {
			break
		}
		m.stopQuery()
		m.sync()
		cmds = append(cmds, m.input.Focus())

	case messages.ExportDoneMsg:
		if msg.Err != nil {
			m.log.Error("export failed", "error", msg.Err)
			cmds = append(cmds, m.toast.Add("Download failed", msg.Err.Error(), toast.Error))
		} else {
			m.log.Info("export written", "path", msg.Path)
			cmds = append(cmds, m.toast.Add("Saved", msg.Path, toast.Success))
		}

	case dashboard.LayoutChangedMsg:
		m.app.OnLayoutChange(msg.Layouts)
		m.sync()

	case dashboard.EditMsg:
		if v, ok := m.app.Visualization(msg.ID); ok {
			m.editor = configedit.New(v.ID, v.DisplayTitle(), v.ConfigUsed, m.width, m.height)
		}

	case dashboard.RenameMsg:
		if v, ok := m.app.Visualization(msg.ID); ok {
			m.rename = prompt.New("Rename Visualization", v.ID, v.DisplayTitle())
		}

	case dashboard.RemoveMsg:
		if m.app.OnVisualizationRemove(msg.ID) {
			cmds = append(cmds, m.toast.Add("Visualization removed", "", toast.Info))
		}
		m.sync()

	case dashboard.ExportMsg:
		if v, ok := m.app.Visualization(msg.ID); ok {
			cmds = append(cmds,
				m.toast.Add("Download started", "Your visualization is being downloaded.", toast.Info),
				exportCmd(m.exportDir, v))
		}

	case dashboard.ExportAllMsg:
		if len(m.snap.Visualizations) > 0 {
			cmds = append(cmds,
				m.toast.Add("Download all started", "All visualizations are being downloaded.", toast.Info),
				exportAllCmd(m.exportDir, m.snap.Visualizations, m.now()))
		}

	case configedit.SavedMsg:
		m.editor = nil
		if m.app.OnVisualizationUpdate(msg.ID, state.Patch{ConfigUsed: msg.Config}) {
			cmds = append(cmds, m.toast.Add("Configuration updated", "Your visualization settings have been saved.", toast.Success))
		}
		m.sync()

	case configedit.CancelledMsg:
		m.editor = nil

	case prompt.ConfirmedMsg:
		m.rename = nil
		title := msg.Value
		if m.app.OnVisualizationUpdate(msg.Target, state.Patch{Title: &title}) {
			cmds = append(cmds, m.toast.Add("Visualization renamed", title, toast.Success))
		}
		m.sync()

	case prompt.CancelledMsg:
		m.rename = nil

	default:
		if m.snap.Uploaded && m.snap.ActiveView == state.ViewChat {
			m.chat, cmd = m.chat.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case m.editor != nil:
		m.editor, cmd = m.editor.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)
	case m.rename != nil:
		m.rename, cmd = m.rename.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)
	case !m.snap.Uploaded:
		if msg.String() == "esc" && m.app.CancelUpload() {
			m.stopUpload()
			m.sync()
			return m, tea.Batch(append(cmds, m.upload.SetError("Upload cancelled"))...)
		}
		m.upload, cmd = m.upload.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)
	}

	if msg.String() == "ctrl+t" {
		m.app.OnTabChange(state.View(m.tabs.Next()))
		m.sync()
		return m, tea.Batch(cmds...)
	}

	if m.snap.ActiveView == state.ViewDashboard {
		switch msg.String() {
		case "tab", "esc":
			m.app.OnTabChange(state.ViewChat)
			m.sync()
			return m, tea.Batch(append(cmds, m.input.Focus())...)
		}
		m.dash, cmd = m.dash.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)
	}

	switch msg.String() {
	case "esc":
		if m.app.CancelQuery() {
			m.stopQuery()
			m.sync()
			return m, tea.Batch(append(cmds, m.input.Focus())...)
		}
	case "enter":
		if !m.snap.QueryPending && m.input.Value() != "" {
			return m, tea.Batch(append(cmds, m.send())...)
		}
		return m, tea.Batch(cmds...)
	case "ctrl+p":
		m.chat.SelectPrev()
		return m, tea.Batch(cmds...)
	case "ctrl+n":
		m.chat.SelectNext()
		return m, tea.Batch(cmds...)
	case "ctrl+s":
		if v, ok := m.chat.Selected(); ok {
			title := "Added to dashboard"
			if !m.app.OnSendToDashboard(v) {
				title = "Already on dashboard"
			}
			m.sync()
			cmds = append(cmds, m.toast.Add(title, v.DisplayTitle(), toast.Success))
		}
		return m, tea.Batch(cmds...)
	case "ctrl+o":
		if v, ok := m.chat.Selected(); ok {
			cmds = append(cmds,
				m.toast.Add("Download started", "Your visualization is being downloaded.", toast.Info),
				exportCmd(m.exportDir, v))
		}
		return m, tea.Batch(cmds...)
	case "pgup", "pgdown":
		m.chat, cmd = m.chat.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)
	}

	if !m.snap.QueryPending {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// send submits the input as a question.
func (m *Model) send() tea.Cmd {
	t, err := m.app.SendMessage(m.input.Value())
	switch {
	case errors.Is(err, state.ErrNoSession):
		return m.toast.Add("No active session", "Upload a database first.", toast.Error)
	case err != nil:
		return m.toast.Add("Could not send", err.Error(), toast.Error)
	}

	m.input.Submit()
	m.input.Blur()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.sync()
	return tea.Batch(m.spinner.Tick, queryCmd(ctx, m.app, m.backend, *t))
}

// startUpload validates path and starts the upload.
func (m *Model) startUpload(path string) tea.Cmd {
	name := filepath.Base(path)
	t, err := m.app.BeginUpload(name)
	switch {
	case errors.Is(err, state.ErrInvalidFileType):
		ext := m.app.Extension()
		return tea.Batch(
			m.upload.SetError("Please upload a "+ext+" file"),
			m.toast.Add("Invalid file type", "Please upload a "+ext+" file", toast.Error),
		)
	case err != nil || t == nil:
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		_ = m.app.CompleteUpload(*t, "", err)
		m.sync()
		return m.upload.SetError(fmt.Sprintf("Cannot read file: %v", err))
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.uploadCancel = cancel
	m.sync()
	return tea.Batch(m.upload.SetBusy(name), uploadCmd(ctx, m.app, m.backend, *t, path))
}

func (m *Model) finishUpload(msg messages.UploadDoneMsg) tea.Cmd {
	if errors.Is(msg.Err, state.ErrStaleTicket) {
		return nil
	}
	m.stopUpload()
	m.sync()
	var uploadErr *state.UploadError
	if errors.As(msg.Err, &uploadErr) {
		return tea.Batch(
			m.upload.SetError(uploadErr.Message),
			m.toast.Add("Upload failed", uploadErr.Message, toast.Error),
		)
	}
	if msg.Err != nil {
		return m.upload.SetError(msg.Err.Error())
	}

	return tea.Batch(
		m.input.Focus(),
		m.toast.Add("Upload successful", msg.Filename+" has been uploaded and processed.", toast.Success),
	)
}

// stopQuery aborts the request of the pending query, if any.
func (m *Model) stopQuery() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// stopUpload aborts the upload request, if any.
func (m *Model) stopUpload() {
	if m.uploadCancel != nil {
		m.uploadCancel()
		m.uploadCancel = nil
	}
}

// resize lays components out for the window size.
func (m *Model) resize() {
	body := m.bodyHeight()
	chatH := body - m.input.Height()
	if chatH < 3 {
		chatH = 3
	}
	m.chat.SetSize(m.width, chatH)
	m.input.SetWidth(m.width)
	m.dash.SetSize(m.width, max(body-dashboard.HeaderHeight, 3))
	m.upload.SetWidth(m.width)
	m.toast.SetWidth(m.width)
	if m.editor != nil {
		m.editor.SetSize(m.width, m.height)
	}
}

// bodyHeight is the height left after the header and status bar.
func (m Model) bodyHeight() int {
	return max(m.height-2, 5)
}

// sync copies the application state into the components.
func (m *Model) sync() {
	m.snap = m.app.Snapshot()
	m.chat.SetMessages(m.snap.Messages)
	m.tabs.SelectByID(string(m.snap.ActiveView))

	badge := ""
	if n := len(m.snap.Visualizations); n > 0 {
		badge = strconv.Itoa(n)
	}
	m.tabs.SetBadge(string(state.ViewDashboard), badge)

	m.dash.SetData(m.snap.Visualizations, m.snap.Layouts, m.app.ResolveLayout(m.dash.Breakpoint()))
}
