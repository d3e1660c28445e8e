package app

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"graphchat/internal/export"
	"graphchat/internal/state"
	"graphchat/internal/tui/messages"
	"graphchat/internal/viz"
)

func uploadCmd(ctx context.Context, a *state.App, b state.Backend, t state.UploadTicket, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return messages.UploadDoneMsg{Filename: t.Filename, Err: a.CompleteUpload(t, "", err)}
		}
		defer f.Close()

		var sessionID string
		resp, err := b.Upload(ctx, t.Filename, f)
		if resp != nil {
			sessionID = resp.SessionID
		}
		return messages.UploadDoneMsg{Filename: t.Filename, Err: a.CompleteUpload(t, sessionID, err)}
	}
}

func queryCmd(ctx context.Context, a *state.App, b state.Backend, t state.QueryTicket) tea.Cmd {
	return func() tea.Msg {
		resp, err := b.Query(ctx, t.SessionID, t.Question)
		msg, err := a.ApplyQuery(t, resp, err)
		return messages.QueryDoneMsg{Message: msg, Err: err}
	}
}

func exportCmd(dir string, v viz.Visualization) tea.Cmd {
	return func() tea.Msg {
		path, err := export.SaveJSON(dir, v)
		return messages.ExportDoneMsg{Path: path, Err: err}
	}
}

func exportAllCmd(dir string, vs []viz.Visualization, now time.Time) tea.Cmd {
	return func() tea.Msg {
		path, err := export.SaveZip(dir, vs, now)
		return messages.ExportDoneMsg{Path: path, Err: err}
	}
}
