package state

import (
	"context"
	"io"

	"graphchat/internal/client"
)

// Backend is the subset of the API client the drivers need.
type Backend interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*client.UploadResponse, error)
	Query(ctx context.Context, sessionID, question string) (*client.QueryResponse, error)
}

// File is a chosen upload.
type File struct {
	Name    string
	Content io.Reader
}

// Upload runs a full upload of the first file. No files is a no-op.
func (a *App) Upload(ctx context.Context, b Backend, files ...File) error {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	t, err := a.BeginUpload(names...)
	if err != nil || t == nil {
		return err
	}

	var sessionID string
	resp, err := b.Upload(ctx, files[0].Name, files[0].Content)
	if resp != nil {
		sessionID = resp.SessionID
	}
	return a.CompleteUpload(*t, sessionID, err)
}

// Ask sends text and applies the backend's answer.
func (a *App) Ask(ctx context.Context, b Backend, text string) (ChatMessage, error) {
	t, err := a.SendMessage(text)
	if err != nil {
		return ChatMessage{}, err
	}
	resp, err := b.Query(ctx, t.SessionID, t.Question)
	return a.ApplyQuery(*t, resp, err)
}
